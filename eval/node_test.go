package eval

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writeFakeCore installs a shell script standing in for canonizer-core
// and points CANONIZER_CORE_BIN at it.
func writeFakeCore(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine script requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "canonizer-core")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvCoreBin, path)
}

func TestNodeEvaluatorRoundTrip(t *testing.T) {
	// Identity engine: echo stdin back as the result.
	writeFakeCore(t, "cat\n")

	ev, err := NewNodeEvaluator()
	if err != nil {
		t.Fatalf("NewNodeEvaluator() error: %v", err)
	}

	input := map[string]any{"subject": "hello", "count": float64(3)}
	out, err := ev.Evaluate(t.Context(), "$", input)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	got, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("Evaluate() = %T, want map", out)
	}
	if got["subject"] != "hello" || got["count"] != float64(3) {
		t.Errorf("Evaluate() = %v", got)
	}
}

func TestNodeEvaluatorPassesExpression(t *testing.T) {
	// Engine that prints its --expr argument as a JSON string.
	writeFakeCore(t, `printf '"%s"' "$3"`+"\n")

	ev, err := NewNodeEvaluator()
	if err != nil {
		t.Fatal(err)
	}

	out, err := ev.Evaluate(t.Context(), "payload.subject", nil)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if out != "payload.subject" {
		t.Errorf("engine saw expression %q", out)
	}
}

func TestNodeEvaluatorFailureCarriesStderr(t *testing.T) {
	writeFakeCore(t, "echo 'syntax error at position 4' >&2\nexit 1\n")

	ev, err := NewNodeEvaluator()
	if err != nil {
		t.Fatal(err)
	}

	_, err = ev.Evaluate(t.Context(), "payload.", nil)
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("Evaluate() error = %v, want *EvalError", err)
	}
	if evalErr.Stderr == "" {
		t.Error("EvalError.Stderr is empty, want engine diagnostics")
	}
}

func TestNodeEvaluatorPrimitiveOutput(t *testing.T) {
	writeFakeCore(t, "printf 'hello world'\n")

	ev, err := NewNodeEvaluator()
	if err != nil {
		t.Fatal(err)
	}

	out, err := ev.Evaluate(t.Context(), "greeting", nil)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if out != "hello world" {
		t.Errorf("Evaluate() = %v, want unquoted primitive passthrough", out)
	}
}

func TestNewNodeEvaluatorMissingOverride(t *testing.T) {
	t.Setenv(EnvCoreBin, filepath.Join(t.TempDir(), "does-not-exist"))

	if _, err := NewNodeEvaluator(); err == nil {
		t.Error("NewNodeEvaluator() should fail for a missing override binary")
	}
}

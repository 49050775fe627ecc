package eval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// EnvCoreBin overrides the location of the canonizer-core binary.
const EnvCoreBin = "CANONIZER_CORE_BIN"

// coreBinName is the binary looked up on PATH when no override is set.
const coreBinName = "canonizer-core"

// DefaultTimeout bounds a single evaluation when the caller's context
// carries no deadline of its own.
const DefaultTimeout = 30 * time.Second

// NodeEvaluator evaluates JSONata expressions by invoking the
// canonizer-core binary with the expression as an argument and the
// input document as JSON on stdin.
type NodeEvaluator struct {
	// BinPath is the resolved binary path.
	BinPath string

	// Timeout bounds each evaluation when the context has no deadline.
	// Zero means DefaultTimeout.
	Timeout time.Duration
}

// NewNodeEvaluator locates the canonizer-core binary: the
// CANONIZER_CORE_BIN environment variable when set, otherwise a PATH
// lookup. A set override pointing at a missing file is an error rather
// than a silent fallback.
func NewNodeEvaluator() (*NodeEvaluator, error) {
	if override := os.Getenv(EnvCoreBin); override != "" {
		if _, err := os.Stat(override); err != nil {
			return nil, fmt.Errorf("%s points to a missing binary: %s", EnvCoreBin, override)
		}
		return &NodeEvaluator{BinPath: override}, nil
	}

	path, err := exec.LookPath(coreBinName)
	if err != nil {
		return nil, fmt.Errorf("%s not found on PATH: install it or set %s", coreBinName, EnvCoreBin)
	}
	return &NodeEvaluator{BinPath: path}, nil
}

// Evaluate runs the expression against input and returns the decoded
// JSON result. Engine failures come back as *EvalError.
func (n *NodeEvaluator) Evaluate(ctx context.Context, expr string, input any) (any, error) {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode evaluation input: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		timeout := n.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, n.BinPath, "jsonata", "--expr", expr)
	cmd.Stdin = bytes.NewReader(inputJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &EvalError{Stderr: "evaluation timed out", Err: ctxErr}
		}
		return nil, &EvalError{Stderr: stderr.String(), Err: err}
	}

	out := stdout.Bytes()
	var result any
	if err := json.Unmarshal(out, &result); err != nil {
		// The engine may emit a bare primitive without JSON quoting.
		return strings.TrimSpace(string(out)), nil
	}
	return result, nil
}

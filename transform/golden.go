package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/benthepsychologist/go-canonizer/validate"
)

// Evaluator runs a transform expression against an input document. It
// matches the eval package's interface; declared here so golden test
// execution does not pin callers to one engine.
type Evaluator interface {
	Evaluate(ctx context.Context, expr string, input any) (any, error)
}

// RunGoldenTests executes every golden fixture declared in the sidecar:
// each input document is run through the body and the result compared
// against the expected output, structurally. All failures are collected;
// a transform with no fixtures passes vacuously.
func (t *Transform) RunGoldenTests(ctx context.Context, ev Evaluator) error {
	if len(t.Meta.Tests) == 0 {
		return nil
	}

	dir := filepath.Dir(t.MetaPath)
	errs := &validate.ValidationErrors{}

	for i, fx := range t.Meta.Tests {
		field := fmt.Sprintf("tests[%d]", i)

		input, err := readJSONFixture(dir, fx.Input)
		if err != nil {
			errs.Addf(field, "input fixture: %v", err)
			continue
		}
		expected, err := readJSONFixture(dir, fx.Expect)
		if err != nil {
			errs.Addf(field, "expected fixture: %v", err)
			continue
		}

		actual, err := ev.Evaluate(ctx, t.Body, input)
		if err != nil {
			errs.Addf(field, "execution failed: %v", err)
			continue
		}

		equal, err := jsonEqual(actual, expected)
		if err != nil {
			errs.Addf(field, "compare output: %v", err)
			continue
		}
		if !equal {
			errs.Addf(field, "output does not match %s", fx.Expect)
		}
	}

	return errs.ToError()
}

// readJSONFixture loads a fixture file relative to the sidecar directory.
func readJSONFixture(dir, relPath string) (any, error) {
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(relPath)))
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", relPath, err)
	}
	return doc, nil
}

// jsonEqual compares two values structurally as JSON: both sides are
// normalized through a marshal/unmarshal round trip so engine output
// types and decoded fixture types meet on equal terms.
func jsonEqual(a, b any) (bool, error) {
	na, err := normalizeJSON(a)
	if err != nil {
		return false, err
	}
	nb, err := normalizeJSON(b)
	if err != nil {
		return false, err
	}
	return reflect.DeepEqual(na, nb), nil
}

func normalizeJSON(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

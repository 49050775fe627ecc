// Package eval runs transform expressions through an evaluation engine.
//
// The only shipped engine is NodeEvaluator, which shells out to the
// canonizer-core binary (the Node.js JSONata runtime). Callers that want
// a different engine, or a hermetic one for tests, implement Evaluator.
package eval

import (
	"context"
	"fmt"
	"strings"
)

// Evaluator evaluates a transform expression against an input document.
// The input and output are JSON-shaped values (maps, slices, primitives).
type Evaluator interface {
	Evaluate(ctx context.Context, expr string, input any) (any, error)
}

// EvalError reports a failed expression evaluation, carrying whatever
// the engine wrote to stderr.
type EvalError struct {
	Stderr string
	Err    error
}

func (e *EvalError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("expression evaluation failed: %s", msg)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

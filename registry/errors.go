package registry

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// Artifact kinds reported by NotFoundError.
const (
	KindRoot      = "registry root"
	KindSchema    = "schema"
	KindTransform = "transform"
	KindArtifact  = "artifact"
)

// NotFoundError indicates a missing root, schema, transform, or artifact.
// It is recoverable: the Hint names the step that would materialize the
// missing piece.
type NotFoundError struct {
	// Kind is one of the Kind* constants.
	Kind string

	// Ref is the reference string being resolved, if any.
	Ref string

	// Path is the expected filesystem location.
	Path string

	// Hint is the remediation step, e.g. "run 'canonizer import'".
	Hint string
}

func (e *NotFoundError) Error() string {
	msg := e.Kind + " not found"
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Path != "" {
		msg += fmt.Sprintf("\nexpected at: %s", e.Path)
	}
	if e.Hint != "" {
		msg += "\n" + e.Hint
	}
	return msg
}

// Is reports true for ErrNotFound so callers can test with errors.Is
// without knowing the concrete type.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

package gocanonizer

import (
	"github.com/benthepsychologist/go-canonizer/eval"
	"github.com/benthepsychologist/go-canonizer/validate"
)

// Options configures the high-level operations. The zero value resolves
// the registry root from the working directory and uses the default
// schema validator.
type Options struct {
	// StartDir anchors registry root discovery. Empty means the current
	// working directory with a global-root fallback; non-empty requests
	// strict local resolution from that directory.
	StartDir string

	// Evaluator runs transform expressions. Required by Canonicalize;
	// unused elsewhere. Wire eval.NewNodeEvaluator() or a custom engine.
	Evaluator eval.Evaluator

	// Validator checks documents against schemas. Nil means the default
	// Draft 7 validator.
	Validator validate.Validator

	// SkipInputValidation disables validating the input document against
	// the transform's source schema during Canonicalize.
	SkipInputValidation bool

	// SkipOutputValidation disables validating the transform output
	// against the canonical schema during Canonicalize.
	SkipOutputValidation bool

	// Write persists a successful patch back to the transform's body and
	// sidecar files. When false, PatchTransform only reports the result.
	Write bool

	// BumpVersion controls the revision bump on patched metadata.
	// Enabled unless NoBumpVersion is set.
	NoBumpVersion bool
}

// validator picks the configured or default document validator.
func (o Options) validator() validate.Validator {
	if o.Validator != nil {
		return o.Validator
	}
	return validate.NewSchemaValidator()
}

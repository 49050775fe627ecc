// Package validate checks JSON documents against JSON Schemas.
//
// The core treats structural validation as a collaborator: the Validator
// interface accepts a document and a schema and returns a list of error
// messages, where an empty list means valid. The default implementation
// is backed by the santhosh-tekuri/jsonschema compiler at Draft 7.
package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator validates a document against a schema, returning one message
// per violation. An empty slice means the document is valid.
type Validator interface {
	Validate(document any, schema map[string]any) []string
}

// SchemaValidator is the default Validator, backed by a Draft 7 JSON
// Schema compiler.
type SchemaValidator struct{}

// NewSchemaValidator creates the default validator.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{}
}

// Validate compiles the schema and validates the document against it.
// Compilation failures are reported as a single message rather than a
// panic; a broken schema means the document cannot be shown valid.
func (v *SchemaValidator) Validate(document any, schema map[string]any) []string {
	compiled, err := compile(schema)
	if err != nil {
		return []string{fmt.Sprintf("schema: %v", err)}
	}

	if err := compiled.Validate(document); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return flatten(ve, nil)
		}
		return []string{err.Error()}
	}
	return nil
}

// Check validates and wraps any violations in a ValidationErrors value,
// for callers that want an error instead of a message list.
func (v *SchemaValidator) Check(document any, schema map[string]any) error {
	msgs := v.Validate(document, schema)
	if len(msgs) == 0 {
		return nil
	}
	ve := &ValidationErrors{}
	for _, m := range msgs {
		ve.Add("", m)
	}
	return ve
}

func compile(schema map[string]any) (*jsonschema.Schema, error) {
	// Round-trip through JSON so the compiler sees plain JSON values.
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	if err := c.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return c.Compile("schema.json")
}

// flatten walks a validation error tree collecting leaf messages with
// their instance locations.
func flatten(e *jsonschema.ValidationError, out []string) []string {
	if len(e.Causes) == 0 {
		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return append(out, fmt.Sprintf("%s: %s", loc, e.Message))
	}
	for _, cause := range e.Causes {
		out = flatten(cause, out)
	}
	return out
}

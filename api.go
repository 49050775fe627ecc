package gocanonizer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/benthepsychologist/go-canonizer/diff"
	"github.com/benthepsychologist/go-canonizer/patch"
	"github.com/benthepsychologist/go-canonizer/ref"
	"github.com/benthepsychologist/go-canonizer/registry"
	"github.com/benthepsychologist/go-canonizer/transform"
	"github.com/benthepsychologist/go-canonizer/validate"
)

// activeRoot resolves the registry root for an operation. When the
// CANONIZER_REGISTRY_ROOT override names a store directly, discovery is
// skipped entirely and resolution runs rootless against the override.
func activeRoot(opts Options) (*registry.Root, error) {
	if os.Getenv(registry.EnvRegistryRoot) != "" {
		return nil, nil
	}
	return registry.FindRoot(opts.StartDir)
}

// DiffRefs loads two schema versions from the active registry root and
// computes the structural diff between them.
func DiffRefs(fromRef, toRef string, opts Options) (*diff.Diff, error) {
	root, err := activeRoot(opts)
	if err != nil {
		return nil, err
	}

	from, err := loadSchema(fromRef, root)
	if err != nil {
		return nil, err
	}
	to, err := loadSchema(toRef, root)
	if err != nil {
		return nil, err
	}

	return diff.Schemas(from, to), nil
}

// PatchTransform resolves a transform in the active registry root,
// verifies it, and applies the auto-patchable changes of a schema diff
// to its body. With opts.Write set, a successful patch is persisted to
// the transform's body and sidecar files in place.
func PatchTransform(transformRef string, d *diff.Diff, opts Options) (*patch.Result, error) {
	root, err := activeRoot(opts)
	if err != nil {
		return nil, err
	}

	tr, err := ref.ParseTransformRef(transformRef)
	if err != nil {
		return nil, err
	}
	metaPath, err := registry.ResolveTransform(tr, root, true)
	if err != nil {
		return nil, err
	}

	tf, err := transform.Load(metaPath)
	if err != nil {
		return nil, err
	}

	result, err := patch.Apply(tf.Body, tf.Meta, d, !opts.NoBumpVersion)
	if err != nil {
		return nil, err
	}

	if opts.Write && result.Success {
		if err := os.WriteFile(tf.BodyPath, []byte(result.UpdatedBody), 0o644); err != nil {
			return nil, fmt.Errorf("write patched body: %w", err)
		}
		if result.UpdatedMeta != nil {
			if err := transform.SaveMeta(result.UpdatedMeta, tf.MetaPath); err != nil {
				return nil, fmt.Errorf("write patched sidecar: %w", err)
			}
		}
	}

	return result, nil
}

// Canonicalize runs a raw document through a transform: load and verify
// the transform, validate the input against its source schema, evaluate
// the expression, and validate the output against the canonical schema.
// Either validation step can be skipped via Options.
func Canonicalize(ctx context.Context, document any, transformRef string, opts Options) (any, error) {
	if opts.Evaluator == nil {
		return nil, fmt.Errorf("canonicalize: no evaluator configured")
	}

	root, err := activeRoot(opts)
	if err != nil {
		return nil, err
	}

	tr, err := ref.ParseTransformRef(transformRef)
	if err != nil {
		return nil, err
	}
	metaPath, err := registry.ResolveTransform(tr, root, true)
	if err != nil {
		return nil, err
	}
	tf, err := transform.Load(metaPath)
	if err != nil {
		return nil, err
	}

	v := opts.validator()

	if !opts.SkipInputValidation {
		if err := validateAgainst(v, document, tf.Meta.FromSchema, root, "input"); err != nil {
			return nil, err
		}
	}

	output, err := opts.Evaluator.Evaluate(ctx, tf.Body, document)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", tr, err)
	}

	if !opts.SkipOutputValidation {
		if err := validateAgainst(v, output, tf.Meta.ToSchema, root, "output"); err != nil {
			return nil, err
		}
	}

	return output, nil
}

// loadSchema resolves a schema reference against root and decodes the
// stored JSON document.
func loadSchema(rawRef string, root *registry.Root) (map[string]any, error) {
	sr, err := ref.ParseSchemaRef(rawRef)
	if err != nil {
		return nil, err
	}
	path, err := registry.ResolveSchema(sr, root, true)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", sr, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", sr, err)
	}
	return doc, nil
}

// validateAgainst checks a document against a schema reference, labeling
// violations with the pipeline stage they belong to.
func validateAgainst(v validate.Validator, document any, schemaRef string, root *registry.Root, stage string) error {
	schema, err := loadSchema(schemaRef, root)
	if err != nil {
		return fmt.Errorf("load %s schema: %w", stage, err)
	}
	if msgs := v.Validate(document, schema); len(msgs) > 0 {
		return fmt.Errorf("%s document failed validation against %s:\n  %s",
			stage, schemaRef, strings.Join(msgs, "\n  "))
	}
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benthepsychologist/go-canonizer/eval"
	"github.com/benthepsychologist/go-canonizer/ref"
	"github.com/benthepsychologist/go-canonizer/registry"
	"github.com/benthepsychologist/go-canonizer/transform"
	"github.com/benthepsychologist/go-canonizer/validate"
)

var validateSchemaRef string

// validateCmd validates documents and transform artifacts
var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Validate documents against a schema, or audit stored transforms",
	Long: `With --schema, validate one or more JSON documents against a schema
from the local store.

Without --schema, audit every transform in the store: parse each
metadata sidecar, check its field constraints, verify the body checksum,
and execute any declared golden test fixtures through the evaluation
engine, failing on output mismatch. Transforms without fixtures skip
that step; running fixtures requires the canonizer-core binary.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateSchemaRef, "schema", "s", "", "Schema reference to validate documents against")
}

func runValidate(cmd *cobra.Command, args []string) error {
	if validateSchemaRef == "" {
		return auditTransforms(cmd.Context())
	}
	if len(args) == 0 {
		return fmt.Errorf("no documents to validate: pass one or more JSON files")
	}
	return validateDocuments(args)
}

func validateDocuments(files []string) error {
	root, err := registry.FindRoot(startDir)
	if err != nil {
		return err
	}
	sr, err := ref.ParseSchemaRef(validateSchemaRef)
	if err != nil {
		return err
	}
	schemaPath, err := registry.ResolveSchema(sr, root, true)
	if err != nil {
		return err
	}
	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		return err
	}
	var schema map[string]any
	if err := json.Unmarshal(schemaData, &schema); err != nil {
		return fmt.Errorf("parse schema %s: %w", sr, err)
	}

	v := validate.NewSchemaValidator()
	failed := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse document %s: %w", file, err)
		}

		if msgs := v.Validate(doc, schema); len(msgs) > 0 {
			failed++
			fmt.Println(errorStyle.Render("invalid: ") + file)
			for _, m := range msgs {
				fmt.Println(mutedStyle.Render("  " + m))
			}
		} else {
			fmt.Println(successStyle.Render("valid:   ") + file)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d document(s) failed validation", failed, len(files))
	}
	return nil
}

// auditTransforms loads every transform in the store, surfacing sidecar
// violations, checksum mismatches, and golden test failures.
func auditTransforms(ctx context.Context) error {
	root, err := registry.FindRoot(startDir)
	if err != nil {
		return err
	}

	sidecars, err := transform.Discover(root.StorePath())
	if err != nil {
		return err
	}
	if len(sidecars) == 0 {
		fmt.Println(mutedStyle.Render("No transforms in the store."))
		return nil
	}

	// The node engine is only spawned when some transform declares
	// fixtures, so an audit of fixture-less stores works without it.
	var evaluator transform.Evaluator
	var evaluatorErr error
	goldenEvaluator := func() (transform.Evaluator, error) {
		if evaluator == nil && evaluatorErr == nil {
			ev, err := eval.NewNodeEvaluator()
			if err != nil {
				evaluatorErr = err
			} else {
				evaluator = ev
			}
		}
		return evaluator, evaluatorErr
	}

	failed := 0
	for _, metaPath := range sidecars {
		tf, err := transform.Load(metaPath)
		if err != nil {
			failed++
			fmt.Println(errorStyle.Render("invalid: ") + metaPath)
			fmt.Println(mutedStyle.Render("  " + err.Error()))
			continue
		}
		if len(tf.Meta.Tests) > 0 {
			ev, err := goldenEvaluator()
			if err == nil {
				err = tf.RunGoldenTests(ctx, ev)
			}
			if err != nil {
				failed++
				fmt.Println(errorStyle.Render("invalid: ") + tf.Meta.ID + "@" + tf.Meta.Version)
				fmt.Println(mutedStyle.Render("  " + err.Error()))
				continue
			}
		}
		fmt.Println(successStyle.Render("valid:   ") + tf.Meta.ID + "@" + tf.Meta.Version)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d transform(s) failed validation", failed, len(sidecars))
	}
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	gocanonizer "github.com/benthepsychologist/go-canonizer"
	"github.com/benthepsychologist/go-canonizer/eval"
)

var (
	runTransformRef  string
	runSkipInputVal  bool
	runSkipOutputVal bool
)

// runCmd canonicalizes a document through a transform
var runCmd = &cobra.Command{
	Use:   "run [input.json]",
	Short: "Run a document through a transform",
	Long: `Canonicalize a raw JSON document: validate it against the transform's
source schema, evaluate the JSONata expression, validate the result
against the canonical schema, and print it.

The input document is read from the file argument, or stdin when no
argument is given. Evaluation requires the canonizer-core binary on
PATH (or CANONIZER_CORE_BIN).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runTransformRef, "transform", "t", "", "Transform reference to run (required)")
	runCmd.Flags().BoolVar(&runSkipInputVal, "skip-input-validation", false, "Do not validate the input document")
	runCmd.Flags().BoolVar(&runSkipOutputVal, "skip-output-validation", false, "Do not validate the output document")
	_ = runCmd.MarkFlagRequired("transform")
}

func runRun(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("read input document: %w", err)
	}

	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return fmt.Errorf("parse input document: %w", err)
	}

	evaluator, err := eval.NewNodeEvaluator()
	if err != nil {
		return err
	}

	output, err := gocanonizer.Canonicalize(cmd.Context(), document, runTransformRef, gocanonizer.Options{
		StartDir:             startDir,
		Evaluator:            evaluator,
		SkipInputValidation:  runSkipInputVal,
		SkipOutputValidation: runSkipOutputVal,
	})
	if err != nil {
		return err
	}

	logger.Debug("document canonicalized", zap.String("transform", runTransformRef))

	out, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

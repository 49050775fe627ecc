package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	gocanonizer "github.com/benthepsychologist/go-canonizer"
)

var (
	diffFrom   string
	diffTo     string
	diffOutput string
	diffJSON   bool
)

// diffCmd compares two schema versions
var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Diff two schema versions",
	Long: `Compare two schema versions from the local store and classify the
structural changes between them.

Optional field additions and inferred renames are marked auto-patchable
and can be applied to transforms with 'canonizer patch'. Removals, type
changes, and required-status changes need manual review.

Write the diff to a file with --output to feed it into 'canonizer patch'
later, or print it as JSON with --json.`,
	Args: cobra.NoArgs,
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffFrom, "from", "", "Source schema reference (required)")
	diffCmd.Flags().StringVar(&diffTo, "to", "", "Target schema reference (required)")
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", "", "Write the diff as JSON to this file")
	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "Print the diff as JSON instead of the colored summary")
	_ = diffCmd.MarkFlagRequired("from")
	_ = diffCmd.MarkFlagRequired("to")
}

func runDiff(cmd *cobra.Command, args []string) error {
	d, err := gocanonizer.DiffRefs(diffFrom, diffTo, gocanonizer.Options{StartDir: startDir})
	if err != nil {
		return err
	}

	logger.Debug("schemas diffed",
		zap.String("from", diffFrom),
		zap.String("to", diffTo),
		zap.Int("changes", len(d.Changes)))

	if diffOutput != "" {
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(diffOutput, data, 0o644); err != nil {
			return fmt.Errorf("write diff: %w", err)
		}
		fmt.Println(mutedStyle.Render("Diff written to " + diffOutput))
	}

	if diffJSON {
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(renderDiff(d))
	return nil
}

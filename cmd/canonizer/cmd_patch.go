package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	gocanonizer "github.com/benthepsychologist/go-canonizer"
	"github.com/benthepsychologist/go-canonizer/diff"
	"github.com/benthepsychologist/go-canonizer/patch"
)

var (
	patchTransformRef string
	patchFile         string
	patchFrom         string
	patchTo           string
	patchWrite        bool
	patchNoBump       bool
)

// patchCmd applies schema changes to a transform
var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Apply schema changes to a transform",
	Long: `Apply the auto-patchable changes of a schema diff to a transform body.

The diff comes either from a file produced by 'canonizer diff --output'
(--patch), or is computed on the fly from two schema references
(--from/--to).

Only optional field additions and renames are ever applied; everything
else is skipped and reported. On success the metadata revision is bumped
(1.0.3 becomes 1.1.0) and the body checksum refreshed. Nothing is
written unless --write is set.`,
	Args: cobra.NoArgs,
	RunE: runPatch,
}

func init() {
	patchCmd.Flags().StringVarP(&patchTransformRef, "transform", "t", "", "Transform reference to patch (required)")
	patchCmd.Flags().StringVarP(&patchFile, "patch", "p", "", "Diff file from 'canonizer diff --output'")
	patchCmd.Flags().StringVar(&patchFrom, "from", "", "Source schema reference (alternative to --patch)")
	patchCmd.Flags().StringVar(&patchTo, "to", "", "Target schema reference (alternative to --patch)")
	patchCmd.Flags().BoolVarP(&patchWrite, "write", "w", false, "Write the patched body and sidecar back to the store")
	patchCmd.Flags().BoolVar(&patchNoBump, "no-bump-version", false, "Keep the metadata version unchanged")
	_ = patchCmd.MarkFlagRequired("transform")
}

func runPatch(cmd *cobra.Command, args []string) error {
	d, err := loadPatchDiff()
	if err != nil {
		return err
	}

	opts := gocanonizer.Options{
		StartDir:      startDir,
		Write:         patchWrite,
		NoBumpVersion: patchNoBump,
	}
	result, err := gocanonizer.PatchTransform(patchTransformRef, d, opts)
	if err != nil {
		return err
	}

	printPatchResult(result)

	if !result.Success {
		if errors.Is(result.Err, patch.ErrNothingApplied) {
			return fmt.Errorf("nothing to apply: every change was skipped or needs manual review")
		}
		return result.Err
	}
	logger.Debug("transform patched",
		zap.String("transform", patchTransformRef),
		zap.Int("applied", len(result.Applied)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Bool("written", patchWrite))
	return nil
}

// loadPatchDiff reads the diff from --patch or computes it from --from/--to.
func loadPatchDiff() (*diff.Diff, error) {
	if patchFile != "" {
		data, err := os.ReadFile(patchFile)
		if err != nil {
			return nil, fmt.Errorf("read patch file: %w", err)
		}
		var d diff.Diff
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("parse patch file %s: %w", patchFile, err)
		}
		return &d, nil
	}
	if patchFrom == "" || patchTo == "" {
		return nil, fmt.Errorf("either --patch or both --from and --to are required")
	}
	return gocanonizer.DiffRefs(patchFrom, patchTo, gocanonizer.Options{StartDir: startDir})
}

func printPatchResult(result *patch.Result) {
	for _, c := range result.Applied {
		fmt.Println(addStyle.Render("applied: ") + string(c.Type) + " " + c.Path)
	}
	for _, c := range result.Skipped {
		fmt.Println(manualStyle.Render("skipped: ") + string(c.Type) + " " + c.Path)
	}
	if result.Success {
		fmt.Println(successStyle.Render(fmt.Sprintf("Patched %d change(s)", len(result.Applied))))
		if result.UpdatedMeta != nil {
			fmt.Println(mutedStyle.Render("  new version: " + result.UpdatedMeta.Version))
		}
		if !patchWrite {
			fmt.Println(mutedStyle.Render("  dry run: re-run with --write to persist"))
		}
	}
}

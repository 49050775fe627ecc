package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benthepsychologist/go-canonizer/registry"
)

var (
	importRef      string
	importRegistry string
)

// importCmd fetches artifacts into the local store
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a schema or transform into the local store",
	Long: `Fetch an artifact from a registry into the local store and pin its
hash in lock.json.

The --ref flag accepts both reference forms:
  iglu:com.google/gmail_email/jsonschema/1-0-0   (schema)
  email/gmail_to_jmap_lite@1.0.0                 (transform)
  email/gmail_to_jmap_lite@latest                (newest in the index)

The --registry flag names the source: an HTTP(S) base URL or a local
directory holding a registry checkout. Defaults to the official
canonizer registry. Transform imports verify the sidecar checksum
against the fetched body before anything is written.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importRef, "ref", "r", "", "Artifact reference to import (required)")
	importCmd.Flags().StringVar(&importRegistry, "registry", "", "Source registry: URL or local directory")
	_ = importCmd.MarkFlagRequired("ref")
}

func runImport(cmd *cobra.Command, args []string) error {
	root, err := registry.FindRoot(startDir)
	if err != nil {
		return err
	}

	fetcher, err := newFetcher(importRegistry)
	if err != nil {
		return err
	}

	resolvedRef, err := resolveImportRef(cmd.Context(), fetcher, importRef)
	if err != nil {
		return err
	}

	importer := registry.NewImporter(root, fetcher)
	relPath, err := importer.Import(cmd.Context(), resolvedRef)
	if err != nil {
		return err
	}

	logger.Debug("artifact imported",
		zap.String("ref", resolvedRef),
		zap.String("path", relPath))
	fmt.Println(successStyle.Render("Imported: ") + resolvedRef)
	fmt.Println(mutedStyle.Render("  store path: " + relPath))
	return nil
}

// resolveImportRef resolves a transform's @latest suffix against the
// source registry's index. Concrete references pass through untouched.
func resolveImportRef(ctx context.Context, fetcher registry.Fetcher, rawRef string) (string, error) {
	id, ok := strings.CutSuffix(rawRef, "@"+registry.LatestVersion)
	if !ok {
		return rawRef, nil
	}
	version, err := registry.ResolveVersion(ctx, fetcher, id, registry.LatestVersion)
	if err != nil {
		return "", err
	}
	return id + "@" + version, nil
}

// newFetcher picks the artifact source: a local checkout for directory
// paths, the HTTP client for everything else.
func newFetcher(source string) (registry.Fetcher, error) {
	if source != "" && !strings.Contains(source, "://") {
		return registry.NewDirFetcher(source)
	}
	return registry.NewClient(source, "")
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benthepsychologist/go-canonizer/registry"
)

// initCmd creates a fresh registry root
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a canonizer registry root",
	Long: `Create a .canonizer/ registry root in the target directory (the
--dir flag, or the working directory) with a default config.yaml, an
empty lock.json, and the schemas/ and transforms/ store subtrees.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := startDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		dir = cwd
	}

	root, err := registry.Init(dir)
	if err != nil {
		return err
	}

	logger.Debug("registry root created", zap.String("dir", root.Dir))
	fmt.Println(successStyle.Render("Initialized registry root: ") + root.Dir)
	return nil
}

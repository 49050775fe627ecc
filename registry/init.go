package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/benthepsychologist/go-canonizer/lockfile"
)

// Init creates a fresh registry root under dir: the .canonizer/ marker
// directory with a default config.yaml, an empty lock.json, and the
// schemas/ and transforms/ subtrees of the artifact store. Fails if a
// root already exists there.
func Init(dir string) (*Root, error) {
	rootDir := filepath.Join(dir, CanonizerDir)
	configPath := filepath.Join(rootDir, ConfigFilename)

	if _, err := os.Stat(configPath); err == nil {
		return nil, fmt.Errorf("registry root already initialized at %s", rootDir)
	}

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		return nil, err
	}

	store := cfg.StorePath(rootDir)
	for _, sub := range []string{SchemasDir, TransformsDir} {
		if err := os.MkdirAll(filepath.Join(store, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create artifact store: %w", err)
		}
	}

	lf := lockfile.New()
	if err := lf.WriteFile(filepath.Join(rootDir, lockfile.Filename)); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}
	return &Root{Dir: abs, Config: cfg}, nil
}

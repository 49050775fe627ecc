package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables consulted during resolution.
const (
	// EnvHome overrides the global per-user root location
	// (default ~/.config/canonizer).
	EnvHome = "CANONIZER_HOME"

	// EnvRegistryRoot, when set, names an artifact store directly and
	// bypasses root discovery at the artifact resolvers.
	EnvRegistryRoot = "CANONIZER_REGISTRY_ROOT"
)

// Root is a resolved registry root: the .canonizer/ directory and its
// loaded configuration. Roots are resolved once per operation and never
// cached across processes.
type Root struct {
	// Dir is the absolute path of the .canonizer/ directory.
	Dir string

	// Config is the loaded per-root configuration.
	Config *Config
}

// StorePath returns the absolute artifact store path for this root.
func (r *Root) StorePath() string {
	return r.Config.StorePath(r.Dir)
}

// LockPath returns the lock document path for this root.
func (r *Root) LockPath() string {
	return filepath.Join(r.Dir, "lock.json")
}

// FindLocalRoot walks the directory chain upward from startDir, inclusive
// of the filesystem root, looking for a .canonizer/ directory that also
// contains a config.yaml. The first hit wins. An empty startDir means the
// current working directory.
func FindLocalRoot(startDir string) (*Root, error) {
	if startDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		startDir = cwd
	}
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	current := abs
	for {
		root, err := openRoot(filepath.Join(current, CanonizerDir))
		if err == nil {
			return root, nil
		}
		// A marker whose config exists but fails to load is this
		// project's root; walking past it would let an ancestor or the
		// global root shadow the real problem.
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return nil, &NotFoundError{
		Kind: KindRoot,
		Path: filepath.Join(abs, CanonizerDir),
		Hint: fmt.Sprintf("no %s directory found in %s or any parent directory; run 'canonizer init' to create one", CanonizerDir, abs),
	}
}

// FindGlobalRoot opens the per-user global root: $CANONIZER_HOME if set,
// otherwise ~/.config/canonizer. The global root is a plain root
// directory, not a marker inside a project.
func FindGlobalRoot() (*Root, error) {
	home := os.Getenv(EnvHome)
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		home = filepath.Join(userHome, ".config", "canonizer")
	}

	root, err := openRoot(home)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, &NotFoundError{
			Kind: KindRoot,
			Path: filepath.Join(home, ConfigFilename),
			Hint: "no global canonizer config found; run 'canonizer init' in a project or create " + home,
		}
	}
	return root, nil
}

// FindRoot composes the conventional resolution chain: the local walk
// from startDir, then the global root, but only when no explicit startDir
// was supplied. Passing a non-empty startDir requests strict local-only
// semantics.
func FindRoot(startDir string) (*Root, error) {
	root, err := FindLocalRoot(startDir)
	if err == nil {
		return root, nil
	}
	if !errors.Is(err, ErrNotFound) || startDir != "" {
		return nil, err
	}
	if global, gerr := FindGlobalRoot(); gerr == nil {
		return global, nil
	}
	return nil, err
}

// openRoot loads a root at dir, requiring both the directory and its
// config file to exist. A missing directory or config file comes back
// wrapping os.ErrNotExist so callers can keep searching; a config that
// exists but fails to load does not.
func openRoot(dir string) (*Root, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", dir, os.ErrNotExist)
	}
	cfg, err := LoadConfig(filepath.Join(dir, ConfigFilename))
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &Root{Dir: abs, Config: cfg}, nil
}

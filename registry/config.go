package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known names within a registry root.
const (
	// CanonizerDir is the marker directory that makes a directory tree a
	// canonizer project.
	CanonizerDir = ".canonizer"

	// ConfigFilename is the configuration file inside CanonizerDir. A
	// marker directory without it is not a valid root.
	ConfigFilename = "config.yaml"

	// DefaultStoreDir is the default artifact store path relative to
	// CanonizerDir.
	DefaultStoreDir = "registry"

	// SchemasDir and TransformsDir are the artifact subtrees within the
	// store.
	SchemasDir    = "schemas"
	TransformsDir = "transforms"
)

// ModeLocal is the only supported registry resolution mode.
const ModeLocal = "local"

// Config is the per-root configuration document (config.yaml).
type Config struct {
	Registry RegistryConfig `yaml:"registry"`
}

// RegistryConfig is the registry section of the configuration.
type RegistryConfig struct {
	// Mode is the resolution mode. Only "local" is valid.
	Mode string `yaml:"mode"`

	// Root is the artifact store path relative to the .canonizer/
	// directory. Must not be absolute and must not traverse upward.
	Root string `yaml:"root"`
}

// DefaultConfig returns the configuration written by Init.
func DefaultConfig() *Config {
	return &Config{
		Registry: RegistryConfig{
			Mode: ModeLocal,
			Root: DefaultStoreDir,
		},
	}
}

// LoadConfig reads and validates a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Registry.Mode == "" {
		cfg.Registry.Mode = ModeLocal
	}
	if cfg.Registry.Root == "" {
		cfg.Registry.Root = DefaultStoreDir
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Registry.Mode != ModeLocal {
		return fmt.Errorf("unsupported registry mode %q: only %q is supported", c.Registry.Mode, ModeLocal)
	}
	root := c.Registry.Root
	if filepath.IsAbs(root) || strings.HasPrefix(root, "/") {
		return fmt.Errorf("registry root %q must be a relative path", root)
	}
	for _, seg := range strings.Split(filepath.ToSlash(root), "/") {
		if seg == ".." {
			return fmt.Errorf("registry root %q must not contain '..'", root)
		}
	}
	return nil
}

// Save writes the configuration to a file, creating parent directories.
func (c *Config) Save(path string) error {
	if err := c.validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// StorePath returns the absolute artifact store path for a root directory
// (the .canonizer/ directory).
func (c *Config) StorePath(rootDir string) string {
	return filepath.Join(rootDir, filepath.FromSlash(c.Registry.Root))
}

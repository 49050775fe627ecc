package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitCreatesRootLayout(t *testing.T) {
	dir := t.TempDir()

	root, err := Init(dir)
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	wantDir := filepath.Join(dir, CanonizerDir)
	if root.Dir != wantDir {
		t.Errorf("root.Dir = %q, want %q", root.Dir, wantDir)
	}
	for _, p := range []string{
		filepath.Join(wantDir, ConfigFilename),
		filepath.Join(wantDir, "lock.json"),
		filepath.Join(wantDir, DefaultStoreDir, SchemasDir),
		filepath.Join(wantDir, DefaultStoreDir, TransformsDir),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}
}

func TestInitRefusesExistingRoot(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir); err != nil {
		t.Fatalf("first Init() error: %v", err)
	}
	if _, err := Init(dir); err == nil {
		t.Error("second Init() should fail on an existing root")
	}
}

func TestFindLocalRootWalksUpward(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	nested := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	root, err := FindLocalRoot(nested)
	if err != nil {
		t.Fatalf("FindLocalRoot() error: %v", err)
	}
	if root.Dir != filepath.Join(dir, CanonizerDir) {
		t.Errorf("root.Dir = %q, want root at %q", root.Dir, dir)
	}
}

func TestFindLocalRootIgnoresMarkerWithoutConfig(t *testing.T) {
	dir := t.TempDir()
	// A bare .canonizer directory without config.yaml is not a root.
	if err := os.MkdirAll(filepath.Join(dir, CanonizerDir), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := FindLocalRoot(dir)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("FindLocalRoot() error = %v, want ErrNotFound", err)
	}
}

func TestFindLocalRootSurfacesInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir); err != nil {
		t.Fatal(err)
	}

	// Nested project with a broken config must report its own error,
	// not get shadowed by the valid ancestor root.
	nested := filepath.Join(dir, "sub")
	if err := os.MkdirAll(filepath.Join(nested, CanonizerDir), 0o755); err != nil {
		t.Fatal(err)
	}
	badConfig := filepath.Join(nested, CanonizerDir, ConfigFilename)
	if err := os.WriteFile(badConfig, []byte("registry:\n  mode: remote\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := FindLocalRoot(nested)
	if err == nil {
		t.Fatal("FindLocalRoot() should fail on the broken nested config")
	}
	if errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want a config error rather than not-found", err)
	}
	if !strings.Contains(err.Error(), "mode") {
		t.Errorf("error = %v, want the config violation surfaced", err)
	}
}

func TestFindRootDoesNotFallBackPastInvalidConfig(t *testing.T) {
	global := t.TempDir()
	if err := DefaultConfig().Save(filepath.Join(global, ConfigFilename)); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvHome, global)

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, CanonizerDir), 0o755); err != nil {
		t.Fatal(err)
	}
	badConfig := filepath.Join(dir, CanonizerDir, ConfigFilename)
	if err := os.WriteFile(badConfig, []byte("registry:\n  root: /abs\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// The broken local config must win over the valid global root.
	_, err := FindRoot(dir)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("FindRoot() error = %v, want the local config error", err)
	}
	if !strings.Contains(err.Error(), "relative") {
		t.Errorf("FindRoot() error = %v, want the root-path violation surfaced", err)
	}
}

func TestFindLocalRootNotFound(t *testing.T) {
	_, err := FindLocalRoot(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("FindLocalRoot() error = %v, want ErrNotFound", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error is not *NotFoundError: %v", err)
	}
	if nf.Kind != KindRoot {
		t.Errorf("Kind = %v, want KindRoot", nf.Kind)
	}
}

func TestFindGlobalRootUsesEnvHome(t *testing.T) {
	home := t.TempDir()
	cfg := DefaultConfig()
	if err := cfg.Save(filepath.Join(home, ConfigFilename)); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvHome, home)

	root, err := FindGlobalRoot()
	if err != nil {
		t.Fatalf("FindGlobalRoot() error: %v", err)
	}
	if root.Dir != home {
		t.Errorf("root.Dir = %q, want %q", root.Dir, home)
	}
}

func TestFindRootPrefersLocal(t *testing.T) {
	global := t.TempDir()
	if err := DefaultConfig().Save(filepath.Join(global, ConfigFilename)); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvHome, global)

	local := t.TempDir()
	if _, err := Init(local); err != nil {
		t.Fatal(err)
	}

	root, err := FindRoot(local)
	if err != nil {
		t.Fatalf("FindRoot() error: %v", err)
	}
	if root.Dir != filepath.Join(local, CanonizerDir) {
		t.Errorf("root.Dir = %q, want local root, not global %q", root.Dir, global)
	}
}

func TestFindRootExplicitStartDirIsStrict(t *testing.T) {
	global := t.TempDir()
	if err := DefaultConfig().Save(filepath.Join(global, ConfigFilename)); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvHome, global)

	// An explicit start directory with no local root must not fall back
	// to the global root.
	_, err := FindRoot(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("FindRoot() error = %v, want ErrNotFound", err)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{"defaults", "registry: {}\n", false},
		{"explicit local", "registry:\n  mode: local\n  root: store\n", false},
		{"remote mode rejected", "registry:\n  mode: remote\n", true},
		{"absolute root rejected", "registry:\n  root: /etc/registry\n", true},
		{"parent traversal rejected", "registry:\n  root: ../outside\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFilename)
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}

			cfg, err := LoadConfig(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg.Registry.Mode != ModeLocal {
				t.Errorf("Mode = %q, want %q", cfg.Registry.Mode, ModeLocal)
			}
		})
	}
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFilename)
	in := &Config{Registry: RegistryConfig{Mode: ModeLocal, Root: "artifacts/store"}}
	if err := in.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	out, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if out.Registry.Root != in.Registry.Root {
		t.Errorf("Root = %q, want %q", out.Registry.Root, in.Registry.Root)
	}
}

package transform

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/benthepsychologist/go-canonizer/ref"
)

// Transform is a fully loaded artifact: verified metadata plus body source.
type Transform struct {
	Meta     *Meta
	Body     string
	MetaPath string
	BodyPath string
}

// Load reads a transform from its metadata sidecar, validates every field,
// loads the body, and verifies the body against the sidecar checksum.
//
// A missing sidecar or body surfaces as a wrapped fs.ErrNotExist; a
// checksum failure surfaces as *ChecksumMismatchError and must not be
// suppressed by callers.
func Load(metaPath string) (*Transform, error) {
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("read transform metadata: %w", err)
	}

	meta, err := ParseMeta(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", metaPath, err)
	}

	bodyPath := filepath.Join(filepath.Dir(metaPath), meta.SpecPath)
	body, err := os.ReadFile(bodyPath)
	if err != nil {
		return nil, fmt.Errorf("read transform body: %w", err)
	}

	if err := meta.VerifyChecksum(metaPath); err != nil {
		return nil, err
	}

	return &Transform{
		Meta:     meta,
		Body:     string(body),
		MetaPath: metaPath,
		BodyPath: bodyPath,
	}, nil
}

// ParseMeta parses and validates sidecar YAML.
func ParseMeta(data []byte) (*Meta, error) {
	var meta Meta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("invalid sidecar YAML: %w", err)
	}
	if meta.Engine == "" {
		meta.Engine = EngineJSONata
	}
	if meta.Status == "" {
		meta.Status = StatusDraft
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return &meta, nil
}

// SaveMeta writes a metadata sidecar to disk.
func SaveMeta(meta *Meta, path string) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(meta)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create sidecar directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Discover returns the sorted paths of every metadata sidecar under baseDir.
func Discover(baseDir string) ([]string, error) {
	if _, err := os.Stat(baseDir); err != nil {
		return nil, fmt.Errorf("discover transforms: %w", err)
	}

	var paths []string
	err := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == ref.MetaFilename {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Fetcher retrieves registry files by their registry-relative path. It is
// the seam between the import workflow and wherever artifacts actually
// live: a registry checkout on disk, or a remote registry over HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, relPath string) ([]byte, error)
}

// DirFetcher serves registry files from a local directory, typically a
// checkout of a registry repository.
type DirFetcher struct {
	Dir string
}

// NewDirFetcher creates a fetcher over a registry directory. Returns an
// error if the directory does not exist.
func NewDirFetcher(dir string) (*DirFetcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("registry directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("registry path is not a directory: %s", dir)
	}
	return &DirFetcher{Dir: dir}, nil
}

// Fetch reads a registry-relative file. A missing file is a *NotFoundError.
func (f *DirFetcher) Fetch(_ context.Context, relPath string) ([]byte, error) {
	path := filepath.Join(f.Dir, filepath.FromSlash(relPath))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Kind: KindArtifact, Path: path}
		}
		return nil, err
	}
	return data, nil
}

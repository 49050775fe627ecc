package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/benthepsychologist/go-canonizer/lockfile"
	"github.com/benthepsychologist/go-canonizer/ref"
	"github.com/benthepsychologist/go-canonizer/transform"
)

// Importer copies artifacts from a Fetcher into a root's local store
// and records their hashes in the root's lock file.
type Importer struct {
	Root    *Root
	Fetcher Fetcher
}

// NewImporter creates an importer writing into root and reading from f.
func NewImporter(root *Root, f Fetcher) *Importer {
	return &Importer{Root: root, Fetcher: f}
}

// Import fetches the artifact named by rawRef, detecting whether it is
// a schema or a transform reference. It returns the store-relative
// path of the imported artifact body.
func (im *Importer) Import(ctx context.Context, rawRef string) (string, error) {
	kind, err := ref.DetectKind(rawRef)
	if err != nil {
		return "", err
	}
	switch kind {
	case ref.KindSchema:
		sr, err := ref.ParseSchemaRef(rawRef)
		if err != nil {
			return "", err
		}
		return im.ImportSchema(ctx, sr)
	default:
		tr, err := ref.ParseTransformRef(rawRef)
		if err != nil {
			return "", err
		}
		return im.ImportTransform(ctx, tr)
	}
}

// ImportSchema fetches one schema document into the store and locks
// its hash. It returns the store-relative path of the schema file.
func (im *Importer) ImportSchema(ctx context.Context, sr ref.SchemaRef) (string, error) {
	relPath := sr.Path()
	data, err := im.Fetcher.Fetch(ctx, relPath)
	if err != nil {
		return "", fmt.Errorf("fetch schema %s: %w", sr, err)
	}

	if err := im.writeStoreFile(relPath, data); err != nil {
		return "", err
	}

	err = im.updateLock(func(lf *lockfile.Lockfile) {
		lf.AddSchema(sr.String(), relPath, data)
	})
	if err != nil {
		return "", err
	}
	return relPath, nil
}

// ImportTransform fetches one transform's sidecar and body into the
// store, verifies the sidecar checksum against the fetched body, and
// locks the body hash. It returns the store-relative path of the body.
func (im *Importer) ImportTransform(ctx context.Context, tr ref.TransformRef) (string, error) {
	metaRel := tr.Path()
	bodyRel := tr.BodyPath()

	metaData, err := im.Fetcher.Fetch(ctx, metaRel)
	if err != nil {
		return "", fmt.Errorf("fetch transform sidecar %s: %w", tr, err)
	}
	meta, err := transform.ParseMeta(metaData)
	if err != nil {
		return "", fmt.Errorf("transform %s: %w", tr, err)
	}

	bodyData, err := im.Fetcher.Fetch(ctx, bodyRel)
	if err != nil {
		return "", fmt.Errorf("fetch transform body %s: %w", tr, err)
	}

	computed := transform.ChecksumBytes(bodyData)
	if computed != meta.Checksum.JSONataSHA256 {
		return "", &transform.ChecksumMismatchError{
			Path:     bodyRel,
			Expected: meta.Checksum.JSONataSHA256,
			Computed: computed,
		}
	}

	if err := im.writeStoreFile(metaRel, metaData); err != nil {
		return "", err
	}
	if err := im.writeStoreFile(bodyRel, bodyData); err != nil {
		return "", err
	}

	err = im.updateLock(func(lf *lockfile.Lockfile) {
		lf.AddTransform(tr.String(), bodyRel, bodyData)
	})
	if err != nil {
		return "", err
	}
	return bodyRel, nil
}

// writeStoreFile writes data under the root's store at relPath,
// creating parent directories.
func (im *Importer) writeStoreFile(relPath string, data []byte) error {
	dest := filepath.Join(im.Root.StorePath(), filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

// updateLock performs a read-modify-write of the root's lock file.
// A missing lock file starts from an empty one.
func (im *Importer) updateLock(mutate func(*lockfile.Lockfile)) error {
	lockPath := im.Root.LockPath()

	lf, err := lockfile.ReadFile(lockPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		lf = lockfile.New()
	}
	mutate(lf)
	return lf.WriteFile(lockPath)
}

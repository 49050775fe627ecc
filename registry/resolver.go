package registry

import (
	"os"
	"path/filepath"

	"github.com/benthepsychologist/go-canonizer/ref"
)

// storePath picks the artifact store for a resolution: the
// CANONIZER_REGISTRY_ROOT override when present, otherwise the store of
// the supplied root, otherwise the store of a freshly resolved root.
func storePath(root *Root) (string, error) {
	if override := os.Getenv(EnvRegistryRoot); override != "" {
		return filepath.Abs(override)
	}
	if root == nil {
		resolved, err := FindRoot("")
		if err != nil {
			return "", err
		}
		root = resolved
	}
	return root.StorePath(), nil
}

// ResolveSchema maps a schema reference to an absolute file path within
// the registry store. Path construction is pure; the filesystem is
// consulted only when mustExist is set, in which case a missing file is a
// *NotFoundError with an import hint.
func ResolveSchema(r ref.SchemaRef, root *Root, mustExist bool) (string, error) {
	store, err := storePath(root)
	if err != nil {
		return "", err
	}
	path := filepath.Join(store, filepath.FromSlash(r.Path()))

	if mustExist {
		if _, err := os.Stat(path); err != nil {
			return "", &NotFoundError{
				Kind: KindSchema,
				Ref:  r.String(),
				Path: path,
				Hint: "import it with: canonizer import --ref " + r.String(),
			}
		}
	}
	return path, nil
}

// ResolveTransform maps a transform reference to the absolute path of its
// metadata sidecar.
func ResolveTransform(r ref.TransformRef, root *Root, mustExist bool) (string, error) {
	store, err := storePath(root)
	if err != nil {
		return "", err
	}
	path := filepath.Join(store, filepath.FromSlash(r.Path()))

	if mustExist {
		if _, err := os.Stat(path); err != nil {
			return "", &NotFoundError{
				Kind: KindTransform,
				Ref:  r.String(),
				Path: path,
				Hint: "import it with: canonizer import --ref " + r.String(),
			}
		}
	}
	return path, nil
}

// ResolveBody maps a transform reference to the absolute path of its body
// file, the fixed-name sibling of the metadata sidecar.
func ResolveBody(r ref.TransformRef, root *Root, mustExist bool) (string, error) {
	store, err := storePath(root)
	if err != nil {
		return "", err
	}
	path := filepath.Join(store, filepath.FromSlash(r.BodyPath()))

	if mustExist {
		if _, err := os.Stat(path); err != nil {
			return "", &NotFoundError{
				Kind: KindTransform,
				Ref:  r.String(),
				Path: path,
				Hint: "import it with: canonizer import --ref " + r.String(),
			}
		}
	}
	return path, nil
}

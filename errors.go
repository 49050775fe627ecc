package gocanonizer

import (
	"github.com/benthepsychologist/go-canonizer/ref"
	"github.com/benthepsychologist/go-canonizer/registry"
	"github.com/benthepsychologist/go-canonizer/transform"
)

// Sentinel errors surfaced by the high-level API, re-exported from the
// subpackages that produce them so callers can errors.Is at this
// boundary without importing internals.
var (
	// ErrNotFound matches any missing root, schema, or transform.
	ErrNotFound = registry.ErrNotFound

	// ErrInvalidReference matches malformed schema or transform references.
	ErrInvalidReference = ref.ErrInvalidReference
)

// ChecksumMismatchError reports a transform body that does not match its
// sidecar checksum. Match with errors.As.
type ChecksumMismatchError = transform.ChecksumMismatchError

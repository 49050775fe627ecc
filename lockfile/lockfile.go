package lockfile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// CurrentVersion is the lock document format version written by this package.
const CurrentVersion = "1"

// HashPrefix is the algorithm prefix carried by every lock entry hash.
const HashPrefix = "sha256:"

// Lockfile pins schema and transform references to (path, content hash)
// pairs for reproducibility and tamper detection.
//
// The document is persisted as a whole: read-modify-write, never
// incremental. Two processes mutating the same lockfile race and the last
// writer wins; multi-process safety is out of scope.
type Lockfile struct {
	// Version is the lock document format version.
	Version string `json:"version"`

	// UpdatedAt is the ISO-8601 timestamp of the last write.
	// Refreshed on every save.
	UpdatedAt string `json:"updatedAt,omitempty"`

	// Schemas maps schema reference strings to lock entries.
	Schemas map[string]Entry `json:"schemas"`

	// Transforms maps transform reference strings to lock entries.
	// Transform hashes cover the transform body file, not the sidecar.
	Transforms map[string]Entry `json:"transforms"`
}

// Entry is a pinned (path, content hash) pair recorded for one reference.
type Entry struct {
	// Path is the registry-relative path of the locked artifact.
	Path string `json:"path"`

	// Hash is the content hash in the form "sha256:" + 64 lowercase hex chars.
	Hash string `json:"hash"`
}

// NewEntry creates a validated Entry.
func NewEntry(path, hash string) (Entry, error) {
	if err := ValidateHash(hash); err != nil {
		return Entry{}, err
	}
	return Entry{Path: path, Hash: hash}, nil
}

// ValidateHash checks that a hash string is "sha256:" followed by exactly
// 64 hex characters.
func ValidateHash(hash string) error {
	if len(hash) != len(HashPrefix)+sha256.Size*2 || hash[:len(HashPrefix)] != HashPrefix {
		return fmt.Errorf("invalid hash %q: must be %s<64 hex chars>", hash, HashPrefix)
	}
	if _, err := hex.DecodeString(hash[len(HashPrefix):]); err != nil {
		return fmt.Errorf("invalid hash %q: %w", hash, err)
	}
	return nil
}

// HashBytes computes the lock-entry hash of raw content bytes.
func HashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return HashPrefix + hex.EncodeToString(sum[:])
}

// New creates an empty lockfile.
func New() *Lockfile {
	return &Lockfile{
		Version:    CurrentVersion,
		Schemas:    make(map[string]Entry),
		Transforms: make(map[string]Entry),
	}
}

// AddSchema records or overwrites the lock entry for a schema reference.
// The hash covers the raw bytes of the schema file.
func (l *Lockfile) AddSchema(schemaRef, relPath string, content []byte) {
	l.Schemas[schemaRef] = Entry{Path: relPath, Hash: HashBytes(content)}
}

// AddTransform records or overwrites the lock entry for a transform
// reference. The hash covers the raw bytes of the transform body file,
// not the metadata sidecar.
func (l *Lockfile) AddTransform(transformRef, relPath string, bodyContent []byte) {
	l.Transforms[transformRef] = Entry{Path: relPath, Hash: HashBytes(bodyContent)}
}

// GetSchema returns the lock entry for a schema reference.
func (l *Lockfile) GetSchema(schemaRef string) (Entry, bool) {
	e, ok := l.Schemas[schemaRef]
	return e, ok
}

// GetTransform returns the lock entry for a transform reference.
func (l *Lockfile) GetTransform(transformRef string) (Entry, bool) {
	e, ok := l.Transforms[transformRef]
	return e, ok
}

// VerifySchema reports whether content matches the locked hash for a
// schema reference. Unknown references verify as false.
func (l *Lockfile) VerifySchema(schemaRef string, content []byte) bool {
	e, ok := l.Schemas[schemaRef]
	return ok && e.Hash == HashBytes(content)
}

// VerifyTransform reports whether body content matches the locked hash
// for a transform reference. Unknown references verify as false.
func (l *Lockfile) VerifyTransform(transformRef string, bodyContent []byte) bool {
	e, ok := l.Transforms[transformRef]
	return ok && e.Hash == HashBytes(bodyContent)
}

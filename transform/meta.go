// Package transform loads and verifies transform artifacts.
//
// A transform is a pair of files stored side by side in the registry: the
// body (spec.jsonata, the expression source handed to the evaluation
// engine) and a metadata sidecar (spec.meta.yaml) describing identity,
// version, source and target schemas, provenance, and golden test
// fixtures.
//
// The sidecar carries a SHA-256 checksum of the body. Load verifies the
// live body against that checksum and rejects the artifact as tampered on
// mismatch; that failure is fatal to the calling operation and must never
// be suppressed.
package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/benthepsychologist/go-canonizer/ref"
	"github.com/benthepsychologist/go-canonizer/validate"
)

// Transform lifecycle statuses.
const (
	StatusDraft      = "draft"
	StatusStable     = "stable"
	StatusDeprecated = "deprecated"
)

// EngineJSONata is the only supported transform engine.
const EngineJSONata = "jsonata"

// Fixture is a golden test fixture reference: paths to an input document
// and the expected output, relative to the sidecar.
type Fixture struct {
	Input  string `yaml:"input" json:"input"`
	Expect string `yaml:"expect" json:"expect"`
}

// Provenance records authorship of a transform.
type Provenance struct {
	// Author is a name and email, e.g. "Jane Doe <jane@example.com>".
	Author string `yaml:"author" json:"author"`

	// CreatedUTC is the creation timestamp. Must carry a timezone.
	CreatedUTC time.Time `yaml:"created_utc" json:"created_utc"`
}

// Checksum pins the transform body for integrity verification.
type Checksum struct {
	// JSONataSHA256 is the unprefixed SHA-256 hex digest of the body file.
	JSONataSHA256 string `yaml:"jsonata_sha256" json:"jsonata_sha256"`
}

// Compat optionally declares a compatible input schema version range.
type Compat struct {
	FromSchemaRange string `yaml:"from_schema_range,omitempty" json:"from_schema_range,omitempty"`
}

// Meta is the transform metadata sidecar (spec.meta.yaml).
type Meta struct {
	// ID is the slash-delimited lowercase hierarchical identifier,
	// e.g. "email/gmail_to_jmap_lite".
	ID string `yaml:"id" json:"id"`

	// Version is the dot-triplet version (MODEL.REVISION.ADDITION).
	Version string `yaml:"version" json:"version"`

	// Engine is the transform engine. Only "jsonata" is supported.
	Engine string `yaml:"engine,omitempty" json:"engine,omitempty"`

	// FromSchema is the input schema reference (iglu wire form).
	FromSchema string `yaml:"from_schema" json:"from_schema"`

	// ToSchema is the output schema reference (iglu wire form).
	ToSchema string `yaml:"to_schema" json:"to_schema"`

	// SpecPath is the body file path relative to this sidecar.
	SpecPath string `yaml:"spec_path" json:"spec_path"`

	// Tests are golden fixture pairs.
	Tests []Fixture `yaml:"tests,omitempty" json:"tests,omitempty"`

	// Checksum pins the body file.
	Checksum Checksum `yaml:"checksum" json:"checksum"`

	// Compat optionally declares schema version compatibility.
	Compat *Compat `yaml:"compat,omitempty" json:"compat,omitempty"`

	// Provenance records authorship.
	Provenance Provenance `yaml:"provenance" json:"provenance"`

	// Status is the lifecycle status: draft, stable, or deprecated.
	Status string `yaml:"status,omitempty" json:"status,omitempty"`
}

var (
	idRegex       = regexp.MustCompile(`^[a-z0-9_]+(/[a-z0-9_]+)*$`)
	checksumRegex = regexp.MustCompile(`^[a-f0-9]{64}$`)
)

// Validate checks every field constraint, collecting all violations.
func (m *Meta) Validate() error {
	errs := &validate.ValidationErrors{}

	if !idRegex.MatchString(m.ID) {
		errs.Addf("id", "invalid transform id %q: must be slash-delimited lowercase segments", m.ID)
	}
	if _, err := ref.ParseVersion(m.Version); err != nil {
		errs.Addf("version", "%v", err)
	}
	if m.Engine != "" && m.Engine != EngineJSONata {
		errs.Addf("engine", "unsupported engine %q", m.Engine)
	}
	if _, err := ref.ParseSchemaRef(m.FromSchema); err != nil {
		errs.Addf("from_schema", "%v", err)
	}
	if _, err := ref.ParseSchemaRef(m.ToSchema); err != nil {
		errs.Addf("to_schema", "%v", err)
	}
	if filepath.Ext(m.SpecPath) != ".jsonata" {
		errs.Addf("spec_path", "must point to a .jsonata file, got %q", m.SpecPath)
	}
	if !checksumRegex.MatchString(m.Checksum.JSONataSHA256) {
		errs.Add("checksum.jsonata_sha256", "must be exactly 64 lowercase hex characters")
	}
	if m.Provenance.Author == "" {
		errs.Add("provenance.author", "required")
	}
	if m.Provenance.CreatedUTC.IsZero() {
		errs.Add("provenance.created_utc", "required")
	}
	switch m.Status {
	case "", StatusDraft, StatusStable, StatusDeprecated:
	default:
		errs.Addf("status", "invalid status %q", m.Status)
	}
	for i, f := range m.Tests {
		if f.Input == "" {
			errs.Addf(fmt.Sprintf("tests[%d].input", i), "required")
		}
		if f.Expect == "" {
			errs.Addf(fmt.Sprintf("tests[%d].expect", i), "required")
		}
	}

	return errs.ToError()
}

// Ref returns the transform reference for this metadata.
func (m *Meta) Ref() (ref.TransformRef, error) {
	return ref.ParseTransformRef(m.ID + "@" + m.Version)
}

// ChecksumBytes returns the unprefixed hex sha256 digest of a transform
// body, as recorded in sidecar checksum fields.
func ChecksumBytes(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// ComputeChecksum hashes the body file referenced by SpecPath, resolved
// relative to the sidecar location. Returns the unprefixed hex digest.
func (m *Meta) ComputeChecksum(metaPath string) (string, error) {
	bodyPath := filepath.Join(filepath.Dir(metaPath), m.SpecPath)
	content, err := os.ReadFile(bodyPath)
	if err != nil {
		return "", fmt.Errorf("read transform body: %w", err)
	}
	return ChecksumBytes(content), nil
}

// VerifyChecksum checks the live body file against the sidecar's pinned
// checksum. A mismatch is returned as a *ChecksumMismatchError.
func (m *Meta) VerifyChecksum(metaPath string) error {
	computed, err := m.ComputeChecksum(metaPath)
	if err != nil {
		return err
	}
	if computed != m.Checksum.JSONataSHA256 {
		return &ChecksumMismatchError{
			Path:     filepath.Join(filepath.Dir(metaPath), m.SpecPath),
			Expected: m.Checksum.JSONataSHA256,
			Computed: computed,
		}
	}
	return nil
}

// ChecksumMismatchError indicates a transform body that does not match its
// sidecar checksum: either tampering or a stale sidecar. It is fatal to
// the calling operation.
type ChecksumMismatchError struct {
	Path     string
	Expected string
	Computed string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, computed %s (the body may have been modified without updating the sidecar)",
		e.Path, e.Expected, e.Computed)
}

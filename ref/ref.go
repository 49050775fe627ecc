// Package ref provides strongly-typed, validated references to registry artifacts.
//
// All types in this package are immutable value types that validate at
// construction time. Zero values are generally invalid - use ParseSchemaRef,
// ParseTransformRef, or the Must variants to create valid instances.
//
// # Reference Forms
//
// Two wire forms are supported:
//   - Schema: "iglu:{vendor}/{name}/jsonschema/{X-Y-Z}"
//   - Transform: "{slash/delimited/id}@{X.Y.Z}"
//
// Transform versions tolerate both dot and dash separators per segment so
// that SchemaVer-style inputs ("1-0-0") are accepted alongside SemVer.
//
// Reference-to-path mapping is a pure, invertible function: parsing the
// components back out of a mapped path reconstructs the original reference.
package ref

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// ErrInvalidReference indicates a reference string that does not match
// either wire form. It is never the result of a partial parse.
var ErrInvalidReference = fmt.Errorf("invalid reference")

var (
	schemaRefRegex    = regexp.MustCompile(`^iglu:([a-zA-Z0-9._-]+)/([a-zA-Z0-9_-]+)/jsonschema/(\d+-\d+-\d+)$`)
	transformRefRegex = regexp.MustCompile(`^([a-zA-Z0-9_/-]+)@(\d+[.\-]\d+[.\-]\d+)$`)
)

// SchemaRef identifies one version of a schema in the registry.
// Format: iglu:{vendor}/{name}/jsonschema/{version} where version is a
// dash-triplet (SchemaVer MODEL-REVISION-ADDITION, e.g. "1-0-0").
type SchemaRef struct {
	vendor  string
	name    string
	version string
}

// ParseSchemaRef parses a schema reference string.
func ParseSchemaRef(s string) (SchemaRef, error) {
	m := schemaRefRegex.FindStringSubmatch(s)
	if m == nil {
		return SchemaRef{}, fmt.Errorf("%w: %q: expected iglu:vendor/name/jsonschema/X-Y-Z", ErrInvalidReference, s)
	}
	return SchemaRef{vendor: m[1], name: m[2], version: m[3]}, nil
}

// MustSchemaRef parses a schema reference or panics. Use only for constants/tests.
func MustSchemaRef(s string) SchemaRef {
	r, err := ParseSchemaRef(s)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the wire form of the reference.
func (r SchemaRef) String() string {
	return fmt.Sprintf("iglu:%s/%s/jsonschema/%s", r.vendor, r.name, r.version)
}

// Vendor returns the vendor component (e.g. "com.google").
func (r SchemaRef) Vendor() string { return r.vendor }

// Name returns the schema name component.
func (r SchemaRef) Name() string { return r.name }

// Version returns the dash-triplet version component.
func (r SchemaRef) Version() string { return r.version }

// IsEmpty returns true if this is a zero-value SchemaRef.
func (r SchemaRef) IsEmpty() bool { return r.vendor == "" }

// Path returns the registry-relative path for this schema.
// Example: "schemas/com.google/gmail_email/jsonschema/1-0-0.json"
func (r SchemaRef) Path() string {
	return path.Join("schemas", r.vendor, r.name, "jsonschema", r.version+".json")
}

// TransformRef identifies one version of a transform in the registry.
// Format: {id}@{version} where id is a slash-delimited hierarchical path
// and version is a dot-triplet (dash separators are tolerated on input).
type TransformRef struct {
	id      string
	version string
}

// ParseTransformRef parses a transform reference string.
func ParseTransformRef(s string) (TransformRef, error) {
	m := transformRefRegex.FindStringSubmatch(s)
	if m == nil {
		return TransformRef{}, fmt.Errorf("%w: %q: expected category/name@X.Y.Z", ErrInvalidReference, s)
	}
	return TransformRef{id: m[1], version: m[2]}, nil
}

// MustTransformRef parses a transform reference or panics. Use only for constants/tests.
func MustTransformRef(s string) TransformRef {
	r, err := ParseTransformRef(s)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the wire form of the reference.
func (r TransformRef) String() string {
	return r.id + "@" + r.version
}

// ID returns the hierarchical transform identifier (e.g. "email/gmail_to_jmap_lite").
func (r TransformRef) ID() string { return r.id }

// Version returns the version component as written.
func (r TransformRef) Version() string { return r.version }

// IsEmpty returns true if this is a zero-value TransformRef.
func (r TransformRef) IsEmpty() bool { return r.id == "" }

// Path returns the registry-relative path of the transform's metadata sidecar.
// Example: "transforms/email/gmail_to_jmap_lite/1.0.0/spec.meta.yaml"
func (r TransformRef) Path() string {
	return path.Join("transforms", r.id, r.version, MetaFilename)
}

// BodyPath returns the registry-relative path of the transform body file,
// a fixed-name sibling of the metadata sidecar.
func (r TransformRef) BodyPath() string {
	return path.Join("transforms", r.id, r.version, BodyFilename)
}

// Fixed artifact filenames within a transform's version directory.
const (
	MetaFilename = "spec.meta.yaml"
	BodyFilename = "spec.jsonata"
)

// DetectKind reports whether a reference string names a schema or a transform
// without fully parsing it. Schema refs carry the iglu: scheme prefix;
// transform refs carry an @version suffix.
func DetectKind(s string) (Kind, error) {
	switch {
	case strings.HasPrefix(s, "iglu:"):
		return KindSchema, nil
	case strings.Contains(s, "@"):
		return KindTransform, nil
	default:
		return KindUnknown, fmt.Errorf("%w: %q: schema refs start with 'iglu:', transform refs contain '@'", ErrInvalidReference, s)
	}
}

// Kind discriminates the two reference forms.
type Kind int

// Reference kinds returned by DetectKind.
const (
	KindUnknown Kind = iota
	KindSchema
	KindTransform
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema"
	case KindTransform:
		return "transform"
	default:
		return "unknown"
	}
}

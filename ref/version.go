package ref

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version represents a validated dot-triplet transform version.
// The components follow SchemaVer semantics: MODEL.REVISION.ADDITION.
type Version struct {
	raw      string
	model    int
	revision int
	addition int
}

var versionRegex = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)

// ParseVersion creates a validated Version from a dot-triplet string.
func ParseVersion(s string) (Version, error) {
	m := versionRegex.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("invalid version %q: expected MODEL.REVISION.ADDITION", s)
	}
	model, _ := strconv.Atoi(m[1])
	revision, _ := strconv.Atoi(m[2])
	addition, _ := strconv.Atoi(m[3])
	return Version{raw: s, model: model, revision: revision, addition: addition}, nil
}

// MustVersion creates a Version or panics. Use only for constants/tests.
func MustVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version string.
func (v Version) String() string { return v.raw }

// IsEmpty returns true if this is a zero-value Version.
func (v Version) IsEmpty() bool { return v.raw == "" }

// Model returns the MODEL component.
func (v Version) Model() int { return v.model }

// Revision returns the REVISION component.
func (v Version) Revision() int { return v.revision }

// Addition returns the ADDITION component.
func (v Version) Addition() int { return v.addition }

// BumpRevision returns a new Version with REVISION incremented by one and
// ADDITION reset to zero. This is the bump applied after any successful
// auto-patch: the patcher only performs minor-compatible revisions, never
// a MODEL break.
func (v Version) BumpRevision() Version {
	n := Version{
		model:    v.model,
		revision: v.revision + 1,
		addition: 0,
	}
	n.raw = fmt.Sprintf("%d.%d.%d", n.model, n.revision, n.addition)
	return n
}

// Compare compares two versions component-wise.
// Returns -1 if v < other, 0 if v == other, 1 if v > other.
func (v Version) Compare(other Version) int {
	if v.model != other.model {
		return intCompare(v.model, other.model)
	}
	if v.revision != other.revision {
		return intCompare(v.revision, other.revision)
	}
	return intCompare(v.addition, other.addition)
}

// Less returns true if v < other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

func intCompare(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

package ref

import (
	"errors"
	"testing"
)

func TestParseSchemaRef(t *testing.T) {
	tests := []struct {
		input   string
		vendor  string
		name    string
		version string
		wantErr bool
	}{
		{"iglu:com.google/gmail_email/jsonschema/1-0-0", "com.google", "gmail_email", "1-0-0", false},
		{"iglu:org.canonical/email/jsonschema/2-1-0", "org.canonical", "email", "2-1-0", false},
		{"iglu:a/b/jsonschema/0-0-1", "a", "b", "0-0-1", false},
		{"iglu:com.google/gmail_email/jsonschema/1.0.0", "", "", "", true}, // dot version rejected
		{"iglu:com.google/gmail_email/avro/1-0-0", "", "", "", true},       // wrong format kind
		{"com.google/gmail_email/jsonschema/1-0-0", "", "", "", true},      // missing scheme
		{"iglu:com.google/gmail_email/1-0-0", "", "", "", true},            // too few segments
		{"", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, err := ParseSchemaRef(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSchemaRef(%q) succeeded, want error", tt.input)
				}
				if !errors.Is(err, ErrInvalidReference) {
					t.Errorf("error = %v, want ErrInvalidReference", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSchemaRef(%q) failed: %v", tt.input, err)
			}
			if r.Vendor() != tt.vendor || r.Name() != tt.name || r.Version() != tt.version {
				t.Errorf("got (%q, %q, %q), want (%q, %q, %q)",
					r.Vendor(), r.Name(), r.Version(), tt.vendor, tt.name, tt.version)
			}
			if got := r.String(); got != tt.input {
				t.Errorf("String() = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestParseTransformRef(t *testing.T) {
	tests := []struct {
		input   string
		id      string
		version string
		wantErr bool
	}{
		{"email/gmail_to_jmap_lite@1.0.0", "email/gmail_to_jmap_lite", "1.0.0", false},
		{"email/gmail_to_jmap_lite@1-0-0", "email/gmail_to_jmap_lite", "1-0-0", false},
		{"a/b/c@0.1.2", "a/b/c", "0.1.2", false},
		{"single@2.0.0", "single", "2.0.0", false},
		{"email/gmail@1.0", "", "", true},   // two-part version
		{"email/gmail@v1.0.0", "", "", true},
		{"email/gmail", "", "", true},       // no version
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, err := ParseTransformRef(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTransformRef(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTransformRef(%q) failed: %v", tt.input, err)
			}
			if r.ID() != tt.id || r.Version() != tt.version {
				t.Errorf("got (%q, %q), want (%q, %q)", r.ID(), r.Version(), tt.id, tt.version)
			}
			if got := r.String(); got != tt.input {
				t.Errorf("String() = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestSchemaRefPath(t *testing.T) {
	r := MustSchemaRef("iglu:com.google/gmail_email/jsonschema/1-0-0")
	want := "schemas/com.google/gmail_email/jsonschema/1-0-0.json"
	if got := r.Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestTransformRefPaths(t *testing.T) {
	r := MustTransformRef("email/gmail_to_jmap_lite@1.0.0")
	if got, want := r.Path(), "transforms/email/gmail_to_jmap_lite/1.0.0/spec.meta.yaml"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
	if got, want := r.BodyPath(), "transforms/email/gmail_to_jmap_lite/1.0.0/spec.jsonata"; got != want {
		t.Errorf("BodyPath() = %q, want %q", got, want)
	}
}

// Parsing the components back out of a mapped path must reconstruct the
// original reference exactly.
func TestSchemaRefPathRoundTrip(t *testing.T) {
	refs := []string{
		"iglu:com.google/gmail_email/jsonschema/1-0-0",
		"iglu:org.canonical/email/jsonschema/10-2-3",
	}
	for _, s := range refs {
		r := MustSchemaRef(s)
		rebuilt := "iglu:" + r.Vendor() + "/" + r.Name() + "/jsonschema/" + r.Version()
		if rebuilt != s {
			t.Errorf("round trip of %q = %q", s, rebuilt)
		}
	}
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
		err   bool
	}{
		{"iglu:com.google/gmail_email/jsonschema/1-0-0", KindSchema, false},
		{"email/gmail_to_jmap_lite@1.0.0", KindTransform, false},
		{"not-a-reference", KindUnknown, true},
	}
	for _, tt := range tests {
		got, err := DetectKind(tt.input)
		if (err != nil) != tt.err {
			t.Errorf("DetectKind(%q) error = %v, want error %v", tt.input, err, tt.err)
		}
		if got != tt.want {
			t.Errorf("DetectKind(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/benthepsychologist/go-canonizer/lockfile"
	"github.com/benthepsychologist/go-canonizer/ref"
	"github.com/benthepsychologist/go-canonizer/transform"
)

const importTestBody = `{ "subject": payload.headers.subject }`

// writeSourceRegistry lays out a registry checkout with one schema and
// one transform whose sidecar checksum matches the body.
func writeSourceRegistry(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	schemaPath := filepath.Join(dir, "schemas", "com.google", "gmail_email", "jsonschema", "1-0-0.json")
	if err := os.MkdirAll(filepath.Dir(schemaPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(schemaPath, []byte(`{"type":"object"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tdir := filepath.Join(dir, "transforms", "email", "gmail_to_jmap_lite", "1.0.0")
	if err := os.MkdirAll(tdir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tdir, ref.BodyFilename), []byte(importTestBody), 0o644); err != nil {
		t.Fatal(err)
	}

	meta := fmt.Sprintf(`id: email/gmail_to_jmap_lite
version: 1.0.0
engine: jsonata
from_schema: iglu:com.google/gmail_email/jsonschema/1-0-0
to_schema: iglu:dev.canonizer/jmap_email_lite/jsonschema/1-0-0
spec_path: spec.jsonata
checksum:
  jsonata_sha256: %s
provenance:
  author: Test Author <test@example.com>
  created_utc: 2026-01-15T10:00:00Z
status: stable
`, transform.ChecksumBytes([]byte(importTestBody)))
	if err := os.WriteFile(filepath.Join(tdir, ref.MetaFilename), []byte(meta), 0o644); err != nil {
		t.Fatal(err)
	}

	return dir
}

func testImporter(t *testing.T) (*Importer, *Root, string) {
	t.Helper()
	root := testRoot(t)
	src := writeSourceRegistry(t)
	f, err := NewDirFetcher(src)
	if err != nil {
		t.Fatal(err)
	}
	return NewImporter(root, f), root, src
}

func TestImportSchema(t *testing.T) {
	im, root, _ := testImporter(t)
	sr := ref.MustSchemaRef("iglu:com.google/gmail_email/jsonschema/1-0-0")

	rel, err := im.ImportSchema(t.Context(), sr)
	if err != nil {
		t.Fatalf("ImportSchema() error: %v", err)
	}
	if rel != sr.Path() {
		t.Errorf("ImportSchema() = %q, want %q", rel, sr.Path())
	}

	stored := filepath.Join(root.StorePath(), filepath.FromSlash(rel))
	data, err := os.ReadFile(stored)
	if err != nil {
		t.Fatalf("stored schema missing: %v", err)
	}

	lf, err := lockfile.ReadFile(root.LockPath())
	if err != nil {
		t.Fatalf("read lockfile: %v", err)
	}
	entry, ok := lf.GetSchema(sr.String())
	if !ok {
		t.Fatal("lockfile has no entry for imported schema")
	}
	if entry.Path != rel {
		t.Errorf("lock entry path = %q, want %q", entry.Path, rel)
	}
	if !lf.VerifySchema(sr.String(), data) {
		t.Error("locked hash does not verify against stored bytes")
	}
}

func TestImportTransform(t *testing.T) {
	im, root, _ := testImporter(t)
	tr := ref.MustTransformRef("email/gmail_to_jmap_lite@1.0.0")

	rel, err := im.ImportTransform(t.Context(), tr)
	if err != nil {
		t.Fatalf("ImportTransform() error: %v", err)
	}
	if rel != tr.BodyPath() {
		t.Errorf("ImportTransform() = %q, want %q", rel, tr.BodyPath())
	}

	// Both the sidecar and body land in the store.
	for _, p := range []string{tr.Path(), tr.BodyPath()} {
		if _, err := os.Stat(filepath.Join(root.StorePath(), filepath.FromSlash(p))); err != nil {
			t.Errorf("expected %s in store: %v", p, err)
		}
	}

	lf, err := lockfile.ReadFile(root.LockPath())
	if err != nil {
		t.Fatal(err)
	}
	if !lf.VerifyTransform(tr.String(), []byte(importTestBody)) {
		t.Error("locked hash does not verify against imported body")
	}
}

func TestImportTransformRejectsTamperedBody(t *testing.T) {
	im, _, src := testImporter(t)
	tr := ref.MustTransformRef("email/gmail_to_jmap_lite@1.0.0")

	bodyPath := filepath.Join(src, filepath.FromSlash(tr.BodyPath()))
	if err := os.WriteFile(bodyPath, []byte("tampered()"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := im.ImportTransform(t.Context(), tr)
	var mismatch *transform.ChecksumMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("ImportTransform() error = %v, want *ChecksumMismatchError", err)
	}
}

func TestImportDispatchesOnRefKind(t *testing.T) {
	im, _, _ := testImporter(t)

	if _, err := im.Import(t.Context(), "iglu:com.google/gmail_email/jsonschema/1-0-0"); err != nil {
		t.Errorf("Import(schema ref) error: %v", err)
	}
	if _, err := im.Import(t.Context(), "email/gmail_to_jmap_lite@1.0.0"); err != nil {
		t.Errorf("Import(transform ref) error: %v", err)
	}
	if _, err := im.Import(t.Context(), "not a ref"); !errors.Is(err, ref.ErrInvalidReference) {
		t.Errorf("Import(garbage) error = %v, want ErrInvalidReference", err)
	}
}

func TestImportPreservesExistingLockEntries(t *testing.T) {
	im, root, _ := testImporter(t)
	sr := ref.MustSchemaRef("iglu:com.google/gmail_email/jsonschema/1-0-0")
	tr := ref.MustTransformRef("email/gmail_to_jmap_lite@1.0.0")

	if _, err := im.ImportSchema(t.Context(), sr); err != nil {
		t.Fatal(err)
	}
	if _, err := im.ImportTransform(t.Context(), tr); err != nil {
		t.Fatal(err)
	}

	lf, err := lockfile.ReadFile(root.LockPath())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := lf.GetSchema(sr.String()); !ok {
		t.Error("schema entry lost after second import")
	}
	if _, ok := lf.GetTransform(tr.String()); !ok {
		t.Error("transform entry missing")
	}
}

func TestImportMissingArtifact(t *testing.T) {
	im, _, _ := testImporter(t)
	sr := ref.MustSchemaRef("iglu:dev/absent/jsonschema/1-0-0")

	_, err := im.ImportSchema(t.Context(), sr)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ImportSchema() error = %v, want ErrNotFound", err)
	}
}

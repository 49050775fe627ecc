// Package gocanonizer maintains a local, versioned cache of canonical
// data-modeling artifacts and keeps transforms aligned with schema
// evolution.
//
// # Overview
//
// The package manages two artifact kinds:
//
//   - Schemas: JSON Schema documents addressed by iglu-style references
//     ("iglu:com.google/gmail_email/jsonschema/1-0-0")
//   - Transforms: JSONata expressions with a metadata sidecar, addressed
//     by id@version references ("email/gmail_to_jmap_lite@1.0.0")
//
// Artifacts live in a content-addressed local store under a .canonizer/
// registry root, pinned by sha256 hashes in a lock file.
//
// # Quick Start
//
// Diff two schema versions and patch a transform to follow:
//
//	d, err := gocanonizer.DiffRefs(
//	    "iglu:com.google/gmail_email/jsonschema/1-0-0",
//	    "iglu:com.google/gmail_email/jsonschema/1-0-1",
//	    gocanonizer.Options{})
//
//	result, err := gocanonizer.PatchTransform(
//	    "email/gmail_to_jmap_lite@1.0.0", d, gocanonizer.Options{})
//
// Run a document through a transform, validating against both schemas:
//
//	out, err := gocanonizer.Canonicalize(ctx, rawDoc,
//	    "email/gmail_to_jmap_lite@1.0.0", gocanonizer.Options{})
//
// The focused subpackages (ref, registry, lockfile, diff, patch,
// transform, validate, eval) expose the underlying building blocks for
// callers that need finer control.
package gocanonizer

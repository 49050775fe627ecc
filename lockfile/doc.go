// Package lockfile provides types and operations for the registry lock.json file.
//
// The lock document pins every imported schema and transform to a
// (path, content hash) pair, ensuring reproducible resolution and detecting
// tampered artifacts. Hashes are SHA-256 over the raw bytes of the locked
// file; for transforms the locked file is the transform body, not the
// metadata sidecar.
//
// # Document Structure
//
// A lock document contains:
//   - version: Lock format version ("1")
//   - updatedAt: ISO-8601 timestamp, refreshed on every save
//   - schemas: Map of schema reference to {path, hash}
//   - transforms: Map of transform reference to {path, hash}
//
// # Usage
//
// Read an existing lock document:
//
//	lf, err := lockfile.ReadFile(".canonizer/lock.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Record and verify an artifact:
//
//	lf.AddSchema(ref.String(), ref.Path(), content)
//	ok := lf.VerifySchema(ref.String(), content)
//	if err := lf.WriteFile(".canonizer/lock.json"); err != nil {
//	    log.Fatal(err)
//	}
//
// Loading a missing file is a hard error. Callers wanting create-if-absent
// semantics must catch it and construct New() explicitly.
package lockfile

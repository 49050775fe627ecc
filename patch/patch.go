// Package patch conservatively rewrites a transform body to follow a
// classified schema diff.
//
// Only Add and Rename changes are ever attempted; everything else is
// routed to the skipped list by a type gate, regardless of how the differ
// flagged it. Adds are applied only to bodies that are a single top-level
// object literal. Renames are a text substitution limited to quoted object
// keys, best-effort by design: the body is never parsed as an expression.
//
// A successful run bumps the transform's revision component and zeroes the
// addition component. A run that applies nothing is a failure, even when
// the diff was non-empty.
package patch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/benthepsychologist/go-canonizer/diff"
	"github.com/benthepsychologist/go-canonizer/ref"
	"github.com/benthepsychologist/go-canonizer/transform"
)

// ErrNothingApplied is the fixed failure reported when no change could be
// applied. "No changes" and "every change skipped" are externally the same.
var ErrNothingApplied = fmt.Errorf("no auto-patchable changes found")

// Result reports the outcome of a patch run.
type Result struct {
	// Success is true if at least one change was applied.
	Success bool

	// UpdatedBody is the rewritten transform body. Empty on failure.
	UpdatedBody string

	// UpdatedMeta is a copy of the metadata with the bumped version and
	// refreshed checksum. Nil on failure or when version bumping is off.
	UpdatedMeta *transform.Meta

	// Applied lists changes that were written into the body.
	Applied []diff.Change

	// Skipped lists changes that were not applied, whether gated by type
	// or failed in application.
	Skipped []diff.Change

	// Err carries the failure reason when Success is false.
	Err error
}

// Apply rewrites a transform body according to a schema diff.
//
// Each change is attempted in diff order. If bumpVersion is set and at
// least one change applied, the returned metadata copy carries the bumped
// version (revision+1, addition reset) and a checksum recomputed over the
// updated body. A structurally invalid version string in the metadata is
// the only hard error.
func Apply(body string, meta *transform.Meta, d *diff.Diff, bumpVersion bool) (*Result, error) {
	result := &Result{}
	updated := body

	for _, change := range d.Changes {
		if !change.AutoPatchable {
			result.Skipped = append(result.Skipped, change)
			continue
		}

		switch change.Type {
		case diff.Add:
			next, ok := applyAdd(updated, change.Path)
			if ok {
				updated = next
				result.Applied = append(result.Applied, change)
			} else {
				result.Skipped = append(result.Skipped, change)
			}
		case diff.Rename:
			next, ok := applyRename(updated, change)
			if ok {
				updated = next
				result.Applied = append(result.Applied, change)
			} else {
				result.Skipped = append(result.Skipped, change)
			}
		default:
			// Type gate: nothing else is ever attempted, even if flagged
			// auto-patchable by a future differ.
			result.Skipped = append(result.Skipped, change)
		}
	}

	if len(result.Applied) == 0 {
		result.Err = ErrNothingApplied
		return result, nil
	}

	result.Success = true
	result.UpdatedBody = updated

	if meta != nil {
		updatedMeta := *meta
		if bumpVersion {
			v, err := ref.ParseVersion(meta.Version)
			if err != nil {
				return nil, fmt.Errorf("cannot bump version: %w", err)
			}
			updatedMeta.Version = v.BumpRevision().String()
		}
		updatedMeta.Checksum = transform.Checksum{
			JSONataSHA256: checksumOf(updated),
		}
		result.UpdatedMeta = &updatedMeta
	}

	return result, nil
}

func checksumOf(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// applyAdd inserts a new key with a null placeholder immediately before
// the final closing brace. It only succeeds when the trimmed body is
// syntactically a single top-level object literal; any other shape (a
// pipeline, an array mapping) is skipped rather than guessed at.
func applyAdd(body, field string) (string, bool) {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return "", false
	}

	lastBrace := strings.LastIndex(trimmed, "}")
	beforeBrace := strings.TrimRight(trimmed[:lastBrace], " \t\r\n")

	var insertion string
	if strings.HasSuffix(beforeBrace, "{") {
		insertion = fmt.Sprintf("  %q: null", field)
	} else {
		insertion = fmt.Sprintf(",\n  %q: null", field)
	}

	return trimmed[:lastBrace] + insertion + "\n" + trimmed[lastBrace:], true
}

// applyRename rewrites occurrences of the old field name appearing as a
// quoted object key immediately followed by a colon, in both quote
// styles. The name is never touched anywhere else in the expression, so
// unrelated identifiers and string literals stay intact. Reports false
// when no occurrence was found.
func applyRename(body string, change diff.Change) (string, bool) {
	oldName, ok := change.OldName()
	if !ok {
		return "", false
	}
	newName, ok := change.NewName()
	if !ok {
		return "", false
	}

	doubleQuoted := regexp.MustCompile(`"` + regexp.QuoteMeta(oldName) + `"(\s*):`)
	singleQuoted := regexp.MustCompile(`'` + regexp.QuoteMeta(oldName) + `'(\s*):`)

	updated := doubleQuoted.ReplaceAllString(body, `"`+newName+`"${1}:`)
	updated = singleQuoted.ReplaceAllString(updated, `'`+newName+`'${1}:`)

	if updated == body {
		return "", false
	}
	return updated, true
}

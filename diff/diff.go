// Package diff classifies structural changes between two schema documents.
//
// A schema document is a property bag: a "properties" map plus a "required"
// list, as in a JSON Schema object definition. The differ compares two such
// documents and emits an ordered list of classified changes.
//
// The classification is deliberately conservative: only optional-field
// additions and inferred renames are marked auto-patchable. Removals, type
// changes, and required-status changes always require manual review.
package diff

import (
	"fmt"
	"sort"
	"strings"
)

// ChangeType classifies a single structural schema change.
type ChangeType string

// Change types, from safe to unsafe.
const (
	// Add is a new field. Auto-patchable unless the field is required.
	Add ChangeType = "add"

	// Rename is an inferred field rename. Auto-patchable.
	Rename ChangeType = "rename"

	// Remove is a deleted field. Never auto-patchable (data loss risk).
	Remove ChangeType = "remove"

	// TypeChange is a changed field type, or an optional field becoming
	// required. Never auto-patchable.
	TypeChange ChangeType = "type_change"

	// Complex is a structural change with no mechanical rewrite, such as a
	// required field becoming optional. Loosening a constraint can hide
	// upstream contract violations, so it still needs review.
	Complex ChangeType = "complex"
)

// RenameSeparator joins the old and new field names in a Rename change path.
const RenameSeparator = "→"

// Change represents a single classified schema change.
type Change struct {
	// Type is the change classification.
	Type ChangeType `json:"change_type"`

	// Path is the field name, or "old→new" for renames.
	Path string `json:"path"`

	// OldValue is the field definition in the source schema, if any.
	OldValue any `json:"old_value,omitempty"`

	// NewValue is the field definition in the target schema, if any.
	NewValue any `json:"new_value,omitempty"`

	// Description is a human-readable summary of the change.
	Description string `json:"description"`

	// AutoPatchable reports whether the change is safe to apply without
	// human review.
	AutoPatchable bool `json:"auto_patchable"`
}

// OldName returns the source field name of a Rename change.
func (c Change) OldName() (string, bool) {
	if c.Type != Rename {
		return "", false
	}
	old, _, ok := strings.Cut(c.Path, RenameSeparator)
	return old, ok
}

// NewName returns the target field name of a Rename change.
func (c Change) NewName() (string, bool) {
	if c.Type != Rename {
		return "", false
	}
	_, nw, ok := strings.Cut(c.Path, RenameSeparator)
	return nw, ok
}

// Diff is the result of comparing two schema documents.
type Diff struct {
	// Changes is the ordered list of classified changes.
	Changes []Change `json:"changes"`

	// AutoPatchableCount is the number of changes with AutoPatchable set.
	AutoPatchableCount int `json:"auto_patchable_count"`

	// ManualReviewCount is the number of changes needing manual review.
	ManualReviewCount int `json:"manual_review_count"`
}

// IsEmpty returns true if no changes were detected.
func (d *Diff) IsEmpty() bool {
	return len(d.Changes) == 0
}

// HasAutoPatchable returns true if any change is auto-patchable.
func (d *Diff) HasAutoPatchable() bool {
	return d.AutoPatchableCount > 0
}

// HasManualReview returns true if any change needs manual review.
func (d *Diff) HasManualReview() bool {
	return d.ManualReviewCount > 0
}

// Schemas compares two property-bag schema documents and classifies the
// structural changes between them.
//
// Detection runs in order: additions, removals, type changes,
// required-status changes, then rename inference. Rename inference merges
// an (added, removed) pair into a single Rename change when the names are
// a case-insensitive substring of one another or within edit distance 3,
// and the declared primitive types match. Matching is greedy per removed
// field; candidates are ranked by (edit distance, then lexical name) so
// the result is deterministic.
func Schemas(from, to map[string]any) *Diff {
	fromProps := properties(from)
	toProps := properties(to)
	fromRequired := requiredSet(from)
	toRequired := requiredSet(to)

	var changes []Change

	addedFields := sortedDifference(toProps, fromProps)
	for _, field := range addedFields {
		isRequired := toRequired[field]
		changes = append(changes, Change{
			Type:          Add,
			Path:          field,
			NewValue:      toProps[field],
			Description:   fmt.Sprintf("Added field %q (%s)", field, requiredLabel(isRequired)),
			AutoPatchable: !isRequired, // a newly required field cannot be safely defaulted
		})
	}

	removedFields := sortedDifference(fromProps, toProps)
	for _, field := range removedFields {
		changes = append(changes, Change{
			Type:          Remove,
			Path:          field,
			OldValue:      fromProps[field],
			Description:   fmt.Sprintf("Removed field %q (%s)", field, requiredLabel(fromRequired[field])),
			AutoPatchable: false,
		})
	}

	for _, field := range sortedIntersection(fromProps, toProps) {
		fromField := fromProps[field]
		toField := toProps[field]

		fromType := primitiveType(fromField)
		toType := primitiveType(toField)
		if fromType != toType {
			changes = append(changes, Change{
				Type:          TypeChange,
				Path:          field,
				OldValue:      fromField,
				NewValue:      toField,
				Description:   fmt.Sprintf("Type changed for %q: %s -> %s", field, fromType, toType),
				AutoPatchable: false,
			})
		}

		wasRequired := fromRequired[field]
		isRequired := toRequired[field]
		if wasRequired != isRequired {
			ct := Complex
			desc := "required -> optional"
			if isRequired {
				ct = TypeChange
				desc = "optional -> required"
			}
			changes = append(changes, Change{
				Type:          ct,
				Path:          field,
				OldValue:      fromField,
				NewValue:      toField,
				Description:   fmt.Sprintf("Field %q changed: %s", field, desc),
				AutoPatchable: false,
			})
		}
	}

	changes = mergeRenames(changes, removedFields, addedFields, fromProps, toProps)

	d := &Diff{Changes: changes}
	for _, c := range changes {
		if c.AutoPatchable {
			d.AutoPatchableCount++
		} else {
			d.ManualReviewCount++
		}
	}
	return d
}

// mergeRenames replaces matching (Remove, Add) change pairs with a single
// auto-patchable Rename change. Matching is greedy: each removed field
// takes its best-ranked added candidate, and a consumed candidate is not
// available to later removed fields.
func mergeRenames(changes []Change, removedFields, addedFields []string, fromProps, toProps map[string]map[string]any) []Change {
	consumed := make(map[string]bool)

	for _, removed := range removedFields {
		fromType := primitiveType(fromProps[removed])

		best := ""
		bestDistance := -1
		for _, added := range addedFields {
			if consumed[added] {
				continue
			}
			if primitiveType(toProps[added]) != fromType {
				continue
			}
			d := levenshtein(removed, added)
			if !nameSimilar(removed, added, d) {
				continue
			}
			if best == "" || d < bestDistance || (d == bestDistance && added < best) {
				best = added
				bestDistance = d
			}
		}
		if best == "" {
			continue
		}
		consumed[best] = true

		filtered := changes[:0]
		for _, c := range changes {
			if (c.Type == Add && c.Path == best) || (c.Type == Remove && c.Path == removed) {
				continue
			}
			filtered = append(filtered, c)
		}
		changes = append(filtered, Change{
			Type:          Rename,
			Path:          removed + RenameSeparator + best,
			OldValue:      fromProps[removed],
			NewValue:      toProps[best],
			Description:   fmt.Sprintf("Field renamed: %q -> %q", removed, best),
			AutoPatchable: true,
		})
	}
	return changes
}

// nameSimilar reports whether two field names look like a rename pair:
// one is a case-insensitive substring of the other, or they are within
// edit distance 3.
func nameSimilar(a, b string, distance int) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la) || distance <= 3
}

func requiredLabel(required bool) string {
	if required {
		return "required"
	}
	return "optional"
}

// properties extracts the "properties" map, normalizing each field
// definition to map[string]any. Non-map field definitions are kept as
// empty maps so their presence still participates in add/remove detection.
func properties(doc map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any)
	props, _ := doc["properties"].(map[string]any)
	for name, def := range props {
		if m, ok := def.(map[string]any); ok {
			out[name] = m
		} else {
			out[name] = map[string]any{}
		}
	}
	return out
}

// requiredSet extracts the "required" list as a membership set.
func requiredSet(doc map[string]any) map[string]bool {
	out := make(map[string]bool)
	switch req := doc["required"].(type) {
	case []any:
		for _, v := range req {
			if s, ok := v.(string); ok {
				out[s] = true
			}
		}
	case []string:
		for _, s := range req {
			out[s] = true
		}
	}
	return out
}

// primitiveType returns the declared "type" of a field definition.
func primitiveType(field map[string]any) string {
	t, _ := field["type"].(string)
	return t
}

// sortedDifference returns the keys of a absent from b, sorted.
func sortedDifference(a, b map[string]map[string]any) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// sortedIntersection returns the keys present in both a and b, sorted.
func sortedIntersection(a, b map[string]map[string]any) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

package main

import (
	"strings"
	"testing"

	"github.com/benthepsychologist/go-canonizer/diff"
)

func TestRenderDiffEmpty(t *testing.T) {
	out := renderDiff(&diff.Diff{})
	if !strings.Contains(out, "No structural changes") {
		t.Errorf("renderDiff(empty) = %q", out)
	}
}

func TestRenderDiffListsEveryChange(t *testing.T) {
	d := &diff.Diff{
		Changes: []diff.Change{
			{Type: diff.Add, Path: "thread_id", Description: "optional field added", AutoPatchable: true},
			{Type: diff.Remove, Path: "legacy_id", Description: "field removed"},
			{Type: diff.Rename, Path: "user_name" + diff.RenameSeparator + "username", Description: "field renamed", AutoPatchable: true},
			{Type: diff.TypeChange, Path: "count", Description: "type changed from string to integer"},
		},
		AutoPatchableCount: 2,
		ManualReviewCount:  2,
	}

	out := renderDiff(d)
	for _, want := range []string{"thread_id", "legacy_id", "username", "count", "4 change(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderDiff() missing %q in:\n%s", want, out)
		}
	}
}

func TestNewFetcherPicksSource(t *testing.T) {
	// A URL source must produce the HTTP client, not a directory fetcher.
	f, err := newFetcher("https://example.com/registry/")
	if err != nil {
		t.Fatalf("newFetcher(url) error: %v", err)
	}
	if _, ok := f.(interface{ BaseURL() string }); !ok {
		t.Errorf("newFetcher(url) = %T, want HTTP client", f)
	}

	dir := t.TempDir()
	f, err = newFetcher(dir)
	if err != nil {
		t.Fatalf("newFetcher(dir) error: %v", err)
	}
	if _, ok := f.(interface{ BaseURL() string }); ok {
		t.Errorf("newFetcher(dir) = %T, want directory fetcher", f)
	}
}

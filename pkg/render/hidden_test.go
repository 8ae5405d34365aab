package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudui/pkg/render"
)

func TestHiddenFields(t *testing.T) {
	merged := render.MergeHiddenFields(
		map[string]string{" view ": "list", "": "ignored"},
		render.CSRFToken("csrf_token", "token123"),
		render.Hidden(" offset ", 40),
		render.Hidden("  ", "skip"),
		render.Hidden("view", "edit"),
	)
	want := map[string]string{"view": "edit", "csrf_token": "token123", "offset": "40"}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged hidden fields mismatch (-want +got):\n%s", diff)
	}
	if render.MergeHiddenFields(nil) != nil {
		t.Fatalf("empty merge should be nil")
	}

	wantSorted := []render.HiddenField{
		{Name: "csrf_token", Value: "token123"},
		{Name: "offset", Value: "40"},
		{Name: "view", Value: "edit"},
	}
	if diff := cmp.Diff(wantSorted, render.SortedHiddenFields(merged)); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestHiddenInputs(t *testing.T) {
	got := render.HiddenInputs(map[string]string{"pk": `a"b`, "view": "list"})
	want := `<input type="hidden" name="pk" value="a&#34;b"/><input type="hidden" name="view" value="list"/>`
	if got != want {
		t.Fatalf("HiddenInputs mismatch:\nwant %s\ngot  %s", want, got)
	}
	if got := render.HiddenInputs(nil); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudui/pkg/render"
)

func TestMapErrorPayload(t *testing.T) {
	names := []string{"name", "email", "tags", "owner"}
	payload := map[string][]string{
		"/body/name":                 {"Name is required", " Name is required "},
		"email":                      {"Email invalid"},
		"$.body.tags[0]":             {"Tags must be unique"},
		"request.payload.owner":      {"Owner missing"},
		"non_field_errors":           {"Form level error"},
		"request/body/unknown-field": {"Falls back to the form"},
		"":                           {"Unscoped form error"},
		"/owner/0/name":              {"Owner missing"},
	}

	mapped := render.MapErrorPayload(names, payload)

	wantFields := map[string][]string{
		"name":  {"Name is required"},
		"email": {"Email invalid"},
		"tags":  {"Tags must be unique"},
		"owner": {"Owner missing"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	wantForm := []string{"Unscoped form error", "Form level error", "Falls back to the form"}
	if diff := cmp.Diff(wantForm, mapped.Form); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	if mapped.Empty() || !render.MapErrorPayload(names, nil).Empty() {
		t.Fatalf("Empty mismatch")
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	if diff := cmp.Diff([]string{"First", "Second", "third"}, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}

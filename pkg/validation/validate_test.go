package validation

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudui/pkg/render"
)

func userSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("email", openapi3.NewStringSchema().WithFormat("email").WithNullable()).
		WithProperty("role", openapi3.NewStringSchema().WithEnum("admin", "user"))
	schema.Required = []string{"name", "role"}
	return schema
}

func TestValidate_Valid(t *testing.T) {
	result := Validate(userSchema(), map[string]any{"name": "Ada", "role": "admin", "email": nil}, nil)
	if !result.Valid {
		t.Fatalf("expected valid payload: %#v", result.Issues)
	}
	if result.Payload() != nil {
		t.Fatalf("valid result should have no payload")
	}
}

func TestValidate_FieldIssues(t *testing.T) {
	result := Validate(userSchema(), map[string]any{"name": "", "role": "root"}, nil)
	if result.Valid {
		t.Fatalf("expected invalid payload")
	}
	want := map[string][]string{
		"name": {"This field is required."},
		"role": {"Select a valid choice."},
	}
	if diff := cmp.Diff(want, result.Payload()); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_TranslatedMessages(t *testing.T) {
	tr := render.TranslatorFunc(func(lang, context, msgid string) string {
		if lang == "fr" && context == MessagesContext && msgid == "This field is required." {
			return "Ce champ est obligatoire."
		}
		return msgid
	})
	result := Validate(userSchema(), map[string]any{"role": "user"}, Translated(tr, "fr"))
	if diff := cmp.Diff([]SchemaIssue{{Path: "/name", Field: "name", Message: "Ce champ est obligatoire."}}, result.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldPathFromPointer(t *testing.T) {
	cases := map[string]string{
		"":                         "",
		"/":                        "",
		"/name":                    "name",
		"#/properties/owner/email": "owner.email",
		"/tags/0":                  "tags.0",
		"/a~1b":                    "a/b",
	}
	for in, want := range cases {
		if got := fieldPathFromPointer(in); got != want {
			t.Fatalf("fieldPathFromPointer(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMessagesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, msg := range Messages() {
		if seen[msg] {
			t.Fatalf("duplicate message %q", msg)
		}
		seen[msg] = true
	}
	if !seen[fallbackMessage] {
		t.Fatalf("fallback message missing")
	}
}

func TestValidate_EmailFormat(t *testing.T) {
	result := Validate(userSchema(), map[string]any{"name": "Ada", "role": "user", "email": "not an email"}, nil)
	if diff := cmp.Diff(map[string][]string{"email": {"Enter a valid value."}}, result.Payload()); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

package openapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudui/pkg/fields"
)

const groups = `openapi: 3.0.3
info: {title: groups, version: "1"}
paths:
  /groups:
    post:
      operationId: createGroup
      requestBody:
        content:
          application/json:
            schema: {$ref: "#/components/schemas/Group"}
      responses:
        "201": {description: created}
components:
  schemas:
    Group:
      type: object
      required: [code, name]
      properties:
        code:
          type: string
          x-crudui: {order: 1, readonly: [edit]}
        name: {type: string, x-crudui: {order: 2}}
        visibility: {type: string, enum: [public, private]}
        max_members: {type: integer, default: 10}
        contact: {type: string, format: email}
        description: {type: string, maxLength: 2000}
        createdAt: {type: string, format: date, readOnly: true}
        tags: {type: array, items: {type: string}}
`

func names(list []fields.Field) []string {
	out := make([]string, 0, len(list))
	for _, f := range list {
		out = append(out, f.Name)
	}
	return out
}

func TestFields(t *testing.T) {
	doc, err := Parse(context.Background(), []byte(groups))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	schema, err := OperationSchema(doc, "createGroup")
	if err != nil {
		t.Fatalf("operation: %v", err)
	}
	list, skipped, err := Fields(schema)
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	want := []string{"code", "name", "contact", "createdAt", "description", "max_members", "visibility"}
	if diff := cmp.Diff(want, names(list)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"tags"}, skipped); diff != "" {
		t.Fatalf("skipped mismatch (-want +got):\n%s", diff)
	}

	byName := map[string]fields.Field{}
	for _, f := range list {
		byName[f.Name] = f
	}
	kinds := map[string]fields.Kind{
		"code":        fields.KindString,
		"contact":     fields.KindEmail,
		"createdAt":   fields.KindDate,
		"description": fields.KindText,
		"max_members": fields.KindInteger,
		"visibility":  fields.KindSelect,
	}
	for name, k := range kinds {
		if byName[name].Kind != k {
			t.Errorf("%s kind = %s, want %s", name, byName[name].Kind, k)
		}
	}
	if got := byName["max_members"].Label; got != "Max members" {
		t.Errorf("label = %q", got)
	}
	if got := byName["createdAt"].Label; got != "Created at" {
		t.Errorf("label = %q", got)
	}
	if byName["max_members"].Default != float64(10) {
		t.Errorf("default = %#v", byName["max_members"].Default)
	}
	for name, want := range map[string]bool{"name": true, "contact": false} {
		if got, _ := byName[name].Required.Eval(name, fields.Scope{}); got != want {
			t.Errorf("%s required = %v, want %v", name, got, want)
		}
	}
	if got, _ := byName["createdAt"].Readonly.Eval("createdAt", fields.Scope{}); !got {
		t.Errorf("readOnly property is editable")
	}
	if diff := cmp.Diff([]string{"edit"}, byName["code"].Readonly.Views()); diff != "" {
		t.Errorf("readonly views mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]fields.Choice{{Value: "public", Label: "Public"}, {Value: "private", Label: "Private"}}, byName["visibility"].Choices); diff != "" {
		t.Errorf("choices mismatch (-want +got):\n%s", diff)
	}
}

func TestSpec(t *testing.T) {
	doc, err := Parse(context.Background(), []byte(groups))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	schema, err := ComponentSchema(doc, "Group")
	if err != nil {
		t.Fatalf("component: %v", err)
	}
	spec, err := Spec("group", "code", schema)
	if err != nil {
		t.Fatalf("spec: %v", err)
	}
	if spec.PK != "code" || len(spec.Fields) != 7 {
		t.Fatalf("spec = %+v", spec)
	}
	if _, err := Spec("group", "id", schema); err == nil {
		t.Fatalf("unknown primary key accepted")
	}
	if _, err := ComponentSchema(doc, "Missing"); !errors.Is(err, ErrNoSchema) {
		t.Fatalf("expected ErrNoSchema, got %v", err)
	}
	if _, err := OperationSchema(doc, "deleteGroup"); !errors.Is(err, ErrNoSchema) {
		t.Fatalf("expected ErrNoSchema, got %v", err)
	}
}

func TestFieldsOrderedBeforeUnordered(t *testing.T) {
	doc := `openapi: 3.0.3
info: {title: order, version: "1"}
paths: {}
components:
  schemas:
    Item:
      type: object
      properties:
        alpha: {type: string}
        zulu: {type: string, x-crudui: {order: 0}}
        mike: {type: string, x-crudui: {order: 5}}
        bravo: {type: string, x-crudui: {placeholder: none}}
        owner: {type: object}
        labels: {type: array, items: {type: string}}
        audit: {type: object}
`
	parsed, err := Parse(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	schema, err := ComponentSchema(parsed, "Item")
	if err != nil {
		t.Fatalf("component: %v", err)
	}
	for range 5 {
		list, skipped, err := Fields(schema)
		if err != nil {
			t.Fatalf("fields: %v", err)
		}
		if diff := cmp.Diff([]string{"zulu", "mike", "alpha", "bravo"}, names(list)); diff != "" {
			t.Fatalf("order mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"audit", "labels", "owner"}, skipped); diff != "" {
			t.Fatalf("skipped mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestExtensionErrors(t *testing.T) {
	doc := `openapi: 3.0.3
info: {title: bad, version: "1"}
paths: {}
components:
  schemas:
    Bad:
      type: object
      properties:
        name: {type: string, x-crudui: {colour: red}}
`
	parsed, err := Parse(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	schema, err := ComponentSchema(parsed, "Bad")
	if err != nil {
		t.Fatalf("component: %v", err)
	}
	if _, _, err := Fields(schema); err == nil {
		t.Fatalf("unknown extension key accepted")
	}
}

func TestLoaderSources(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "groups.yaml")
	if err := os.WriteFile(path, []byte(groups), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(groups))
	}))
	defer srv.Close()
	remote, err := SourceFromURL(srv.URL + "/openapi.yaml")
	if err != nil {
		t.Fatalf("url: %v", err)
	}

	loader := NewLoader(
		WithFileSystem(fstest.MapFS{"groups.yaml": {Data: []byte(groups)}}),
		WithHTTPClient(srv.Client()),
	)
	for _, src := range []Source{SourceFromFile(path), SourceFromFS("groups.yaml"), remote} {
		doc, err := loader.Load(ctx, src)
		if err != nil {
			t.Fatalf("%s: %v", src.Kind(), err)
		}
		if doc.Info.Title != "groups" {
			t.Fatalf("%s: title %q", src.Kind(), doc.Info.Title)
		}
	}

	if _, err := NewLoader().Load(ctx, remote); !errors.Is(err, ErrHTTPDisabled) {
		t.Fatalf("expected ErrHTTPDisabled, got %v", err)
	}
	if _, err := SourceFromURL("ftp://example.com/doc"); err == nil {
		t.Fatalf("ftp url accepted")
	}
}

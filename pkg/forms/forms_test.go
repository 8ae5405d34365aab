package forms_test

import (
	"errors"
	"io/fs"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/forms"
	"github.com/goliatone/go-crudui/pkg/render"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/testsupport"
	"github.com/goliatone/go-crudui/pkg/validation"
	"github.com/goliatone/go-crudui/pkg/visibility/expr"
)

func userSpec(t *testing.T) forms.Spec {
	t.Helper()
	spec := forms.Spec{
		Name:    "user-edit",
		Context: "resource:user",
		PK:      "login",
		Fields: []fields.Field{
			{Name: "login", Required: fields.Bool(true), Readonly: fields.InViews("edit")},
			{Name: "name", Required: fields.Bool(true)},
			{Name: "age", Kind: fields.KindInteger},
			{Name: "score", Kind: fields.KindNumber},
			{Name: "active", Kind: fields.KindBoolean},
			{Name: "email", Kind: fields.KindEmail},
			{Name: "secret", Kind: fields.KindPassword, Invisible: fields.InViews("edit")},
		},
	}
	resolved, err := spec.Resolve(nil, expr.New())
	if err != nil {
		t.Fatalf("resolve spec: %v", err)
	}
	return resolved
}

func scope(view string) fields.Scope {
	return fields.Scope{Session: session.New(), View: view, Evaluator: expr.New()}
}

func TestResolveRejectsBrokenSpecs(t *testing.T) {
	cases := []struct {
		name string
		spec forms.Spec
	}{
		{name: "no pk", spec: forms.Spec{Name: "a", Fields: []fields.Field{{Name: "id"}}}},
		{name: "pk not a field", spec: forms.Spec{Name: "a", PK: "id", Fields: []fields.Field{{Name: "name"}}}},
		{name: "duplicate", spec: forms.Spec{Name: "a", PK: "id", Fields: []fields.Field{{Name: "id"}, {Name: "id"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.spec.Resolve(nil, nil); !errors.Is(err, forms.ErrForm) {
				t.Fatalf("expected ErrForm, got %v", err)
			}
		})
	}

	spec := userSpec(t)
	f, _ := spec.Field("name")
	if f.Context != "resource:user" {
		t.Fatalf("field context not inherited: %q", f.Context)
	}
}

func TestMergeReplacesInPlaceAndAppends(t *testing.T) {
	base := forms.Spec{PK: "id", Fields: []fields.Field{{Name: "id"}, {Name: "name"}}}
	got := forms.Merge(base,
		[]fields.Field{{Name: "name", Label: "Full name"}},
		[]fields.Field{{Name: "age"}, {Name: "name", Label: "Display name"}},
	)

	if diff := cmp.Diff([]string{"id", "name", "age"}, got.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if f, _ := got.Field("name"); f.Label != "Display name" {
		t.Fatalf("last override should win, got %q", f.Label)
	}
	if len(base.Fields) != 2 || base.Fields[1].Label != "" {
		t.Fatalf("base spec modified: %+v", base.Fields)
	}
}

func TestStatic(t *testing.T) {
	if !userSpec(t).Static() {
		t.Fatalf("view based predicates should be static")
	}
	dyn := forms.Spec{PK: "id", Fields: []fields.Field{{Name: "id", Readonly: fields.Expr("authenticated")}}}
	if dyn.Static() {
		t.Fatalf("expression predicates are dynamic")
	}
}

func TestDecodeCoercesEditableFields(t *testing.T) {
	spec := userSpec(t)
	values := url.Values{
		"login":  {"hacker"},
		"name":   {"Ada"},
		"age":    {"36"},
		"score":  {"4.5"},
		"active": {"false", "true"},
		"email":  {""},
		"secret": {"nope"},
	}

	form := spec.Decode(values, scope("edit"))
	want := map[string]any{
		"name":   "Ada",
		"age":    int64(36),
		"score":  4.5,
		"active": true,
		"email":  nil,
	}
	if diff := cmp.Diff(want, form.Values); diff != "" {
		t.Fatalf("decoded values mismatch (-want +got):\n%s", diff)
	}

	unchecked := spec.Decode(url.Values{"name": {"Ada"}, "active": {"false"}}, scope("edit"))
	if unchecked.Get("active") != false {
		t.Fatalf("unchecked box should decode to false, got %#v", unchecked.Get("active"))
	}

	broken := spec.Decode(url.Values{"name": {"Ada"}, "age": {"old"}}, scope("edit"))
	if broken.Get("age") != "old" {
		t.Fatalf("unparsable values should stay raw, got %#v", broken.Get("age"))
	}
}

func TestValidateMapsIssuesToFields(t *testing.T) {
	spec := userSpec(t)

	form := spec.Decode(url.Values{"name": {""}, "age": {"old"}, "email": {"not-an-email"}}, scope("edit"))
	if form.Validate(scope("edit")) {
		t.Fatalf("expected validation to fail")
	}
	for _, name := range []string{"name", "age", "email"} {
		if len(form.Errors[name]) == 0 {
			t.Fatalf("missing errors for %s: %+v", name, form.Errors)
		}
	}
	if _, ok := form.Errors["login"]; ok {
		t.Fatalf("readonly field validated: %+v", form.Errors)
	}
	if form.Valid() {
		t.Fatalf("Valid should reflect the stored errors")
	}

	fr := scope("edit")
	fr.Session.Lang = "fr"
	fr.Translator = render.TranslatorFunc(func(lang, context, msgid string) string {
		if lang == "fr" && context == validation.MessagesContext && msgid == "This field is required." {
			return "Ce champ est obligatoire."
		}
		return msgid
	})
	form = spec.Decode(url.Values{"name": {""}}, fr)
	form.Validate(fr)
	if diff := cmp.Diff([]string{"Ce champ est obligatoire."}, form.Errors["name"]); diff != "" {
		t.Fatalf("translated errors mismatch (-want +got):\n%s", diff)
	}

	ok := spec.Decode(url.Values{"name": {"Ada"}, "age": {"36"}, "email": {"ada@example.com"}}, scope("edit"))
	if !ok.Validate(scope("edit")) || !ok.Valid() {
		t.Fatalf("valid submission rejected: %+v %+v", ok.Errors, ok.FormErrors)
	}
}

func TestNewFillsDefaultsAndPK(t *testing.T) {
	spec := forms.Spec{PK: "id", Fields: []fields.Field{
		{Name: "id", Kind: fields.KindInteger},
		{Name: "role", Default: "reader"},
	}}
	form := spec.New(map[string]any{"id": int64(7)})
	if form.PK() != "7" {
		t.Fatalf("PK = %q", form.PK())
	}
	if form.Get("role") != "reader" {
		t.Fatalf("default not applied: %#v", form.Get("role"))
	}
	form.Set("role", "admin")
	if form.Get("role") != "admin" {
		t.Fatalf("Set ignored")
	}
}

func TestRenderLayout(t *testing.T) {
	_, pool := testsupport.Templates(t, []fs.FS{fields.TemplateFS})
	spec := userSpec(t)
	sc := scope("edit")
	sc.Executor = pool

	form := spec.New(map[string]any{"login": "ada", "name": "Ada", "secret": "x"})
	form.Errors = map[string][]string{"name": {"Too short."}}

	layout := `<section class="columns"><field name="login"/><field name="name" readonly="readonly"/><field name="secret"/></section>`
	out, err := form.Render(sc, layout, forms.ModeEdit)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, `<section class="columns">`) {
		t.Fatalf("layout markup lost:\n%s", out)
	}
	if strings.Contains(out, "<field") || strings.Contains(out, `data-field="secret"`) {
		t.Fatalf("placeholders or invisible fields left:\n%s", out)
	}
	if strings.Count(out, `readonly="readonly"`) != 2 {
		t.Fatalf("expected login and name readonly:\n%s", out)
	}
	if !strings.Contains(out, "Too short.") {
		t.Fatalf("field errors not rendered:\n%s", out)
	}

	read, err := form.Render(sc, "", forms.ModeRead)
	if err != nil {
		t.Fatalf("render default layout: %v", err)
	}
	for _, name := range []string{"login", "name", "age", "email"} {
		if !strings.Contains(read, `data-field="`+name+`"`) {
			t.Fatalf("default layout misses %s:\n%s", name, read)
		}
	}

	if _, err := form.Render(sc, `<field name="ghost"/>`, forms.ModeEdit); !errors.Is(err, forms.ErrForm) {
		t.Fatalf("expected ErrForm for an unknown field, got %v", err)
	}

	names, err := spec.FieldNames(layout)
	if err != nil {
		t.Fatalf("field names: %v", err)
	}
	if diff := cmp.Diff([]string{"login", "name", "secret"}, names); diff != "" {
		t.Fatalf("field names mismatch (-want +got):\n%s", diff)
	}
}

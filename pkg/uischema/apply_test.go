package uischema_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/menus"
	"github.com/goliatone/go-crudui/pkg/resources"
	"github.com/goliatone/go-crudui/pkg/uischema"
)

const overlay = `
resources:
  user:
    label: People
    defaultView: list
    fields:
      name:
        label: Full name
        readonly: "expr: !authenticated"
      age:
        kind: number
    views:
      list:
        limit: 5
        header:
          markup: <h1>People</h1>
        fields:
          name:
            invisible: "true"
      archive:
        kind: list
        label: Archive
menus:
  "menu:toolbar:page:about":
    label: About us
    tooltip: Who we are
    icon: <i class="fa fa-info"></i>
  "menu:toolbar:page:home":
    icon: fas fa-home
`

func loadOverlay(t *testing.T) *uischema.Store {
	t.Helper()
	store, err := uischema.LoadFS(fstest.MapFS{"ui.yaml": {Data: []byte(overlay)}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return store
}

func userResource() *resources.Resource {
	return &resources.Resource{
		Code:  "user",
		Label: "User",
		PK:    "id",
		Fields: []fields.Field{
			{Name: "id"},
			{Name: "name", Placeholder: "Jane"},
			{Name: "age", Kind: fields.KindInteger},
		},
		Views: []resources.ViewConfig{
			{Kind: resources.KindList, Limit: 50},
			{Kind: resources.KindRead},
		},
	}
}

func TestApplyResource(t *testing.T) {
	store := loadOverlay(t)
	res := userResource()
	if err := store.ApplyResource(res); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.Label != "People" || res.DefaultView != "list" {
		t.Fatalf("resource = %q default %q", res.Label, res.DefaultView)
	}

	name := res.Fields[1]
	if name.Label != "Full name" || name.Placeholder != "Jane" {
		t.Fatalf("name field = %+v", name)
	}
	if name.Readonly.Rule() != "!authenticated" {
		t.Fatalf("readonly rule = %q", name.Readonly.Rule())
	}
	if res.Fields[2].Kind != fields.KindNumber {
		t.Fatalf("age kind = %q", res.Fields[2].Kind)
	}

	views, err := resources.Compose(res.Views...)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	var codes []string
	for _, v := range views {
		codes = append(codes, v.Code)
	}
	if diff := cmp.Diff([]string{"list", "read", "archive"}, codes); diff != "" {
		t.Fatalf("views mismatch (-want +got):\n%s", diff)
	}
	list := views[0]
	if list.Limit != 5 || list.Header.Markup != "<h1>People</h1>" {
		t.Fatalf("list view = %+v", list)
	}
	if len(list.Fields) != 1 || list.Fields[0].Label != "Full name" {
		t.Fatalf("list fields = %+v", list.Fields)
	}
	hidden, _ := list.Fields[0].Invisible.Eval("name", fields.Scope{View: "list"})
	if !hidden {
		t.Fatalf("name should be invisible in the list")
	}
	if views[2].Kind != resources.KindList || views[2].Label != "Archive" {
		t.Fatalf("archive view = %+v", views[2])
	}
}

func TestApplyResourceErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown field", `{"resources": {"user": {"fields": {"email": {"label": "Mail"}}}}}`, `unknown field "email"`},
		{"unknown view field", `{"resources": {"user": {"views": {"list": {"fields": {"email": {}}}}}}}`, `unknown field "email"`},
		{"bad kind", `{"resources": {"user": {"fields": {"age": {"kind": "money"}}}}}`, `unknown kind "money"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, err := uischema.LoadFS(fstest.MapFS{"ui.json": {Data: []byte(tc.doc)}})
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			err = store.ApplyResource(userResource())
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestApplyResourceWithoutOverlay(t *testing.T) {
	res := userResource()
	res.Code = "group"
	if err := loadOverlay(t).ApplyResource(res); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.Label != "User" || len(res.Views) != 2 {
		t.Fatalf("resource changed: %+v", res)
	}
}

func TestApplyMenus(t *testing.T) {
	store := loadOverlay(t)
	about, err := menus.Toolbar("About", menus.QueryOf("page", "about"), menus.WithIcon("fa fa-question"))
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	other, err := menus.Toolbar("Home", menus.QueryOf("page", "home"))
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	reg := menus.NewRegistry()
	if err := reg.AddLeft(about, other); err != nil {
		t.Fatalf("register: %v", err)
	}
	store.ApplyMenus(reg)

	if about.Label != "About us" || about.Tooltip != "Who we are" {
		t.Fatalf("about = %+v", about)
	}
	if about.IconMarkup != `<i class="fa fa-info"></i>` {
		t.Fatalf("icon markup = %q", about.IconMarkup)
	}
	if other.Label != "Home" || other.Icon != "fas fa-home" || other.IconMarkup != "" {
		t.Fatalf("home = %+v", other)
	}
}

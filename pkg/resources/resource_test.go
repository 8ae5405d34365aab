package resources_test

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/resources"
	"github.com/goliatone/go-crudui/pkg/resources/memstore"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/testsupport"
	"github.com/goliatone/go-crudui/pkg/visibility/expr"
	"github.com/goliatone/go-crudui/pkg/web"
)

const currentList = "/admin?page=resource&resource=user&view=list"

type fixture struct {
	res   *resources.Resource
	store *memstore.Store
	sess  *session.Session
	calls []resources.Call
}

func userFields() []fields.Field {
	return []fields.Field{
		{Name: "id", Label: "Id", Readonly: fields.InViews("edit")},
		{Name: "name", Label: "Name", Required: fields.Bool(true)},
		{Name: "age", Label: "Age", Kind: fields.KindInteger},
		{Name: "secret", Label: "Secret", Invisible: fields.InViews("edit", "list")},
	}
}

func userViews() []resources.ViewConfig {
	return []resources.ViewConfig{
		{
			Kind:                   resources.KindList,
			CreateButtonRedirectTo: "create",
			DeleteButtonRedirectTo: "delete",
			OpenEntryRedirectTo:    "read",
			Filters:                []string{"name"},
			Actions: []resources.Actionset{{
				Label:   "Bulk",
				Actions: []resources.Action{resources.SelectedRowsAction("Archive", "archive")},
			}},
		},
		{Kind: resources.KindCreate, AfterCreateRedirectTo: "read"},
		{
			Kind:                   resources.KindRead,
			EditButtonRedirectTo:   "edit",
			DeleteButtonRedirectTo: "delete",
			ReturnButtonRedirectTo: "list",
			Actions: []resources.Actionset{{
				Label: "Tools",
				Actions: []resources.Action{
					resources.CallAction("Ping", "ping"),
					resources.CallAction("Audit", "audit").HiddenWhen(fields.Expr("!authenticated")),
				},
			}},
		},
		{Kind: resources.KindEdit, AfterUpdateRedirectTo: "read", CancelButtonRedirectTo: "read"},
		{Kind: resources.KindDelete, AfterDeleteRedirectTo: "list"},
	}
}

func newFixture(t *testing.T, rows int) *fixture {
	t.Helper()
	engine, pool := testsupport.Templates(t, []fs.FS{fields.TemplateFS, resources.TemplateFS})
	f := &fixture{store: memstore.New("id", "name"), sess: session.New()}
	for i := range rows {
		require.NoError(t, f.store.Insert(resources.Row{
			"id":   fmt.Sprintf("user-%02d", i),
			"name": fmt.Sprintf("name %02d", i),
			"age":  int64(i),
		}))
	}
	record := func(ctx context.Context, call resources.Call) (*web.Response, error) {
		f.calls = append(f.calls, call)
		return nil, nil
	}
	f.res = &resources.Resource{
		Code:    "user",
		Label:   "User",
		PK:      "id",
		Fields:  userFields(),
		Views:   userViews(),
		Backend: f.store,
		Methods: map[string]resources.MethodFunc{
			"archive": record,
			"ping":    record,
			"audit":   record,
		},
	}
	require.NoError(t, f.res.Build(resources.Runtime{
		Templates: engine,
		Executor:  pool,
		Evaluator: expr.New(),
		BaseURL:   "/admin",
	}))
	return f
}

func (f *fixture) request(t *testing.T, method web.Method, current, query string, body url.Values) *web.Request {
	t.Helper()
	req, err := web.NewRequest(method, f.sess,
		web.WithQuery(query),
		web.WithParams(body),
		web.WithForm(body),
		web.WithCurrentURL(current),
	)
	require.NoError(t, err)
	return req
}

func pushedQuery(t *testing.T, resp *web.Response) url.Values {
	t.Helper()
	raw := resp.Header(web.HeaderPushURL)
	require.NotEmpty(t, raw)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query()
}

func TestBuildChecksDefinitions(t *testing.T) {
	engine, pool := testsupport.Templates(t, []fs.FS{fields.TemplateFS, resources.TemplateFS})
	rt := resources.Runtime{Templates: engine, Executor: pool, Evaluator: expr.New()}
	valid := func() *resources.Resource {
		return &resources.Resource{
			Code:    "user",
			Label:   "User",
			PK:      "id",
			Fields:  userFields(),
			Views:   []resources.ViewConfig{{Kind: resources.KindList}},
			Backend: memstore.New("id", ""),
		}
	}

	cases := []struct {
		name   string
		mutate func(r *resources.Resource)
		want   error
	}{
		{"no code", func(r *resources.Resource) { r.Code = " " }, resources.ErrResource},
		{"no label", func(r *resources.Resource) { r.Label = "" }, resources.ErrResource},
		{"no pk", func(r *resources.Resource) { r.PK = "" }, resources.ErrViewForm},
		{"pk not a field", func(r *resources.Resource) { r.PK = "uuid" }, resources.ErrViewForm},
		{"no views", func(r *resources.Resource) { r.Views = nil }, resources.ErrResource},
		{"backend without lister", func(r *resources.Resource) { r.Backend = struct{}{} }, resources.ErrView},
		{"unknown redirect", func(r *resources.Resource) {
			r.Views[0].CreateButtonRedirectTo = "create"
		}, resources.ErrView},
		{"unknown method", func(r *resources.Resource) {
			r.Views[0].Actions = []resources.Actionset{{Actions: []resources.Action{resources.CallAction("Go", "missing")}}}
		}, resources.ErrResource},
		{"unknown goto view", func(r *resources.Resource) {
			r.Views[0].Actions = []resources.Actionset{{Actions: []resources.Action{resources.GotoAction("Go", "nowhere")}}}
		}, resources.ErrResource},
		{"broken action rule", func(r *resources.Resource) {
			r.Methods = map[string]resources.MethodFunc{"go": func(context.Context, resources.Call) (*web.Response, error) { return nil, nil }}
			r.Views[0].Actions = []resources.Actionset{{Actions: []resources.Action{
				resources.CallAction("Go", "go").HiddenWhen(fields.Expr("authenticated &&")),
			}}}
		}, resources.ErrResource},
		{"unknown filter", func(r *resources.Resource) { r.Views[0].Filters = []string{"nope"} }, resources.ErrFilter},
		{"unknown default view", func(r *resources.Resource) { r.DefaultView = "read" }, resources.ErrResource},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid()
			tc.mutate(r)
			require.ErrorIs(t, r.Build(rt), tc.want)
		})
	}

	r := valid()
	require.NoError(t, r.Build(rt))
	require.Equal(t, "list", r.DefaultView)
	require.Equal(t, []string{"resource-user-view-list"}, r.Templates())
}

func TestListPaginationPartitionsTheDataset(t *testing.T) {
	f := newFixture(t, 45)
	ctx := context.Background()
	spec := f.res.BuiltViews()[0].Form()

	seen := map[string]int{}
	for offset := 0; offset < 45; offset += resources.DefaultLimit {
		page, err := f.store.List(ctx, spec, nil, offset, resources.DefaultLimit)
		require.NoError(t, err)
		require.Equal(t, 45, page.Total)
		for _, row := range page.Rows {
			seen[row["id"].(string)]++
		}
	}
	require.Len(t, seen, 45)
	for pk, n := range seen {
		require.Equalf(t, 1, n, "%s listed %d times", pk, n)
	}

	req := f.request(t, web.MethodGet, currentList, "action=pagination&offset=20", nil)
	resp, err := f.res.Router(ctx, req)
	require.NoError(t, err)
	require.Contains(t, resp.Body, "user-20")
	require.Contains(t, resp.Body, "user-39")
	require.NotContains(t, resp.Body, "user-19")
	require.NotContains(t, resp.Body, "user-40")
	qs := pushedQuery(t, resp)
	require.Equal(t, "20", qs.Get("offset"))
	require.Equal(t, "list", qs.Get("view"))
	require.Equal(t, "user", qs.Get("resource"))
}

func TestFilterToggleRoundTrip(t *testing.T) {
	f := newFixture(t, 30)
	ctx := context.Background()
	current := currentList + "&offset=20"

	add := f.request(t, web.MethodPost, current, "action=filters", url.Values{"name-contains": {"name 0"}})
	resp, err := f.res.Router(ctx, add)
	require.NoError(t, err)
	added := pushedQuery(t, resp)
	require.Equal(t, "name 0", added.Get("filter-name-contains"))
	require.Equal(t, "0", added.Get("offset"))
	require.Contains(t, resp.Body, "user-09")
	require.NotContains(t, resp.Body, "user-10")

	remove := f.request(t, web.MethodDelete, "/admin?"+added.Encode(), "action=filters&name-contains=name+0", nil)
	resp, err = f.res.Router(ctx, remove)
	require.NoError(t, err)
	removed := pushedQuery(t, resp)
	require.NotContains(t, removed, "filter-name-contains")
	require.Equal(t, "0", removed.Get("offset"))

	before, err := url.ParseQuery(strings.SplitN(current, "?", 2)[1])
	require.NoError(t, err)
	before.Set("offset", "0")
	require.Equal(t, before, removed)

	unknown := f.request(t, web.MethodPost, currentList, "action=filters", url.Values{"nope": {"x"}})
	_, err = f.res.Router(ctx, unknown)
	require.ErrorIs(t, err, resources.ErrFilter)
}

func TestFieldVisibilityPerView(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	edit, ok := f.res.View("edit")
	require.True(t, ok)
	read, ok := f.res.View("read")
	require.True(t, ok)

	scopeFor := func(view string) fields.Scope {
		return fields.Scope{Session: f.sess, View: view}
	}
	editSchema := edit.Form().Schema(scopeFor("edit"), false)
	require.NotContains(t, editSchema.Properties, "secret")
	require.NotContains(t, editSchema.Properties, "id")
	require.Contains(t, editSchema.Properties, "name")
	createView, _ := f.res.View("create")
	require.Contains(t, createView.Form().Schema(scopeFor("create"), false).Properties, "secret")

	editHTML, err := edit.Render(ctx, f.sess, url.Values{"view": {"edit"}, "pk": {"user-00"}})
	require.NoError(t, err)
	require.NotContains(t, editHTML, `name="secret"`)
	require.Contains(t, editHTML, `name="name"`)

	readHTML, err := read.Render(ctx, f.sess, url.Values{"view": {"read"}, "pk": {"user-00"}})
	require.NoError(t, err)
	require.Contains(t, readHTML, `name="secret"`)
}

func TestActionMethodValidation(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	currentRead := "/admin?page=resource&resource=user&view=read&pk=user-01"

	// save only accepts POST
	get := f.request(t, web.MethodGet, "/admin?page=resource&resource=user&view=create", "action=save", nil)
	_, err := f.res.Router(ctx, get)
	require.ErrorIs(t, err, web.ErrActionValidator)

	// call rejects a method missing from the view actions
	undeclared := f.request(t, web.MethodPost, currentRead, "action=call&method=archive", nil)
	_, err = f.res.Router(ctx, undeclared)
	require.ErrorIs(t, err, web.ErrActionValidator)
	require.ErrorIs(t, err, resources.ErrViewAction)

	// audit is hidden for anonymous sessions
	hidden := f.request(t, web.MethodPost, currentRead, "action=call&method=audit", nil)
	_, err = f.res.Router(ctx, hidden)
	require.ErrorIs(t, err, web.ErrActionValidator)

	ping := f.request(t, web.MethodPost, currentRead, "action=call&method=ping", nil)
	resp, err := f.res.Router(ctx, ping)
	require.NoError(t, err)
	require.Contains(t, resp.Body, "resource-user-view-read")
	require.Len(t, f.calls, 1)
	require.Equal(t, []string{"user-01"}, f.calls[0].PKs)

	f.sess.Login("admin")
	_, err = f.res.Router(ctx, f.request(t, web.MethodPost, currentRead, "action=call&method=audit", nil))
	require.NoError(t, err)

	bulk := f.request(t, web.MethodPost, currentList, "action=call&method=archive",
		url.Values{"selected-rows-resource-user-view-list": {"user-00", "user-02"}})
	_, err = f.res.Router(ctx, bulk)
	require.NoError(t, err)
	require.Equal(t, []string{"user-00", "user-02"}, f.calls[len(f.calls)-1].PKs)

	_, err = f.res.Router(ctx, f.request(t, web.MethodGet, "/admin?page=resource&resource=user&view=nope", "action=goto", nil))
	require.ErrorIs(t, err, resources.ErrRouter)
	require.ErrorIs(t, err, resources.ErrResource)

	_, err = f.res.Router(ctx, f.request(t, web.MethodGet, currentList, "action=explode", nil))
	require.ErrorIs(t, err, resources.ErrRouter)
}

func TestDeleteWorkflow(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	require.NoError(t, f.store.Insert(
		resources.Row{"id": "foo", "name": "Foo"},
		resources.Row{"id": "bar", "name": "Bar"},
		resources.Row{"id": "baz", "name": "Baz"},
	))

	gotoDelete := f.request(t, web.MethodPost, currentList, "action=goto_delete",
		url.Values{"selected-rows-resource-user-view-list": {"foo", "bar"}})
	resp, err := f.res.Router(ctx, gotoDelete)
	require.NoError(t, err)
	require.Contains(t, resp.Body, "Foo")
	deleting := pushedQuery(t, resp)
	require.Equal(t, []string{"foo", "bar"}, deleting["pk"])
	require.Equal(t, "delete", deleting.Get("view"))

	del := f.request(t, web.MethodDelete, "/admin?"+deleting.Encode(), "action=delete", nil)
	resp, err = f.res.Router(ctx, del)
	require.NoError(t, err)

	var deletes []memstore.Call
	for _, c := range f.store.Calls() {
		if c.Op == "delete" {
			deletes = append(deletes, c)
		}
	}
	require.Len(t, deletes, 1)
	require.Equal(t, []string{"foo", "bar"}, deletes[0].PKs)

	after := pushedQuery(t, resp)
	require.NotContains(t, after, "pk")
	require.Equal(t, "list", after.Get("view"))
	require.Contains(t, resp.Body, "baz")

	// a failing delete re-renders the confirmation with the error
	again := f.request(t, web.MethodDelete, "/admin?"+deleting.Encode(), "action=delete", nil)
	resp, err = f.res.Router(ctx, again)
	require.NoError(t, err)
	require.Empty(t, resp.Header(web.HeaderPushURL))
	require.Contains(t, resp.Body, "entry not found")
}

func TestCreateAndEditWorkflow(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	currentCreate := "/admin?page=resource&resource=user&view=create"

	invalid := f.request(t, web.MethodPost, currentCreate, "action=save", url.Values{"age": {"12"}})
	resp, err := f.res.Router(ctx, invalid)
	require.NoError(t, err)
	require.Empty(t, resp.Header(web.HeaderPushURL))
	require.Contains(t, resp.Body, "This field is required.")
	require.Equal(t, 0, f.store.Len())

	valid := f.request(t, web.MethodPost, currentCreate, "action=save", url.Values{"id": {"u1"}, "name": {"Ann"}, "age": {"12"}})
	resp, err = f.res.Router(ctx, valid)
	require.NoError(t, err)
	created := pushedQuery(t, resp)
	require.Equal(t, "read", created.Get("view"))
	require.Equal(t, "u1", created.Get("pk"))
	require.Contains(t, resp.Body, "Ann")

	duplicate := f.request(t, web.MethodPost, currentCreate, "action=save", url.Values{"id": {"u1"}, "name": {"Bob"}})
	resp, err = f.res.Router(ctx, duplicate)
	require.NoError(t, err)
	require.Contains(t, resp.Body, "duplicate entry")
	require.Contains(t, resp.Body, `value="Bob"`)

	currentEdit := "/admin?page=resource&resource=user&view=edit&pk=u1"
	edit := f.request(t, web.MethodPost, currentEdit, "action=save", url.Values{"name": {"Annie"}, "age": {"13"}})
	resp, err = f.res.Router(ctx, edit)
	require.NoError(t, err)
	require.Equal(t, "read", pushedQuery(t, resp).Get("view"))

	row, err := f.store.Read(ctx, f.res.BuiltViews()[0].Form(), "u1")
	require.NoError(t, err)
	require.Equal(t, "Annie", row["name"])
	require.Equal(t, int64(13), row["age"])

	missing, err := f.res.Render(ctx, f.sess, url.Values{"view": {"read"}, "pk": {"nobody"}})
	require.NoError(t, err)
	require.Contains(t, missing, "Not found")
}

func TestRenderAndCatalog(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	page, err := f.res.Render(ctx, f.sess, nil)
	require.NoError(t, err)
	require.Contains(t, page, `id="crudui-resource-user"`)
	require.Contains(t, page, "user-01")
	require.Contains(t, page, `name="selected-rows-resource-user-view-list"`)
	require.Contains(t, page, "Archive")

	denied := func(context.Context, *session.Session, url.Values) (string, error) { return "denied", nil }
	f.res.PageSecurity = resources.PageForAuthenticated(denied)
	page, err = f.res.Render(ctx, f.sess, nil)
	require.NoError(t, err)
	require.Contains(t, page, "denied")
	require.NotContains(t, page, "user-01")

	f.res.ActionSecurity = resources.ActionForAuthenticated
	_, err = f.res.Router(ctx, f.request(t, web.MethodGet, currentList, "action=pagination&offset=0", nil))
	require.ErrorIs(t, err, resources.ErrForbidden)

	sink := &recordingSink{}
	f.res.ExportCatalog(sink)
	require.Contains(t, sink.entries, [2]string{"resource:user:label", "User"})
	require.Contains(t, sink.entries, [2]string{"resource:user:field:name:label", "Name"})
	require.Contains(t, sink.entries, [2]string{"resource:user:view:read:action:ping:label", "Ping"})
	require.Contains(t, sink.entries, [2]string{"resource:user:view:list:actionset:label", "Bulk"})
}

type recordingSink struct {
	entries [][2]string
}

func (s *recordingSink) Define(context, msgid string) {
	s.entries = append(s.entries, [2]string{context, msgid})
}

package web_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/web"
)

func TestNewRequestValidation(t *testing.T) {
	if _, err := web.NewRequest(web.MethodGet, nil); !errors.Is(err, web.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := web.NewRequest("TRACE", session.New()); !errors.Is(err, web.ErrRequest) {
		t.Fatalf("expected ErrRequest, got %v", err)
	}
	if _, err := web.NewRequest(web.MethodPost, session.New(), web.WithBody("a=%zz")); !errors.Is(err, web.ErrRequestForm) {
		t.Fatalf("expected ErrRequestForm, got %v", err)
	}
}

func TestRequestValues(t *testing.T) {
	req, err := web.NewRequest("get", session.New(), web.WithQuery("?view=list&id=1&id=2"))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if req.Method != web.MethodGet {
		t.Fatalf("method = %q", req.Method)
	}
	if diff := cmp.Diff([]string{"1", "2"}, req.Values()["id"]); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	post, err := web.NewRequest(web.MethodPost, session.New(),
		web.WithQuery("action=save"),
		web.WithBody("name=Ada&action=filters"),
	)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if got := post.Value("action"); got != "filters" {
		t.Fatalf("POST values must come from params, got %q", got)
	}
	if got := post.Form.Get("name"); got != "Ada" {
		t.Fatalf("form name = %q", got)
	}
}

func TestCurrentURL(t *testing.T) {
	req, err := web.NewRequest(web.MethodGet, session.New(),
		web.WithCurrentURL("http://host/admin?page=resource&resource=user&pk=1&pk=2"))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if got := req.CurrentURLPath(); got != "/admin" {
		t.Fatalf("path = %q", got)
	}
	qs := req.CurrentURLQuery()
	qs.Del("pk")
	if again := req.CurrentURLQuery(); len(again["pk"]) != 2 {
		t.Fatalf("CurrentURLQuery must return a copy, got %v", again)
	}
	if got := web.URLFromValues("/admin", qs); got != "/admin?page=resource&resource=user" {
		t.Fatalf("url = %q", got)
	}
	if got := web.URLFromValues("/admin", url.Values{}); got != "/admin" {
		t.Fatalf("url without query = %q", got)
	}

	bare, _ := web.NewRequest(web.MethodGet, session.New())
	if bare.CurrentURLPath() != "/" || len(bare.CurrentURLQuery()) != 0 {
		t.Fatalf("missing header must default to /")
	}
}

func TestFromHTTP(t *testing.T) {
	hr := httptest.NewRequest(http.MethodPost, "/action/resource?action=save", strings.NewReader("name=Ada"))
	hr.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	hr.Header.Set(web.HeaderCurrentURL, "/?page=resource")
	req, err := web.FromHTTP(hr, session.New())
	if err != nil {
		t.Fatalf("from http: %v", err)
	}
	if req.Form.Get("name") != "Ada" || req.Query.Get("action") != "save" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.CurrentURLQuery().Get("page") != "resource" {
		t.Fatalf("current url header lost")
	}
}

func TestAllowMethods(t *testing.T) {
	ok := func(context.Context, *web.Request) (*web.Response, error) {
		return web.NewResponse("ok"), nil
	}
	h := web.AllowMethods(ok, web.MethodGet)

	get, _ := web.NewRequest(web.MethodGet, session.New())
	resp, err := h(context.Background(), get)
	if err != nil || resp.Body != "ok" {
		t.Fatalf("GET: %v %v", resp, err)
	}

	post, _ := web.NewRequest(web.MethodPost, session.New())
	if _, err := h(context.Background(), post); !errors.Is(err, web.ErrActionValidator) {
		t.Fatalf("expected ErrActionValidator, got %v", err)
	}

	empty := web.AllowMethods(func(context.Context, *web.Request) (*web.Response, error) { return nil, nil })
	if _, err := empty(context.Background(), post); !errors.Is(err, web.ErrActionValidator) {
		t.Fatalf("nil response must fail, got %v", err)
	}
}

func TestResponse(t *testing.T) {
	resp := web.NewResponse("<p>hi</p>").PushURL("/x?a=1").Refresh()
	if resp.Header(web.HeaderPushURL) != "/x?a=1" || resp.Header(web.HeaderRefresh) != "true" {
		t.Fatalf("headers = %v", resp.Headers)
	}

	var buf bytes.Buffer
	if err := resp.Component().Render(context.Background(), &buf); err != nil {
		t.Fatalf("render component: %v", err)
	}
	if buf.String() != "<p>hi</p>" {
		t.Fatalf("component = %q", buf.String())
	}

	rec := httptest.NewRecorder()
	if err := resp.Redirect("/login").Write(rec); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Header().Get(web.HeaderRedirect) != "/login" || rec.Body.String() != "<p>hi</p>" {
		t.Fatalf("recorded %d %v %q", rec.Code, rec.Header(), rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html" {
		t.Fatalf("content type = %q", ct)
	}
}

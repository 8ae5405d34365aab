package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-crudui/pkg/menus"
	"github.com/goliatone/go-crudui/pkg/resources"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/templates"
)

// Page renders the content of the main element for a session. options is
// the querystring of the page.
type Page = resources.RenderFunc

// RegisterPage adds or replaces the page name. Security hooks wrap the page
// in order, the first one outermost.
func (c *Client) RegisterPage(name string, page Page, security ...resources.PageSecurity) error {
	name = strings.TrimSpace(name)
	if name == "" || page == nil {
		return fmt.Errorf("client: %w: page without name or renderer", ErrRegistration)
	}
	for i := len(security) - 1; i >= 0; i-- {
		if security[i] != nil {
			page = security[i](page)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[name] = page
	c.cfg.logger.Debug("page registered", "page", name)
	return nil
}

// RegisterStaticPage registers a page rendering markup. The markup is
// loaded as the template crudui-static-page-{name}, so it is translated and
// exported like any other template.
func (c *Client) RegisterStaticPage(name, markup string, security ...resources.PageSecurity) error {
	id := "crudui-static-page-" + name
	src := fmt.Sprintf(`<template id="%s">%s</template>`, id, markup)
	if err := c.templates.LoadString(src, templates.WithAddon(Addon)); err != nil {
		return fmt.Errorf("client: static page %s: %w", name, err)
	}
	return c.RegisterPage(name, func(_ context.Context, sess *session.Session, options url.Values) (string, error) {
		return c.RenderTemplate(sess, id, pageData(options))
	}, security...)
}

// Page returns the page name.
func (c *Client) Page(name string) (Page, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	page, ok := c.pages[name]
	if !ok {
		return nil, fmt.Errorf("client: %w: %q", ErrUnknownPage, name)
	}
	return page, nil
}

// PageOrNotFound returns the page name, the 404 page when unknown.
func (c *Client) PageOrNotFound(name string) Page {
	if page, err := c.Page(name); err == nil {
		return page
	}
	return c.page404
}

// PageForAuthenticated renders the forbidden page for anonymous sessions.
func (c *Client) PageForAuthenticated() resources.PageSecurity {
	return resources.PageForAuthenticated(c.pageForbidden)
}

// PageForUnauthenticated renders the homepage once the session is logged in.
func (c *Client) PageForUnauthenticated() resources.PageSecurity {
	return resources.PageForUnauthenticated(c.homepage)
}

func pageData(options url.Values) map[string]any {
	data := make(map[string]any, len(options))
	for k, v := range options {
		if len(v) > 0 {
			data[k] = v[0]
		}
	}
	return data
}

func (c *Client) registerBuiltinPages() error {
	builtins := []struct {
		name     string
		page     Page
		security []resources.PageSecurity
	}{
		{"404", c.page404, nil},
		{"forbidden", c.pageForbidden, nil},
		{"homepage", c.homepage, nil},
		{"login", c.pageLogin, []resources.PageSecurity{c.PageForUnauthenticated()}},
		{"signup", c.pageSignup, []resources.PageSecurity{c.PageForUnauthenticated()}},
		{"aside-menu", c.pageAsideMenu, nil},
		{"resource", c.pageResource, nil},
	}
	for _, b := range builtins {
		if err := c.RegisterPage(b.name, b.page, b.security...); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) page404(_ context.Context, sess *session.Session, options url.Values) (string, error) {
	return c.RenderTemplate(sess, "crudui-page-404", map[string]any{"page": options.Get("page")})
}

func (c *Client) pageForbidden(_ context.Context, sess *session.Session, options url.Values) (string, error) {
	return c.RenderTemplate(sess, "crudui-page-forbidden", map[string]any{"page": options.Get("page")})
}

func (c *Client) homepage(_ context.Context, sess *session.Session, _ url.Values) (string, error) {
	return c.RenderTemplate(sess, "crudui-page-homepage", nil)
}

func (c *Client) pageLogin(_ context.Context, sess *session.Session, _ url.Values) (string, error) {
	return c.renderAuthPage(sess, "crudui-page-login", c.loginForm.New(nil), "")
}

func (c *Client) pageSignup(_ context.Context, sess *session.Session, _ url.Values) (string, error) {
	return c.renderAuthPage(sess, "crudui-page-signup", c.signupForm.New(nil), "")
}

// pageAsideMenu renders the aside group named by the aside option next to
// the page named by aside_page.
func (c *Client) pageAsideMenu(ctx context.Context, sess *session.Session, options url.Values) (string, error) {
	code := options.Get("aside")
	group, ok := c.menus.Aside(code)
	if !ok {
		return c.page404(ctx, sess, url.Values{"page": {"aside-menu:" + code}})
	}
	rendered, err := menus.Renderer{Scope: c.scope(sess, ""), BaseURL: c.cfg.baseURL}.Render(group)
	if err != nil {
		return "", err
	}
	var body string
	if name := options.Get("aside_page"); name != "" {
		inner := c.PageOrNotFound(name)
		qs := url.Values{}
		for k, v := range options {
			if k != "aside" && k != "aside_page" {
				qs[k] = v
			}
		}
		qs.Set("page", name)
		if body, err = inner(ctx, sess, qs); err != nil {
			return "", err
		}
	}
	return c.RenderTemplate(sess, "crudui-page-aside-menu", map[string]any{
		"aside": code,
		"menus": rendered,
		"page":  body,
	})
}

// pageResource renders the resource named by the resource option.
func (c *Client) pageResource(ctx context.Context, sess *session.Session, options url.Values) (string, error) {
	res, err := c.Resource(options.Get("resource"))
	if err != nil {
		c.cfg.logger.Debug("resource page without resource", "resource", options.Get("resource"))
		return c.page404(ctx, sess, url.Values{"page": {"resource:" + options.Get("resource")}})
	}
	return res.Render(ctx, sess, options)
}

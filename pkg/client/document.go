package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-crudui/pkg/menus"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/themes"
	"github.com/goliatone/go-crudui/pkg/web"
)

const doctype = "<!DOCTYPE html>\n"

// Render renders the full document of a GET request: the toolbar and the
// page named by the page query parameter, the homepage by default.
func (c *Client) Render(ctx context.Context, req *web.Request) (*web.Response, error) {
	if req == nil || req.Session == nil {
		return nil, fmt.Errorf("client: %w", web.ErrNoSession)
	}
	if err := web.CheckMethod(req, web.MethodGet); err != nil {
		return nil, err
	}
	sess := req.Session
	options := web.CloneValues(req.Query)
	name := options.Get("page")
	if name == "" {
		name = "homepage"
		options.Set("page", name)
	}
	main, err := c.PageOrNotFound(name)(ctx, sess, options)
	if err != nil {
		return nil, err
	}

	rd := menus.Renderer{Scope: c.scope(sess, ""), BaseURL: c.cfg.baseURL}
	left, err := rd.Render(c.menus.Left())
	if err != nil {
		return nil, err
	}
	right, err := rd.Render(c.menus.Right())
	if err != nil {
		return nil, err
	}

	stylesheets, scripts, style := c.assets(sess)
	headers, err := c.hxHeaders(sess)
	if err != nil {
		return nil, err
	}
	body, err := c.RenderTemplate(sess, "crudui-document", map[string]any{
		"lang":          sess.Language(),
		"title":         c.cfg.title,
		"stylesheets":   stylesheets,
		"scripts":       scripts,
		"theme_style":   style,
		"hx_headers":    headers,
		"left_menus":    left,
		"right_menus":   right,
		"auth":          c.cfg.auth != nil,
		"authenticated": sess.Authenticated(),
		"user":          sess.User,
		"main":          main,
	})
	if err != nil {
		return nil, err
	}
	return web.NewResponse(doctype + body), nil
}

// assets returns the stylesheets, scripts and inline style of the document
// for the theme of sess.
func (c *Client) assets(sess *session.Session) ([]string, []string, string) {
	stylesheets := append([]string(nil), c.cfg.stylesheets...)
	scripts := append([]string(nil), c.cfg.scripts...)
	for _, name := range c.static.names(StaticCSS) {
		stylesheets = append(stylesheets, c.staticURL(name))
	}
	for _, name := range c.static.names(StaticJS) {
		scripts = append(scripts, c.staticURL(name))
	}
	if c.cfg.themes == nil {
		return stylesheets, scripts, ""
	}
	cfg, err := c.cfg.themes.ForSession(sess)
	if err != nil {
		c.cfg.logger.Warn("theme not applied", "theme", sess.Theme, "error", err)
		return stylesheets, scripts, ""
	}
	if href := cfg.AssetURL(themes.AssetStylesheet); href != "" {
		stylesheets = append(stylesheets, href)
	}
	if src := cfg.AssetURL(themes.AssetScript); src != "" {
		scripts = append(scripts, src)
	}
	return stylesheets, scripts, themes.Style(cfg)
}

// hxHeaders is the JSON of the headers htmx adds to every request.
func (c *Client) hxHeaders(sess *session.Session) (string, error) {
	headers := map[string]string{}
	if token := c.csrfToken(sess); token != "" && c.cfg.csrfHeader != "" {
		headers[c.cfg.csrfHeader] = token
	}
	raw, err := json.Marshal(headers)
	if err != nil {
		return "", fmt.Errorf("client: hx-headers: %w", err)
	}
	return string(raw), nil
}

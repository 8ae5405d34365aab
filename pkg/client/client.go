// Package client is the entry point of a crudui application. A Client owns
// the template engine, the pages, the actions, the resources, the menus and
// the static files of one admin UI; host adapters turn HTTP requests into
// web.Request values and call Render or ExecuteAction.
package client

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/forms"
	"github.com/goliatone/go-crudui/pkg/menus"
	"github.com/goliatone/go-crudui/pkg/render"
	"github.com/goliatone/go-crudui/pkg/render/template/gotemplate"
	"github.com/goliatone/go-crudui/pkg/resources"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/templates"
	"github.com/goliatone/go-crudui/pkg/translation"
	"github.com/goliatone/go-crudui/pkg/visibility/expr"
	"github.com/goliatone/go-crudui/pkg/web"
	"github.com/goliatone/go-crudui/pkg/widgets"
)

// Addon names the built-in templates in catalog exports.
const Addon = "crudui"

// Client is one isolated admin UI.
type Client struct {
	cfg       config
	templates *templates.Engine
	pool      *gotemplate.Pool
	menus     *menus.Registry
	static    *staticRegistry

	loginForm  forms.Spec
	signupForm forms.Spec

	mu        sync.RWMutex
	pages     map[string]Page
	actions   map[string]web.Handler
	resources map[string]*resources.Resource
	order     []string
}

// New returns a client with the built-in templates, pages, actions and
// static files registered.
func New(opts ...Option) (*Client, error) {
	cfg := config{
		title:       "crudui",
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		stylesheets: []string{BulmaCSS},
		scripts:     []string{HtmxJS},
		csrfField:   "csrf_token",
		csrfHeader:  "X-CSRF-Token",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	cfg.baseURL = strings.TrimRight(cfg.baseURL, "/")
	if cfg.translations == nil {
		cfg.translations = translation.NewStore(translation.WithLogger(cfg.logger))
	}
	if cfg.evaluator == nil {
		cfg.evaluator = expr.New()
	}
	if cfg.widgets == nil {
		cfg.widgets = widgets.Default()
	}

	engine := templates.New(templates.WithTranslator(cfg.translations), templates.WithLogger(cfg.logger))
	rendererOpts := append([]gotemplate.Option{
		gotemplate.WithGlobalData(map[string]any{"base_url": cfg.baseURL}),
		gotemplate.WithTemplateFunc(render.TemplateI18nFuncs(cfg.translations, render.TemplateI18nConfig{})),
	}, cfg.rendererOpts...)
	c := &Client{
		cfg:       cfg,
		templates: engine,
		pool:      gotemplate.NewPool(engine, rendererOpts...),
		menus:     menus.NewRegistry(),
		static:    newStaticRegistry(),
		pages:     make(map[string]Page),
		actions:   make(map[string]web.Handler),
		resources: make(map[string]*resources.Resource),
	}
	for _, fsys := range builtinTemplates() {
		if err := engine.LoadFS(fsys, Addon); err != nil {
			return nil, fmt.Errorf("client: built-in templates: %w", err)
		}
	}
	if err := c.registerAuthForms(); err != nil {
		return nil, err
	}
	if err := c.registerBuiltinPages(); err != nil {
		return nil, err
	}
	if err := c.registerBuiltinActions(); err != nil {
		return nil, err
	}
	if err := c.registerBuiltinStatic(); err != nil {
		return nil, err
	}
	return c, nil
}

// Logger returns the client logger.
func (c *Client) Logger() *slog.Logger { return c.cfg.logger }

// BaseURL returns the path prefix of the client urls.
func (c *Client) BaseURL() string { return c.cfg.baseURL }

// Templates returns the template engine.
func (c *Client) Templates() *templates.Engine { return c.templates }

// Translations returns the translation store.
func (c *Client) Translations() *translation.Store { return c.cfg.translations }

// Menus returns the menu registry.
func (c *Client) Menus() *menus.Registry { return c.menus }

// scope returns the rendering scope of a session in view.
func (c *Client) scope(sess *session.Session, view string) fields.Scope {
	return fields.Scope{
		Session:    sess,
		View:       view,
		Evaluator:  c.cfg.evaluator,
		Translator: c.cfg.translations,
		Executor:   c.pool,
		Logger:     c.cfg.logger,
	}
}

// hidden returns the fields posted with every form of sess.
func (c *Client) hidden(sess *session.Session) []render.HiddenField {
	token := c.csrfToken(sess)
	if token == "" {
		return nil
	}
	return []render.HiddenField{render.CSRFToken(c.cfg.csrfField, token)}
}

func (c *Client) csrfToken(sess *session.Session) string {
	if v, ok := sess.Get(CSRFSessionKey); ok {
		if token, ok := v.(string); ok {
			return token
		}
	}
	return ""
}

func (c *Client) hiddenInputs(sess *session.Session) string {
	return render.HiddenInputs(render.MergeHiddenFields(nil, c.hidden(sess)...))
}

// translate resolves msgid for the session language.
func (c *Client) translate(sess *session.Session, context, msgid string) string {
	return render.Translate(c.cfg.translations, nil, sess.Language(), context, msgid)
}

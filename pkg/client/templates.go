package client

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/menus"
	"github.com/goliatone/go-crudui/pkg/resources"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/templates"
)

// TemplateFS holds the document, toolbar and page templates.
//
//go:embed templates/*.tmpl
var TemplateFS embed.FS

//go:embed static/*
var staticFS embed.FS

func builtinTemplates() []fs.FS {
	return []fs.FS{fields.TemplateFS, resources.TemplateFS, menus.TemplateFS, TemplateFS}
}

func builtinStatic() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// RegisterTemplateString loads the templates of src under addon. Templates
// are registered at startup: compiled templates are never invalidated.
func (c *Client) RegisterTemplateString(src, addon string, opts ...templates.LoadOption) error {
	opts = append([]templates.LoadOption{templates.WithAddon(addon)}, opts...)
	if err := c.templates.LoadString(src, opts...); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	return nil
}

// RegisterTemplateFS loads the files of fsys matching patterns under addon.
func (c *Client) RegisterTemplateFS(fsys fs.FS, addon string, patterns ...string) error {
	if err := c.templates.LoadFS(fsys, addon, patterns...); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	return nil
}

// RegisterTemplateFile loads the template file at path under addon.
func (c *Client) RegisterTemplateFile(path, addon string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("client: %w: %v", ErrRegistration, err)
	}
	defer f.Close()
	if err := c.templates.Load(f, templates.WithAddon(addon)); err != nil {
		return fmt.Errorf("client: %s: %w", path, err)
	}
	return nil
}

// RenderTemplate renders the template id in the session language.
func (c *Client) RenderTemplate(sess *session.Session, id string, data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["base_url"]; !ok {
		data["base_url"] = c.cfg.baseURL
	}
	return c.pool.Execute(sess.Language(), id, data)
}

// Compile compiles every template for each language so that the first
// requests hit warm caches.
func (c *Client) Compile(langs ...string) error {
	if len(langs) == 0 {
		langs = c.cfg.translations.Languages()
	}
	if len(langs) == 0 {
		langs = []string{templates.DefaultLang}
	}
	for _, lang := range langs {
		if err := c.templates.Compile(lang); err != nil {
			return fmt.Errorf("client: compile %s: %w", lang, err)
		}
	}
	c.cfg.logger.Info("templates compiled", "languages", langs, "templates", len(c.templates.IDs()))
	return nil
}

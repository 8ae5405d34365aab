package client

import (
	"fmt"
	"io"

	"github.com/goliatone/go-crudui/pkg/templates"
	"github.com/goliatone/go-crudui/pkg/translation"
)

// ExportCatalog defines on sink the translatable strings of addon, every
// addon when empty. Resource addons are named resource-{code}; the client
// addon also carries the menus and the login and signup forms.
func (c *Client) ExportCatalog(sink templates.Sink, addon string) {
	c.templates.ExportCatalog(sink, addon)
	if addon == "" || addon == Addon {
		c.menus.ExportCatalog(sink)
		c.loginForm.ExportCatalog(sink)
		c.signupForm.ExportCatalog(sink)
		sink.Define("form:signup:error:password_confirm", passwordMismatch)
	}
	for _, r := range c.Resources() {
		if addon == "" || addon == r.Addon() {
			r.ExportCatalog(sink)
		}
	}
}

// ExportPOT writes the catalog template of addon to w.
func (c *Client) ExportPOT(w io.Writer, addon string) error {
	cat := c.Catalog(addon)
	if _, err := cat.WriteTo(w); err != nil {
		return fmt.Errorf("client: export catalog: %w", err)
	}
	return nil
}

// Catalog returns the catalog template of addon.
func (c *Client) Catalog(addon string) *translation.Catalog {
	cat := translation.NewCatalog(c.cfg.catalogVersion)
	c.ExportCatalog(cat, addon)
	c.cfg.logger.Debug("catalog exported", "addon", addon, "entries", cat.Len())
	return cat
}

// LoadCatalog loads the PO file at path as the translations of lang.
func (c *Client) LoadCatalog(path, lang string) error {
	if err := c.cfg.translations.LoadFile(path, lang); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	return nil
}

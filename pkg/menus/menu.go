// Package menus describes the toolbar and aside menus of the client and
// renders them with the menu templates.
package menus

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-crudui/pkg/fields"
)

// ErrMenu reports an invalid menu definition.
var ErrMenu = errors.New("menu error")

func menuErrorf(format string, args ...any) error {
	return fmt.Errorf("menus: %w: %s", ErrMenu, fmt.Sprintf(format, args...))
}

// Kind selects the template and the behaviour of a menu.
type Kind string

const (
	KindToolbar     Kind = "toolbar"
	KindDropdown    Kind = "toolbar-dropdown"
	KindDivider     Kind = "toolbar-divider"
	KindToolbarURL  Kind = "toolbar-url"
	KindButton      Kind = "toolbar-button"
	KindButtons     Kind = "toolbar-buttons"
	KindButtonURL   Kind = "toolbar-button-url"
	KindAside       Kind = "aside"
	KindAsideHeader Kind = "aside-header"
	KindAsideURL    Kind = "aside-url"
)

// TemplateID is the template rendering menus of kind k.
func (k Kind) TemplateID() string {
	return "crudui-" + string(k) + "-menu"
}

func (k Kind) external() bool {
	return k == KindToolbarURL || k == KindButtonURL || k == KindAsideURL
}

func (k Kind) aside() bool {
	return k == KindAside || k == KindAsideHeader || k == KindAsideURL
}

// Menu is one entry of a toolbar or an aside. Query is the querystring of
// the goto action it triggers; external menus carry their link as
// Query["url"].
type Menu struct {
	Kind      Kind
	Label     string
	Icon      string
	Tooltip   string
	CSSClass  string
	Query     url.Values
	Children  []*Menu
	Invisible fields.Predicate

	// IconMarkup replaces the icon class with trusted markup, e.g. an
	// inline svg.
	IconMarkup string

	// aside is the code of the aside group holding the menu.
	aside string
}

// Option customizes a menu.
type Option func(*Menu)

// WithIcon sets the icon class.
func WithIcon(icon string) Option {
	return func(m *Menu) { m.Icon = icon }
}

// WithTooltip sets the tooltip text.
func WithTooltip(tooltip string) Option {
	return func(m *Menu) { m.Tooltip = tooltip }
}

// WithCSSClass sets the css class of a button.
func WithCSSClass(class string) Option {
	return func(m *Menu) { m.CSSClass = class }
}

// HiddenWhen hides the menu when p holds.
func HiddenWhen(p fields.Predicate) Option {
	return func(m *Menu) { m.Invisible = p }
}

func newMenu(kind Kind, label string, qs url.Values, children []*Menu, opts []Option) (*Menu, error) {
	if len(qs) == 0 {
		return nil, menuErrorf("%s menu %q must have a querystring", kind, label)
	}
	for k, values := range qs {
		if len(values) != 1 {
			return nil, menuErrorf("%s menu %q: the querystring entry %q must hold one value", kind, label, k)
		}
	}
	m := &Menu{Kind: kind, Label: label, Query: qs, Children: children}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func withType(qs url.Values, typ string) url.Values {
	out := url.Values{}
	for k, v := range qs {
		out[k] = append([]string(nil), v...)
	}
	out.Set("type", typ)
	return out
}

func checkChildren(kind Kind, label string, children []*Menu, nested ...Kind) error {
	if len(children) == 0 {
		return menuErrorf("%s menu %q must have children", kind, label)
	}
	for _, c := range children {
		if c == nil {
			return menuErrorf("%s menu %q has a nil child", kind, label)
		}
		for _, n := range nested {
			if c.Kind == n {
				return menuErrorf("%s menu %q can not be cascaded", kind, label)
			}
		}
	}
	return nil
}

// Toolbar opens a page through the goto action.
func Toolbar(label string, qs url.Values, opts ...Option) (*Menu, error) {
	return newMenu(KindToolbar, label, qs, nil, opts)
}

// Dropdown groups toolbar menus. Dropdowns do not nest.
func Dropdown(label string, children []*Menu, opts ...Option) (*Menu, error) {
	if err := checkChildren(KindDropdown, label, children, KindDropdown); err != nil {
		return nil, err
	}
	return newMenu(KindDropdown, label, url.Values{"type": {"dropdown"}}, children, opts)
}

// Divider separates two menus of a dropdown.
func Divider() *Menu {
	return &Menu{Kind: KindDivider}
}

// ToolbarURL links to an external url.
func ToolbarURL(label, link string, opts ...Option) (*Menu, error) {
	return newMenu(KindToolbarURL, label, url.Values{"url": {link}}, nil, opts)
}

// Button is a toolbar menu shown as a button.
func Button(label string, qs url.Values, opts ...Option) (*Menu, error) {
	return newMenu(KindButton, label, qs, nil, opts)
}

// Buttons groups buttons side by side.
func Buttons(children []*Menu, opts ...Option) (*Menu, error) {
	if err := checkChildren(KindButtons, "", children, KindDropdown, KindButtons, KindAsideHeader); err != nil {
		return nil, err
	}
	return newMenu(KindButtons, "", url.Values{"type": {"buttons"}}, children, opts)
}

// ButtonURL is a button linking to an external url.
func ButtonURL(label, link string, opts ...Option) (*Menu, error) {
	return newMenu(KindButtonURL, label, url.Values{"url": {link}}, nil, opts)
}

// Aside opens a page inside the aside-menu page.
func Aside(label string, qs url.Values, opts ...Option) (*Menu, error) {
	return newMenu(KindAside, label, qs, nil, opts)
}

// AsideHeader titles a group of aside menus.
func AsideHeader(label string, children []*Menu, opts ...Option) (*Menu, error) {
	if err := checkChildren(KindAsideHeader, label, children); err != nil {
		return nil, err
	}
	return newMenu(KindAsideHeader, label, url.Values{"type": {"header"}}, children, opts)
}

// AsideURL links to an external url from an aside.
func AsideURL(label, link string, opts ...Option) (*Menu, error) {
	return newMenu(KindAsideURL, label, url.Values{"url": {link}}, nil, opts)
}

// Context is the translation context of the menu label and tooltip:
// menu:{toolbar|toolbar:button|aside}:{key}:{value}... with sorted keys.
func (m *Menu) Context() string {
	if m.Kind == KindDivider {
		return ""
	}
	prefix := "menu:toolbar"
	switch {
	case m.Kind == KindButton || m.Kind == KindButtons || m.Kind == KindButtonURL:
		prefix = "menu:toolbar:button"
	case m.Kind.aside():
		prefix = "menu:aside"
	}
	keys := make([]string, 0, len(m.Query))
	for k := range m.Query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := []string{prefix}
	for _, k := range keys {
		parts = append(parts, k, m.Query.Get(k))
	}
	return strings.Join(parts, ":")
}

// setAside records the aside group on m and its children.
func (m *Menu) setAside(code string) {
	m.aside = code
	for _, c := range m.Children {
		c.setAside(code)
	}
}

// Sink receives translatable strings.
type Sink interface {
	Define(context, msgid string)
}

// ExportCatalog defines the label and tooltip of m and its children.
func (m *Menu) ExportCatalog(sink Sink) {
	ctx := m.Context()
	if ctx != "" && m.Label != "" {
		sink.Define(ctx+":label", m.Label)
	}
	if ctx != "" && m.Tooltip != "" {
		sink.Define(ctx+":tooltip", m.Tooltip)
	}
	for _, c := range m.Children {
		c.ExportCatalog(sink)
	}
}

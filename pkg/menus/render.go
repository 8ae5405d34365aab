package menus

import (
	"fmt"
	"html"
	"net/url"
	"sort"
	"sync"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/render"
	"github.com/goliatone/go-crudui/pkg/web"
)

// Registry holds the toolbar menus and the aside groups of a client.
type Registry struct {
	mu     sync.RWMutex
	left   []*Menu
	right  []*Menu
	asides map[string][]*Menu
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{asides: make(map[string][]*Menu)}
}

func checkToolbar(menus []*Menu) error {
	for _, m := range menus {
		if m == nil || m.Kind.aside() {
			return menuErrorf("only toolbar menus can be registered in the toolbar")
		}
	}
	return nil
}

// AddLeft appends menus to the left part of the toolbar.
func (r *Registry) AddLeft(menus ...*Menu) error {
	if err := checkToolbar(menus); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.left = append(r.left, menus...)
	return nil
}

// AddRight appends menus to the right part of the toolbar.
func (r *Registry) AddRight(menus ...*Menu) error {
	if err := checkToolbar(menus); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.right = append(r.right, menus...)
	return nil
}

// AddAside registers the menus of the aside group code.
func (r *Registry) AddAside(code string, menus ...*Menu) error {
	for _, m := range menus {
		if m == nil || !m.Kind.aside() {
			return menuErrorf("only aside menus can be registered in the aside %q", code)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range menus {
		m.setAside(code)
	}
	r.asides[code] = append(r.asides[code], menus...)
	return nil
}

// Left returns the left toolbar menus.
func (r *Registry) Left() []*Menu {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Menu(nil), r.left...)
}

// Right returns the right toolbar menus.
func (r *Registry) Right() []*Menu {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Menu(nil), r.right...)
}

// Aside returns the menus of the aside group code.
func (r *Registry) Aside(code string) ([]*Menu, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	menus, ok := r.asides[code]
	return append([]*Menu(nil), menus...), ok
}

// Walk calls fn on every registered menu and its children, toolbars first.
func (r *Registry) Walk(fn func(*Menu)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var visit func([]*Menu)
	visit = func(menus []*Menu) {
		for _, m := range menus {
			fn(m)
			visit(m.Children)
		}
	}
	visit(r.left)
	visit(r.right)
	codes := make([]string, 0, len(r.asides))
	for code := range r.asides {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		visit(r.asides[code])
	}
}

// ExportCatalog defines the strings of every registered menu.
func (r *Registry) ExportCatalog(sink Sink) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, group := range [][]*Menu{r.left, r.right} {
		for _, m := range group {
			m.ExportCatalog(sink)
		}
	}
	for _, menus := range r.asides {
		for _, m := range menus {
			m.ExportCatalog(sink)
		}
	}
}

// Renderer turns menus into html for one request.
type Renderer struct {
	Scope   fields.Scope
	BaseURL string
}

// Render renders the visible menus in order.
func (rd Renderer) Render(menus []*Menu) ([]string, error) {
	out := make([]string, 0, len(menus))
	for _, m := range menus {
		if !rd.visible(m) {
			continue
		}
		html, err := rd.render(m)
		if err != nil {
			return nil, err
		}
		out = append(out, html)
	}
	return out, nil
}

func (rd Renderer) visible(m *Menu) bool {
	hidden, err := m.Invisible.Eval(m.Context(), rd.Scope)
	if err != nil {
		if rd.Scope.Logger != nil {
			rd.Scope.Logger.Warn("menu predicate failed", "menu", m.Context(), "error", err)
		}
		return false
	}
	return !hidden
}

func (rd Renderer) render(m *Menu) (string, error) {
	data := map[string]any{}
	if m.Kind != KindDivider {
		ctx := m.Context()
		data["label"] = rd.translate(ctx+":label", m.Label)
		data["tooltip"] = rd.translate(ctx+":tooltip", m.Tooltip)
		data["icon"] = iconHTML(m)
		data["css_class"] = m.CSSClass
		data["url"] = rd.URL(m)
	}
	if len(m.Children) > 0 {
		children, err := rd.Render(m.Children)
		if err != nil {
			return "", err
		}
		data["children"] = children
	}
	out, err := rd.Scope.Executor.Execute(rd.Scope.Lang(), m.Kind.TemplateID(), data)
	if err != nil {
		return "", fmt.Errorf("menus: %s: %w", m.Kind.TemplateID(), err)
	}
	return out, nil
}

// URL is the link of m: the external url, or the goto action with the menu
// querystring. Aside menus add the in-aside key.
func (rd Renderer) URL(m *Menu) string {
	if m.Kind.external() {
		return m.Query.Get("url")
	}
	qs := web.CloneValues(m.Query)
	if m.Kind.aside() {
		qs.Set("in-aside", m.aside)
	}
	return web.URLFromValues(rd.BaseURL+"/action/goto", qs)
}

func (rd Renderer) translate(context, msgid string) string {
	if msgid == "" {
		return ""
	}
	return render.Translate(rd.Scope.Translator, nil, rd.Scope.Lang(), context, msgid)
}

// QueryOf builds a menu querystring from key/value pairs.
func QueryOf(pairs ...string) url.Values {
	qs := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		qs.Set(pairs[i], pairs[i+1])
	}
	return qs
}

func iconHTML(m *Menu) string {
	if m.IconMarkup != "" {
		return m.IconMarkup
	}
	if m.Icon == "" {
		return ""
	}
	return `<i class="` + html.EscapeString(m.Icon) + `"></i>`
}

// Package themes selects the stylesheet and tokens of a session theme from
// go-theme manifests.
package themes

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-crudui/pkg/session"
)

var (
	// ErrTheme is returned for invalid manifests.
	ErrTheme = errors.New("theme error")
	// ErrUnknownTheme is returned when selecting a theme or variant that
	// was never registered.
	ErrUnknownTheme = errors.New("unknown theme")
)

// Asset keys looked up in the manifest files.
const (
	AssetStylesheet = "stylesheet"
	AssetScript     = "script"
)

// Registry holds theme manifests. The first registered manifest is the
// default theme unless SetDefault says otherwise.
type Registry struct {
	mu           sync.RWMutex
	manifests    map[string]*theme.Manifest
	defaultTheme string
}

var _ theme.ThemeSelector = (*Registry)(nil)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{manifests: make(map[string]*theme.Manifest)}
}

// Register adds m. Names are unique.
func (r *Registry) Register(m *theme.Manifest) error {
	if m == nil || strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("themes: %w: manifest without name", ErrTheme)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.manifests[m.Name]; exists {
		return fmt.Errorf("themes: %w: duplicate theme %q", ErrTheme, m.Name)
	}
	r.manifests[m.Name] = m
	if r.defaultTheme == "" {
		r.defaultTheme = m.Name
	}
	return nil
}

// SetDefault names the theme used when a session has none.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.manifests[name]; !ok {
		return fmt.Errorf("themes: %w: %q", ErrUnknownTheme, name)
	}
	r.defaultTheme = name
	return nil
}

// Names lists the registered themes, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.manifests))
	for name := range r.manifests {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Select resolves name and variant. An empty name selects the default
// theme; an empty variant selects the base manifest.
func (r *Registry) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.defaultTheme
	}
	m, ok := r.manifests[name]
	if !ok {
		return nil, fmt.Errorf("themes: %w: %q", ErrUnknownTheme, name)
	}
	if variant != "" {
		if _, ok := m.Variants[variant]; !ok {
			return nil, fmt.Errorf("themes: %w: %q has no variant %q", ErrUnknownTheme, name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: m}, nil
}

// ForSession selects the theme of sess. Session themes read
// "name" or "name:variant".
func (r *Registry) ForSession(sess *session.Session) (*theme.RendererConfig, error) {
	var raw string
	if sess != nil {
		raw = strings.TrimSpace(sess.Theme)
	}
	name, variant, _ := strings.Cut(raw, ":")
	sel, err := r.Select(name, variant)
	if err != nil {
		return nil, err
	}
	return Config(sel), nil
}

// Config flattens a selection: variant tokens, templates and asset files
// override the manifest ones, and every token becomes a --token css
// variable.
func Config(sel *theme.Selection) *theme.RendererConfig {
	if sel == nil || sel.Manifest == nil {
		return nil
	}
	m := sel.Manifest
	tokens := merge(m.Tokens, nil)
	partials := merge(m.Templates, nil)
	files := merge(m.Assets.Files, nil)
	prefix := m.Assets.Prefix
	if v, ok := m.Variants[sel.Variant]; ok && sel.Variant != "" {
		tokens = merge(tokens, v.Tokens)
		partials = merge(partials, v.Templates)
		files = merge(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}
	vars := make(map[string]string, len(tokens))
	for k, v := range tokens {
		vars["--"+k] = v
	}
	return &theme.RendererConfig{
		Theme:    sel.Theme,
		Variant:  sel.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  vars,
		AssetURL: assetResolver(prefix, files),
	}
}

func merge(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	return func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
			return file
		}
		if prefix == "" {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + file
	}
}

// Style renders the css variables of cfg as a :root rule, sorted by name.
func Style(cfg *theme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	names := make([]string, 0, len(cfg.CSSVars))
	for name := range cfg.CSSVars {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString(":root{")
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(cfg.CSSVars[name])
		b.WriteByte(';')
	}
	b.WriteString("}")
	return b.String()
}

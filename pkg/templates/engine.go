// Package templates stores template definitions, resolves their extend and
// include relationships, applies XPath patches and caches the compiled
// result per language.
//
// A definition is a <template> element carrying an id, an extend target or
// both:
//
//	<template id="page"><div class="page"><h1>Title</h1></div></template>
//
//	<template extend="page">
//	    <xpath expression="//h1" action="insertAfter"><p>Body</p></xpath>
//	</template>
//
// Extensions without an id accumulate on their target; a second definition
// with an existing id is an error unless it carries rewrite="1".
package templates

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-crudui/pkg/markup"
)

// DefaultLang is used when an empty language is requested.
const DefaultLang = "en"

// Format selects the string serialization of a compiled template.
type Format int

const (
	// FormatPretty renders one tag or text run per line.
	FormatPretty Format = iota
	// FormatCompact renders without added whitespace.
	FormatCompact
)

// Translator resolves template strings for a language.
type Translator interface {
	Get(lang, context, msgid string) string
}

// Sink receives translatable strings during catalog export.
type Sink interface {
	Define(context, msgid string)
}

// Option configures an Engine.
type Option func(*Engine)

// WithTranslator sets the translator used during compilation.
func WithTranslator(t Translator) Option {
	return func(e *Engine) {
		e.translator = t
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// LoadOption configures a single Load call.
type LoadOption func(*loadConfig)

type loadConfig struct {
	ignoreMissingExtend bool
	addon               string
}

// IgnoreMissingExtend creates an empty placeholder for unknown extend
// targets instead of failing.
func IgnoreMissingExtend() LoadOption {
	return func(c *loadConfig) { c.ignoreMissingExtend = true }
}

// WithAddon tags the loaded definitions so catalog exports can be filtered.
func WithAddon(name string) LoadOption {
	return func(c *loadConfig) { c.addon = strings.TrimSpace(name) }
}

type fragment struct {
	node  *markup.Node
	addon string
}

type definition struct {
	extend    string
	fragments []fragment
	// placeholder marks an id created by an extension loaded before its
	// target. The first real definition takes over its fragments.
	placeholder bool
}

func (d *definition) clone() *definition {
	return &definition{
		extend:      d.extend,
		fragments:   append([]fragment(nil), d.fragments...),
		placeholder: d.placeholder,
	}
}

// Engine owns template definitions and their compiled, per-language
// variants. Reads are safe for concurrent use; compilation and loading are
// serialized by the engine.
type Engine struct {
	mu          sync.RWMutex
	known       map[string]*definition
	compiled    map[string]map[string]*markup.Node
	compiledStr map[string]map[Format]map[string]string

	translator Translator
	logger     *slog.Logger
}

// New returns an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		known:       make(map[string]*definition),
		compiled:    make(map[string]map[string]*markup.Node),
		compiledStr: make(map[string]map[Format]map[string]string),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Copy returns an engine with the same definitions and translator but empty
// caches. Later loads on either engine do not affect the other.
func (e *Engine) Copy() *Engine {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := New(WithTranslator(e.translator), WithLogger(e.logger))
	for id, def := range e.known {
		cp.known[id] = def.clone()
	}
	return cp
}

// Has reports whether id is known.
func (e *Engine) Has(id string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.known[id]
	return ok
}

// IDs lists the known template ids, sorted.
func (e *Engine) IDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.known))
	for id := range e.known {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadString loads the definitions found in src.
func (e *Engine) LoadString(src string, opts ...LoadOption) error {
	return e.Load(strings.NewReader(src), opts...)
}

// Load parses r and registers every <template> it holds. The root must be a
// <template> or a <templates> wrapper.
func (e *Engine) Load(r io.Reader, opts ...LoadOption) error {
	cfg := loadConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	nodes, err := markup.Parse(r)
	if err != nil {
		return fmt.Errorf("templates: %w: %v", ErrTemplate, err)
	}

	var defs []*markup.Node
	for _, n := range nodes {
		switch n.Type {
		case markup.CommentNode:
			continue
		case markup.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				return templateErrorf("text outside of a template: %q", strings.TrimSpace(n.Data))
			}
		case markup.ElementNode:
			switch n.Tag {
			case "template":
				defs = append(defs, n)
			case "templates":
				for _, c := range n.Children {
					switch {
					case c.IsElement("template"):
						defs = append(defs, c)
					case c.Type == markup.CommentNode:
					case c.Type == markup.TextNode && strings.TrimSpace(c.Data) == "":
					default:
						return templateErrorf("unexpected %s inside <templates>", describe(c))
					}
				}
			default:
				return templateErrorf("root must be <template> or <templates>, got <%s>", n.Tag)
			}
		}
	}
	if len(defs) == 0 {
		return templateErrorf("no template found")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, def := range defs {
		def.Detach()
		if err := e.loadLocked(def, cfg); err != nil {
			return err
		}
	}
	return nil
}

// LoadFS loads every file of fsys matching one of patterns (path.Match
// syntax, default "*.tmpl") in lexical order.
func (e *Engine) LoadFS(fsys fs.FS, addon string, patterns ...string) error {
	if len(patterns) == 0 {
		patterns = []string{"*.tmpl"}
	}
	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, pattern := range patterns {
			if ok, _ := path.Match(pattern, path.Base(p)); ok {
				files = append(files, p)
				break
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("templates: walk: %w", err)
	}
	sort.Strings(files)
	for _, p := range files {
		f, err := fsys.Open(p)
		if err != nil {
			return fmt.Errorf("templates: open %s: %w", p, err)
		}
		err = e.Load(f, WithAddon(addon))
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		e.logger.Debug("template file loaded", "path", p, "addon", addon)
	}
	return nil
}

func (e *Engine) loadLocked(el *markup.Node, cfg loadConfig) error {
	id := strings.TrimSpace(el.Get("id"))
	extend, _ := el.RemoveAttr("extend")
	extend = strings.TrimSpace(extend)
	flag, rewrite := el.RemoveAttr("rewrite")
	if rewrite {
		switch strings.ToLower(strings.TrimSpace(flag)) {
		case "0", "false", "no":
			rewrite = false
		}
	}

	if id == "" && extend == "" {
		return templateErrorf("template without id or extend: %s", markup.Compact(el))
	}

	minify(el)

	frag := fragment{node: el, addon: cfg.addon}
	if id != "" {
		fragments := []fragment{frag}
		if existing, exists := e.known[id]; exists {
			switch {
			case existing.placeholder:
				fragments = append(fragments, existing.fragments...)
			case !rewrite:
				return templateErrorf("template %q is already defined", id)
			}
		}
		e.known[id] = &definition{extend: extend, fragments: fragments}
		e.logger.Debug("template defined", "id", id, "extend", extend)
		return nil
	}

	def, ok := e.known[extend]
	if !ok {
		if !cfg.ignoreMissingExtend {
			return templateErrorf("extend of an unknown template %q", extend)
		}
		def = &definition{placeholder: true}
		e.known[extend] = def
	}
	def.fragments = append(def.fragments, frag)
	e.logger.Debug("template extended", "id", extend, "fragments", len(def.fragments))
	return nil
}

// minify trims every text run and drops the empty ones.
func minify(n *markup.Node) {
	kept := n.Children[:0]
	for _, c := range n.Children {
		if c.Type == markup.TextNode {
			c.Data = strings.TrimSpace(c.Data)
			if c.Data == "" {
				c.Parent = nil
				continue
			}
		}
		if c.Type == markup.ElementNode {
			minify(c)
		}
		kept = append(kept, c)
	}
	n.Children = kept
}

func describe(n *markup.Node) string {
	switch n.Type {
	case markup.ElementNode:
		return "<" + n.Tag + ">"
	case markup.TextNode:
		return fmt.Sprintf("text %q", strings.TrimSpace(n.Data))
	default:
		return "node"
	}
}

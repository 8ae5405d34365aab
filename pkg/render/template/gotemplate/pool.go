package gotemplate

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-crudui/pkg/templates"
)

// Store serves compiled template text per language.
type Store interface {
	String(id, lang string, format templates.Format) (string, error)
}

// Pool keeps one Engine per language, each sourced from store. Engines are
// created on first use with the pool options.
type Pool struct {
	mu      sync.Mutex
	store   Store
	format  templates.Format
	opts    []Option
	engines map[string]*Engine
}

// NewPool returns a pool rendering the compact form of the compiled
// templates of store.
func NewPool(store Store, opts ...Option) *Pool {
	return &Pool{
		store:   store,
		format:  templates.FormatCompact,
		opts:    opts,
		engines: make(map[string]*Engine),
	}
}

// Engine returns the engine of lang, creating it when needed.
func (p *Pool) Engine(lang string) (*Engine, error) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = templates.DefaultLang
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if engine, ok := p.engines[lang]; ok {
		return engine, nil
	}
	src := func(id string) (string, error) {
		return p.store.String(id, lang, p.format)
	}
	opts := append([]Option{WithName("crudui-" + lang)}, p.opts...)
	opts = append(opts, WithSource(src))
	engine, err := New(opts...)
	if err != nil {
		return nil, err
	}
	p.engines[lang] = engine
	return engine, nil
}

// Execute renders the compiled template id of lang with data.
func (p *Pool) Execute(lang, id string, data map[string]any) (string, error) {
	engine, err := p.Engine(lang)
	if err != nil {
		return "", err
	}
	out, err := engine.RenderTemplate(id, data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: render %q (%s): %w", id, lang, err)
	}
	return out, nil
}

// ExecuteString renders inline content for lang. Includes resolve against
// the compiled templates of that language.
func (p *Pool) ExecuteString(lang, content string, data map[string]any) (string, error) {
	engine, err := p.Engine(lang)
	if err != nil {
		return "", err
	}
	return engine.RenderString(content, data)
}

// Forget drops the parsed templates of every engine, so later renders read
// the store again.
func (p *Pool) Forget(ids ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, engine := range p.engines {
		engine.Forget(ids...)
	}
}

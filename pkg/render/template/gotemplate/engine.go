// Package gotemplate renders compiled crudui templates with pongo2, a
// Django-like template language.
package gotemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-crudui/pkg/render/template"
)

// Source resolves a template id to its text.
type Source func(id string) (string, error)

// Filter is a template filter working on plain values.
type Filter func(input, param any) (any, error)

// Option configures an Engine.
type Option func(*config)

type config struct {
	name    string
	source  Source
	funcs   map[string]any
	globals pongo2.Context
	filters map[string]Filter
}

// WithName labels the template set in pongo2 errors.
func WithName(name string) Option {
	return func(cfg *config) {
		if name = strings.TrimSpace(name); name != "" {
			cfg.name = name
		}
	}
}

// WithSource sets where template ids are read from.
func WithSource(src Source) Option {
	return func(cfg *config) { cfg.source = src }
}

// WithTemplateFunc exposes callables as globals, e.g. translate(...).
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		for name, fn := range funcs {
			if name = strings.TrimSpace(name); name != "" && isFunc(fn) {
				cfg.funcs[name] = fn
			}
		}
	}
}

// WithGlobalData seeds values visible to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		for key, value := range data {
			if key = strings.TrimSpace(key); key != "" {
				cfg.globals[key] = value
			}
		}
	}
}

// WithFilter registers a filter when the engine is built. pongo2 filters
// are process wide: a name registered earlier keeps its first function.
func WithFilter(name string, fn Filter) Option {
	return func(cfg *config) {
		if name = strings.TrimSpace(name); name != "" && fn != nil {
			cfg.filters[name] = fn
		}
	}
}

// Engine renders templates of one language. Parsed templates are cached
// by id until Forget.
type Engine struct {
	mu     sync.RWMutex
	set    *pongo2.TemplateSet
	parsed map[string]*pongo2.Template
}

var _ template.Renderer = (*Engine)(nil)

// New builds an engine reading templates from its source.
func New(opts ...Option) (*Engine, error) {
	cfg := &config{
		name:    "crudui",
		funcs:   map[string]any{},
		globals: pongo2.Context{},
		filters: map[string]Filter{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.source == nil {
		return nil, errors.New("gotemplate: no template source")
	}

	registerBuiltinFilters()
	for name, fn := range cfg.filters {
		if pongo2.FilterExists(name) {
			continue
		}
		if err := pongo2.RegisterFilter(name, wrapFilter(name, fn)); err != nil {
			return nil, fmt.Errorf("gotemplate: filter %q: %w", name, err)
		}
	}

	set := pongo2.NewSet(cfg.name, sourceLoader{src: cfg.source})
	set.Globals = pongo2.Context{}
	set.Globals.Update(cfg.globals)
	for name, fn := range cfg.funcs {
		set.Globals[name] = fn
	}
	return &Engine{set: set, parsed: make(map[string]*pongo2.Template)}, nil
}

// RenderTemplate renders the template id.
func (e *Engine) RenderTemplate(id string, data map[string]any, out ...io.Writer) (string, error) {
	tmpl, err := e.lookup(id)
	if err != nil {
		return "", err
	}
	rendered, err := e.execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %q: %w", id, err)
	}
	return rendered, copyTo(rendered, out)
}

// RenderString parses and renders content.
func (e *Engine) RenderString(content string, data map[string]any, out ...io.Writer) (string, error) {
	tmpl, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse: %w", err)
	}
	rendered, err := e.execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute: %w", err)
	}
	return rendered, copyTo(rendered, out)
}

// Forget drops the parsed ids, every id when none is given.
func (e *Engine) Forget(ids ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(ids) == 0 {
		clear(e.parsed)
		return
	}
	for _, id := range ids {
		delete(e.parsed, id)
	}
}

func (e *Engine) lookup(id string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.parsed[id]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.parsed[id]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(id)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %q: %w", id, err)
	}
	e.parsed[id] = tmpl
	return tmpl, nil
}

func (e *Engine) execute(tmpl *pongo2.Template, data map[string]any) (string, error) {
	ctx := make(pongo2.Context, len(data))
	for key, value := range data {
		if key = strings.TrimSpace(key); key != "" {
			ctx[key] = value
		}
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func copyTo(rendered string, out []io.Writer) error {
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return err
		}
	}
	return nil
}

// sourceLoader resolves includes by id, whatever the including template.
type sourceLoader struct {
	src Source
}

func (l sourceLoader) Abs(_, name string) string { return name }

func (l sourceLoader) Get(id string) (io.Reader, error) {
	text, err := l.src(id)
	if err != nil {
		return nil, err
	}
	return strings.NewReader(text), nil
}

func isFunc(v any) bool {
	return v != nil && reflect.ValueOf(v).Kind() == reflect.Func
}

func wrapFilter(name string, fn Filter) pongo2.FilterFunction {
	return func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var p any
		if param != nil {
			p = param.Interface()
		}
		v, err := fn(in.Interface(), p)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(v), nil
	}
}

var builtinOnce sync.Once

// registerBuiltinFilters adds trim and lowerfirst, used by the field
// templates on labels.
func registerBuiltinFilters() {
	builtinOnce.Do(func() {
		for name, fn := range map[string]Filter{
			"trim": func(in, _ any) (any, error) {
				return strings.TrimSpace(stringOf(in)), nil
			},
			"lowerfirst": func(in, _ any) (any, error) {
				s := stringOf(in)
				i := strings.IndexFunc(s, func(r rune) bool { return !strings.ContainsRune(" \t\r\n", r) })
				if i < 0 {
					return s, nil
				}
				rest := s[i:]
				first := []rune(rest)[0]
				return s[:i] + strings.ToLower(string(first)) + rest[len(string(first)):], nil
			},
		} {
			if !pongo2.FilterExists(name) {
				_ = pongo2.RegisterFilter(name, wrapFilter(name, fn))
			}
		}
	})
}

func stringOf(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

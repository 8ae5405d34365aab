// Package widgets picks the control family used to display and edit a
// field. Each family maps to a set of templates named after it.
package widgets

import (
	"sort"
	"strings"
	"sync"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetInput    = "input"
	WidgetTextarea = "textarea"
	WidgetCheckbox = "checkbox"
	WidgetSelect   = "select"
)

// Descriptor is the part of a field the matchers look at.
type Descriptor struct {
	Name    string
	Kind    string
	Format  string
	Choices int
	// Widget is an explicit choice that bypasses the matchers.
	Widget string
}

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field Descriptor) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on explicit hints or registered
// matchers. Higher priority wins; ties fall back to registration order. An
// empty registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in widget matchers
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field. An explicit Widget is
// honoured before matcher evaluation.
func (r *Registry) Resolve(field Descriptor) (string, bool) {
	if explicit := strings.TrimSpace(field.Widget); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Names lists the registered widget names once each, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.rules))
	var out []string
	for _, entry := range r.rules {
		if _, ok := seen[entry.name]; ok {
			continue
		}
		seen[entry.name] = struct{}{}
		out = append(out, entry.name)
	}
	sort.Strings(out)
	return out
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry holding the built-ins.
func Default() *Registry {
	return defaultRegistry
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetCheckbox, 90, func(field Descriptor) bool {
		return field.Kind == "boolean"
	})

	r.Register(WidgetSelect, 80, func(field Descriptor) bool {
		return field.Choices > 0 || field.Kind == "select"
	})

	r.Register(WidgetTextarea, 70, func(field Descriptor) bool {
		if field.Kind == "text" {
			return true
		}
		format := strings.TrimSpace(strings.ToLower(field.Format))
		return format == "json" || format == "yaml" || format == "markdown"
	})

	r.Register(WidgetInput, 0, func(Descriptor) bool {
		return true
	})
}

// Package fields describes the columns of a resource: their label, their
// dynamic required/readonly/invisible predicates, their default value, the
// schema property they validate against and the templates they render with.
package fields

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-crudui/pkg/markup"
	"github.com/goliatone/go-crudui/pkg/render"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/visibility"
	"github.com/goliatone/go-crudui/pkg/widgets"
)

// Kind is the value type of a field.
type Kind string

const (
	KindString   Kind = "string"
	KindText     Kind = "text"
	KindPassword Kind = "password"
	KindEmail    Kind = "email"
	KindInteger  Kind = "integer"
	KindNumber   Kind = "number"
	KindBoolean  Kind = "boolean"
	KindSelect   Kind = "select"
	KindDate     Kind = "date"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindString, KindText, KindPassword, KindEmail, KindInteger,
		KindNumber, KindBoolean, KindSelect, KindDate:
		return true
	}
	return false
}

// Attribute names understood by Field.Is.
const (
	AttrRequired  = "required"
	AttrReadonly  = "readonly"
	AttrInvisible = "invisible"
)

// Choice is one option of a select field.
type Choice struct {
	Value string
	Label string
}

// Templates names the templates a field renders with. Empty entries are
// filled from the widget on Resolve.
type Templates struct {
	ReadonlyBare    string
	ReadonlyLabeled string
	EditableLabeled string
	Filter          string
}

// Field is the declarative description of one column.
type Field struct {
	Name        string
	Label       string
	Kind        Kind
	Required    Predicate
	Readonly    Predicate
	Invisible   Predicate
	Default     any
	DefaultFunc func() any
	Choices     []Choice
	Format      string
	Widget      string
	Templates   Templates
	Description string
	Placeholder string
	// Context prefixes the translation contexts of the field, e.g.
	// "resource:user". It is set by the owning resource.
	Context string
}

// Scope carries the per-request inputs of predicates and rendering.
type Scope struct {
	Session    *session.Session
	View       string
	Values     map[string]any
	Evaluator  visibility.Evaluator
	Translator render.Translator
	Executor   render.Executor
	Logger     *slog.Logger
}

// Lang is the session language.
func (s Scope) Lang() string {
	return s.Session.Language()
}

func (s Scope) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Compiler is implemented by evaluators able to check a rule up front.
type Compiler interface {
	Compile(rule string) error
}

// Resolve checks f and returns a copy with its kind and templates filled.
// Expression predicates are compiled when ev implements Compiler.
func (f Field) Resolve(reg *widgets.Registry, ev visibility.Evaluator) (Field, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return f, fieldErrorf("field without name")
	}
	if f.Kind == "" {
		f.Kind = KindString
		if len(f.Choices) > 0 {
			f.Kind = KindSelect
		}
	}
	if !f.Kind.Valid() {
		return f, fieldErrorf("%s: unknown kind %q", f.Name, f.Kind)
	}
	for attr, p := range f.predicates() {
		if p.kind != predicateExpr {
			continue
		}
		if ev == nil {
			return f, fieldErrorf("%s: %s rule %q needs an evaluator", f.Name, attr, p.rule)
		}
		if c, ok := ev.(Compiler); ok {
			if err := c.Compile(p.rule); err != nil {
				return f, fmt.Errorf("fields: %w: %s: %s: %v", ErrField, f.Name, attr, err)
			}
		}
	}

	if reg == nil {
		reg = widgets.Default()
	}
	widget, ok := reg.Resolve(widgets.Descriptor{
		Name:    f.Name,
		Kind:    string(f.Kind),
		Format:  f.Format,
		Choices: len(f.Choices),
		Widget:  f.Widget,
	})
	if !ok {
		return f, nil
	}
	f.Widget = widget
	defaults := DefaultTemplates(widget)
	if f.Templates.ReadonlyBare == "" {
		f.Templates.ReadonlyBare = defaults.ReadonlyBare
	}
	if f.Templates.ReadonlyLabeled == "" {
		f.Templates.ReadonlyLabeled = defaults.ReadonlyLabeled
	}
	if f.Templates.EditableLabeled == "" {
		f.Templates.EditableLabeled = defaults.EditableLabeled
	}
	if f.Templates.Filter == "" {
		f.Templates.Filter = defaults.Filter
	}
	return f, nil
}

// DefaultTemplates returns the built-in template ids of a widget.
func DefaultTemplates(widget string) Templates {
	base := "crudui-field-" + widget
	return Templates{
		ReadonlyBare:    base + "-ro-bare",
		ReadonlyLabeled: base + "-ro",
		EditableLabeled: base,
		Filter:          base + "-filter",
	}
}

func (f Field) predicates() map[string]Predicate {
	return map[string]Predicate{
		AttrRequired:  f.Required,
		AttrReadonly:  f.Readonly,
		AttrInvisible: f.Invisible,
	}
}

// Is resolves a dynamic attribute. An element carrying attr="attr" wins;
// then the predicate decides. Evaluation errors count as false and are
// logged.
func (f Field) Is(attr string, scope Scope, el *markup.Node) bool {
	if el != nil && el.Get(attr) == attr {
		return true
	}
	var p Predicate
	switch attr {
	case AttrRequired:
		p = f.Required
	case AttrReadonly:
		p = f.Readonly
	case AttrInvisible:
		p = f.Invisible
	default:
		return false
	}
	ok, err := p.Eval(f.Path(), scope)
	if err != nil {
		scope.logger().Warn("field predicate failed", "field", f.Path(), "attr", attr, "error", err)
		return false
	}
	return ok
}

// IsRequired is Is(AttrRequired, ...).
func (f Field) IsRequired(scope Scope, el *markup.Node) bool {
	return f.Is(AttrRequired, scope, el)
}

// IsReadonly is Is(AttrReadonly, ...).
func (f Field) IsReadonly(scope Scope, el *markup.Node) bool {
	return f.Is(AttrReadonly, scope, el)
}

// IsInvisible is Is(AttrInvisible, ...).
func (f Field) IsInvisible(scope Scope, el *markup.Node) bool {
	return f.Is(AttrInvisible, scope, el)
}

// Path is the field translation context, e.g. "resource:user:field:name".
func (f Field) Path() string {
	if f.Context == "" {
		return "field:" + f.Name
	}
	return f.Context + ":field:" + f.Name
}

// DefaultLabel is Label, or the capitalized name.
func (f Field) DefaultLabel() string {
	if f.Label != "" {
		return f.Label
	}
	r, size := utf8.DecodeRuneInString(f.Name)
	if r == utf8.RuneError {
		return f.Name
	}
	return string(unicode.ToUpper(r)) + f.Name[size:]
}

// LabelFor returns the translated label. An element label attribute
// overrides the declared one.
func (f Field) LabelFor(scope Scope, el *markup.Node) string {
	label := f.DefaultLabel()
	if el != nil {
		if v, ok := el.Attr("label"); ok && strings.TrimSpace(v) != "" {
			label = v
		}
	}
	return render.Translate(scope.Translator, nil, scope.Lang(), f.Path()+":label", label)
}

func (f Field) translated(scope Scope, suffix, msg string) string {
	if msg == "" {
		return ""
	}
	return render.Translate(scope.Translator, nil, scope.Lang(), f.Path()+":"+suffix, msg)
}

// DefaultValue returns the computed or static default, "" when none.
func (f Field) DefaultValue() any {
	if f.DefaultFunc != nil {
		return f.DefaultFunc()
	}
	if f.Default == nil {
		return ""
	}
	return f.Default
}

// Messages lists the translatable strings of f as context/msgid pairs.
func (f Field) Messages() [][2]string {
	out := [][2]string{{f.Path() + ":label", f.DefaultLabel()}}
	if f.Description != "" {
		out = append(out, [2]string{f.Path() + ":description", f.Description})
	}
	if f.Placeholder != "" {
		out = append(out, [2]string{f.Path() + ":placeholder", f.Placeholder})
	}
	for _, c := range f.Choices {
		out = append(out, [2]string{f.Path() + ":choice", c.Label})
	}
	return out
}

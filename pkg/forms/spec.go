// Package forms groups fields into the form of a resource view: it merges
// field overrides, synthesizes the kin-openapi schema of a view, decodes
// submitted values and validates them.
package forms

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/visibility"
	"github.com/goliatone/go-crudui/pkg/widgets"
)

// ErrForm reports an invalid form definition.
var ErrForm = errors.New("form error")

func formErrorf(format string, args ...any) error {
	return fmt.Errorf("forms: %w: %s", ErrForm, fmt.Sprintf(format, args...))
}

// Spec is an ordered field set with a primary key.
type Spec struct {
	// Name identifies the form in translation contexts, e.g. "user-edit".
	Name string
	// Context prefixes the translation contexts of the fields.
	Context string
	PK      string
	Fields  []fields.Field
}

// Merge returns base with each override applied in order: a field with a
// known name replaces the existing one in place, an unknown one is appended.
// base is not modified.
func Merge(base Spec, overrides ...[]fields.Field) Spec {
	out := base
	out.Fields = slices.Clone(base.Fields)
	for _, set := range overrides {
		for _, f := range set {
			if idx := out.index(f.Name); idx >= 0 {
				out.Fields[idx] = f
				continue
			}
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}

func (s Spec) index(name string) int {
	return slices.IndexFunc(s.Fields, func(f fields.Field) bool { return f.Name == name })
}

// Field returns the field called name.
func (s Spec) Field(name string) (fields.Field, bool) {
	if idx := s.index(name); idx >= 0 {
		return s.Fields[idx], true
	}
	return fields.Field{}, false
}

// Names lists the field names in order.
func (s Spec) Names() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// Resolve checks the spec and resolves every field. It fails when the
// primary key is not one of the fields or when a name is declared twice.
func (s Spec) Resolve(reg *widgets.Registry, ev visibility.Evaluator) (Spec, error) {
	out := s
	out.PK = strings.TrimSpace(s.PK)
	if out.PK == "" {
		return s, formErrorf("%s: the form has no pk", s.Name)
	}
	out.Fields = make([]fields.Field, 0, len(s.Fields))
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.Context == "" {
			f.Context = s.Context
		}
		resolved, err := f.Resolve(reg, ev)
		if err != nil {
			return s, fmt.Errorf("forms: %s: %w", s.Name, err)
		}
		if _, dup := seen[resolved.Name]; dup {
			return s, formErrorf("%s: field %q declared twice", s.Name, resolved.Name)
		}
		seen[resolved.Name] = struct{}{}
		out.Fields = append(out.Fields, resolved)
	}
	if _, ok := seen[out.PK]; !ok {
		return s, formErrorf("%s: pk %q is not a field", s.Name, out.PK)
	}
	return out, nil
}

// Static reports whether every predicate of the spec is a constant or a
// view list, so that its schema only depends on the view.
func (s Spec) Static() bool {
	for _, f := range s.Fields {
		for _, p := range []fields.Predicate{f.Required, f.Readonly, f.Invisible} {
			if p.Dynamic() {
				return false
			}
		}
	}
	return true
}

// Schema synthesizes the object schema validating the editable, visible
// fields of scope.
func (s Spec) Schema(scope fields.Scope, useDefault bool) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Title = s.Name
	for _, f := range s.Fields {
		f.SchemaField(scope, schema, useDefault)
		f.SchemaValidators(scope, schema)
	}
	return schema
}

// Sink receives translatable strings.
type Sink interface {
	Define(context, msgid string)
}

// ExportCatalog defines the strings of every field on sink.
func (s Spec) ExportCatalog(sink Sink) {
	for _, f := range s.Fields {
		for _, m := range f.Messages() {
			sink.Define(m[0], m[1])
		}
	}
}

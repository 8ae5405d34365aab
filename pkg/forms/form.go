package forms

import (
	"fmt"
	"maps"
	"net/url"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/markup"
	"github.com/goliatone/go-crudui/pkg/render"
	"github.com/goliatone/go-crudui/pkg/validation"
)

// Form is a spec bound to values.
type Form struct {
	Spec   Spec
	Values map[string]any
	// Errors holds validation messages keyed by field name.
	Errors map[string][]string
	// FormErrors holds messages that belong to no field.
	FormErrors []string
}

// New binds values to the spec. Missing values take the field defaults.
func (s Spec) New(values map[string]any) *Form {
	bound := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		bound[f.Name] = f.DefaultValue()
	}
	maps.Copy(bound, values)
	return &Form{Spec: s, Values: bound}
}

// Decode converts submitted values to typed field values. Only the editable
// fields of scope are read; a value that does not parse is kept as its raw
// string so validation reports it. Empty strings become nil.
func (s Spec) Decode(values url.Values, scope fields.Scope) *Form {
	decoded := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		if !f.Editable(scope) {
			continue
		}
		raw, ok := values[f.Name]
		if !ok || len(raw) == 0 {
			if f.Kind == fields.KindBoolean {
				decoded[f.Name] = false
			}
			continue
		}
		decoded[f.Name] = coerce(f.Kind, raw)
	}
	return &Form{Spec: s, Values: decoded}
}

func coerce(kind fields.Kind, raw []string) any {
	// checkboxes post a hidden "false" before the checked value
	last := strings.TrimSpace(raw[len(raw)-1])
	if kind == fields.KindBoolean {
		if last == "on" {
			return true
		}
		b, err := strconv.ParseBool(last)
		if err != nil {
			return last
		}
		return b
	}
	first := raw[0]
	if strings.TrimSpace(first) == "" {
		return nil
	}
	switch kind {
	case fields.KindInteger:
		if n, err := strconv.ParseInt(strings.TrimSpace(first), 10, 64); err == nil {
			return n
		}
	case fields.KindNumber:
		if n, err := strconv.ParseFloat(strings.TrimSpace(first), 64); err == nil {
			return n
		}
	}
	return first
}

// Get returns the value of a field.
func (f *Form) Get(name string) any {
	return f.Values[name]
}

// Set stores the value of a field.
func (f *Form) Set(name string, value any) {
	if f.Values == nil {
		f.Values = make(map[string]any)
	}
	f.Values[name] = value
}

// PK returns the primary key value as a string.
func (f *Form) PK() string {
	return fields.FormatValue(f.Values[f.Spec.PK])
}

// Valid reports whether the last validation found nothing.
func (f *Form) Valid() bool {
	return len(f.Errors) == 0 && len(f.FormErrors) == 0
}

// Validate checks the values against the schema of scope and stores the
// translated messages on the form.
func (f *Form) Validate(scope fields.Scope) bool {
	return f.ValidateSchema(scope, f.Spec.Schema(scope, false))
}

// ValidateSchema is Validate against a schema built earlier by Spec.Schema.
func (f *Form) ValidateSchema(scope fields.Scope, schema *openapi3.Schema) bool {
	payload := make(map[string]any, len(schema.Properties))
	for name := range schema.Properties {
		if v, ok := f.Values[name]; ok {
			payload[name] = v
		}
	}
	result := validation.Validate(schema, payload, validation.Translated(scope.Translator, scope.Lang()))
	mapping := render.MapErrorPayload(f.Spec.Names(), result.Payload())
	f.Errors = mapping.Fields
	f.FormErrors = mapping.Form
	return result.Valid
}

// Mode selects how a form layout renders its fields.
type Mode int

const (
	// ModeEdit renders input controls.
	ModeEdit Mode = iota
	// ModeRead renders labeled values.
	ModeRead
)

// Layout returns the default layout: one <field> per field, in order.
func (s Spec) Layout() string {
	var b strings.Builder
	b.WriteString(`<div class="crudui-form">`)
	for _, f := range s.Fields {
		fmt.Fprintf(&b, `<field name="%s"/>`, f.Name)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// FieldNames lists the fields referenced by layout.
func (s Spec) FieldNames(layout string) ([]string, error) {
	frag, err := s.parseLayout(layout)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, el := range fieldPath.Select(frag) {
		name := el.Get("name")
		if _, ok := s.Field(name); !ok {
			return nil, formErrorf("%s: layout references unknown field %q", s.Name, name)
		}
		out = append(out, name)
	}
	return out, nil
}

var fieldPath = markup.MustCompilePath(".//field")

func (s Spec) parseLayout(layout string) (*markup.Node, error) {
	if strings.TrimSpace(layout) == "" {
		layout = s.Layout()
	}
	nodes, err := markup.ParseString(layout)
	if err != nil {
		return nil, fmt.Errorf("forms: %s: %w", s.Name, err)
	}
	frag := &markup.Node{Type: markup.ElementNode}
	frag.AppendChild(nodes...)
	return frag, nil
}

// Render renders layout (the default layout when empty), replacing every
// <field name="..."> element by the field markup. The element attributes
// override the field predicates; invisible fields are dropped.
func (f *Form) Render(scope fields.Scope, layout string, mode Mode) (string, error) {
	frag, err := f.Spec.parseLayout(layout)
	if err != nil {
		return "", err
	}
	if scope.Values == nil {
		scope.Values = f.Values
	}

	for _, el := range fieldPath.Select(frag) {
		name := el.Get("name")
		field, ok := f.Spec.Field(name)
		if !ok {
			return "", formErrorf("%s: layout references unknown field %q", f.Spec.Name, name)
		}
		if field.IsInvisible(scope, el) {
			el.Parent.RemoveChild(el)
			continue
		}
		var out string
		if mode == ModeRead {
			out, err = field.RenderReadonlyLabeled(scope, el, f.Values[name])
		} else {
			out, err = field.RenderEditableLabeled(scope, el, f.Values[name], f.Errors[name])
		}
		if err != nil {
			return "", err
		}
		el.Tag = "div"
		el.Attrs = []markup.Attr{{Key: "class", Val: "crudui-field"}, {Key: "data-field", Val: name}}
		el.Children = nil
		el.AppendChild(markup.Text(out))
	}
	return markup.Compact(frag), nil
}

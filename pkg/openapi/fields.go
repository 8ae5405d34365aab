package openapi

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/forms"
)

// Extension is the schema extension read on properties, e.g.
//
//	x-crudui: {order: 2, widget: textarea, placeholder: "...", invisible: [list]}
const Extension = "x-crudui"

// ErrNoSchema is returned when an operation or component has no object
// schema to derive fields from.
var ErrNoSchema = errors.New("openapi: no object schema")

// requestTypes lists the request body media types in preference order.
var requestTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// OperationSchema returns the request body schema of the operation id.
func OperationSchema(doc *openapi3.T, id string) (*openapi3.Schema, error) {
	if doc == nil || doc.Paths == nil {
		return nil, fmt.Errorf("%w: empty document", ErrNoSchema)
	}
	for _, item := range doc.Paths.Map() {
		for _, op := range item.Operations() {
			if op.OperationID != id {
				continue
			}
			if op.RequestBody == nil || op.RequestBody.Value == nil {
				return nil, fmt.Errorf("%w: operation %s has no request body", ErrNoSchema, id)
			}
			content := op.RequestBody.Value.Content
			for _, mt := range requestTypes {
				if media := content.Get(mt); media != nil && media.Schema != nil && media.Schema.Value != nil {
					return media.Schema.Value, nil
				}
			}
			return nil, fmt.Errorf("%w: operation %s has no supported media type", ErrNoSchema, id)
		}
	}
	return nil, fmt.Errorf("%w: unknown operation %s", ErrNoSchema, id)
}

// ComponentSchema returns the component schema called name.
func ComponentSchema(doc *openapi3.T, name string) (*openapi3.Schema, error) {
	if doc == nil || doc.Components == nil {
		return nil, fmt.Errorf("%w: document without components", ErrNoSchema)
	}
	ref, ok := doc.Components.Schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("%w: unknown component %s", ErrNoSchema, name)
	}
	return ref.Value, nil
}

// Fields maps the scalar properties of an object schema to fields. Fields
// with an x-crudui order come first, by order, then the others by name.
// Array and object properties are skipped and their sorted names returned.
func Fields(schema *openapi3.Schema) ([]fields.Field, []string, error) {
	if schema == nil || !schema.Type.Is(openapi3.TypeObject) {
		return nil, nil, ErrNoSchema
	}
	type entry struct {
		field fields.Field
		order int
	}
	var (
		entries []entry
		skipped []string
	)
	for name, ref := range schema.Properties {
		if ref == nil || ref.Value == nil {
			skipped = append(skipped, name)
			continue
		}
		prop := ref.Value
		if prop.Type.Is(openapi3.TypeArray) || prop.Type.Is(openapi3.TypeObject) {
			skipped = append(skipped, name)
			continue
		}
		f, order, err := field(name, prop, slices.Contains(schema.Required, name))
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, entry{field: f, order: order})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Or(cmp.Compare(a.order, b.order), strings.Compare(a.field.Name, b.field.Name))
	})
	out := make([]fields.Field, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.field)
	}
	slices.Sort(skipped)
	return out, skipped, nil
}

// Spec builds the form spec of an object schema.
func Spec(name, pk string, schema *openapi3.Schema) (forms.Spec, error) {
	list, _, err := Fields(schema)
	if err != nil {
		return forms.Spec{}, fmt.Errorf("openapi: %s: %w", name, err)
	}
	if pk != "" && !slices.ContainsFunc(list, func(f fields.Field) bool { return f.Name == pk }) {
		return forms.Spec{}, fmt.Errorf("openapi: %s: primary key %q is not a property", name, pk)
	}
	return forms.Spec{Name: name, PK: pk, Fields: list}, nil
}

func field(name string, prop *openapi3.Schema, required bool) (fields.Field, int, error) {
	f := fields.Field{
		Name:        name,
		Label:       prop.Title,
		Kind:        kind(prop),
		Default:     prop.Default,
		Format:      prop.Format,
		Description: prop.Description,
	}
	if f.Label == "" {
		f.Label = label(name)
	}
	if required {
		f.Required = fields.Bool(true)
	}
	if prop.ReadOnly {
		f.Readonly = fields.Bool(true)
	}
	for _, v := range prop.Enum {
		s := fmt.Sprint(v)
		f.Choices = append(f.Choices, fields.Choice{Value: s, Label: label(s)})
	}
	order, err := applyExtension(&f, prop.Extensions[Extension])
	if err != nil {
		return f, 0, fmt.Errorf("openapi: property %s: %w", name, err)
	}
	return f, order, nil
}

func kind(prop *openapi3.Schema) fields.Kind {
	switch {
	case len(prop.Enum) > 0:
		return fields.KindSelect
	case prop.Type.Is(openapi3.TypeInteger):
		return fields.KindInteger
	case prop.Type.Is(openapi3.TypeNumber):
		return fields.KindNumber
	case prop.Type.Is(openapi3.TypeBoolean):
		return fields.KindBoolean
	}
	switch prop.Format {
	case "email":
		return fields.KindEmail
	case "password":
		return fields.KindPassword
	case "date", "date-time":
		return fields.KindDate
	}
	if prop.MaxLength != nil && *prop.MaxLength > 255 {
		return fields.KindText
	}
	return fields.KindString
}

// unordered sorts the properties without x-crudui order last.
const unordered = math.MaxInt

// applyExtension reads the x-crudui settings of a property and returns its
// order.
func applyExtension(f *fields.Field, raw any) (int, error) {
	if raw == nil {
		return unordered, nil
	}
	ext, ok := raw.(map[string]any)
	if !ok {
		return 0, fmt.Errorf("%s must be an object, got %T", Extension, raw)
	}
	order := unordered
	for key, value := range ext {
		switch key {
		case "order":
			n, ok := value.(float64)
			if !ok {
				return 0, fmt.Errorf("%s.order must be a number", Extension)
			}
			order = int(n)
		case "widget":
			f.Widget = fmt.Sprint(value)
		case "placeholder":
			f.Placeholder = fmt.Sprint(value)
		case "kind":
			f.Kind = fields.Kind(fmt.Sprint(value))
		case "readonly", "invisible", "required":
			p, err := predicate(value)
			if err != nil {
				return 0, fmt.Errorf("%s.%s: %w", Extension, key, err)
			}
			switch key {
			case "readonly":
				f.Readonly = p
			case "invisible":
				f.Invisible = p
			default:
				f.Required = p
			}
		default:
			return 0, fmt.Errorf("unknown %s key %q", Extension, key)
		}
	}
	return order, nil
}

// predicate accepts a boolean, a list of view codes or an expression.
func predicate(value any) (fields.Predicate, error) {
	switch v := value.(type) {
	case bool:
		return fields.Bool(v), nil
	case string:
		return fields.Expr(v), nil
	case []any:
		views := make([]string, 0, len(v))
		for _, item := range v {
			views = append(views, fmt.Sprint(item))
		}
		return fields.InViews(views...), nil
	}
	return fields.Predicate{}, fmt.Errorf("unsupported value %T", value)
}

var wordSplit = regexp.MustCompile(`[_\-\s]+`)

// label turns first_name or firstName into "First name".
func label(name string) string {
	var words []string
	for _, part := range wordSplit.Split(name, -1) {
		start := 0
		for i := 1; i < len(part); i++ {
			if isLower(part[i-1]) && isUpper(part[i]) {
				words = append(words, part[start:i])
				start = i
			}
		}
		if part[start:] != "" {
			words = append(words, part[start:])
		}
	}
	if len(words) == 0 {
		return name
	}
	out := strings.ToLower(strings.Join(words, " "))
	return strings.ToUpper(out[:1]) + out[1:]
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }
func isLower(b byte) bool { return b >= 'a' && b <= 'z' }

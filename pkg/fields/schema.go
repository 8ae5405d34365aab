package fields

import (
	"slices"

	"github.com/getkin/kin-openapi/openapi3"
)

// Editable reports whether f takes part in validation for scope: neither
// readonly nor invisible.
func (f Field) Editable(scope Scope) bool {
	return !f.IsReadonly(scope, nil) && !f.IsInvisible(scope, nil)
}

// Property returns the schema of the field value. The schema is nullable
// when the field is not required.
func (f Field) Property(scope Scope, useDefault bool) *openapi3.Schema {
	var s *openapi3.Schema
	switch f.Kind {
	case KindInteger:
		s = openapi3.NewIntegerSchema()
	case KindNumber:
		s = openapi3.NewFloat64Schema()
	case KindBoolean:
		s = openapi3.NewBoolSchema()
	case KindEmail:
		s = openapi3.NewStringSchema().WithFormat("email")
	case KindDate:
		s = openapi3.NewStringSchema().WithFormat("date")
	default:
		s = openapi3.NewStringSchema()
	}
	if f.Format != "" && s.Format == "" && s.Type.Is(openapi3.TypeString) {
		s.Format = f.Format
	}
	if len(f.Choices) > 0 {
		values := make([]any, 0, len(f.Choices))
		for _, c := range f.Choices {
			values = append(values, c.Value)
		}
		s = s.WithEnum(values...)
	}
	required := f.IsRequired(scope, nil)
	if required && s.Type.Is(openapi3.TypeString) {
		s = s.WithMinLength(1)
	}
	if !required {
		s = s.WithNullable()
	}
	if useDefault && (f.Default != nil || f.DefaultFunc != nil) {
		s = s.WithDefault(f.DefaultValue())
	}
	s.Title = f.DefaultLabel()
	s.Description = f.Description
	return s
}

// SchemaField adds the property of f to the object schema. Readonly and
// invisible fields are skipped.
func (f Field) SchemaField(scope Scope, schema *openapi3.Schema, useDefault bool) {
	if !f.Editable(scope) {
		return
	}
	schema.WithProperty(f.Name, f.Property(scope, useDefault))
}

// SchemaValidators marks f as required on schema when it is required,
// editable and visible.
func (f Field) SchemaValidators(scope Scope, schema *openapi3.Schema) {
	if !f.Editable(scope) || !f.IsRequired(scope, nil) {
		return
	}
	if !slices.Contains(schema.Required, f.Name) {
		schema.Required = append(schema.Required, f.Name)
	}
}

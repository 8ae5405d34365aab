package fields

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-crudui/pkg/markup"
)

// RenderReadonlyBare renders the value alone, as used in list cells.
func (f Field) RenderReadonlyBare(scope Scope, value any) (string, error) {
	return f.execute(scope, f.Templates.ReadonlyBare, "ReadonlyBare", f.data(scope, nil, value, nil))
}

// RenderReadonlyLabeled renders the value with its label.
func (f Field) RenderReadonlyLabeled(scope Scope, el *markup.Node, value any) (string, error) {
	data := f.data(scope, el, value, nil)
	data["readonly"] = true
	return f.execute(scope, f.Templates.ReadonlyLabeled, "ReadonlyLabeled", data)
}

// RenderEditableLabeled renders the input control with its label and the
// validation messages of the field.
func (f Field) RenderEditableLabeled(scope Scope, el *markup.Node, value any, errs []string) (string, error) {
	return f.execute(scope, f.Templates.EditableLabeled, "EditableLabeled", f.data(scope, el, value, errs))
}

// RenderFilter renders the filter control of a list view. url is the
// endpoint the filter form posts to.
func (f Field) RenderFilter(scope Scope, url string) (string, error) {
	data := f.data(scope, nil, nil, nil)
	data["url"] = url
	return f.execute(scope, f.Templates.Filter, "Filter", data)
}

func (f Field) execute(scope Scope, id, slot string, data map[string]any) (string, error) {
	if id == "" {
		return "", fieldErrorf("%s: %s template is empty", f.Name, slot)
	}
	if scope.Executor == nil {
		return "", fieldErrorf("%s: no template executor", f.Name)
	}
	out, err := scope.Executor.Execute(scope.Lang(), id, data)
	if err != nil {
		return "", fmt.Errorf("fields: render %s: %w", f.Name, err)
	}
	return out, nil
}

func (f Field) data(scope Scope, el *markup.Node, value any, errs []string) map[string]any {
	text := FormatValue(value)
	choices := make([]map[string]any, 0, len(f.Choices))
	display := text
	for _, c := range f.Choices {
		label := f.translated(scope, "choice", c.Label)
		selected := c.Value == text
		if selected {
			display = label
		}
		choices = append(choices, map[string]any{
			"value":    c.Value,
			"label":    label,
			"selected": selected,
		})
	}
	if f.Kind == KindPassword && text != "" {
		display = "********"
	}
	return map[string]any{
		"name":        f.Name,
		"id":          "field-" + f.Name,
		"label":       f.LabelFor(scope, el),
		"kind":        string(f.Kind),
		"widget":      f.Widget,
		"input_type":  inputType(f.Kind),
		"step":        step(f.Kind),
		"value":       text,
		"display":     display,
		"checked":     truthy(value),
		"choices":     choices,
		"required":    f.IsRequired(scope, el),
		"readonly":    f.IsReadonly(scope, el),
		"description": f.translated(scope, "description", f.Description),
		"placeholder": f.translated(scope, "placeholder", f.Placeholder),
		"errors":      errs,
		"lang":        scope.Lang(),
	}
}

// FormatValue renders a field value for an input value attribute.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return (err == nil && b) || v == "on"
	default:
		return false
	}
}

func inputType(k Kind) string {
	switch k {
	case KindPassword:
		return "password"
	case KindEmail:
		return "email"
	case KindInteger, KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindBoolean:
		return "checkbox"
	default:
		return "text"
	}
}

func step(k Kind) string {
	switch k {
	case KindInteger:
		return "1"
	case KindNumber:
		return "any"
	default:
		return ""
	}
}

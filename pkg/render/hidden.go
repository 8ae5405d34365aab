package render

import (
	"fmt"
	"html"
	"maps"
	"slices"
	"strings"
)

// HiddenField is an input sent back with every form submission, like the
// CSRF token or the pagination offset.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden formats value as the field name.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken is the hidden field carrying token under the name the host
// CSRF middleware reads.
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// MergeHiddenFields copies base and sets fields on the copy. Blank names
// are dropped.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for name, value := range base {
		if name = strings.TrimSpace(name); name != "" {
			out[name] = value
		}
	}
	for _, f := range fields {
		if name := strings.TrimSpace(f.Name); name != "" {
			out[name] = f.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields lists fields by name.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	clean := MergeHiddenFields(fields)
	var out []HiddenField
	for _, name := range slices.Sorted(maps.Keys(clean)) {
		out = append(out, HiddenField{Name: name, Value: clean[name]})
	}
	return out
}

// HiddenInputs renders fields as escaped hidden inputs, by name.
func HiddenInputs(fields map[string]string) string {
	var b strings.Builder
	for _, f := range SortedHiddenFields(fields) {
		fmt.Fprintf(&b, `<input type="hidden" name="%s" value="%s"/>`, html.EscapeString(f.Name), html.EscapeString(f.Value))
	}
	return b.String()
}

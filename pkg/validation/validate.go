// Package validation turns kin-openapi schema violations into translated,
// user facing issues.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-crudui/pkg/render"
)

// MessagesContext is the translation context of the built-in messages.
const MessagesContext = "form:messages"

// SchemaIssue represents a validation error with optional location metadata.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// SchemaValidationResult captures validation outcomes.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// Payload groups the issue messages by field, "" holding form-level ones.
func (r SchemaValidationResult) Payload() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, issue := range r.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

var messages = map[string]string{
	"required":  "This field is required.",
	"minLength": "This field is required.",
	"maxLength": "This value is too long.",
	"type":      "This value has the wrong type.",
	"enum":      "Select a valid choice.",
	"format":    "Enter a valid value.",
	"minimum":   "This value is too small.",
	"maximum":   "This value is too large.",
	"pattern":   "Enter a valid value.",
	"nullable":  "This field is required.",
}

const fallbackMessage = "Enter a valid value."

func init() {
	if _, ok := openapi3.SchemaStringFormats["email"]; !ok {
		openapi3.DefineStringFormat("email", openapi3.FormatOfStringForEmail)
	}
}

// Messages lists the built-in message ids, for catalog export.
func Messages() []string {
	seen := map[string]struct{}{fallbackMessage: {}}
	out := []string{fallbackMessage}
	for _, msg := range messages {
		if _, ok := seen[msg]; ok {
			continue
		}
		seen[msg] = struct{}{}
		out = append(out, msg)
	}
	sort.Strings(out)
	return out
}

// Message returns the untranslated message of a schema violation.
func Message(err *openapi3.SchemaError) string {
	if msg, ok := messages[err.SchemaField]; ok {
		return msg
	}
	return fallbackMessage
}

// Translated returns a message func translating the built-in messages for
// lang in MessagesContext.
func Translated(t render.Translator, lang string) render.MessageFunc {
	return func(err *openapi3.SchemaError) string {
		return render.Translate(t, nil, lang, MessagesContext, Message(err))
	}
}

// Validate checks value against schema, collecting every violation.
func Validate(schema *openapi3.Schema, value any, message render.MessageFunc) SchemaValidationResult {
	if message == nil {
		message = Message
	}
	err := schema.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return SchemaValidationResult{Valid: true}
	}
	result := SchemaValidationResult{}
	collect(err, message, &result.Issues)
	return result
}

func collect(err error, message render.MessageFunc, dest *[]SchemaIssue) {
	if multi, ok := err.(openapi3.MultiError); ok {
		for _, e := range multi {
			collect(e, message, dest)
		}
		return
	}
	*dest = append(*dest, issueFromError(err, message))
}

func issueFromError(err error, message render.MessageFunc) SchemaIssue {
	if err == nil {
		return SchemaIssue{Message: "unknown error"}
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		path := "/" + strings.Join(schemaErr.JSONPointer(), "/")
		return SchemaIssue{
			Path:    path,
			Field:   fieldPathFromPointer(path),
			Message: message(schemaErr),
		}
	}
	return SchemaIssue{Message: strings.TrimSpace(fmt.Sprint(err))}
}

func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimSpace(pointer)
	if trimmed == "" {
		return ""
	}
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for idx := 0; idx < len(parts); idx++ {
		segment := strings.ReplaceAll(parts[idx], "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		switch segment {
		case "properties":
			if idx+1 < len(parts) {
				next := strings.ReplaceAll(parts[idx+1], "~1", "/")
				next = strings.ReplaceAll(next, "~0", "~")
				out = append(out, next)
				idx++
			}
		case "items":
			out = append(out, "items")
		case "oneOf", "anyOf", "allOf":
			if idx+1 < len(parts) && isNumeric(parts[idx+1]) {
				idx++
			}
		case "$defs":
			if idx+1 < len(parts) {
				idx++
			}
		default:
			if segment == "" {
				continue
			}
			out = append(out, segment)
		}
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, ".")
}

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

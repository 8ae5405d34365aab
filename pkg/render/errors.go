// Package render holds what field and form rendering share: validation
// messages mapped onto fields, hidden inputs and translation helpers.
package render

import (
	"slices"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// MessageFunc turns a schema violation into the message shown next to the
// field. Package validation provides the built-in messages.
type MessageFunc func(err *openapi3.SchemaError) string

// ErrorMapping holds the messages of a failed submission: per field, and
// for the form as a whole.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// Empty reports whether m holds no message.
func (m ErrorMapping) Empty() bool {
	return len(m.Fields) == 0 && len(m.Form) == 0
}

// MergeFormErrors appends extras to existing, trimmed and without
// duplicates.
func MergeFormErrors(existing []string, extras ...string) []string {
	return dedupe(append(slices.Clone(existing), extras...))
}

// wrappers prefix the paths of request bodies, e.g. /body/name.
var wrappers = []string{"body", "request", "payload", "data", "attributes"}

// MapErrorPayload assigns the messages of payload, keyed by error path, to
// the fields called names. A path belongs to the first field it names once
// wrappers and list indexes are dropped, e.g. "$.body.tags[0]" to tags.
// Messages of other paths become form errors, in path order.
func MapErrorPayload(names []string, payload map[string][]string) ErrorMapping {
	var m ErrorMapping
	paths := make([]string, 0, len(payload))
	for p := range payload {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	for _, p := range paths {
		msgs := dedupe(payload[p])
		if len(msgs) == 0 {
			continue
		}
		name := fieldOf(p, names)
		if name == "" {
			m.Form = append(m.Form, msgs...)
			continue
		}
		if m.Fields == nil {
			m.Fields = make(map[string][]string)
		}
		m.Fields[name] = dedupe(append(m.Fields[name], msgs...))
	}
	m.Form = dedupe(m.Form)
	return m
}

func fieldOf(path string, names []string) string {
	for _, seg := range segments(path) {
		if slices.Contains(wrappers, strings.ToLower(seg)) {
			continue
		}
		if _, err := strconv.Atoi(seg); err == nil {
			continue
		}
		if slices.Contains(names, seg) {
			return seg
		}
		return ""
	}
	return ""
}

// segments splits JSON pointers, dotted paths and bracketed indexes.
func segments(path string) []string {
	parts := strings.FieldsFunc(strings.TrimSpace(path), func(r rune) bool {
		return strings.ContainsRune("/.[]#$", r)
	})
	out := parts[:0]
	for _, p := range parts {
		p = strings.NewReplacer("~1", "/", "~0", "~").Replace(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func dedupe(msgs []string) []string {
	var out []string
	for _, msg := range msgs {
		msg = strings.TrimSpace(msg)
		if msg != "" && !slices.Contains(out, msg) {
			out = append(out, msg)
		}
	}
	return out
}

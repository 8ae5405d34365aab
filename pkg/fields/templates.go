package fields

import "embed"

// TemplateFS holds the built-in field templates, one file per widget.
//
//go:embed templates/*.tmpl
var TemplateFS embed.FS

package menus

import "embed"

// TemplateFS holds the menu templates.
//
//go:embed templates/*.tmpl
var TemplateFS embed.FS

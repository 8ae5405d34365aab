package resources

import "embed"

// TemplateFS holds the view sections, buttons, actions and pages the
// composed view templates include.
//
//go:embed templates/*.tmpl
var TemplateFS embed.FS

// Package uischema loads declarative overlays for resources and menus from
// JSON or YAML files: labels, field predicates, view limits, redirect
// targets, sections and menu icons. Overlays are applied after the Go
// declarations, so a file can restyle a resource without recompiling.
package uischema

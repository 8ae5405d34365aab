// Package template is the seam between compiled crudui templates and the
// language rendering their {{ }} and {% %} blocks.
package template

// Package openapi derives resource fields from OpenAPI documents: the
// properties of an operation request body or of a component schema become
// the fields of a crudui form.
package openapi

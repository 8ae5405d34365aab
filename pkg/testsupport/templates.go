// Package testsupport holds the fixtures shared by package tests.
package testsupport

import (
	"bytes"
	"io"
	"io/fs"
	"testing"

	"github.com/goliatone/go-crudui/pkg/render/template/gotemplate"
	"github.com/goliatone/go-crudui/pkg/templates"
)

// Templates loads every *.tmpl file of the given file systems into a fresh
// engine, then loads the inline sources, and returns the engine with a
// pongo2 pool rendering it.
func Templates(t *testing.T, fsys []fs.FS, sources ...string) (*templates.Engine, *gotemplate.Pool) {
	t.Helper()

	engine := templates.New()
	for _, f := range fsys {
		if err := engine.LoadFS(f, "test"); err != nil {
			t.Fatalf("load templates: %v", err)
		}
	}
	for _, src := range sources {
		if err := engine.LoadString(src, templates.WithAddon("test")); err != nil {
			t.Fatalf("load template source: %v", err)
		}
	}
	return engine, gotemplate.NewPool(engine)
}

// CaptureTemplateOutput runs render against a buffer and returns what it
// returned and what it wrote.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()
	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}

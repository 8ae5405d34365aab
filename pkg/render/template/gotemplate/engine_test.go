package gotemplate_test

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/goliatone/go-crudui/pkg/render/template/gotemplate"
	"github.com/goliatone/go-crudui/pkg/templates"
	"github.com/goliatone/go-crudui/pkg/testsupport"
)

type mapSource struct {
	calls   int
	sources map[string]string
}

func (m *mapSource) get(id string) (string, error) {
	m.calls++
	src, ok := m.sources[id]
	if !ok {
		return "", fmt.Errorf("unknown template %q", id)
	}
	return src, nil
}

func TestEngineIncludesAndCache(t *testing.T) {
	src := &mapSource{sources: map[string]string{
		"page":   `<main>{% include "header" %}{{ body|safe }}</main>`,
		"header": `<h1>{{ title }}</h1>`,
	}}
	engine, err := gotemplate.New(gotemplate.WithSource(src.get))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	data := map[string]any{"title": "<Users>", "body": "<p>x</p>"}
	got, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("page", data, w)
	})
	want := "<main><h1>&lt;Users&gt;</h1><p>x</p></main>"
	if got != want || written != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q (written %q)", want, got, written)
	}

	before := src.calls
	if _, err := engine.RenderTemplate("page", data); err != nil {
		t.Fatalf("second render: %v", err)
	}
	if src.calls != before {
		t.Fatalf("source read %d more times for a cached template", src.calls-before)
	}
	engine.Forget("page")
	if _, err := engine.RenderTemplate("page", data); err != nil {
		t.Fatalf("render after forget: %v", err)
	}
	if src.calls == before {
		t.Fatalf("forgotten template was not read again")
	}
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("unknown id rendered")
	}
}

func TestEngineGlobalsFuncsAndFilters(t *testing.T) {
	src := &mapSource{sources: map[string]string{}}
	engine, err := gotemplate.New(
		gotemplate.WithSource(src.get),
		gotemplate.WithGlobalData(map[string]any{"base_url": "/admin"}),
		gotemplate.WithTemplateFunc(map[string]any{
			"shout":   func(s string) string { return strings.ToUpper(s) + "!" },
			"ignored": "not a function",
		}),
		gotemplate.WithFilter("reverse_words_test", func(in, _ any) (any, error) {
			words := strings.Fields(fmt.Sprint(in))
			for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
				words[i], words[j] = words[j], words[i]
			}
			return strings.Join(words, " "), nil
		}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got, err := engine.RenderString(
		`{{ base_url }}|{{ shout(name) }}|{{ words|reverse_words_test }}|[{{ pad|trim }}][{{ label|lowerfirst }}]`,
		map[string]any{"name": "ada", "words": "one two", "pad": "  x ", "label": " Name"},
	)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "/admin|ADA!|two one|[x][ name]"; got != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestEngineRequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("engine built without source")
	}
}

type langStore map[string]string

func (s langStore) String(id, lang string, _ templates.Format) (string, error) {
	src, ok := s[lang+"/"+id]
	if !ok {
		return "", fmt.Errorf("no %s template %q", lang, id)
	}
	return src, nil
}

func TestPoolPerLanguage(t *testing.T) {
	store := langStore{
		"en/hello": `Hello {{ name }}`,
		"fr/hello": `Bonjour {{ name }}`,
	}
	pool := gotemplate.NewPool(store)
	for lang, want := range map[string]string{"en": "Hello Ada", "fr": "Bonjour Ada", "": "Hello Ada"} {
		got, err := pool.Execute(lang, "hello", map[string]any{"name": "Ada"})
		if err != nil {
			t.Fatalf("%q: %v", lang, err)
		}
		if got != want {
			t.Fatalf("%q: got %q, want %q", lang, got, want)
		}
	}
	en, _ := pool.Engine("en")
	again, _ := pool.Engine(" en ")
	if en != again {
		t.Fatalf("pool built two engines for en")
	}
	if _, err := pool.Execute("de", "hello", nil); err == nil {
		t.Fatalf("missing language rendered")
	}
}

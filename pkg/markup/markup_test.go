package markup_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudui/pkg/markup"
)

func mustElement(t *testing.T, src string) *markup.Node {
	t.Helper()
	el, err := markup.ParseElement(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return el
}

func tags(nodes []*markup.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Tag)
	}
	return out
}

func TestParseAndPretty(t *testing.T) {
	el := mustElement(t, `<template id="test" test><a><b1/><b2></b2></a></template>`)
	got := markup.Pretty(el)
	want := "<template id=\"test\" test>\n <a>\n  <b1>\n  </b1>\n  <b2>\n  </b2>\n </a>\n</template>\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("pretty mismatch (-want +got):\n%s", diff)
	}
}

func TestParseClosesDanglingElements(t *testing.T) {
	el := mustElement(t, `<a><b1></a>`)
	if got := markup.Compact(el); got != "<a><b1></b1></a>" {
		t.Fatalf("unexpected compact output %q", got)
	}
}

func TestParseVoidElementsAndText(t *testing.T) {
	el := mustElement(t, `<div>Hello <input name="x"> world</div>`)
	if got := markup.Compact(el); got != `<div>Hello <input name="x"> world</div>` {
		t.Fatalf("unexpected compact output %q", got)
	}
	if len(el.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(el.Children))
	}
	if got := markup.Pretty(el); got != "<div>\n Hello\n <input name=\"x\">\n world\n</div>\n" {
		t.Fatalf("unexpected pretty output %q", got)
	}
}

func TestSerializeKeepsTemplateExpressions(t *testing.T) {
	el := mustElement(t, `<a href="/x?a=1&amp;b=2" hx-vals='{"k": "{{ v }}"}' title="{{ t|default:'x' }}">{% if x %}y{% endif %}</a>`)
	got := markup.Compact(el)
	want := `<a href="/x?a=1&amp;b=2" hx-vals='{"k": "{{ v }}"}' title="{{ t|default:'x' }}">{% if x %}y{% endif %}</a>`
	if got != want {
		t.Fatalf("compact mismatch\nwant: %s\n got: %s", want, got)
	}
}

func TestParseElementRejectsMultipleRoots(t *testing.T) {
	if _, err := markup.ParseElement(`<a></a><b></b>`); err == nil {
		t.Fatalf("expected error for multiple roots")
	}
	if _, err := markup.ParseElement(`   `); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestCloneIsDeep(t *testing.T) {
	el := mustElement(t, `<a x="1"><b>t</b></a>`)
	cp := el.Clone()
	cp.SetAttr("x", "2")
	cp.FirstElement().AppendChild(markup.Element("c"))
	if markup.Compact(el) != `<a x="1"><b>t</b></a>` {
		t.Fatalf("original mutated: %s", markup.Compact(el))
	}
	if markup.Compact(cp) != `<a x="2"><b>t<c></c></b></a>` {
		t.Fatalf("unexpected clone: %s", markup.Compact(cp))
	}
	if cp.FirstElement().Parent != cp {
		t.Fatalf("clone children must point at the cloned parent")
	}
}

func TestInsertChildMovesNodes(t *testing.T) {
	el := mustElement(t, `<a><b1></b1><b2></b2><b3></b3></a>`)
	b3 := el.Elements()[2]
	el.InsertChild(0, b3)
	if diff := cmp.Diff([]string{"b3", "b1", "b2"}, tags(el.Elements())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	b3.Detach()
	if b3.Parent != nil || len(el.Children) != 2 {
		t.Fatalf("detach failed")
	}
}

func TestXPathSelect(t *testing.T) {
	root := mustElement(t, `<template>
		<a id="a" class="x"><b1 id="1"></b1><b2></b2></a>
		<c><b1 id="2"></b1><b1 id="3"></b1></c>
	</template>`)

	cases := []struct {
		expr string
		want []string
	}{
		{expr: "/", want: []string{""}},
		{expr: "a", want: []string{"a"}},
		{expr: ".//b1", want: []string{"1", "2", "3"}},
		{expr: "//b1", want: []string{"1", "2", "3"}},
		{expr: "//b1[@id='3']", want: []string{"3"}},
		{expr: "//b1[@id!='3']", want: []string{"1", "2"}},
		{expr: "c/b1[1]", want: []string{"2"}},
		{expr: "c/b1[last()]", want: []string{"3"}},
		{expr: "//b1[1]", want: []string{"1", "2"}},
		{expr: "//*[@class]/b1", want: []string{"1"}},
		{expr: "//b2/..", want: []string{"a"}},
		{expr: "missing", want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			path, err := markup.CompilePath(tc.expr)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			var ids []string
			for _, n := range path.Select(root) {
				ids = append(ids, n.Get("id"))
			}
			if diff := cmp.Diff(tc.want, ids); diff != "" {
				t.Fatalf("select %q mismatch (-want +got):\n%s", tc.expr, diff)
			}
		})
	}
}

func TestXPathInvalid(t *testing.T) {
	for _, expr := range []string{"a//", "a[", "a[@]", "a[@x=1]", "b[0]", "//.."} {
		if _, err := markup.CompilePath(expr); err == nil {
			t.Fatalf("expected error for %q", expr)
		}
	}
}

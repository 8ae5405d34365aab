package templates

import (
	"regexp"
	"sort"
	"strings"

	"github.com/goliatone/go-crudui/pkg/markup"
)

// translatedAttributes are the attributes whose values go through the
// translator, keyed "{tag}:{attr}" in the message context.
var translatedAttributes = []string{"label", "hx-confirm", "placeholder", "title"}

// Expressions and statements of the rendering language are never sent to
// the translator.
var templateSyntax = regexp.MustCompile(`\{\{.*?\}\}|\{%.*?%\}|\{#.*?#\}`)

// translatable returns the message to translate for text, or "" when text is
// empty or carries template syntax.
func translatable(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", ""))
	if text == "" || templateSyntax.MatchString(text) {
		return ""
	}
	return text
}

func translationContext(id, suffix string) string {
	ctx := "template:" + id
	if suffix != "" {
		ctx += ":" + suffix
	}
	return ctx
}

// walkTranslatable calls fn for every translatable text run and attribute
// under root and stores the returned value in place.
func walkTranslatable(root *markup.Node, fn func(msg, suffix string) string) {
	root.Walk(func(n *markup.Node) bool {
		switch n.Type {
		case markup.CommentNode:
			return false
		case markup.TextNode:
			if msg := translatable(n.Data); msg != "" {
				n.Data = fn(msg, "")
			}
			return false
		}
		if n.Tag == "script" || n.Tag == "style" {
			return false
		}
		for _, attr := range translatedAttributes {
			v, ok := n.Attr(attr)
			if !ok {
				continue
			}
			if msg := translatable(v); msg != "" {
				n.SetAttr(attr, fn(msg, n.Tag+":"+attr))
			}
		}
		return true
	})
}

// ExportCatalog defines every translatable string of the known definitions
// on sink. When addon is not empty only definitions loaded with that addon
// are exported.
func (e *Engine) ExportCatalog(sink Sink, addon string) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.known))
	for id := range e.known {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for _, f := range e.known[id].fragments {
			if addon != "" && f.addon != addon {
				continue
			}
			walkTranslatable(f.node.Clone(), func(msg, suffix string) string {
				sink.Define(translationContext(id, suffix), msg)
				return msg
			})
		}
	}
}

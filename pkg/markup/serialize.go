package markup

import (
	"io"
	"strings"
)

// Pretty renders n with one tag or text run per line and one space of
// indentation per depth. The output ends with a newline.
func Pretty(n *Node) string {
	var b strings.Builder
	writePretty(&b, n, 0)
	return b.String()
}

// Compact renders n without added whitespace.
func Compact(n *Node) string {
	var b strings.Builder
	writeCompact(&b, n)
	return b.String()
}

// WritePretty writes Pretty(n) to w.
func WritePretty(w io.Writer, n *Node) error {
	_, err := io.WriteString(w, Pretty(n))
	return err
}

func writePretty(b *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat(" ", depth)
	switch n.Type {
	case TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return
		}
		b.WriteString(indent)
		b.WriteString(text)
		b.WriteByte('\n')
	case CommentNode:
		b.WriteString(indent)
		b.WriteString("<!--")
		b.WriteString(n.Data)
		b.WriteString("-->\n")
	case ElementNode:
		if n.Tag == "" {
			for _, c := range n.Children {
				writePretty(b, c, depth)
			}
			return
		}
		b.WriteString(indent)
		writeStartTag(b, n)
		b.WriteByte('\n')
		if IsVoid(n.Tag) {
			return
		}
		for _, c := range n.Children {
			writePretty(b, c, depth+1)
		}
		b.WriteString(indent)
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteString(">\n")
	}
}

func writeCompact(b *strings.Builder, n *Node) {
	switch n.Type {
	case TextNode:
		b.WriteString(n.Data)
	case CommentNode:
		b.WriteString("<!--")
		b.WriteString(n.Data)
		b.WriteString("-->")
	case ElementNode:
		if n.Tag == "" {
			for _, c := range n.Children {
				writeCompact(b, c)
			}
			return
		}
		writeStartTag(b, n)
		if IsVoid(n.Tag) {
			return
		}
		for _, c := range n.Children {
			writeCompact(b, c)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteByte('>')
	}
}

func writeStartTag(b *strings.Builder, n *Node) {
	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		if a.Val == "" {
			continue
		}
		quote := byte('"')
		if strings.ContainsRune(a.Val, '"') && !strings.ContainsRune(a.Val, '\'') {
			quote = '\''
		}
		b.WriteByte('=')
		b.WriteByte(quote)
		b.WriteString(escapeAttr(a.Val, quote))
		b.WriteByte(quote)
	}
	b.WriteByte('>')
}

// escapeAttr escapes an attribute value while leaving template expressions
// ({{ ... }} and {% ... %}) untouched so they reach the renderer verbatim.
func escapeAttr(s string, quote byte) string {
	var b strings.Builder
	for len(s) > 0 {
		start := nextDelimiter(s)
		if start < 0 {
			b.WriteString(escapeText(s, quote))
			break
		}
		b.WriteString(escapeText(s[:start], quote))
		s = s[start:]
		closer := "}}"
		if strings.HasPrefix(s, "{%") {
			closer = "%}"
		}
		end := strings.Index(s[2:], closer)
		if end < 0 {
			b.WriteString(escapeText(s, quote))
			break
		}
		end += 2 + len(closer)
		b.WriteString(s[:end])
		s = s[end:]
	}
	return b.String()
}

func nextDelimiter(s string) int {
	a := strings.Index(s, "{{")
	c := strings.Index(s, "{%")
	switch {
	case a < 0:
		return c
	case c < 0:
		return a
	case a < c:
		return a
	default:
		return c
	}
}

func escapeText(s string, quote byte) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	if quote == '"' {
		s = strings.ReplaceAll(s, `"`, "&quot;")
	}
	return s
}

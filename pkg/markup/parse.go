package markup

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {},
	"img": {}, "input": {}, "link": {}, "meta": {}, "param": {},
	"source": {}, "track": {}, "wbr": {},
}

// IsVoid reports whether tag never carries children.
func IsVoid(tag string) bool {
	_, ok := voidElements[tag]
	return ok
}

// Parse reads a markup fragment and returns its top-level nodes. It is
// lenient the way browsers are: unclosed elements are closed by an enclosing
// end tag and stray end tags are dropped. Doctypes are ignored.
func Parse(r io.Reader) ([]*Node, error) {
	z := html.NewTokenizer(r)
	root := &Node{Type: ElementNode}
	stack := []*Node{root}
	top := func() *Node { return stack[len(stack)-1] }

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("markup: tokenize: %w", err)
			}
			nodes := root.Children
			for _, n := range nodes {
				n.Parent = nil
			}
			return nodes, nil
		case html.TextToken:
			top().AppendChild(Text(string(z.Raw())))
		case html.CommentToken:
			tok := z.Token()
			top().AppendChild(Comment(tok.Data))
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			el := &Node{Type: ElementNode, Tag: strings.ToLower(tok.Data)}
			for _, a := range tok.Attr {
				el.Attrs = append(el.Attrs, Attr{Key: strings.ToLower(a.Key), Val: a.Val})
			}
			top().AppendChild(el)
			if tt == html.StartTagToken && !IsVoid(el.Tag) {
				stack = append(stack, el)
			}
		case html.EndTagToken:
			tok := z.Token()
			tag := strings.ToLower(tok.Data)
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Tag == tag {
					stack = stack[:i]
					break
				}
			}
		}
	}
}

// ParseString is Parse over a string.
func ParseString(s string) ([]*Node, error) {
	return Parse(strings.NewReader(s))
}

// ParseElement parses s and returns its single root element. Whitespace and
// comments around the element are ignored.
func ParseElement(s string) (*Node, error) {
	nodes, err := ParseString(s)
	if err != nil {
		return nil, err
	}
	var el *Node
	for _, n := range nodes {
		switch n.Type {
		case ElementNode:
			if el != nil {
				return nil, errors.New("markup: more than one root element")
			}
			el = n
		case TextNode:
			if strings.TrimSpace(n.Data) != "" {
				return nil, errors.New("markup: text outside of the root element")
			}
		}
	}
	if el == nil {
		return nil, errors.New("markup: no root element")
	}
	return el, nil
}

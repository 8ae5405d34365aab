package markup

import (
	"strings"
)

// NodeType identifies the kind of a Node.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	CommentNode
)

// Attr is a single attribute of an element. Order is preserved.
type Attr struct {
	Key string
	Val string
}

// Node is an element, a text run or a comment. Text that follows an element
// inside the same parent (the "tail") is modelled as a sibling text node.
type Node struct {
	Type     NodeType
	Tag      string
	Data     string
	Attrs    []Attr
	Children []*Node
	Parent   *Node
}

// Element builds a detached element node.
func Element(tag string, attrs ...Attr) *Node {
	n := &Node{Type: ElementNode, Tag: strings.ToLower(tag)}
	if len(attrs) > 0 {
		n.Attrs = append([]Attr(nil), attrs...)
	}
	return n
}

// Text builds a detached text node.
func Text(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

// Comment builds a detached comment node.
func Comment(data string) *Node {
	return &Node{Type: CommentNode, Data: data}
}

// IsElement reports whether n is an element, optionally with the given tag.
func (n *Node) IsElement(tag ...string) bool {
	if n == nil || n.Type != ElementNode {
		return false
	}
	if len(tag) == 0 {
		return true
	}
	for _, t := range tag {
		if n.Tag == t {
			return true
		}
	}
	return false
}

// Attr returns the value of key and whether it is present.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Get returns the value of key or the empty string.
func (n *Node) Get(key string) string {
	v, _ := n.Attr(key)
	return v
}

// HasAttr reports whether key is present.
func (n *Node) HasAttr(key string) bool {
	_, ok := n.Attr(key)
	return ok
}

// SetAttr sets key, keeping its position when it already exists.
func (n *Node) SetAttr(key, val string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Val: val})
}

// RemoveAttr deletes key and returns its previous value.
func (n *Node) RemoveAttr(key string) (string, bool) {
	for i, a := range n.Attrs {
		if a.Key == key {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return a.Val, true
		}
	}
	return "", false
}

// AppendChild adds children at the end, detaching them from any previous parent.
func (n *Node) AppendChild(children ...*Node) {
	n.InsertChild(len(n.Children), children...)
}

// InsertChild inserts children at position i.
func (n *Node) InsertChild(i int, children ...*Node) {
	if i < 0 {
		i = 0
	}
	if i > len(n.Children) {
		i = len(n.Children)
	}
	added := make([]*Node, 0, len(children))
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.Parent != nil {
			if c.Parent == n {
				if idx := n.indexOf(c); idx >= 0 && idx < i {
					i--
				}
			}
			c.Detach()
		}
		c.Parent = n
		added = append(added, c)
	}
	if len(added) == 0 {
		return
	}
	rest := append([]*Node(nil), n.Children[i:]...)
	n.Children = append(append(n.Children[:i], added...), rest...)
}

// RemoveChild detaches c and returns its former index, or -1.
func (n *Node) RemoveChild(c *Node) int {
	idx := n.indexOf(c)
	if idx < 0 {
		return -1
	}
	n.Children = append(n.Children[:idx], n.Children[idx+1:]...)
	c.Parent = nil
	return idx
}

// Detach removes n from its parent.
func (n *Node) Detach() {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Index returns the position of n in its parent's children, or -1.
func (n *Node) Index() int {
	if n.Parent == nil {
		return -1
	}
	return n.Parent.indexOf(n)
}

func (n *Node) indexOf(c *Node) int {
	for i, child := range n.Children {
		if child == c {
			return i
		}
	}
	return -1
}

// Elements returns the element children of n.
func (n *Node) Elements() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// FirstElement returns the first element child, or nil.
func (n *Node) FirstElement() *Node {
	for _, c := range n.Children {
		if c.Type == ElementNode {
			return c
		}
	}
	return nil
}

// Clone returns a deep copy of n without a parent.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Type: n.Type, Tag: n.Tag, Data: n.Data}
	if len(n.Attrs) > 0 {
		out.Attrs = append([]Attr(nil), n.Attrs...)
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cc := c.Clone()
			cc.Parent = out
			out.Children[i] = cc
		}
	}
	return out
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the subtree of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range append([]*Node(nil), n.Children...) {
		c.Walk(fn)
	}
}

// Text concatenates the text of n and its descendants.
func (n *Node) Text() string {
	var b strings.Builder
	n.Walk(func(c *Node) bool {
		if c.Type == TextNode {
			b.WriteString(c.Data)
		}
		return c.Type != CommentNode
	})
	return b.String()
}

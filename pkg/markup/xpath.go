package markup

import (
	"fmt"
	"strconv"
	"strings"
)

type axis int

const (
	axisChild axis = iota
	axisDescendant
	axisSelf
	axisParent
)

type predicate struct {
	attr     string
	value    string
	hasValue bool
	negate   bool
	position int
	last     bool
}

type step struct {
	axis  axis
	name  string
	preds []predicate
}

// Path is a compiled expression of the supported XPath subset:
// location steps separated by "/" or "//", the abbreviations ".", "..",
// name tests (tag or "*") and predicates [@a], [@a='v'], [@a!='v'], [n]
// and [last()]. Absolute paths are evaluated against the context node.
type Path struct {
	expr  string
	steps []step
}

// String returns the source expression.
func (p *Path) String() string { return p.expr }

// CompilePath parses expr.
func CompilePath(expr string) (*Path, error) {
	src := strings.TrimSpace(expr)
	p := &Path{expr: src}
	if src == "" || src == "/" || src == "." {
		return p, nil
	}

	rest := src
	next := axisChild
	switch {
	case strings.HasPrefix(rest, ".//"):
		next, rest = axisDescendant, rest[3:]
	case strings.HasPrefix(rest, "./"):
		rest = rest[2:]
	case strings.HasPrefix(rest, "//"):
		next, rest = axisDescendant, rest[2:]
	case strings.HasPrefix(rest, "/"):
		rest = rest[1:]
	}

	for {
		if rest == "" {
			return nil, fmt.Errorf("markup: xpath %q: empty step", src)
		}
		end := stepEnd(rest)
		raw := rest[:end]
		st, err := parseStep(raw, next)
		if err != nil {
			return nil, fmt.Errorf("markup: xpath %q: %w", src, err)
		}
		p.steps = append(p.steps, st)
		rest = rest[end:]
		if rest == "" {
			return p, nil
		}
		if strings.HasPrefix(rest, "//") {
			next, rest = axisDescendant, rest[2:]
		} else {
			next, rest = axisChild, rest[1:]
		}
	}
}

// MustCompilePath is CompilePath that panics on error.
func MustCompilePath(expr string) *Path {
	p, err := CompilePath(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func stepEnd(s string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == '/' && depth == 0:
			return i
		}
	}
	return len(s)
}

func parseStep(raw string, ax axis) (step, error) {
	switch raw {
	case ".":
		if ax == axisDescendant {
			return step{}, fmt.Errorf("unsupported step %q", "//.")
		}
		return step{axis: axisSelf}, nil
	case "..":
		if ax == axisDescendant {
			return step{}, fmt.Errorf("unsupported step %q", "//..")
		}
		return step{axis: axisParent}, nil
	}

	name := raw
	var preds []predicate
	if i := strings.IndexByte(raw, '['); i >= 0 {
		name = raw[:i]
		body := raw[i:]
		for body != "" {
			if body[0] != '[' {
				return step{}, fmt.Errorf("malformed predicate in %q", raw)
			}
			end := closingBracket(body)
			if end < 0 {
				return step{}, fmt.Errorf("unterminated predicate in %q", raw)
			}
			pred, err := parsePredicate(strings.TrimSpace(body[1:end]))
			if err != nil {
				return step{}, err
			}
			preds = append(preds, pred)
			body = body[end+1:]
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return step{}, fmt.Errorf("missing name test in %q", raw)
	}
	if name != "*" && !validName(name) {
		return step{}, fmt.Errorf("invalid name test %q", name)
	}
	return step{axis: ax, name: strings.ToLower(name), preds: preds}, nil
}

func closingBracket(s string) int {
	var quote byte
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ']':
			return i
		}
	}
	return -1
}

func parsePredicate(body string) (predicate, error) {
	switch {
	case body == "last()":
		return predicate{last: true}, nil
	case strings.HasPrefix(body, "@"):
		body = body[1:]
		op := strings.Index(body, "=")
		if op < 0 {
			name := strings.TrimSpace(body)
			if !validName(name) {
				return predicate{}, fmt.Errorf("invalid attribute test %q", body)
			}
			return predicate{attr: strings.ToLower(name)}, nil
		}
		negate := op > 0 && body[op-1] == '!'
		nameEnd := op
		if negate {
			nameEnd--
		}
		name := strings.TrimSpace(body[:nameEnd])
		lit := strings.TrimSpace(body[op+1:])
		if !validName(name) {
			return predicate{}, fmt.Errorf("invalid attribute test %q", body)
		}
		if len(lit) < 2 || (lit[0] != '\'' && lit[0] != '"') || lit[len(lit)-1] != lit[0] {
			return predicate{}, fmt.Errorf("attribute value must be quoted in %q", body)
		}
		return predicate{
			attr:     strings.ToLower(name),
			value:    lit[1 : len(lit)-1],
			hasValue: true,
			negate:   negate,
		}, nil
	default:
		n, err := strconv.Atoi(body)
		if err != nil || n < 1 {
			return predicate{}, fmt.Errorf("unsupported predicate [%s]", body)
		}
		return predicate{position: n}, nil
	}
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == ':', r == '.':
		default:
			return false
		}
	}
	return true
}

// Select evaluates the path against ctx and returns the matches in document
// order without duplicates.
func (p *Path) Select(ctx *Node) []*Node {
	if ctx == nil {
		return nil
	}
	current := []*Node{ctx}
	for _, st := range p.steps {
		var next []*Node
		for _, n := range current {
			next = append(next, st.apply(n)...)
		}
		current = dedupe(next)
		if len(current) == 0 {
			return nil
		}
	}
	return documentOrder(ctx, current)
}

// First returns the first match, or nil.
func (p *Path) First(ctx *Node) *Node {
	matches := p.Select(ctx)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

func (st step) apply(n *Node) []*Node {
	switch st.axis {
	case axisSelf:
		return []*Node{n}
	case axisParent:
		if n.Parent == nil {
			return nil
		}
		return []*Node{n.Parent}
	case axisChild:
		return st.filter(n.Elements())
	default:
		// Predicates of a descendant step are positional per parent, the way
		// //x[1] means "every x that is the first x child of its parent".
		var out []*Node
		n.Walk(func(c *Node) bool {
			if c.Type != ElementNode {
				return false
			}
			out = append(out, st.filter(c.Elements())...)
			return true
		})
		return out
	}
}

func (st step) filter(candidates []*Node) []*Node {
	var matched []*Node
	for _, c := range candidates {
		if st.name == "*" || c.Tag == st.name {
			matched = append(matched, c)
		}
	}
	for _, pred := range st.preds {
		matched = pred.filter(matched)
	}
	return matched
}

func (pr predicate) filter(nodes []*Node) []*Node {
	switch {
	case pr.last:
		if len(nodes) == 0 {
			return nil
		}
		return nodes[len(nodes)-1:]
	case pr.position > 0:
		if pr.position > len(nodes) {
			return nil
		}
		return nodes[pr.position-1 : pr.position]
	}
	var out []*Node
	for _, n := range nodes {
		v, ok := n.Attr(pr.attr)
		switch {
		case !pr.hasValue:
			if ok {
				out = append(out, n)
			}
		case pr.negate:
			if ok && v != pr.value {
				out = append(out, n)
			}
		default:
			if ok && v == pr.value {
				out = append(out, n)
			}
		}
	}
	return out
}

func dedupe(nodes []*Node) []*Node {
	seen := make(map[*Node]bool, len(nodes))
	out := nodes[:0:0]
	for _, n := range nodes {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func documentOrder(ctx *Node, nodes []*Node) []*Node {
	if len(nodes) < 2 {
		return nodes
	}
	root := ctx
	for root.Parent != nil {
		root = root.Parent
	}
	want := make(map[*Node]bool, len(nodes))
	for _, n := range nodes {
		want[n] = true
	}
	out := make([]*Node, 0, len(nodes))
	root.Walk(func(c *Node) bool {
		if want[c] {
			out = append(out, c)
		}
		return true
	})
	return out
}

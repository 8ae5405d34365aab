package templates

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-crudui/pkg/markup"
)

// Patch actions understood by <xpath action="...">.
const (
	ActionInsertInside = "insertInside"
	ActionInsertBefore = "insertBefore"
	ActionInsertAfter  = "insertAfter"
	ActionReplace      = "replace"
	ActionRemove       = "remove"
	ActionAttributes   = "attributes"
)

const (
	tagXPath     = "xpath"
	tagInclude   = "include"
	tagAttribute = "attribute"
)

func normLang(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return DefaultLang
	}
	return lang
}

// Compile compiles every known definition for lang. Templates that are
// already compiled are kept; nothing is published when an error occurs.
// Placeholders left by IgnoreMissingExtend are skipped until defined.
func (e *Engine) Compile(lang string) error {
	lang = normLang(lang)
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.newCompiler(lang)
	ids := make([]string, 0, len(e.known))
	for id, def := range e.known {
		if def.placeholder {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := c.compile(id); err != nil {
			return err
		}
	}
	c.publish()
	e.logger.Debug("templates compiled", "lang", lang, "count", len(ids))
	return nil
}

// Template returns a copy of the compiled <template> element of id.
func (e *Engine) Template(id, lang string) (*markup.Node, error) {
	tree, err := e.compiledTree(id, normLang(lang))
	if err != nil {
		return nil, err
	}
	return tree.Clone(), nil
}

// Compiled returns a copy of the compiled content of id: the children of its
// <template> element held by a fragment node (a node without tag, which
// serializes as its children only). Callers may mutate the result freely.
func (e *Engine) Compiled(id, lang string) (*markup.Node, error) {
	tree, err := e.compiledTree(id, normLang(lang))
	if err != nil {
		return nil, err
	}
	frag := &markup.Node{Type: markup.ElementNode}
	for _, c := range tree.Children {
		frag.AppendChild(c.Clone())
	}
	return frag, nil
}

// String returns the serialized compiled content of id. Results are cached
// per language and format.
func (e *Engine) String(id, lang string, format Format) (string, error) {
	lang = normLang(lang)
	e.mu.RLock()
	if s, ok := e.compiledStr[lang][format][id]; ok {
		e.mu.RUnlock()
		return s, nil
	}
	e.mu.RUnlock()

	frag, err := e.Compiled(id, lang)
	if err != nil {
		return "", err
	}
	var out string
	if format == FormatCompact {
		out = markup.Compact(frag)
	} else {
		out = markup.Pretty(frag)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	byFormat, ok := e.compiledStr[lang]
	if !ok {
		byFormat = make(map[Format]map[string]string)
		e.compiledStr[lang] = byFormat
	}
	if byFormat[format] == nil {
		byFormat[format] = make(map[string]string)
	}
	byFormat[format][id] = out
	return out, nil
}

func (e *Engine) compiledTree(id, lang string) (*markup.Node, error) {
	e.mu.RLock()
	tree, ok := e.compiled[lang][id]
	e.mu.RUnlock()
	if ok {
		return tree, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.newCompiler(lang)
	tree, err := c.compile(id)
	if err != nil {
		return nil, err
	}
	c.publish()
	return tree, nil
}

type compiler struct {
	e        *Engine
	lang     string
	scratch  map[string]*markup.Node
	visiting map[string]bool
}

func (e *Engine) newCompiler(lang string) *compiler {
	return &compiler{
		e:        e,
		lang:     lang,
		scratch:  make(map[string]*markup.Node),
		visiting: make(map[string]bool),
	}
}

func (c *compiler) publish() {
	if len(c.scratch) == 0 {
		return
	}
	cache, ok := c.e.compiled[c.lang]
	if !ok {
		cache = make(map[string]*markup.Node, len(c.scratch))
		c.e.compiled[c.lang] = cache
	}
	for id, tree := range c.scratch {
		cache[id] = tree
	}
}

func (c *compiler) lookup(id string) (*markup.Node, bool) {
	if tree, ok := c.e.compiled[c.lang][id]; ok {
		return tree, true
	}
	tree, ok := c.scratch[id]
	return tree, ok
}

func (c *compiler) compile(id string) (*markup.Node, error) {
	if tree, ok := c.lookup(id); ok {
		return tree, nil
	}
	def, ok := c.e.known[id]
	if !ok {
		return nil, templateErrorf("unknown template %q", id)
	}
	if c.visiting[id] {
		return nil, templateErrorf("template %q depends on itself", id)
	}
	if def.placeholder {
		return nil, templateErrorf("template %q is only extended, never defined", id)
	}
	c.visiting[id] = true
	defer delete(c.visiting, id)

	elements, err := c.elements(def)
	if err != nil {
		return nil, err
	}

	var tree *markup.Node
	patches := elements
	if def.extend != "" {
		base, err := c.compile(def.extend)
		if err != nil {
			return nil, err
		}
		tree = base.Clone()
		tree.SetAttr("id", id)
	} else {
		tree, patches = elements[0], elements[1:]
	}

	for _, p := range patches {
		for _, x := range p.Elements() {
			if x.Tag != tagXPath {
				continue
			}
			if err := c.apply(id, tree, x); err != nil {
				return nil, err
			}
		}
	}

	if c.e.translator != nil {
		walkTranslatable(tree, func(msg, suffix string) string {
			return c.e.translator.Get(c.lang, translationContext(id, suffix), msg)
		})
	}
	c.scratch[id] = tree
	return tree, nil
}

// elements returns copies of the fragments of def with every <include>
// replaced by the compiled children of its target.
func (c *compiler) elements(def *definition) ([]*markup.Node, error) {
	out := make([]*markup.Node, 0, len(def.fragments))
	for _, f := range def.fragments {
		el := f.node.Clone()
		if err := c.resolveIncludes(el); err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

func (c *compiler) resolveIncludes(root *markup.Node) error {
	var includes []*markup.Node
	root.Walk(func(n *markup.Node) bool {
		if n.IsElement(tagInclude) {
			includes = append(includes, n)
			return false
		}
		return true
	})
	for _, inc := range includes {
		target := strings.TrimSpace(inc.Get("template"))
		if target == "" {
			return templateErrorf("<include> without template attribute")
		}
		included, err := c.compile(target)
		if err != nil {
			return err
		}
		parent := inc.Parent
		if parent == nil {
			return templateErrorf("<include template=%q> cannot be a root", target)
		}
		idx := parent.RemoveChild(inc)
		clones := make([]*markup.Node, 0, len(included.Children))
		for _, child := range included.Children {
			clones = append(clones, child.Clone())
		}
		parent.InsertChild(idx, clones...)
	}
	return nil
}

func (c *compiler) apply(id string, tree, x *markup.Node) error {
	expression := x.Get("expression")
	if strings.TrimSpace(expression) == "" {
		expression = "/"
	}
	action := x.Get("action")
	if action == "" {
		action = "insert"
	}
	mult := parseBool(x.Get("mult"))

	var payload []*markup.Node
	for _, child := range x.Children {
		if child.Type != markup.CommentNode {
			payload = append(payload, child)
		}
	}

	var attributes []markup.Attr
	switch action {
	case ActionInsertInside, ActionInsertBefore, ActionInsertAfter, ActionReplace, ActionRemove:
	case ActionAttributes:
		attrs, err := carrierAttributes(payload)
		if err != nil {
			return err
		}
		attributes = attrs
	default:
		return templateErrorf("unknown xpath action %q in template %q", action, id)
	}

	path, err := markup.CompilePath(expression)
	if err != nil {
		return templateErrorf("template %q: %v", id, err)
	}
	var targets []*markup.Node
	if mult {
		targets = path.Select(tree)
	} else if first := path.First(tree); first != nil {
		targets = []*markup.Node{first}
	}
	if len(targets) == 0 {
		if !mult {
			return templateErrorf("template %q: xpath %q matched nothing", id, expression)
		}
		c.e.logger.Debug("xpath matched nothing", "template", id, "expression", expression)
		return nil
	}

	for _, target := range targets {
		if err := patch(target, action, clones(payload), attributes); err != nil {
			return templateErrorf("template %q: xpath %q: %v", id, expression, err)
		}
	}
	return nil
}

func patch(target *markup.Node, action string, payload []*markup.Node, attributes []markup.Attr) error {
	switch action {
	case ActionInsertInside:
		target.AppendChild(payload...)
		return nil
	case ActionAttributes:
		for _, a := range attributes {
			target.SetAttr(a.Key, a.Val)
		}
		return nil
	}

	parent := target.Parent
	if parent == nil {
		return errRootTarget
	}
	idx := target.Index()
	switch action {
	case ActionInsertBefore:
		parent.InsertChild(idx, payload...)
	case ActionInsertAfter:
		parent.InsertChild(idx+1, payload...)
	case ActionReplace:
		parent.RemoveChild(target)
		parent.InsertChild(idx, payload...)
	case ActionRemove:
		parent.RemoveChild(target)
	}
	return nil
}

var errRootTarget = errors.New("the template root has no siblings")

func carrierAttributes(payload []*markup.Node) ([]markup.Attr, error) {
	var out []markup.Attr
	for _, n := range payload {
		if n.Type == markup.TextNode {
			return nil, templateErrorf("text %q inside an attributes patch", n.Data)
		}
		if n.Tag != tagAttribute {
			return nil, templateErrorf("got <%s> node, waiting <%s> node", n.Tag, tagAttribute)
		}
		out = append(out, n.Attrs...)
	}
	return out, nil
}

func clones(nodes []*markup.Node) []*markup.Node {
	out := make([]*markup.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

func parseBool(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n != 0
	}
	return false
}

package resources

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/forms"
	"github.com/goliatone/go-crudui/pkg/markup"
	"github.com/goliatone/go-crudui/pkg/render"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/web"
)

// View is one renderable mode of a resource.
type View interface {
	Code() string
	Kind() ViewKind
	// Context is the translation context, resource:{code}:view:{view}.
	Context() string
	Config() ViewConfig
	// Form is the resolved field set of the view.
	Form() forms.Spec
	Label(sess *session.Session) string
	// TemplateID is the id of the composed template,
	// resource-{code}-view-{view}.
	TemplateID() string
	// Template returns the composed template source.
	Template() string
	Render(ctx context.Context, sess *session.Session, options url.Values) (string, error)
	// Handlers maps action names to handlers, method checks included.
	Handlers() map[string]web.Handler
	ExportCatalog(sink forms.Sink)

	render(ctx context.Context, sess *session.Session, options url.Values, st state) (string, error)
}

// state carries a submitted form and a domain error into a re-render.
type state struct {
	form *forms.Form
	err  string
}

var errorPolicy = bluemonday.StrictPolicy()

func (st *state) fail(err error) {
	st.err = errorPolicy.Sanitize(err.Error())
}

type base struct {
	res      *Resource
	cfg      ViewConfig
	spec     forms.Spec
	context  string
	source   string
	handlers map[string]web.Handler

	static     bool
	schemaOnce sync.Once
	schema     *openapi3.Schema
}

func newBase(res *Resource, cfg ViewConfig, spec forms.Spec) *base {
	return &base{
		res:     res,
		cfg:     cfg,
		spec:    spec,
		context: res.context + ":view:" + cfg.Code,
		static:  spec.Static(),
	}
}

func (v *base) Code() string                     { return v.cfg.Code }
func (v *base) Kind() ViewKind                   { return v.cfg.Kind }
func (v *base) Context() string                  { return v.context }
func (v *base) Config() ViewConfig               { return v.cfg }
func (v *base) Form() forms.Spec                 { return v.spec }
func (v *base) Template() string                 { return v.source }
func (v *base) Handlers() map[string]web.Handler { return v.handlers }

func (v *base) TemplateID() string {
	return "resource-" + v.res.Code + "-view-" + v.cfg.Code
}

// Label is the translated view label, the resource label when unset.
func (v *base) Label(sess *session.Session) string {
	if v.cfg.Label == "" {
		return v.res.LabelFor(sess)
	}
	scope := v.scope(sess, nil)
	return v.translate(scope, v.context+":label", v.cfg.Label)
}

func (v *base) ExportCatalog(sink forms.Sink) {
	defineNonEmpty(sink, v.context+":label", v.cfg.Label)
	v.spec.ExportCatalog(sink)
	v.exportActions(sink)
}

func (v *base) scope(sess *session.Session, values map[string]any) fields.Scope {
	rt := v.res.rt
	return fields.Scope{
		Session:    sess,
		View:       v.cfg.Code,
		Values:     values,
		Evaluator:  rt.Evaluator,
		Translator: rt.Translator,
		Executor:   rt.Executor,
		Logger:     rt.Logger,
	}
}

func (v *base) execute(scope fields.Scope, id string, data map[string]any) (string, error) {
	out, err := v.res.rt.Executor.Execute(scope.Lang(), id, data)
	if err != nil {
		return "", fmt.Errorf("resources: %s: %w", v.TemplateID(), err)
	}
	return out, nil
}

// data returns the variables shared by every view template.
func (v *base) data(scope fields.Scope, st state) map[string]any {
	return map[string]any{
		"rcode":          v.res.Code,
		"vcode":          v.cfg.Code,
		"label":          v.Label(scope.Session),
		"resource_label": v.res.LabelFor(scope.Session),
		"base_url":       v.res.rt.BaseURL,
		"error":          st.err,
		"hidden":         v.hidden(scope),
	}
}

func (v *base) hidden(scope fields.Scope) []render.HiddenField {
	if v.res.rt.Hidden == nil {
		return nil
	}
	return v.res.rt.Hidden(scope.Session)
}

// validate checks form, reusing the schema of the view when no predicate
// depends on the session.
func (v *base) validate(form *forms.Form, scope fields.Scope) bool {
	if !v.static {
		return form.Validate(scope)
	}
	v.schemaOnce.Do(func() {
		v.schema = v.spec.Schema(scope, false)
	})
	return form.ValidateSchema(scope, v.schema)
}

// actionURL is the resource action endpoint with the given querystring.
func (v *base) actionURL(qs url.Values) string {
	return web.URLFromValues(v.res.rt.BaseURL+"/action/resource", qs)
}

// transitionURL returns the goto link from options to another state.
// Keys mapped to an empty slice are removed.
func (v *base) transitionURL(options url.Values, changes url.Values) string {
	qs := web.CloneValues(options)
	qs.Set("action", "goto")
	for k, values := range changes {
		if len(values) == 0 {
			qs.Del(k)
			continue
		}
		qs[k] = append([]string(nil), values...)
	}
	return v.actionURL(qs)
}

// button renders a header button template.
func (v *base) button(scope fields.Scope, id string, data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	data["rcode"] = v.res.Code
	data["vcode"] = v.cfg.Code
	data["base_url"] = v.res.rt.BaseURL
	return v.execute(scope, id, data)
}

// gotoButton renders id with the link to target when target is set.
func (v *base) gotoButton(scope fields.Scope, buttons []string, id, target string, options url.Values, changes url.Values) ([]string, error) {
	if target == "" {
		return buttons, nil
	}
	if changes == nil {
		changes = url.Values{}
	}
	changes.Set("view", target)
	html, err := v.button(scope, id, map[string]any{"url": v.transitionURL(options, changes)})
	if err != nil {
		return nil, err
	}
	return append(buttons, html), nil
}

func (v *base) gotoHandler(ctx context.Context, req *web.Request) (*web.Response, error) {
	options := web.CloneValues(req.Query)
	options.Del("action")
	body, err := v.res.renderView(ctx, req.Session, options.Get("view"), options, state{})
	if err != nil {
		return nil, err
	}
	return web.NewResponse(body).PushURL(web.URLFromValues(req.CurrentURLPath(), options)), nil
}

// redirect renders the view target with qs and pushes its URL.
func (v *base) redirect(ctx context.Context, req *web.Request, qs url.Values) (*web.Response, error) {
	body, err := v.res.renderView(ctx, req.Session, qs.Get("view"), qs, state{})
	if err != nil {
		return nil, err
	}
	return web.NewResponse(body).PushURL(web.URLFromValues(req.CurrentURLPath(), qs)), nil
}

// callHandler invokes a declared resource method. pks extracts the rows
// the method applies to.
func (v *base) callHandler(self View, pks func(*web.Request) []string) web.Handler {
	return func(ctx context.Context, req *web.Request) (*web.Response, error) {
		method := param(req, "method")
		scope := v.scope(req.Session, nil)
		fn := v.res.Methods[method]
		if fn == nil || !v.declaredAction(scope, method) {
			return nil, fmt.Errorf("resources: %w: %w: the method %q is not declared in view %s", ErrViewAction, web.ErrActionValidator, method, v.TemplateID())
		}
		v.res.rt.Logger.Debug("resource method called", "resource", v.res.Code, "view", v.cfg.Code, "method", method)
		resp, err := fn(ctx, Call{Resource: v.res, View: self, Request: req, PKs: pks(req)})
		if err != nil {
			return nil, err
		}
		if resp != nil {
			return resp, nil
		}
		body, err := self.render(ctx, req.Session, req.CurrentURLQuery(), state{})
		if err != nil {
			return nil, err
		}
		return web.NewResponse(body), nil
	}
}

// param reads a request parameter from the body, then from the query.
func param(req *web.Request, key string) string {
	if v := req.Params.Get(key); v != "" {
		return v
	}
	return req.Query.Get(key)
}

// compose builds the view template: a container holding the header, body
// and footer sections, inside a form unless formAttrs is nil. wrapBody may
// decorate the body nodes.
func (v *base) compose(formAttrs []markup.Attr, wrapBody func([]*markup.Node) []*markup.Node) (string, error) {
	id := v.TemplateID()
	tmpl := markup.Element("template", markup.Attr{Key: "id", Val: id}, markup.Attr{Key: "rewrite", Val: "1"})
	container := markup.Element("div",
		markup.Attr{Key: "id", Val: id},
		markup.Attr{Key: "class", Val: "crudui-view container is-fluid content"},
	)
	tmpl.AppendChild(container)
	parent := container
	if formAttrs != nil {
		parent = markup.Element("form", formAttrs...)
		container.AppendChild(parent)
		if v.res.rt.Hidden != nil {
			parent.AppendChild(markup.Text("{% for field in hidden %}"))
			parent.AppendChild(markup.Element("input",
				markup.Attr{Key: "type", Val: "hidden"},
				markup.Attr{Key: "name", Val: "{{ field.Name }}"},
				markup.Attr{Key: "value", Val: "{{ field.Value }}"},
			))
			parent.AppendChild(markup.Text("{% endfor %}"))
		}
	}

	for i, s := range []Section{v.cfg.Header, v.cfg.Body, v.cfg.Footer} {
		nodes, err := sectionNodes(s)
		if err != nil {
			return "", viewErrorf("%s: %v", id, err)
		}
		if i == 1 && wrapBody != nil {
			nodes = wrapBody(nodes)
		}
		parent.AppendChild(nodes...)
	}
	return markup.Compact(tmpl), nil
}

func sectionNodes(s Section) ([]*markup.Node, error) {
	switch {
	case s.Markup != "":
		return markup.ParseString(s.Markup)
	case s.ID != "":
		return []*markup.Node{markup.Element("include", markup.Attr{Key: "template", Val: s.ID})}, nil
	}
	return nil, nil
}

// targetAttrs swap the whole view with the response.
func (v *base) targetAttrs(attrs ...markup.Attr) []markup.Attr {
	return append(attrs,
		markup.Attr{Key: "hx-target", Val: "closest .crudui-view"},
		markup.Attr{Key: "hx-swap", Val: "outerHTML"},
	)
}

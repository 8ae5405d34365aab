// Package resources renders CRUD resources: each resource owns list,
// create, read, edit and delete views composed from ViewConfig values, and
// routes the actions posted by those views to typed handlers.
package resources

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/forms"
	"github.com/goliatone/go-crudui/pkg/menus"
	"github.com/goliatone/go-crudui/pkg/render"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/templates"
	"github.com/goliatone/go-crudui/pkg/visibility"
	"github.com/goliatone/go-crudui/pkg/web"
	"github.com/goliatone/go-crudui/pkg/widgets"
)

// Runtime is what a resource needs from its client to build and render.
type Runtime struct {
	Templates  *templates.Engine
	Executor   render.Executor
	Translator render.Translator
	Evaluator  visibility.Evaluator
	Widgets    *widgets.Registry
	BaseURL    string
	Logger     *slog.Logger
	// Hidden returns fields posted with every view form, e.g. a CSRF token.
	Hidden func(sess *session.Session) []render.HiddenField
	// NotFound renders the page shown for a missing view or entry.
	NotFound RenderFunc
}

// Resource is a CRUD entity rendered through its views.
type Resource struct {
	Code  string
	Label string
	// PK names the primary key field.
	PK     string
	Fields []fields.Field
	// DefaultView is rendered when the querystring names no view. It
	// defaults to the first view.
	DefaultView string
	Views       []ViewConfig
	// Backend implements Lister, Creator, Reader, Updater and Deleter as
	// required by the declared view kinds.
	Backend        any
	Methods        map[string]MethodFunc
	PageSecurity   PageSecurity
	ActionSecurity ActionSecurity
	// MenuLabel is the label of the menus opening the resource, Label when
	// empty.
	MenuLabel string

	rt      Runtime
	context string
	views   map[string]View
	order   []string
}

// Build composes the views, checks every reference they hold and loads
// their templates in rt.Templates.
func (r *Resource) Build(rt Runtime) error {
	r.Code = strings.TrimSpace(r.Code)
	if r.Code == "" {
		return resourceErrorf("resource without code")
	}
	if strings.TrimSpace(r.Label) == "" {
		return resourceErrorf("%s: resource without label", r.Code)
	}
	if strings.TrimSpace(r.PK) == "" {
		return fmt.Errorf("resources: %w: %s: no primary key", ErrViewForm, r.Code)
	}
	if rt.Templates == nil || rt.Executor == nil {
		return resourceErrorf("%s: runtime without templates or executor", r.Code)
	}
	if rt.Logger == nil {
		rt.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r.rt = rt
	r.context = "resource:" + r.Code

	configs, err := Compose(r.Views...)
	if err != nil {
		return fmt.Errorf("resources: %s: %w", r.Code, err)
	}
	if len(configs) == 0 {
		return resourceErrorf("%s: resource without view", r.Code)
	}

	r.views = make(map[string]View, len(configs))
	r.order = r.order[:0]
	for _, cfg := range configs {
		view, err := r.buildView(cfg)
		if err != nil {
			return err
		}
		r.views[cfg.Code] = view
		r.order = append(r.order, cfg.Code)
	}
	for _, code := range r.order {
		if err := r.checkReferences(r.views[code]); err != nil {
			return err
		}
	}

	switch {
	case r.DefaultView == "":
		r.DefaultView = r.order[0]
	case r.views[r.DefaultView] == nil:
		return resourceErrorf("%s: unknown default view %q", r.Code, r.DefaultView)
	}

	for _, code := range r.order {
		view := r.views[code]
		if err := rt.Templates.LoadString(view.Template(), templates.WithAddon(r.Addon())); err != nil {
			return fmt.Errorf("resources: %s: %w", view.TemplateID(), err)
		}
	}
	rt.Logger.Debug("resource built", "resource", r.Code, "views", r.order)
	return nil
}

func (r *Resource) buildView(cfg ViewConfig) (View, error) {
	base := forms.Spec{
		Name:    r.Code + "-" + cfg.Code,
		Context: r.context,
		PK:      r.PK,
		Fields:  r.Fields,
	}
	spec, err := forms.Merge(base, cfg.Fields).Resolve(r.rt.Widgets, r.rt.Evaluator)
	if err != nil {
		return nil, fmt.Errorf("resources: %w: %s: %w", ErrViewForm, cfg.Code, err)
	}
	if cfg.Layout != "" {
		if _, err := spec.FieldNames(cfg.Layout); err != nil {
			return nil, viewErrorf("%s/%s: %v", r.Code, cfg.Code, err)
		}
	}
	for _, name := range cfg.Filters {
		if _, ok := spec.Field(name); !ok {
			return nil, filterErrorf("%s/%s: unknown filter field %q", r.Code, cfg.Code, name)
		}
	}

	b := newBase(r, cfg, spec)
	switch cfg.Kind {
	case KindList:
		lister, ok := r.Backend.(Lister)
		if !ok {
			return nil, r.missingBackend(cfg, "Lister")
		}
		return newListView(b, lister)
	case KindCreate:
		creator, ok := r.Backend.(Creator)
		if !ok {
			return nil, r.missingBackend(cfg, "Creator")
		}
		return newCreateView(b, creator)
	case KindRead:
		reader, ok := r.Backend.(Reader)
		if !ok {
			return nil, r.missingBackend(cfg, "Reader")
		}
		return newReadView(b, reader)
	case KindEdit:
		reader, ok := r.Backend.(Reader)
		if !ok {
			return nil, r.missingBackend(cfg, "Reader")
		}
		updater, ok := r.Backend.(Updater)
		if !ok {
			return nil, r.missingBackend(cfg, "Updater")
		}
		return newEditView(b, reader, updater)
	case KindDelete:
		deleter, ok := r.Backend.(Deleter)
		if !ok {
			return nil, r.missingBackend(cfg, "Deleter")
		}
		return newDeleteView(b, deleter)
	}
	return nil, viewErrorf("%s/%s: unknown kind %q", r.Code, cfg.Code, cfg.Kind)
}

func (r *Resource) missingBackend(cfg ViewConfig, iface string) error {
	return viewErrorf("%s/%s: the %s view needs a backend implementing %s", r.Code, cfg.Code, cfg.Kind, iface)
}

// checkReferences fails when a redirect target or a goto action names an
// unknown view, or when an action calls an unregistered method.
func (r *Resource) checkReferences(v View) error {
	cfg := v.Config()
	targets := map[string]string{
		"create_button_redirect_to": cfg.CreateButtonRedirectTo,
		"delete_button_redirect_to": cfg.DeleteButtonRedirectTo,
		"edit_button_redirect_to":   cfg.EditButtonRedirectTo,
		"return_button_redirect_to": cfg.ReturnButtonRedirectTo,
		"cancel_button_redirect_to": cfg.CancelButtonRedirectTo,
		"open_entry_redirect_to":    cfg.OpenEntryRedirectTo,
		"after_create_redirect_to":  cfg.AfterCreateRedirectTo,
		"after_update_redirect_to":  cfg.AfterUpdateRedirectTo,
		"after_delete_redirect_to":  cfg.AfterDeleteRedirectTo,
	}
	for name, target := range targets {
		if target != "" && r.views[target] == nil {
			return viewErrorf("%s: %s names the unknown view %q", v.TemplateID(), name, target)
		}
	}
	for _, as := range cfg.Actions {
		for _, a := range as.Actions {
			switch {
			case a.IsGoto() && r.views[a.View] == nil:
				return resourceErrorf("%s: action %q opens the unknown view %q", v.TemplateID(), a.Label, a.View)
			case !a.IsGoto() && r.Methods[a.Method] == nil:
				return resourceErrorf("%s: action %q calls the unknown method %q", v.TemplateID(), a.Label, a.Method)
			}
			if rule := a.Invisible.Rule(); rule != "" {
				if r.rt.Evaluator == nil {
					return resourceErrorf("%s: action %q: rule %q needs an evaluator", v.TemplateID(), a.Label, rule)
				}
				if c, ok := r.rt.Evaluator.(fields.Compiler); ok {
					if err := c.Compile(rule); err != nil {
						return resourceErrorf("%s: action %q: %v", v.TemplateID(), a.Label, err)
					}
				}
			}
		}
	}
	return nil
}

// Context is the translation context of the resource, resource:{code}.
func (r *Resource) Context() string {
	return r.context
}

// Addon names the catalog addon of the resource templates.
func (r *Resource) Addon() string {
	return "resource-" + r.Code
}

// LabelFor is the translated label of the resource.
func (r *Resource) LabelFor(sess *session.Session) string {
	return render.Translate(r.rt.Translator, nil, sess.Language(), r.context+":label", r.Label)
}

// View returns the built view code.
func (r *Resource) View(code string) (View, bool) {
	v, ok := r.views[code]
	return v, ok
}

// BuiltViews returns the built views in declaration order.
func (r *Resource) BuiltViews() []View {
	out := make([]View, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.views[code])
	}
	return out
}

// Templates returns the ids of the view templates.
func (r *Resource) Templates() []string {
	out := make([]string, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.views[code].TemplateID())
	}
	return out
}

// ExportCatalog defines the resource label and the strings of every view.
func (r *Resource) ExportCatalog(sink forms.Sink) {
	sink.Define(r.context+":label", r.Label)
	for _, v := range r.BuiltViews() {
		v.ExportCatalog(sink)
	}
}

// Query is the querystring of the resource page.
func (r *Resource) Query() url.Values {
	return url.Values{"page": {"resource"}, "resource": {r.Code}}
}

func (r *Resource) menuLabel() string {
	if r.MenuLabel != "" {
		return r.MenuLabel
	}
	return r.Label
}

// Menu returns a toolbar menu opening the resource.
func (r *Resource) Menu(opts ...menus.Option) (*menus.Menu, error) {
	return menus.Toolbar(r.menuLabel(), r.Query(), opts...)
}

// AsideMenu returns an aside menu opening the resource.
func (r *Resource) AsideMenu(opts ...menus.Option) (*menus.Menu, error) {
	return menus.Aside(r.menuLabel(), r.Query(), opts...)
}

// Render renders the resource page with the view named by options, the
// default view when unset. An unknown view renders the not-found page.
func (r *Resource) Render(ctx context.Context, sess *session.Session, options url.Values) (string, error) {
	options = web.CloneValues(options)
	if options.Get("view") == "" {
		options.Set("view", r.DefaultView)
	}
	options.Set("resource", r.Code)

	page := RenderFunc(r.notFound)
	if v, ok := r.views[options.Get("view")]; ok {
		page = v.Render
	}
	if r.PageSecurity != nil {
		page = r.PageSecurity(page)
	}
	body, err := page(ctx, sess, options)
	if err != nil {
		return "", err
	}
	return r.rt.Executor.Execute(sess.Language(), "crudui-page-resource", map[string]any{
		"view":  body,
		"code":  r.Code,
		"label": r.LabelFor(sess),
	})
}

// Router dispatches an action request to the handler named by its action
// parameter on the view of the page the request was sent from.
func (r *Resource) Router(ctx context.Context, req *web.Request) (*web.Response, error) {
	if req.Session == nil {
		return nil, fmt.Errorf("resources: %w", web.ErrNoSession)
	}
	code := req.CurrentURLQuery().Get("view")
	if code == "" {
		code = r.DefaultView
	}
	view, ok := r.views[code]
	if !ok {
		return nil, routerErrorf("%s: unknown view %q", r.Code, code)
	}
	action := param(req, "action")
	if action == "" {
		return nil, routerErrorf("%s/%s: no action in the request", r.Code, code)
	}
	handler, ok := view.Handlers()[action]
	if !ok {
		return nil, routerErrorf("%s/%s: no handler for action %q", r.Code, code, action)
	}
	if r.ActionSecurity != nil {
		handler = r.ActionSecurity(handler)
	}
	r.rt.Logger.Debug("resource action", "resource", r.Code, "view", code, "action", action, "method", req.Method)
	return handler(ctx, req)
}

// renderView renders the view code alone, as swapped in by htmx.
func (r *Resource) renderView(ctx context.Context, sess *session.Session, code string, options url.Values, st state) (string, error) {
	if code == "" {
		code = r.DefaultView
	}
	v, ok := r.views[code]
	if !ok {
		return "", routerErrorf("%s: unknown view %q", r.Code, code)
	}
	return v.render(ctx, sess, options, st)
}

func (r *Resource) notFound(ctx context.Context, sess *session.Session, options url.Values) (string, error) {
	if r.rt.NotFound != nil {
		return r.rt.NotFound(ctx, sess, options)
	}
	return r.rt.Executor.Execute(sess.Language(), "crudui-view-not-found", map[string]any{
		"rcode": r.Code,
		"vcode": options.Get("view"),
		"pk":    options.Get("pk"),
	})
}

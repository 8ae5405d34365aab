package resources

import (
	"context"
	"net/url"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/forms"
	"github.com/goliatone/go-crudui/pkg/render"
	"github.com/goliatone/go-crudui/pkg/web"
)

// Call is handed to a resource method invoked from an action button.
type Call struct {
	Resource *Resource
	View     View
	Request  *web.Request
	// PKs holds the selected rows of a list view, or the displayed entry
	// of a read view.
	PKs []string
}

// MethodFunc is a resource method callable from actions. A nil response
// re-renders the calling view.
type MethodFunc func(ctx context.Context, call Call) (*web.Response, error)

type actionKind uint8

const (
	actionCall actionKind = iota
	actionGoto
	actionSelectedRows
)

// Action is one button of an actionset.
type Action struct {
	kind        actionKind
	Label       string
	Method      string
	View        string
	Icon        string
	Description string
	Invisible   fields.Predicate
}

// CallAction invokes the resource method of that name.
func CallAction(label, method string) Action {
	return Action{kind: actionCall, Label: label, Method: method}
}

// GotoAction opens another view of the resource.
func GotoAction(label, view string) Action {
	return Action{kind: actionGoto, Label: label, View: view}
}

// SelectedRowsAction invokes method with the rows selected in a list.
func SelectedRowsAction(label, method string) Action {
	return Action{kind: actionSelectedRows, Label: label, Method: method}
}

// WithIcon sets the icon class.
func (a Action) WithIcon(icon string) Action {
	a.Icon = icon
	return a
}

// WithDescription sets the tooltip text.
func (a Action) WithDescription(desc string) Action {
	a.Description = desc
	return a
}

// HiddenWhen hides the action when p holds.
func (a Action) HiddenWhen(p fields.Predicate) Action {
	a.Invisible = p
	return a
}

// IsGoto reports whether a opens a view instead of calling a method.
func (a Action) IsGoto() bool {
	return a.kind == actionGoto
}

// key names the action in translation contexts.
func (a Action) key() string {
	if a.kind == actionGoto {
		return a.View
	}
	return a.Method
}

func (a Action) visible(scope fields.Scope, path string) bool {
	hidden, err := a.Invisible.Eval(path, scope)
	if err != nil {
		if scope.Logger != nil {
			scope.Logger.Warn("action predicate failed", "action", path, "error", err)
		}
		return false
	}
	return !hidden
}

// Actionset groups actions under a label.
type Actionset struct {
	Label       string
	Icon        string
	Description string
	Actions     []Action
}

func (as Actionset) visibleActions(scope fields.Scope, context string) []Action {
	var out []Action
	for _, a := range as.Actions {
		if a.visible(scope, context+":action:"+a.key()) {
			out = append(out, a)
		}
	}
	return out
}

// actionURL returns the endpoint an action posts or gets.
func (a Action) actionURL(baseURL string, options url.Values) string {
	if a.kind == actionGoto {
		qs := web.CloneValues(options)
		qs.Set("action", "goto")
		qs.Set("view", a.View)
		return web.URLFromValues(baseURL+"/action/resource", qs)
	}
	return baseURL + "/action/resource?action=call&method=" + url.QueryEscape(a.Method)
}

func (a Action) templateID() string {
	switch a.kind {
	case actionGoto:
		return "crudui-view-goto-action"
	case actionSelectedRows:
		return "crudui-view-selected-rows-action"
	default:
		return "crudui-view-action"
	}
}

func (v *base) renderActionsets(scope fields.Scope, options url.Values) ([]string, error) {
	var out []string
	for _, as := range v.cfg.Actions {
		visible := as.visibleActions(scope, v.context)
		if len(visible) == 0 {
			continue
		}
		buttons := make([]string, 0, len(visible))
		for _, a := range visible {
			ctx := v.context + ":action:" + a.key()
			html, err := v.execute(scope, a.templateID(), map[string]any{
				"url":         a.actionURL(v.res.rt.BaseURL, options),
				"label":       v.translate(scope, ctx+":label", a.Label),
				"description": v.translate(scope, ctx+":description", a.Description),
				"icon":        a.Icon,
				"rcode":       v.res.Code,
				"vcode":       v.cfg.Code,
			})
			if err != nil {
				return nil, err
			}
			buttons = append(buttons, html)
		}
		html, err := v.execute(scope, "crudui-view-actionset", map[string]any{
			"label":       v.translate(scope, v.context+":actionset:label", as.Label),
			"description": v.translate(scope, v.context+":actionset:description", as.Description),
			"icon":        as.Icon,
			"actions":     buttons,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, html)
	}
	return out, nil
}

// declaredAction reports whether method is a visible call action of v.
func (v *base) declaredAction(scope fields.Scope, method string) bool {
	for _, as := range v.cfg.Actions {
		for _, a := range as.visibleActions(scope, v.context) {
			if !a.IsGoto() && a.Method == method {
				return true
			}
		}
	}
	return false
}

func (v *base) exportActions(sink forms.Sink) {
	for _, as := range v.cfg.Actions {
		defineNonEmpty(sink, v.context+":actionset:label", as.Label)
		defineNonEmpty(sink, v.context+":actionset:description", as.Description)
		for _, a := range as.Actions {
			ctx := v.context + ":action:" + a.key()
			defineNonEmpty(sink, ctx+":label", a.Label)
			defineNonEmpty(sink, ctx+":description", a.Description)
		}
	}
}

func defineNonEmpty(sink forms.Sink, context, msgid string) {
	if msgid != "" {
		sink.Define(context, msgid)
	}
}

func (v *base) translate(scope fields.Scope, context, msgid string) string {
	return render.Translate(scope.Translator, nil, scope.Lang(), context, msgid)
}

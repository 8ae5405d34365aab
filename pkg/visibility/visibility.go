// Package visibility evaluates predicate rules attached to fields and
// actions against the current session and view.
package visibility

import "github.com/goliatone/go-crudui/pkg/session"

// Evaluator decides whether a rule holds. fieldPath names the field or
// action owning the rule and is only used in errors.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// Context provides the inputs of a rule. Session fields are flattened so
// rules read as `authenticated && lang == "fr"`. Values holds the current
// form values; Extras lets callers inject arbitrary context such as roles.
type Context struct {
	User          string
	Lang          string
	Theme         string
	Authenticated bool
	View          string
	Values        map[string]any
	Extras        map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}

// ContextFor builds the rule inputs of sess rendered in view. Session data
// is exposed as Extras.
func ContextFor(sess *session.Session, view string, values map[string]any) Context {
	ctx := Context{View: view, Values: values, Lang: sess.Language()}
	if sess == nil {
		return ctx
	}
	ctx.User = sess.User
	ctx.Theme = sess.Theme
	ctx.Authenticated = sess.Authenticated()
	ctx.Extras = sess.Data
	return ctx
}

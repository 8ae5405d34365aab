package fields

import (
	"slices"
	"strings"

	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/visibility"
)

type predicateKind uint8

const (
	predicateBool predicateKind = iota
	predicateViews
	predicateFunc
	predicateExpr
)

// Predicate is the value of a dynamic field attribute (required, readonly,
// invisible). The zero value is false.
type Predicate struct {
	kind  predicateKind
	value bool
	views []string
	fn    func(*session.Session) bool
	rule  string
}

// Bool is a static predicate.
func Bool(b bool) Predicate {
	return Predicate{kind: predicateBool, value: b}
}

// InViews holds in the listed view codes only.
func InViews(codes ...string) Predicate {
	return Predicate{kind: predicateViews, views: slices.Clone(codes)}
}

// When holds when fn returns true for the session.
func When(fn func(*session.Session) bool) Predicate {
	if fn == nil {
		return Predicate{}
	}
	return Predicate{kind: predicateFunc, fn: fn}
}

// Expr holds when rule evaluates to true. Rules run through the scope
// evaluator with the session, the view and the form values.
func Expr(rule string) Predicate {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return Predicate{}
	}
	return Predicate{kind: predicateExpr, rule: rule}
}

// Rule returns the expression of an Expr predicate.
func (p Predicate) Rule() string {
	return p.rule
}

// Views returns the view codes of an InViews predicate.
func (p Predicate) Views() []string {
	return slices.Clone(p.views)
}

// Static reports whether p is a constant.
func (p Predicate) Static() bool {
	return p.kind == predicateBool
}

// Dynamic reports whether p depends on the session, not only on the view.
func (p Predicate) Dynamic() bool {
	return p.kind == predicateFunc || p.kind == predicateExpr
}

// Eval resolves p. path names the owner in evaluation errors.
func (p Predicate) Eval(path string, scope Scope) (bool, error) {
	switch p.kind {
	case predicateViews:
		return slices.Contains(p.views, scope.View), nil
	case predicateFunc:
		return p.fn(scope.Session), nil
	case predicateExpr:
		if scope.Evaluator == nil {
			return false, fieldErrorf("%s: rule %q needs an evaluator", path, p.rule)
		}
		return scope.Evaluator.Eval(path, p.rule, visibility.ContextFor(scope.Session, scope.View, scope.Values))
	default:
		return p.value, nil
	}
}

package expr

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-crudui/pkg/visibility"
)

// Env is the environment rules are evaluated in.
type Env struct {
	User          string         `expr:"user"`
	Lang          string         `expr:"lang"`
	Theme         string         `expr:"theme"`
	Authenticated bool           `expr:"authenticated"`
	View          string         `expr:"view"`
	Values        map[string]any `expr:"values"`
	Extras        map[string]any `expr:"extras"`
}

// Evaluator runs rules written in the expr language, e.g.
//
//	authenticated && view != "create"
//	extras.role == "admin" || values.status == "draft"
//
// Compiled programs are cached by rule text.
type Evaluator struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
}

// New returns an evaluator with an empty program cache.
func New() *Evaluator {
	return &Evaluator{programs: make(map[string]*vm.Program)}
}

var _ visibility.Evaluator = (*Evaluator)(nil)

// Eval evaluates rule. Empty rules hold.
func (e *Evaluator) Eval(fieldPath, rule string, ctx visibility.Context) (bool, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return true, nil
	}
	program, err := e.program(rule)
	if err != nil {
		return false, fmt.Errorf("visibility/expr: compile rule of %q: %w", fieldPath, err)
	}
	out, err := expr.Run(program, Env{
		User:          ctx.User,
		Lang:          ctx.Lang,
		Theme:         ctx.Theme,
		Authenticated: ctx.Authenticated,
		View:          ctx.View,
		Values:        ctx.Values,
		Extras:        ctx.Extras,
	})
	if err != nil {
		return false, fmt.Errorf("visibility/expr: run rule of %q: %w", fieldPath, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("visibility/expr: rule of %q returned %T", fieldPath, out)
	}
	return b, nil
}

// Compile checks rule without running it.
func (e *Evaluator) Compile(rule string) error {
	if strings.TrimSpace(rule) == "" {
		return nil
	}
	_, err := e.program(strings.TrimSpace(rule))
	return err
}

func (e *Evaluator) program(rule string) (*vm.Program, error) {
	e.mu.RLock()
	p, ok := e.programs[rule]
	e.mu.RUnlock()
	if ok {
		return p, nil
	}
	p, err := expr.Compile(rule,
		expr.Env(Env{}),
		expr.AsBool(),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.programs[rule] = p
	e.mu.Unlock()
	return p, nil
}

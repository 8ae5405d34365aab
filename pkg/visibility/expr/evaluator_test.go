package expr

import (
	"testing"

	"github.com/goliatone/go-crudui/pkg/visibility"
)

func TestEvaluatorRules(t *testing.T) {
	t.Parallel()

	eval := New()
	ctx := visibility.Context{
		User:          "ada",
		Lang:          "fr",
		Authenticated: true,
		View:          "edit",
		Values:        map[string]any{"status": "draft"},
		Extras:        map[string]any{"role": "admin"},
	}

	tests := map[string]bool{
		"":                                  true,
		"authenticated":                     true,
		"!authenticated":                    false,
		`view == "edit"`:                    true,
		`view in ["create", "read"]`:        false,
		`lang == "fr" && user == "ada"`:     true,
		`extras.role == "admin"`:            true,
		`values.status == "published"`:      false,
		`authenticated && view != "create"`: true,
	}
	for rule, want := range tests {
		got, err := eval.Eval("field", rule, ctx)
		if err != nil {
			t.Fatalf("Eval(%q) returned error: %v", rule, err)
		}
		if got != want {
			t.Fatalf("Eval(%q) = %v, want %v", rule, got, want)
		}
	}
}

func TestEvaluatorCachesPrograms(t *testing.T) {
	t.Parallel()

	eval := New()
	for i := 0; i < 3; i++ {
		if _, err := eval.Eval("field", "authenticated", visibility.Context{}); err != nil {
			t.Fatalf("Eval returned error: %v", err)
		}
	}
	if len(eval.programs) != 1 {
		t.Fatalf("expected one cached program, got %d", len(eval.programs))
	}
}

func TestEvaluatorErrors(t *testing.T) {
	t.Parallel()

	eval := New()
	if err := eval.Compile("authenticated &&"); err == nil {
		t.Fatalf("expected compile error")
	}
	if _, err := eval.Eval("field", `user + 1`, visibility.Context{}); err == nil {
		t.Fatalf("expected error for non boolean rule")
	}
}

package uischema

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-crudui/pkg/fields"
)

// ParsePredicate reads the textual form of a field predicate:
//
//	true, false           constant
//	views:list,read       true in the listed views
//	expr:!authenticated   expression on the session
func ParsePredicate(raw string) (fields.Predicate, error) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "true":
		return fields.Bool(true), nil
	case "false":
		return fields.Bool(false), nil
	}
	prefix, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return fields.Predicate{}, fmt.Errorf("predicate %q: want true, false, views:... or expr:...", raw)
	}
	rest = strings.TrimSpace(rest)
	switch prefix {
	case "views":
		var codes []string
		for _, code := range strings.Split(rest, ",") {
			if code = strings.TrimSpace(code); code != "" {
				codes = append(codes, code)
			}
		}
		if len(codes) == 0 {
			return fields.Predicate{}, fmt.Errorf("predicate %q: no view", raw)
		}
		return fields.InViews(codes...), nil
	case "expr":
		if rest == "" {
			return fields.Predicate{}, fmt.Errorf("predicate %q: empty expression", raw)
		}
		return fields.Expr(rest), nil
	}
	return fields.Predicate{}, fmt.Errorf("predicate %q: unknown form %q", raw, prefix)
}

type fieldPredicates struct {
	required, readonly, invisible *fields.Predicate
}

func (c FieldConfig) predicates() (fieldPredicates, error) {
	var out fieldPredicates
	for _, p := range []struct {
		raw string
		dst **fields.Predicate
	}{
		{c.Required, &out.required},
		{c.Readonly, &out.readonly},
		{c.Invisible, &out.invisible},
	} {
		if p.raw == "" {
			continue
		}
		pred, err := ParsePredicate(p.raw)
		if err != nil {
			return fieldPredicates{}, err
		}
		*p.dst = &pred
	}
	return out, nil
}

package resources

import (
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/goliatone/go-crudui/pkg/forms"
)

// Filter operators.
const (
	OpEqual        = "eq"
	OpNotEqual     = "ne"
	OpContains     = "contains"
	OpLess         = "lt"
	OpLessEqual    = "lte"
	OpGreater      = "gt"
	OpGreaterEqual = "gte"
)

var operators = []string{OpEqual, OpNotEqual, OpContains, OpLess, OpLessEqual, OpGreater, OpGreaterEqual}

// FilterPrefix starts the querystring keys holding filters.
const FilterPrefix = "filter-"

// Filter restricts a listing to entries whose field matches one of values.
type Filter struct {
	Field    string
	Operator string
	Values   []string
}

// Key is the querystring key of the filter, filter-{field}-{operator}.
func (f Filter) Key() string {
	return FilterPrefix + f.Field + "-" + f.Operator
}

func filterErrorf(format string, args ...any) error {
	return fmt.Errorf("resources: %w: %s", ErrFilter, fmt.Sprintf(format, args...))
}

// splitFilterParam splits a filter parameter name, "{field}" or
// "{field}-{operator}". The operator defaults to eq.
func splitFilterParam(spec forms.Spec, name string) (string, string, error) {
	field, op := name, OpEqual
	if idx := strings.LastIndex(name, "-"); idx > 0 && slices.Contains(operators, name[idx+1:]) {
		field, op = name[:idx], name[idx+1:]
	}
	if _, ok := spec.Field(field); !ok {
		return "", "", filterErrorf("%s: unknown field or operator %q", spec.Name, name)
	}
	return field, op, nil
}

// ParseFilters reads the filters encoded in a querystring. Values are comma
// separated; keys are read in sorted order.
func ParseFilters(spec forms.Spec, qs url.Values) ([]Filter, error) {
	keys := make([]string, 0, len(qs))
	for k := range qs {
		if strings.HasPrefix(k, FilterPrefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []Filter
	for _, k := range keys {
		rest := strings.TrimPrefix(k, FilterPrefix)
		idx := strings.LastIndex(rest, "-")
		if idx <= 0 {
			return nil, filterErrorf("%s: malformed filter %q", spec.Name, k)
		}
		field, op := rest[:idx], rest[idx+1:]
		if _, ok := spec.Field(field); !ok {
			return nil, filterErrorf("%s: unknown field %q", spec.Name, field)
		}
		if !slices.Contains(operators, op) {
			return nil, filterErrorf("%s: unknown operator %q", spec.Name, op)
		}
		values := splitValues(qs[k])
		if len(values) == 0 {
			continue
		}
		out = append(out, Filter{Field: field, Operator: op, Values: values})
	}
	return out, nil
}

func splitValues(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, v := range strings.Split(r, ",") {
			if v = strings.TrimSpace(v); v != "" && !slices.Contains(out, v) {
				out = append(out, v)
			}
		}
	}
	return out
}

// ToggleFilters adds (add=true) or removes the submitted values on qs and
// resets the offset. A filter left without value loses its key. params
// holds "{field}" or "{field}-{operator}" keys; "action" is ignored.
func ToggleFilters(spec forms.Spec, qs url.Values, params url.Values, add bool) error {
	names := make([]string, 0, len(params))
	for k := range params {
		if k != "action" {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		field, op, err := splitFilterParam(spec, name)
		if err != nil {
			return err
		}
		key := Filter{Field: field, Operator: op}.Key()
		existing := splitValues(qs[key])
		for _, v := range splitValues(params[name]) {
			idx := slices.Index(existing, v)
			switch {
			case add && idx < 0:
				existing = append(existing, v)
			case !add && idx >= 0:
				existing = slices.Delete(existing, idx, idx+1)
			}
		}
		if len(existing) == 0 {
			qs.Del(key)
			continue
		}
		qs.Set(key, strings.Join(existing, ","))
	}
	qs.Set("offset", "0")
	return nil
}

package resources

import (
	"slices"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/forms"
)

// ViewKind selects the behaviour of a view.
type ViewKind string

const (
	KindList   ViewKind = "list"
	KindCreate ViewKind = "create"
	KindRead   ViewKind = "read"
	KindEdit   ViewKind = "edit"
	KindDelete ViewKind = "delete"
)

// Valid reports whether k is a known kind.
func (k ViewKind) Valid() bool {
	switch k {
	case KindList, KindCreate, KindRead, KindEdit, KindDelete:
		return true
	}
	return false
}

// DefaultLimit is the page size of list views.
const DefaultLimit = 20

// Section is a header, body or footer part of a view template: a template
// id or inline markup. Markup wins when both are set.
type Section struct {
	ID     string
	Markup string
}

// IsZero reports whether the section renders nothing.
func (s Section) IsZero() bool {
	return s.ID == "" && s.Markup == ""
}

// ViewConfig declares one view of a resource. Zero fields keep the value of
// the configs composed before.
type ViewConfig struct {
	Kind ViewKind
	// Code identifies the view in querystrings; the kind by default.
	Code  string
	Label string
	// Fields override the resource fields by name for this view.
	Fields []fields.Field
	// Layout is the form markup, <field name="..."/> elements standing for
	// the fields. Empty renders every field in order.
	Layout string
	Limit  int

	// Redirections, by view code.
	CreateButtonRedirectTo string
	DeleteButtonRedirectTo string
	EditButtonRedirectTo   string
	ReturnButtonRedirectTo string
	CancelButtonRedirectTo string
	OpenEntryRedirectTo    string
	AfterCreateRedirectTo  string
	AfterUpdateRedirectTo  string
	AfterDeleteRedirectTo  string

	Header Section
	Body   Section
	Footer Section

	Actions []Actionset
	// Filters lists the fields offered as list filters. Empty offers every
	// visible field.
	Filters []string
}

// DefaultConfig returns the built-in configuration of a kind.
func DefaultConfig(kind ViewKind) ViewConfig {
	cfg := ViewConfig{Kind: kind, Code: string(kind)}
	switch kind {
	case KindList:
		cfg.Limit = DefaultLimit
		cfg.Header = Section{ID: "crudui-view-list-header"}
		cfg.Body = Section{ID: "crudui-view-list-body"}
	case KindCreate:
		cfg.Label = "New"
		cfg.Header = Section{ID: "crudui-view-label-header"}
		cfg.Body = Section{ID: "crudui-view-form"}
	case KindRead:
		cfg.Header = Section{ID: "crudui-view-read-header"}
		cfg.Body = Section{ID: "crudui-view-form"}
		cfg.Footer = Section{ID: "crudui-view-buttons"}
	case KindEdit:
		cfg.Header = Section{ID: "crudui-view-buttons"}
		cfg.Body = Section{ID: "crudui-view-form"}
		cfg.Footer = Section{ID: "crudui-view-buttons"}
	case KindDelete:
		cfg.Label = "Delete"
		cfg.Header = Section{ID: "crudui-view-label-header"}
		cfg.Body = Section{ID: "crudui-view-delete-form"}
	}
	return cfg
}

// Merge returns c overridden by the non-zero fields of o. Field overrides
// accumulate with later ones winning by name.
func (c ViewConfig) Merge(o ViewConfig) ViewConfig {
	out := c
	setString(&out.Code, o.Code)
	setString(&out.Label, o.Label)
	setString(&out.Layout, o.Layout)
	setString(&out.CreateButtonRedirectTo, o.CreateButtonRedirectTo)
	setString(&out.DeleteButtonRedirectTo, o.DeleteButtonRedirectTo)
	setString(&out.EditButtonRedirectTo, o.EditButtonRedirectTo)
	setString(&out.ReturnButtonRedirectTo, o.ReturnButtonRedirectTo)
	setString(&out.CancelButtonRedirectTo, o.CancelButtonRedirectTo)
	setString(&out.OpenEntryRedirectTo, o.OpenEntryRedirectTo)
	setString(&out.AfterCreateRedirectTo, o.AfterCreateRedirectTo)
	setString(&out.AfterUpdateRedirectTo, o.AfterUpdateRedirectTo)
	setString(&out.AfterDeleteRedirectTo, o.AfterDeleteRedirectTo)
	if o.Kind != "" {
		out.Kind = o.Kind
	}
	if o.Limit > 0 {
		out.Limit = o.Limit
	}
	if !o.Header.IsZero() {
		out.Header = o.Header
	}
	if !o.Body.IsZero() {
		out.Body = o.Body
	}
	if !o.Footer.IsZero() {
		out.Footer = o.Footer
	}
	if o.Actions != nil {
		out.Actions = slices.Clone(o.Actions)
	}
	if o.Filters != nil {
		out.Filters = slices.Clone(o.Filters)
	}
	if len(o.Fields) > 0 {
		out.Fields = forms.Merge(forms.Spec{Fields: c.Fields}, o.Fields).Fields
	}
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Compose merges configs by code. The first config of a code starts from
// DefaultConfig of its kind; later ones are merged over it in order, so
// the last declaration wins. The result keeps the order in which codes
// first appear.
func Compose(configs ...ViewConfig) ([]ViewConfig, error) {
	var order []string
	byCode := make(map[string]ViewConfig)
	for _, cfg := range configs {
		code := cfg.Code
		if code == "" {
			code = string(cfg.Kind)
		}
		if code == "" {
			return nil, viewErrorf("view config without kind nor code")
		}
		current, seen := byCode[code]
		if !seen {
			if !cfg.Kind.Valid() {
				return nil, viewErrorf("view %q: unknown kind %q", code, cfg.Kind)
			}
			current = DefaultConfig(cfg.Kind)
			current.Code = code
			order = append(order, code)
		} else if cfg.Kind != "" && cfg.Kind != current.Kind {
			return nil, viewErrorf("view %q: kind %q redeclared as %q", code, current.Kind, cfg.Kind)
		}
		cfg.Code = code
		byCode[code] = current.Merge(cfg)
	}
	out := make([]ViewConfig, 0, len(order))
	for _, code := range order {
		out = append(out, byCode[code])
	}
	return out, nil
}

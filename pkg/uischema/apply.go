package uischema

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/menus"
	"github.com/goliatone/go-crudui/pkg/resources"
)

// ApplyResource overlays the configuration of r.Code onto r. It must run
// before r.Build. View overlays are appended to r.Views, so they win over
// the Go declarations of the same view.
func (s *Store) ApplyResource(r *resources.Resource) error {
	cfg, ok := s.Resource(r.Code)
	if !ok {
		return nil
	}
	setString(&r.Label, cfg.Label)
	setString(&r.MenuLabel, cfg.MenuLabel)
	setString(&r.DefaultView, cfg.DefaultView)

	for _, name := range sortedKeys(cfg.Fields) {
		idx := fieldIndex(r.Fields, name)
		if idx < 0 {
			return fmt.Errorf("uischema: resource %q (file %s): unknown field %q", r.Code, cfg.Source, name)
		}
		f, err := cfg.Fields[name].apply(r.Fields[idx])
		if err != nil {
			return fmt.Errorf("uischema: resource %q field %q: %w", r.Code, name, err)
		}
		r.Fields[idx] = f
	}

	for _, code := range sortedKeys(cfg.Views) {
		vc, err := cfg.Views[code].viewConfig(code, r.Fields)
		if err != nil {
			return fmt.Errorf("uischema: resource %q (file %s) view %q: %w", r.Code, cfg.Source, code, err)
		}
		r.Views = append(r.Views, vc)
	}
	return nil
}

// ApplyMenus overlays label, tooltip and icon of every registered menu
// whose context has a configuration.
func (s *Store) ApplyMenus(reg *menus.Registry) {
	reg.Walk(func(m *menus.Menu) {
		s.ApplyMenu(m)
	})
}

// ApplyMenu overlays the configuration found for m.Context(). An icon
// class list replaces the icon class, markup the icon markup. Children are
// left alone.
func (s *Store) ApplyMenu(m *menus.Menu) {
	cfg, ok := s.Menu(m.Context())
	if !ok {
		return
	}
	setString(&m.Label, cfg.Label)
	setString(&m.Tooltip, cfg.Tooltip)
	switch {
	case isMarkup(cfg.Icon):
		m.IconMarkup = cfg.Icon
	case cfg.Icon != "":
		m.Icon, m.IconMarkup = cfg.Icon, ""
	}
}

func (c FieldConfig) apply(f fields.Field) (fields.Field, error) {
	setString(&f.Label, c.Label)
	setString(&f.Widget, c.Widget)
	setString(&f.Format, c.Format)
	setString(&f.Description, c.Description)
	setString(&f.Placeholder, c.Placeholder)
	if c.Kind != "" {
		kind := fields.Kind(c.Kind)
		if !kind.Valid() {
			return f, fmt.Errorf("unknown kind %q", c.Kind)
		}
		f.Kind = kind
	}
	if c.Default != nil {
		f.Default = c.Default
	}
	if c.Choices != nil {
		f.Choices = make([]fields.Choice, 0, len(c.Choices))
		for _, ch := range c.Choices {
			f.Choices = append(f.Choices, fields.Choice{Value: ch.Value, Label: ch.Label})
		}
	}
	preds, err := c.predicates()
	if err != nil {
		return f, err
	}
	if preds.required != nil {
		f.Required = *preds.required
	}
	if preds.readonly != nil {
		f.Readonly = *preds.readonly
	}
	if preds.invisible != nil {
		f.Invisible = *preds.invisible
	}
	return f, nil
}

// viewConfig turns the overlay into a view config. Field overrides start
// from the resource field of the same name.
func (v ViewConfig) viewConfig(code string, base []fields.Field) (resources.ViewConfig, error) {
	out := resources.ViewConfig{
		Kind:                   resources.ViewKind(v.Kind),
		Code:                   code,
		Label:                  v.Label,
		Layout:                 v.Layout,
		Limit:                  v.Limit,
		CreateButtonRedirectTo: v.CreateButtonRedirectTo,
		DeleteButtonRedirectTo: v.DeleteButtonRedirectTo,
		EditButtonRedirectTo:   v.EditButtonRedirectTo,
		ReturnButtonRedirectTo: v.ReturnButtonRedirectTo,
		CancelButtonRedirectTo: v.CancelButtonRedirectTo,
		OpenEntryRedirectTo:    v.OpenEntryRedirectTo,
		AfterCreateRedirectTo:  v.AfterCreateRedirectTo,
		AfterUpdateRedirectTo:  v.AfterUpdateRedirectTo,
		AfterDeleteRedirectTo:  v.AfterDeleteRedirectTo,
		Header:                 resources.Section(v.Header),
		Body:                   resources.Section(v.Body),
		Footer:                 resources.Section(v.Footer),
		Filters:                v.Filters,
	}
	for _, name := range sortedKeys(v.Fields) {
		idx := fieldIndex(base, name)
		if idx < 0 {
			return out, fmt.Errorf("unknown field %q", name)
		}
		f, err := v.Fields[name].apply(base[idx])
		if err != nil {
			return out, fmt.Errorf("field %q: %w", name, err)
		}
		out.Fields = append(out.Fields, f)
	}
	return out, nil
}

func fieldIndex(list []fields.Field, name string) int {
	for i, f := range list {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

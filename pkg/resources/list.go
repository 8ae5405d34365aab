package resources

import (
	"context"
	"net/url"
	"slices"
	"strconv"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/web"
)

type listView struct {
	*base
	lister Lister
}

func newListView(b *base, lister Lister) (*listView, error) {
	v := &listView{base: b, lister: lister}
	v.handlers = map[string]web.Handler{
		"goto":       web.AllowMethods(v.gotoHandler, web.MethodGet),
		"pagination": web.AllowMethods(v.pagination, web.MethodGet),
		"filters":    web.AllowMethods(v.filters, web.MethodPost, web.MethodDelete),
		"call":       web.AllowMethods(v.callHandler(v, v.selectedRows), web.MethodPost),
	}
	if b.cfg.DeleteButtonRedirectTo != "" {
		v.handlers["goto_delete"] = web.AllowMethods(v.gotoDelete, web.MethodPost)
	}
	src, err := v.compose(nil, nil)
	if err != nil {
		return nil, err
	}
	v.source = src
	return v, nil
}

// SelectionKey is the parameter carrying the rows selected in the list.
func (v *listView) SelectionKey() string {
	return "selected-rows-resource-" + v.res.Code + "-view-" + v.cfg.Code
}

func (v *listView) selectedRows(req *web.Request) []string {
	return slices.Clone(req.Params[v.SelectionKey()])
}

func (v *listView) Render(ctx context.Context, sess *session.Session, options url.Values) (string, error) {
	return v.render(ctx, sess, options, state{})
}

func (v *listView) render(ctx context.Context, sess *session.Session, options url.Values, st state) (string, error) {
	scope := v.scope(sess, nil)
	filters, err := ParseFilters(v.spec, options)
	if err != nil {
		return "", err
	}
	offset, _ := strconv.Atoi(options.Get("offset"))
	offset = max(offset, 0)
	limit := v.cfg.Limit

	page, err := v.lister.List(ctx, v.spec, filters, offset, limit)
	if err != nil {
		v.res.rt.Logger.Warn("list failed", "resource", v.res.Code, "view", v.cfg.Code, "error", err)
		st.fail(err)
	}

	var columns []fields.Field
	for _, f := range v.spec.Fields {
		if !f.IsInvisible(scope, nil) {
			columns = append(columns, f)
		}
	}
	headers := make([]map[string]any, 0, len(columns))
	for _, f := range columns {
		headers = append(headers, map[string]any{"name": f.Name, "label": f.LabelFor(scope, nil)})
	}
	rows := make([]map[string]any, 0, len(page.Rows))
	for _, row := range page.Rows {
		rowScope := v.scope(sess, row)
		cells := make([]string, 0, len(columns))
		for _, f := range columns {
			html, err := f.RenderReadonlyBare(rowScope, row[f.Name])
			if err != nil {
				return "", err
			}
			cells = append(cells, html)
		}
		rows = append(rows, map[string]any{
			"pk":    fields.FormatValue(row[v.spec.PK]),
			"cells": cells,
		})
	}

	var paginations []map[string]any
	for off := 0; off < page.Total; off += limit {
		paginations = append(paginations, map[string]any{
			"offset":  off,
			"label":   off/limit + 1,
			"current": offset >= off && offset < off+limit,
			"url":     v.actionURL(url.Values{"action": {"pagination"}, "offset": {strconv.Itoa(off)}}),
		})
	}

	openURL := ""
	if v.cfg.OpenEntryRedirectTo != "" {
		openURL = v.transitionURL(options, url.Values{"view": {v.cfg.OpenEntryRedirectTo}, "pk": nil})
	}

	buttons, err := v.gotoButton(scope, nil, "crudui-view-goto-create-button", v.cfg.CreateButtonRedirectTo, options, url.Values{"pk": nil})
	if err != nil {
		return "", err
	}
	if v.cfg.DeleteButtonRedirectTo != "" {
		html, err := v.button(scope, "crudui-view-goto-selected-delete-button", nil)
		if err != nil {
			return "", err
		}
		buttons = append(buttons, html)
	}

	controls, err := v.filterControls(scope)
	if err != nil {
		return "", err
	}
	var active []map[string]any
	for _, f := range filters {
		field, _ := v.spec.Field(f.Field)
		param := f.Field + "-" + f.Operator
		for _, value := range f.Values {
			active = append(active, map[string]any{
				"field":    f.Field,
				"label":    field.LabelFor(scope, nil),
				"operator": f.Operator,
				"value":    value,
				"url":      v.actionURL(url.Values{"action": {"filters"}, param: {value}}),
			})
		}
	}

	actions, err := v.renderActionsets(scope, options)
	if err != nil {
		return "", err
	}

	data := v.data(scope, st)
	data["header_buttons"] = buttons
	data["filters"] = controls
	data["active_filters"] = active
	data["actions"] = actions
	data["columns"] = headers
	data["rows"] = rows
	data["selection"] = v.SelectionKey()
	data["selectable"] = v.cfg.DeleteButtonRedirectTo != "" || v.hasSelectedRowsActions()
	data["open_view_url"] = openURL
	data["paginations"] = paginations
	data["offset"] = offset
	data["limit"] = limit
	data["total"] = page.Total
	return v.execute(scope, v.TemplateID(), data)
}

func (v *listView) hasSelectedRowsActions() bool {
	for _, as := range v.cfg.Actions {
		for _, a := range as.Actions {
			if a.kind == actionSelectedRows {
				return true
			}
		}
	}
	return false
}

func (v *listView) filterControls(scope fields.Scope) ([]string, error) {
	names := v.cfg.Filters
	if len(names) == 0 {
		names = v.spec.Names()
	}
	target := v.actionURL(url.Values{"action": {"filters"}})
	var out []string
	for _, name := range names {
		f, ok := v.spec.Field(name)
		if !ok || f.IsInvisible(scope, nil) || f.Templates.Filter == "" {
			continue
		}
		html, err := f.RenderFilter(scope, target)
		if err != nil {
			return nil, err
		}
		out = append(out, html)
	}
	return out, nil
}

func (v *listView) pagination(ctx context.Context, req *web.Request) (*web.Response, error) {
	qs := req.CurrentURLQuery()
	qs.Set("offset", req.Query.Get("offset"))
	body, err := v.render(ctx, req.Session, qs, state{})
	if err != nil {
		return nil, err
	}
	return web.NewResponse(body).PushURL(web.URLFromValues(req.CurrentURLPath(), qs)), nil
}

// filters adds (POST) or removes (DELETE) filter values. Parameters come
// from the body and, for DELETE, from the query.
func (v *listView) filters(ctx context.Context, req *web.Request) (*web.Response, error) {
	params := web.CloneValues(req.Params)
	for k, values := range req.Query {
		if _, ok := params[k]; !ok {
			params[k] = values
		}
	}
	qs := req.CurrentURLQuery()
	if err := ToggleFilters(v.spec, qs, params, req.Method == web.MethodPost); err != nil {
		return nil, err
	}
	body, err := v.render(ctx, req.Session, qs, state{})
	if err != nil {
		return nil, err
	}
	return web.NewResponse(body).PushURL(web.URLFromValues(req.CurrentURLPath(), qs)), nil
}

func (v *listView) gotoDelete(ctx context.Context, req *web.Request) (*web.Response, error) {
	qs := req.CurrentURLQuery()
	qs.Set("view", v.cfg.DeleteButtonRedirectTo)
	qs["pk"] = v.selectedRows(req)
	return v.redirect(ctx, req, qs)
}

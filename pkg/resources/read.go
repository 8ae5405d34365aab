package resources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/goliatone/go-crudui/pkg/forms"
	"github.com/goliatone/go-crudui/pkg/markup"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/web"
)

type readView struct {
	*base
	reader Reader
}

func newReadView(b *base, reader Reader) (*readView, error) {
	v := &readView{base: b, reader: reader}
	v.handlers = map[string]web.Handler{
		"goto": web.AllowMethods(v.gotoHandler, web.MethodGet),
		"call": web.AllowMethods(v.callHandler(v, v.currentPK), web.MethodPost),
	}
	var wrap func([]*markup.Node) []*markup.Node
	if len(b.cfg.Actions) > 0 {
		wrap = withActionsColumn
	}
	src, err := v.compose([]markup.Attr{}, wrap)
	if err != nil {
		return nil, err
	}
	v.source = src
	return v, nil
}

// withActionsColumn puts the body beside a column listing the actionsets.
func withActionsColumn(body []*markup.Node) []*markup.Node {
	columns := markup.Element("div", markup.Attr{Key: "class", Val: "columns"})
	main := markup.Element("div", markup.Attr{Key: "class", Val: "column"})
	main.AppendChild(body...)
	aside := markup.Element("div", markup.Attr{Key: "class", Val: "column is-2 crudui-actions"})
	aside.AppendChild(markup.Text("{% for action in actions %}{{ action|safe }}{% endfor %}"))
	columns.AppendChild(main, aside)
	return []*markup.Node{columns}
}

func (v *readView) currentPK(req *web.Request) []string {
	if pk := req.CurrentURLQuery().Get("pk"); pk != "" {
		return []string{pk}
	}
	return nil
}

func (v *readView) Render(ctx context.Context, sess *session.Session, options url.Values) (string, error) {
	return v.render(ctx, sess, options, state{})
}

func (v *readView) render(ctx context.Context, sess *session.Session, options url.Values, st state) (string, error) {
	pk := options.Get("pk")
	row, err := v.reader.Read(ctx, v.spec, pk)
	if err != nil {
		return "", fmt.Errorf("resources: %s: read %q: %w", v.res.Code, pk, err)
	}
	if row == nil {
		return v.res.notFound(ctx, sess, options)
	}
	form := v.spec.New(row)
	scope := v.scope(sess, form.Values)
	html, err := form.Render(scope, v.cfg.Layout, forms.ModeRead)
	if err != nil {
		return "", err
	}

	var buttons []string
	steps := []struct {
		id, target string
		changes    url.Values
	}{
		{"crudui-view-goto-create-button", v.cfg.CreateButtonRedirectTo, url.Values{"pk": nil}},
		{"crudui-view-goto-edit-button", v.cfg.EditButtonRedirectTo, nil},
		{"crudui-view-goto-delete-button", v.cfg.DeleteButtonRedirectTo, nil},
		{"crudui-view-goto-return-button", v.cfg.ReturnButtonRedirectTo, url.Values{"pk": nil}},
	}
	for _, s := range steps {
		if buttons, err = v.gotoButton(scope, buttons, s.id, s.target, options, s.changes); err != nil {
			return "", err
		}
	}

	actions, err := v.renderActionsets(scope, options)
	if err != nil {
		return "", err
	}

	data := v.data(scope, st)
	data["pk"] = pk
	data["form"] = html
	data["header_buttons"] = buttons
	data["actions"] = actions
	return v.execute(scope, v.TemplateID(), data)
}

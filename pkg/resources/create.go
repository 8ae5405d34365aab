package resources

import (
	"context"
	"net/url"

	"github.com/goliatone/go-crudui/pkg/forms"
	"github.com/goliatone/go-crudui/pkg/markup"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/web"
)

type createView struct {
	*base
	creator Creator
}

func newCreateView(b *base, creator Creator) (*createView, error) {
	v := &createView{base: b, creator: creator}
	v.handlers = map[string]web.Handler{
		"goto": web.AllowMethods(v.gotoHandler, web.MethodGet),
		"save": web.AllowMethods(v.save, web.MethodPost),
	}
	src, err := v.compose(v.targetAttrs(markup.Attr{Key: "hx-post", Val: v.actionURL(url.Values{"action": {"save"}})}), nil)
	if err != nil {
		return nil, err
	}
	v.source = src
	return v, nil
}

func (v *createView) Render(ctx context.Context, sess *session.Session, options url.Values) (string, error) {
	return v.render(ctx, sess, options, state{})
}

func (v *createView) render(ctx context.Context, sess *session.Session, options url.Values, st state) (string, error) {
	form := st.form
	if form == nil {
		form = v.spec.New(nil)
	}
	scope := v.scope(sess, form.Values)
	html, err := form.Render(scope, v.cfg.Layout, forms.ModeEdit)
	if err != nil {
		return "", err
	}
	save, err := v.button(scope, "crudui-view-do-save-button", nil)
	if err != nil {
		return "", err
	}
	cancel, err := v.button(scope, "crudui-view-goto-cancel-button", nil)
	if err != nil {
		return "", err
	}
	data := v.data(scope, st)
	data["form"] = html
	data["form_errors"] = form.FormErrors
	data["header_buttons"] = []string{save, cancel}
	return v.execute(scope, v.TemplateID(), data)
}

// save validates the submitted form and creates the entry. Domain errors
// are shown with the form.
func (v *createView) save(ctx context.Context, req *web.Request) (*web.Response, error) {
	options := req.CurrentURLQuery()
	scope := v.scope(req.Session, nil)
	form := v.spec.Decode(req.Form, scope)
	st := state{form: form}
	if v.validate(form, scope) {
		pk, err := v.creator.Create(ctx, form)
		switch {
		case err != nil:
			v.res.rt.Logger.Warn("create failed", "resource", v.res.Code, "error", err)
			st.fail(err)
		case v.cfg.AfterCreateRedirectTo != "":
			options.Set("view", v.cfg.AfterCreateRedirectTo)
			options.Set("pk", pk)
			return v.redirect(ctx, req, options)
		}
	}
	body, err := v.render(ctx, req.Session, options, st)
	if err != nil {
		return nil, err
	}
	return web.NewResponse(body), nil
}

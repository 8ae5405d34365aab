package resources

import (
	"context"
	"fmt"
	"maps"
	"net/url"

	"github.com/goliatone/go-crudui/pkg/forms"
	"github.com/goliatone/go-crudui/pkg/markup"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/web"
)

type editView struct {
	*base
	reader  Reader
	updater Updater
}

func newEditView(b *base, reader Reader, updater Updater) (*editView, error) {
	v := &editView{base: b, reader: reader, updater: updater}
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

func (v *editView) Render(ctx context.Context, sess *session.Session, options url.Values) (string, error) {
	return v.render(ctx, sess, options, state{})
}

func (v *editView) load(ctx context.Context, pk string) (*forms.Form, error) {
	row, err := v.reader.Read(ctx, v.spec, pk)
	if err != nil {
		return nil, fmt.Errorf("resources: %s: read %q: %w", v.res.Code, pk, err)
	}
	if row == nil {
		return nil, nil
	}
	return v.spec.New(row), nil
}

func (v *editView) render(ctx context.Context, sess *session.Session, options url.Values, st state) (string, error) {
	pk := options.Get("pk")
	form := st.form
	if form == nil {
		loaded, err := v.load(ctx, pk)
		if err != nil {
			return "", err
		}
		if loaded == nil {
			return v.res.notFound(ctx, sess, options)
		}
		form = loaded
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
	buttons, err := v.gotoButton(scope, []string{save}, "crudui-view-goto-edit-cancel-button", v.cfg.CancelButtonRedirectTo, options, nil)
	if err != nil {
		return "", err
	}

	data := v.data(scope, st)
	data["pk"] = pk
	data["form"] = html
	data["form_errors"] = form.FormErrors
	data["header_buttons"] = buttons
	return v.execute(scope, v.TemplateID(), data)
}

// save validates the submitted values of the entry named by the current
// querystring pk and updates it.
func (v *editView) save(ctx context.Context, req *web.Request) (*web.Response, error) {
	options := req.CurrentURLQuery()
	pk := options.Get("pk")
	scope := v.scope(req.Session, nil)
	form := v.spec.Decode(req.Form, scope)
	if _, ok := form.Values[v.spec.PK]; !ok {
		form.Set(v.spec.PK, pk)
	}
	st := state{}
	if v.validate(form, scope) {
		err := v.updater.Update(ctx, []*forms.Form{form})
		switch {
		case err != nil:
			v.res.rt.Logger.Warn("update failed", "resource", v.res.Code, "pk", pk, "error", err)
			st.fail(err)
		case v.cfg.AfterUpdateRedirectTo != "":
			options.Set("view", v.cfg.AfterUpdateRedirectTo)
			options.Set("pk", pk)
			return v.redirect(ctx, req, options)
		}
	}

	// show the stored values of the fields the form did not submit
	shown := v.spec.New(nil)
	if stored, err := v.load(ctx, pk); err == nil && stored != nil {
		shown = stored
	}
	maps.Copy(shown.Values, form.Values)
	shown.Errors, shown.FormErrors = form.Errors, form.FormErrors
	st.form = shown

	body, err := v.render(ctx, req.Session, options, st)
	if err != nil {
		return nil, err
	}
	return web.NewResponse(body), nil
}

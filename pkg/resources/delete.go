package resources

import (
	"context"
	"net/url"
	"slices"

	"github.com/goliatone/go-crudui/pkg/markup"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/web"
)

type deleteView struct {
	*base
	deleter Deleter
}

func newDeleteView(b *base, deleter Deleter) (*deleteView, error) {
	v := &deleteView{base: b, deleter: deleter}
	v.handlers = map[string]web.Handler{
		"goto":   web.AllowMethods(v.gotoHandler, web.MethodGet),
		"delete": web.AllowMethods(v.delete, web.MethodDelete),
	}
	src, err := v.compose(v.targetAttrs(markup.Attr{Key: "hx-delete", Val: v.actionURL(url.Values{"action": {"delete"}})}), nil)
	if err != nil {
		return nil, err
	}
	v.source = src
	return v, nil
}

func (v *deleteView) Render(ctx context.Context, sess *session.Session, options url.Values) (string, error) {
	return v.render(ctx, sess, options, state{})
}

func (v *deleteView) render(ctx context.Context, sess *session.Session, options url.Values, st state) (string, error) {
	scope := v.scope(sess, nil)
	pks := slices.Clone(options["pk"])
	entries := pks
	if labeler, ok := v.res.Backend.(Labeler); ok && len(pks) > 0 {
		labels, err := labeler.Labels(ctx, pks)
		if err != nil {
			v.res.rt.Logger.Warn("entry labels failed", "resource", v.res.Code, "error", err)
		} else {
			entries = labels
		}
	}

	del, err := v.button(scope, "crudui-view-do-delete-button", nil)
	if err != nil {
		return "", err
	}
	cancel, err := v.button(scope, "crudui-view-goto-cancel-button", nil)
	if err != nil {
		return "", err
	}

	data := v.data(scope, st)
	data["entries"] = entries
	data["header_buttons"] = []string{del, cancel}
	return v.execute(scope, v.TemplateID(), data)
}

// delete removes the entries listed by the pk keys of the page the request
// was sent from, then redirects without them.
func (v *deleteView) delete(ctx context.Context, req *web.Request) (*web.Response, error) {
	options := req.CurrentURLQuery()
	pks := options["pk"]
	st := state{}
	if len(pks) > 0 {
		err := v.deleter.Delete(ctx, slices.Clone(pks))
		switch {
		case err != nil:
			v.res.rt.Logger.Warn("delete failed", "resource", v.res.Code, "error", err)
			st.fail(err)
		case v.cfg.AfterDeleteRedirectTo != "":
			options.Set("view", v.cfg.AfterDeleteRedirectTo)
			options.Del("pk")
			return v.redirect(ctx, req, options)
		}
	}
	body, err := v.render(ctx, req.Session, options, st)
	if err != nil {
		return nil, err
	}
	return web.NewResponse(body), nil
}

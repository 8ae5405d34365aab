package resources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/web"
)

// RenderFunc renders a page for a session.
type RenderFunc func(ctx context.Context, sess *session.Session, options url.Values) (string, error)

// PageSecurity wraps the rendering of a resource page. The returned
// function either calls next or renders something else.
type PageSecurity func(next RenderFunc) RenderFunc

// ActionSecurity wraps the handlers reached through the resource router.
type ActionSecurity func(next web.Handler) web.Handler

// PageWhen renders the page when allow holds for the session, fallback
// otherwise.
func PageWhen(allow func(*session.Session) bool, fallback RenderFunc) PageSecurity {
	return func(next RenderFunc) RenderFunc {
		return func(ctx context.Context, sess *session.Session, options url.Values) (string, error) {
			if !allow(sess) {
				return fallback(ctx, sess, options)
			}
			return next(ctx, sess, options)
		}
	}
}

// PageForAuthenticated renders denied instead of the page for anonymous
// sessions.
func PageForAuthenticated(denied RenderFunc) PageSecurity {
	return PageWhen((*session.Session).Authenticated, denied)
}

// PageForUnauthenticated renders fallback instead of the page once the
// session is logged in, e.g. the homepage instead of the login form.
func PageForUnauthenticated(fallback RenderFunc) PageSecurity {
	return PageWhen(func(sess *session.Session) bool { return !sess.Authenticated() }, fallback)
}

// ActionForAuthenticated fails with ErrForbidden for anonymous sessions.
func ActionForAuthenticated(next web.Handler) web.Handler {
	return func(ctx context.Context, req *web.Request) (*web.Response, error) {
		if !req.Session.Authenticated() {
			return nil, fmt.Errorf("resources: %w: %s %s", ErrForbidden, req.Method, req.RawQuery)
		}
		return next(ctx, req)
	}
}

// ActionForUnauthenticated fails with ErrForbidden for logged in sessions.
func ActionForUnauthenticated(next web.Handler) web.Handler {
	return func(ctx context.Context, req *web.Request) (*web.Response, error) {
		if req.Session.Authenticated() {
			return nil, fmt.Errorf("resources: %w: %s %s", ErrForbidden, req.Method, req.RawQuery)
		}
		return next(ctx, req)
	}
}

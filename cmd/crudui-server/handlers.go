package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/justinas/nosurf"

	"github.com/goliatone/go-crudui/pkg/client"
	"github.com/goliatone/go-crudui/pkg/resources"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/web"
)

const sessionCookie = "crudui_session"

// loadSession reads the session cookie. A missing or tampered cookie starts
// a fresh session.
func (app *application) loadSession(r *http.Request) *session.Session {
	var sess *session.Session
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, err = app.codec.Decode(c.Value); err != nil {
			app.logger.Warn("session cookie rejected", "error", err)
		}
	}
	if sess == nil {
		sess = session.New()
	}
	sess.Set(client.CSRFSessionKey, nosurf.Token(r))
	return sess
}

func (app *application) saveSession(w http.ResponseWriter, sess *session.Session) error {
	delete(sess.Data, client.CSRFSessionKey)
	token, err := app.codec.Encode(sess)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (app *application) documentHandler(w http.ResponseWriter, r *http.Request) {
	sess := app.loadSession(r)
	req, err := web.FromHTTP(r, sess)
	if err != nil {
		app.fail(w, r, err)
		return
	}
	resp, err := app.client.Render(r.Context(), req)
	app.respond(w, r, sess, resp, err)
}

func (app *application) actionHandler(w http.ResponseWriter, r *http.Request) {
	sess := app.loadSession(r)
	req, err := web.FromHTTP(r, sess)
	if err != nil {
		app.fail(w, r, err)
		return
	}
	resp, err := app.client.ExecuteAction(r.Context(), req, chi.URLParam(r, "name"))
	app.respond(w, r, sess, resp, err)
}

func (app *application) respond(w http.ResponseWriter, r *http.Request, sess *session.Session, resp *web.Response, err error) {
	if err != nil {
		app.fail(w, r, err)
		return
	}
	if err := app.saveSession(w, sess); err != nil {
		app.fail(w, r, err)
		return
	}
	if err := resp.Write(w); err != nil {
		app.logger.Error("write response", "path", r.URL.Path, "error", err)
	}
}

func (app *application) staticHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	f, ok := app.client.StaticFile(name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if f.Path != "" {
		http.ServeFile(w, r, f.Path)
		return
	}
	http.ServeFileFS(w, r, f.FS, f.Name)
}

// fail maps client errors to HTTP statuses.
func (app *application) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, client.ErrUnknownAction), errors.Is(err, client.ErrUnknownPage),
		errors.Is(err, client.ErrUnknownResource):
		status = http.StatusNotFound
	case errors.Is(err, resources.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, web.ErrActionValidator):
		status = http.StatusMethodNotAllowed
	case errors.Is(err, web.ErrRequest), errors.Is(err, web.ErrRequestForm),
		errors.Is(err, resources.ErrRouter), errors.Is(err, resources.ErrFilter):
		status = http.StatusBadRequest
	}
	app.logger.Warn("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	http.Error(w, http.StatusText(status), status)
}

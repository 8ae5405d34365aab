package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/justinas/nosurf"
)

// basePath prefixes every crudui url.
const basePath = "/admin"

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, basePath, http.StatusSeeOther)
	})
	r.Route(basePath, func(r chi.Router) {
		r.Get("/", app.documentHandler)
		r.Get("/static/{name}", app.staticHandler)
		r.HandleFunc("/action/{name}", app.actionHandler)
	})

	csrf := nosurf.New(r)
	csrf.SetBaseCookie(http.Cookie{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	csrf.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.logger.Warn("csrf check failed", "path", r.URL.Path, "reason", nosurf.Reason(r))
		http.Error(w, "invalid csrf token", http.StatusForbidden)
	}))
	return csrf
}

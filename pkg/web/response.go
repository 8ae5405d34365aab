package web

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

// Headers understood by htmx.
const (
	HeaderPushURL  = "HX-Push-Url"
	HeaderRedirect = "HX-Redirect"
	HeaderRefresh  = "HX-Refresh"
)

// Response is returned to the host adapter.
type Response struct {
	Body        string
	ContentType string
	StatusCode  int
	Headers     http.Header
}

// NewResponse returns an HTML response with status 200.
func NewResponse(body string) *Response {
	return &Response{
		Body:        body,
		ContentType: "text/html",
		StatusCode:  http.StatusOK,
		Headers:     http.Header{},
	}
}

// PushURL asks the browser to display u without navigating.
func (r *Response) PushURL(u string) *Response {
	r.Headers.Set(HeaderPushURL, u)
	return r
}

// Redirect asks the browser to navigate to u.
func (r *Response) Redirect(u string) *Response {
	r.Headers.Set(HeaderRedirect, u)
	return r
}

// Refresh asks the browser to reload the page.
func (r *Response) Refresh() *Response {
	r.Headers.Set(HeaderRefresh, "true")
	return r
}

// Header returns the first value of a response header.
func (r *Response) Header(name string) string {
	return r.Headers.Get(name)
}

// Component exposes the body as a templ component so templ based hosts can
// embed it in their own layouts.
func (r *Response) Component() templ.Component {
	return templ.Raw(r.Body)
}

// Write sends the response through w.
func (r *Response) Write(w http.ResponseWriter) error {
	for k, values := range r.Headers {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	if r.ContentType != "" {
		w.Header().Set("Content-Type", r.ContentType)
	}
	status := r.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, err := io.WriteString(w, r.Body)
	return err
}

// Render implements templ.Component directly.
func (r *Response) Render(ctx context.Context, w io.Writer) error {
	return r.Component().Render(ctx, w)
}

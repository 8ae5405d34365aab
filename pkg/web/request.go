// Package web carries the framework agnostic request and response values
// exchanged between host adapters and the client.
package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-crudui/pkg/session"
)

// Method is an HTTP request method.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// ParseMethod normalizes s into a known Method.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return m, nil
	}
	return "", fmt.Errorf("web: %w: unknown method %q", ErrRequest, s)
}

// HeaderCurrentURL is sent by htmx with the URL displayed by the browser.
const HeaderCurrentURL = "HX-Current-URL"

// Request is one inbound call built by a host adapter.
type Request struct {
	Method   Method
	Session  *session.Session
	RawQuery string
	Query    url.Values
	// Form holds the submitted form fields.
	Form url.Values
	// Params holds the body parameters of non GET actions.
	Params  url.Values
	Headers http.Header
}

// RequestOption configures NewRequest.
type RequestOption func(*Request) error

// WithQuery parses raw as the request querystring.
func WithQuery(raw string) RequestOption {
	return func(r *Request) error {
		raw = strings.TrimPrefix(raw, "?")
		q, err := url.ParseQuery(raw)
		if err != nil {
			return fmt.Errorf("web: %w: query: %v", ErrRequest, err)
		}
		r.RawQuery = raw
		r.Query = q
		return nil
	}
}

// WithBody decodes an application/x-www-form-urlencoded body into both the
// form fields and the params.
func WithBody(raw string) RequestOption {
	return func(r *Request) error {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return fmt.Errorf("web: %w: %v", ErrRequestForm, err)
		}
		r.Form = values
		r.Params = values
		return nil
	}
}

// WithForm sets the submitted form fields.
func WithForm(values url.Values) RequestOption {
	return func(r *Request) error {
		r.Form = values
		return nil
	}
}

// WithParams sets the body parameters.
func WithParams(values url.Values) RequestOption {
	return func(r *Request) error {
		r.Params = values
		return nil
	}
}

// WithHeaders copies headers into the request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *Request) error {
		for k, v := range headers {
			r.Headers.Set(k, v)
		}
		return nil
	}
}

// WithCurrentURL sets the HX-Current-URL header.
func WithCurrentURL(u string) RequestOption {
	return func(r *Request) error {
		r.Headers.Set(HeaderCurrentURL, u)
		return nil
	}
}

// NewRequest builds a request. A session is mandatory.
func NewRequest(method Method, sess *session.Session, opts ...RequestOption) (*Request, error) {
	m, err := ParseMethod(string(method))
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("web: %w", ErrNoSession)
	}
	r := &Request{
		Method:  m,
		Session: sess,
		Query:   url.Values{},
		Form:    url.Values{},
		Params:  url.Values{},
		Headers: http.Header{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// FromHTTP builds a request from a net/http request, decoding its body.
func FromHTTP(hr *http.Request, sess *session.Session) (*Request, error) {
	if err := hr.ParseForm(); err != nil {
		return nil, fmt.Errorf("web: %w: %v", ErrRequestForm, err)
	}
	req, err := NewRequest(Method(hr.Method), sess, WithQuery(hr.URL.RawQuery))
	if err != nil {
		return nil, err
	}
	req.Form = hr.PostForm
	req.Params = hr.PostForm
	req.Headers = hr.Header.Clone()
	return req, nil
}

// Values returns the options of the request: the querystring for GET, the
// body parameters otherwise.
func (r *Request) Values() url.Values {
	if r.Method == MethodGet {
		return r.Query
	}
	return r.Params
}

// Value returns the first value of key from Values.
func (r *Request) Value(key string) string {
	return r.Values().Get(key)
}

func (r *Request) currentURL() *url.URL {
	raw := r.Headers.Get(HeaderCurrentURL)
	if raw == "" {
		return &url.URL{Path: "/"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{Path: "/"}
	}
	return u
}

// CurrentURLQuery returns a copy of the querystring of the page displayed by
// the browser when the request was sent.
func (r *Request) CurrentURLQuery() url.Values {
	return CloneValues(r.currentURL().Query())
}

// CurrentURLPath returns the path of the page displayed by the browser.
func (r *Request) CurrentURLPath() string {
	if p := r.currentURL().Path; p != "" {
		return p
	}
	return "/"
}

// URLFromValues joins base and the encoded querystring. Keys are sorted.
func URLFromValues(base string, qs url.Values) string {
	if len(qs) == 0 {
		return base
	}
	return base + "?" + qs.Encode()
}

// CloneValues deep copies values.
func CloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, v := range values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

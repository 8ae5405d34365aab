// Package session holds the per-request user session handed to the client by
// host adapters. The toolkit never persists sessions; adapters load them
// before a request and store them back afterwards, typically through Codec.
package session

import (
	"context"
	"maps"
	"net/url"
	"strings"
)

// DefaultLang is the language of a fresh session.
const DefaultLang = "en"

// Session is the mutable state of one visitor.
type Session struct {
	User  string         `msgpack:"user,omitempty" json:"user,omitempty"`
	Lang  string         `msgpack:"lang" json:"lang"`
	Theme string         `msgpack:"theme,omitempty" json:"theme,omitempty"`
	Data  map[string]any `msgpack:"data,omitempty" json:"data,omitempty"`
}

// New returns an anonymous session using DefaultLang.
func New() *Session {
	return &Session{Lang: DefaultLang}
}

// Language returns the session language, DefaultLang when unset or nil.
func (s *Session) Language() string {
	if s == nil || strings.TrimSpace(s.Lang) == "" {
		return DefaultLang
	}
	return s.Lang
}

// Authenticated reports whether a user is logged in.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != ""
}

// Login marks user as logged in.
func (s *Session) Login(user string) {
	s.User = strings.TrimSpace(user)
}

// Logout forgets the user and any session data, keeping lang and theme.
func (s *Session) Logout() {
	s.User = ""
	s.Data = nil
}

// Get returns a value stored on the session.
func (s *Session) Get(key string) (any, bool) {
	if s == nil || s.Data == nil {
		return nil, false
	}
	v, ok := s.Data[key]
	return v, ok
}

// Set stores a value on the session.
func (s *Session) Set(key string, value any) {
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	s.Data[key] = value
}

// Clone returns a copy whose Data map can be changed independently.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Data != nil {
		cp.Data = maps.Clone(s.Data)
	}
	return &cp
}

// Authenticator implements the login, signup and logout workflows of a host
// application. Values are the submitted form fields. Returned errors are
// shown to the user next to the form.
type Authenticator interface {
	Login(ctx context.Context, sess *Session, values url.Values) error
	// Signup returns true when the session is logged in afterwards and the
	// page must be reloaded.
	Signup(ctx context.Context, sess *Session, values url.Values) (bool, error)
	Logout(ctx context.Context, sess *Session) error
}

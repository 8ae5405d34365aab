package web

import "errors"

var (
	// ErrRequest is returned for malformed request envelopes.
	ErrRequest = errors.New("request error")
	// ErrNoSession is returned when a request is built without a session.
	ErrNoSession = errors.New("request without session")
	// ErrRequestForm is returned when the submitted body cannot be decoded.
	ErrRequestForm = errors.New("request form error")
	// ErrActionValidator is returned when a handler refuses the request
	// method or the requested action.
	ErrActionValidator = errors.New("action validator error")
)

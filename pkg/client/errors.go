package client

import "errors"

var (
	// ErrUnknownResource is returned when no resource has the requested code.
	ErrUnknownResource = errors.New("unknown resource")
	// ErrUnknownPage is returned when no page has the requested name.
	ErrUnknownPage = errors.New("unknown page")
	// ErrUnknownAction is returned when no action has the requested name.
	ErrUnknownAction = errors.New("unknown action")
	// ErrRegistration is returned for invalid or duplicate registrations.
	ErrRegistration = errors.New("registration error")
)

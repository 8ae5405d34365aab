package resources

import (
	"errors"
	"fmt"
)

var (
	// ErrResource reports an invalid resource definition or a routing
	// failure.
	ErrResource = errors.New("resource error")
	// ErrRouter reports a request the router cannot dispatch. It is always
	// joined with ErrResource.
	ErrRouter = errors.New("resource router error")
	// ErrFilter reports a filter on an unknown field or operator.
	ErrFilter = errors.New("resource filter error")
	// ErrView reports an invalid view configuration.
	ErrView = errors.New("view error")
	// ErrViewForm reports a view form without primary key.
	ErrViewForm = errors.New("view form error")
	// ErrViewAction reports a call of an undeclared action.
	ErrViewAction = errors.New("view action error")
	// ErrForbidden is returned by the action security hooks.
	ErrForbidden = errors.New("forbidden")
)

func resourceErrorf(format string, args ...any) error {
	return fmt.Errorf("resources: %w: %s", ErrResource, fmt.Sprintf(format, args...))
}

func routerErrorf(format string, args ...any) error {
	return fmt.Errorf("resources: %w: %w: %s", ErrResource, ErrRouter, fmt.Sprintf(format, args...))
}

func viewErrorf(format string, args ...any) error {
	return fmt.Errorf("resources: %w: %s", ErrView, fmt.Sprintf(format, args...))
}

package web

import (
	"context"
	"fmt"
	"slices"
)

// Handler answers a request.
type Handler func(ctx context.Context, req *Request) (*Response, error)

// CheckMethod fails with ErrActionValidator when req.Method is not one of
// methods. No methods allows every method.
func CheckMethod(req *Request, methods ...Method) error {
	if len(methods) == 0 || slices.Contains(methods, req.Method) {
		return nil
	}
	return fmt.Errorf("web: %w: the received method is %s but waiting method %v", ErrActionValidator, req.Method, methods)
}

// AllowMethods wraps h so it only runs for the given methods. A nil response
// from h is reported as ErrActionValidator.
func AllowMethods(h Handler, methods ...Method) Handler {
	return func(ctx context.Context, req *Request) (*Response, error) {
		if err := CheckMethod(req, methods...); err != nil {
			return nil, err
		}
		resp, err := h(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp == nil {
			return nil, fmt.Errorf("web: %w: handler returned no response", ErrActionValidator)
		}
		return resp, nil
	}
}

package client

import (
	"fmt"

	"github.com/goliatone/go-crudui/pkg/resources"
)

// RegisterResource applies the overlays of the resource, builds it against
// the client runtime and makes it reachable through the resource page and
// action. Registering a code twice is an error.
func (c *Client) RegisterResource(r *resources.Resource) error {
	if r == nil {
		return fmt.Errorf("client: %w: nil resource", ErrRegistration)
	}
	c.mu.RLock()
	_, dup := c.resources[r.Code]
	c.mu.RUnlock()
	if dup {
		return fmt.Errorf("client: %w: resource %q registered twice", ErrRegistration, r.Code)
	}
	if c.cfg.overlays != nil {
		if err := c.cfg.overlays.ApplyResource(r); err != nil {
			return err
		}
	}
	if err := r.Build(c.runtime()); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources[r.Code] = r
	c.order = append(c.order, r.Code)
	c.cfg.logger.Info("resource registered", "resource", r.Code, "views", len(r.BuiltViews()))
	return nil
}

// Resource returns the registered resource code.
func (c *Client) Resource(code string) (*resources.Resource, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.resources[code]
	if !ok {
		return nil, fmt.Errorf("client: %w: %q", ErrUnknownResource, code)
	}
	return r, nil
}

// Resources returns the registered resources in registration order.
func (c *Client) Resources() []*resources.Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*resources.Resource, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, c.resources[code])
	}
	return out
}

func (c *Client) runtime() resources.Runtime {
	return resources.Runtime{
		Templates:  c.templates,
		Executor:   c.pool,
		Translator: c.cfg.translations,
		Evaluator:  c.cfg.evaluator,
		Widgets:    c.cfg.widgets,
		BaseURL:    c.cfg.baseURL,
		Logger:     c.cfg.logger,
		Hidden:     c.hidden,
		NotFound:   c.page404,
	}
}

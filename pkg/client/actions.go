package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-crudui/pkg/resources"
	"github.com/goliatone/go-crudui/pkg/web"
)

// RegisterAction adds or replaces the action name, reached at
// {base}/action/{name}.
func (c *Client) RegisterAction(name string, handler web.Handler) error {
	name = strings.TrimSpace(name)
	if name == "" || handler == nil {
		return fmt.Errorf("client: %w: action without name or handler", ErrRegistration)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions[name] = handler
	return nil
}

// ExecuteAction runs the action name. Errors are returned to the host
// adapter, which maps them to an HTTP status.
func (c *Client) ExecuteAction(ctx context.Context, req *web.Request, name string) (*web.Response, error) {
	if req == nil || req.Session == nil {
		return nil, fmt.Errorf("client: %w", web.ErrNoSession)
	}
	c.mu.RLock()
	handler, ok := c.actions[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("client: %w: %q", ErrUnknownAction, name)
	}
	c.cfg.logger.Debug("action", "action", name, "method", req.Method, "query", req.RawQuery)
	return handler(ctx, req)
}

func (c *Client) registerBuiltinActions() error {
	builtins := map[string]web.Handler{
		"goto":     web.AllowMethods(c.actionGoto, web.MethodGet),
		"resource": c.actionResource,
		"login_password": web.AllowMethods(
			resources.ActionForUnauthenticated(c.actionLogin), web.MethodPost),
		"signup": web.AllowMethods(
			resources.ActionForUnauthenticated(c.actionSignup), web.MethodPost),
		"logout": web.AllowMethods(
			resources.ActionForAuthenticated(c.actionLogout), web.MethodPost),
	}
	for name, handler := range builtins {
		if err := c.RegisterAction(name, handler); err != nil {
			return err
		}
	}
	return nil
}

// actionGoto renders the page named by the querystring and pushes its url.
// A page opened from an aside menu pushes the url of the aside-menu page
// wrapping it, so a reload shows the aside again.
func (c *Client) actionGoto(ctx context.Context, req *web.Request) (*web.Response, error) {
	options := web.CloneValues(req.Query)
	name := options.Get("page")
	if name == "" {
		return nil, fmt.Errorf("client: %w: goto without page", web.ErrActionValidator)
	}
	body, err := c.PageOrNotFound(name)(ctx, req.Session, options)
	if err != nil {
		return nil, err
	}
	if aside := options.Get("in-aside"); aside != "" {
		options.Del("in-aside")
		options.Set("page", "aside-menu")
		options.Set("aside", aside)
		options.Set("aside_page", name)
	}
	return web.NewResponse(body).PushURL(web.URLFromValues(req.CurrentURLPath(), options)), nil
}

// actionResource routes the request to the resource of the current page.
func (c *Client) actionResource(ctx context.Context, req *web.Request) (*web.Response, error) {
	code := req.CurrentURLQuery().Get("resource")
	if code == "" {
		code = req.Query.Get("resource")
	}
	res, err := c.Resource(code)
	if err != nil {
		return nil, err
	}
	return res.Router(ctx, req)
}

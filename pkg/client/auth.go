package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/forms"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/web"
)

// LoginForm is the form posted by the login page.
var LoginForm = forms.Spec{
	Name:    "login",
	Context: "form:login",
	PK:      "login",
	Fields: []fields.Field{
		{Name: "login", Label: "Login", Kind: fields.KindString, Required: fields.Bool(true)},
		{Name: "password", Label: "Password", Kind: fields.KindPassword, Required: fields.Bool(true)},
	},
}

// SignupForm is the form posted by the signup page.
var SignupForm = forms.Spec{
	Name:    "signup",
	Context: "form:signup",
	PK:      "login",
	Fields: []fields.Field{
		{Name: "login", Label: "Login", Kind: fields.KindString, Required: fields.Bool(true)},
		{Name: "name", Label: "Name", Kind: fields.KindString},
		{Name: "lang", Label: "Language", Kind: fields.KindString},
		{Name: "password", Label: "Password", Kind: fields.KindPassword, Required: fields.Bool(true)},
		{Name: "password_confirm", Label: "Confirm the password", Kind: fields.KindPassword, Required: fields.Bool(true)},
	},
}

const passwordMismatch = "The passwords do not match"

func (c *Client) registerAuthForms() error {
	var err error
	if c.loginForm, err = LoginForm.Resolve(c.cfg.widgets, c.cfg.evaluator); err != nil {
		return fmt.Errorf("client: login form: %w", err)
	}
	if c.signupForm, err = SignupForm.Resolve(c.cfg.widgets, c.cfg.evaluator); err != nil {
		return fmt.Errorf("client: signup form: %w", err)
	}
	return nil
}

func (c *Client) authenticator() (session.Authenticator, error) {
	if c.cfg.auth == nil {
		return nil, fmt.Errorf("client: %w: no authenticator configured", ErrUnknownAction)
	}
	return c.cfg.auth, nil
}

func (c *Client) renderAuthPage(sess *session.Session, id string, form *forms.Form, message string) (string, error) {
	body, err := form.Render(c.scope(sess, form.Spec.Name), "", forms.ModeEdit)
	if err != nil {
		return "", err
	}
	return c.RenderTemplate(sess, id, map[string]any{
		"form":   body,
		"hidden": c.hiddenInputs(sess),
		"error":  message,
	})
}

// afterAuth sends the browser home when the form was displayed by its own
// page, and reloads the current page otherwise.
func afterAuth(req *web.Request, page string) *web.Response {
	resp := web.NewResponse("")
	if req.CurrentURLQuery().Get("page") == page {
		return resp.Redirect(web.URLFromValues(req.CurrentURLPath(), url.Values{"page": {"homepage"}}))
	}
	return resp.Refresh()
}

func (c *Client) actionLogin(ctx context.Context, req *web.Request) (*web.Response, error) {
	auth, err := c.authenticator()
	if err != nil {
		return nil, err
	}
	scope := c.scope(req.Session, c.loginForm.Name)
	form := c.loginForm.Decode(req.Form, scope)
	if !form.Validate(scope) {
		return c.authResponse(req.Session, "crudui-page-login", form, "")
	}
	if err := auth.Login(ctx, req.Session, req.Form); err != nil {
		c.cfg.logger.Warn("login refused", "login", form.Values["login"], "error", err)
		return c.authResponse(req.Session, "crudui-page-login", form, err.Error())
	}
	return afterAuth(req, "login"), nil
}

func (c *Client) actionSignup(ctx context.Context, req *web.Request) (*web.Response, error) {
	auth, err := c.authenticator()
	if err != nil {
		return nil, err
	}
	scope := c.scope(req.Session, c.signupForm.Name)
	form := c.signupForm.Decode(req.Form, scope)
	valid := form.Validate(scope)
	if valid && req.Form.Get("password") != req.Form.Get("password_confirm") {
		if form.Errors == nil {
			form.Errors = make(map[string][]string)
		}
		msg := c.translate(req.Session, "form:signup:error:password_confirm", passwordMismatch)
		form.Errors["password_confirm"] = append(form.Errors["password_confirm"], msg)
		valid = false
	}
	if !valid {
		return c.authResponse(req.Session, "crudui-page-signup", form, "")
	}
	reload, err := auth.Signup(ctx, req.Session, req.Form)
	if err != nil {
		c.cfg.logger.Warn("signup refused", "login", form.Values["login"], "error", err)
		return c.authResponse(req.Session, "crudui-page-signup", form, err.Error())
	}
	if !reload {
		return c.authResponse(req.Session, "crudui-page-signup", c.signupForm.New(nil), "")
	}
	return afterAuth(req, "signup"), nil
}

func (c *Client) actionLogout(ctx context.Context, req *web.Request) (*web.Response, error) {
	auth, err := c.authenticator()
	if err != nil {
		return nil, err
	}
	if err := auth.Logout(ctx, req.Session); err != nil {
		return nil, fmt.Errorf("client: logout: %w", err)
	}
	return web.NewResponse("").Redirect(req.CurrentURLPath()), nil
}

func (c *Client) authResponse(sess *session.Session, id string, form *forms.Form, message string) (*web.Response, error) {
	body, err := c.renderAuthPage(sess, id, form, message)
	if err != nil {
		return nil, err
	}
	return web.NewResponse(body), nil
}

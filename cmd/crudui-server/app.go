package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-crudui/pkg/client"
	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/forms"
	"github.com/goliatone/go-crudui/pkg/menus"
	"github.com/goliatone/go-crudui/pkg/resources"
	"github.com/goliatone/go-crudui/pkg/resources/memstore"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/themes"
	"github.com/goliatone/go-crudui/pkg/translation"
	"github.com/goliatone/go-crudui/pkg/uischema"
	"github.com/goliatone/go-crudui/pkg/web"
)

type application struct {
	logger   *slog.Logger
	client   *client.Client
	codec    *session.Codec
	accounts *accounts
	users    *memstore.Store
	groups   *memstore.Store
}

func newApplication(cfg config, logger *slog.Logger) (*application, error) {
	secret := cfg.Secret
	if secret == "" {
		logger.Warn("CRUDUI_SECRET is not set, sessions do not survive a restart")
		secret = randomSecret()
	}
	codec, err := session.NewCodec([]byte(secret), session.Sealed())
	if err != nil {
		return nil, err
	}

	store := translation.NewStore(translation.WithLogger(logger))
	if cfg.Locales != "" {
		for _, lang := range cfg.Langs {
			path := filepath.Join(cfg.Locales, lang+".po")
			if _, err := os.Stat(path); err != nil {
				logger.Debug("no catalog", "lang", lang, "path", path)
				continue
			}
			if err := store.LoadFile(path, lang); err != nil {
				return nil, err
			}
		}
	}

	opts := []client.Option{
		client.WithTitle("crudui"),
		client.WithBaseURL(basePath),
		client.WithLogger(logger),
		client.WithTranslation(store),
		client.WithThemes(demoThemes()),
		client.WithCatalogVersion("crudui-server"),
	}
	if cfg.Overlays != "" {
		overlays, err := uischema.LoadFS(os.DirFS(cfg.Overlays))
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithOverlays(overlays))
	}
	app := &application{
		logger:   logger,
		codec:    codec,
		accounts: newAccounts(),
		users:    memstore.New("id", "login"),
		groups:   memstore.New("code", "name"),
	}
	opts = append(opts, client.WithAuthenticator(app.accounts))
	if app.client, err = client.New(opts...); err != nil {
		return nil, err
	}
	if err := app.accounts.add("admin", "admin", "en"); err != nil {
		return nil, err
	}
	if err := app.seed(); err != nil {
		return nil, err
	}
	if err := app.register(); err != nil {
		return nil, err
	}
	if err := app.client.Compile(cfg.Langs...); err != nil {
		return nil, err
	}
	return app, nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

func demoThemes() *themes.Registry {
	reg := themes.NewRegistry()
	_ = reg.Register(&theme.Manifest{
		Name:    "crudui",
		Version: "1.0.0",
		Tokens:  map[string]string{"crudui-accent": "#485fc7", "crudui-radius": "6px"},
		Variants: map[string]theme.Variant{
			"dark": {Tokens: map[string]string{"crudui-accent": "#66d1ff", "bulma-scheme-main": "#14161a"}},
		},
	})
	return reg
}

func (app *application) seed() error {
	for _, u := range []struct {
		login, name, lang string
		age               int64
	}{
		{"ada", "Ada Lovelace", "en", 36},
		{"alan", "Alan Turing", "en", 41},
		{"grace", "Grace Hopper", "en", 85},
		{"marie", "Marie Curie", "fr", 66},
	} {
		err := app.users.Insert(resources.Row{
			"login": u.login, "name": u.name, "lang": u.lang, "age": u.age, "active": true,
		})
		if err != nil {
			return err
		}
	}
	return app.groups.Insert(
		resources.Row{"code": "ops", "name": "Operations", "visibility": "private", "max_members": int64(12)},
		resources.Row{"code": "eng", "name": "Engineering", "visibility": "public", "max_members": int64(80)},
	)
}

func userResource(store *memstore.Store, security resources.PageSecurity) *resources.Resource {
	activate := func(active bool) resources.MethodFunc {
		return func(ctx context.Context, call resources.Call) (*web.Response, error) {
			spec := forms.Spec{PK: "id"}
			list := make([]*forms.Form, 0, len(call.PKs))
			for _, pk := range call.PKs {
				list = append(list, spec.New(map[string]any{"id": pk, "active": active}))
			}
			return nil, store.Update(ctx, list)
		}
	}
	return &resources.Resource{
		Code:      "user",
		Label:     "User",
		MenuLabel: "Users",
		PK:        "id",
		Fields: []fields.Field{
			{Name: "id", Label: "Id", Readonly: fields.Bool(true), Invisible: fields.InViews("create", "list")},
			{Name: "login", Label: "Login", Required: fields.Bool(true), Readonly: fields.InViews("edit")},
			{Name: "name", Label: "Name", Required: fields.Bool(true)},
			{Name: "email", Label: "Email", Kind: fields.KindEmail, Placeholder: "name@example.com"},
			{Name: "age", Label: "Age", Kind: fields.KindInteger},
			{Name: "lang", Label: "Language", Kind: fields.KindSelect, Choices: []fields.Choice{
				{Value: "en", Label: "English"},
				{Value: "fr", Label: "French"},
			}},
			{Name: "active", Label: "Active", Kind: fields.KindBoolean, Default: true},
		},
		Views: []resources.ViewConfig{
			{
				Kind:                   resources.KindList,
				Label:                  "Users",
				CreateButtonRedirectTo: "create",
				DeleteButtonRedirectTo: "delete",
				OpenEntryRedirectTo:    "read",
				Filters:                []string{"login", "name", "lang", "age"},
				Actions: []resources.Actionset{{
					Label: "Selection",
					Actions: []resources.Action{
						resources.SelectedRowsAction("Activate", "activate"),
						resources.SelectedRowsAction("Deactivate", "deactivate"),
					},
				}},
			},
			{Kind: resources.KindCreate, AfterCreateRedirectTo: "read", CancelButtonRedirectTo: "list"},
			{
				Kind:                   resources.KindRead,
				EditButtonRedirectTo:   "edit",
				DeleteButtonRedirectTo: "delete",
				ReturnButtonRedirectTo: "list",
				Actions: []resources.Actionset{{
					Label: "Account",
					Actions: []resources.Action{
						resources.CallAction("Deactivate", "deactivate").HiddenWhen(fields.Expr("values.active == false")),
						resources.CallAction("Activate", "activate").HiddenWhen(fields.Expr("values.active == true")),
					},
				}},
			},
			{Kind: resources.KindEdit, AfterUpdateRedirectTo: "read", CancelButtonRedirectTo: "read"},
			{Kind: resources.KindDelete, AfterDeleteRedirectTo: "list", CancelButtonRedirectTo: "list"},
		},
		Backend: store,
		Methods: map[string]resources.MethodFunc{
			"activate":   activate(true),
			"deactivate": activate(false),
		},
		PageSecurity:   security,
		ActionSecurity: resources.ActionForAuthenticated,
	}
}

func (app *application) register() error {
	c := app.client
	users := userResource(app.users, c.PageForAuthenticated())
	if err := c.RegisterResource(users); err != nil {
		return err
	}
	groups, err := groupResource(context.Background(), app.groups, c.PageForAuthenticated())
	if err != nil {
		return err
	}
	if err := c.RegisterResource(groups); err != nil {
		return err
	}
	if err := c.RegisterStaticPage("about", aboutPage, c.PageForAuthenticated()); err != nil {
		return err
	}
	if err := c.RegisterStaticPage("preferences", preferencesPage); err != nil {
		return err
	}
	if err := c.RegisterAction("preferences", web.AllowMethods(app.preferences, web.MethodPost)); err != nil {
		return err
	}

	usersMenu, err := users.Menu(menus.WithIcon("fas fa-users"))
	if err != nil {
		return err
	}
	usersAside, err := users.AsideMenu()
	if err != nil {
		return err
	}
	groupsAside, err := groups.AsideMenu()
	if err != nil {
		return err
	}
	about, err := menus.Aside("About", menus.QueryOf("page", "about"))
	if err != nil {
		return err
	}
	header, err := menus.AsideHeader("Administration", []*menus.Menu{usersAside, groupsAside, about})
	if err != nil {
		return err
	}
	if err := c.RegisterAsideMenus("admin", header); err != nil {
		return err
	}
	admin, err := menus.Toolbar("Administration", menus.QueryOf("page", "aside-menu", "aside", "admin"),
		menus.HiddenWhen(fields.Expr("!authenticated")))
	if err != nil {
		return err
	}
	if err := c.RegisterToolbarLeftMenus(usersMenu, admin); err != nil {
		return err
	}

	prefs, err := menus.Toolbar("Preferences", menus.QueryOf("page", "preferences"))
	if err != nil {
		return err
	}
	docs, err := menus.ToolbarURL("Documentation", "https://htmx.org/docs/", menus.WithTooltip("htmx documentation"))
	if err != nil {
		return err
	}
	settings, err := menus.Dropdown("Settings", []*menus.Menu{prefs, menus.Divider(), docs})
	if err != nil {
		return err
	}
	return c.RegisterToolbarRightMenus(settings)
}

// preferences stores the language or theme posted by the preferences page
// and reloads the document.
func (app *application) preferences(_ context.Context, req *web.Request) (*web.Response, error) {
	if lang := req.Query.Get("lang"); lang != "" {
		req.Session.Lang = translation.Normalize(lang)
	}
	if th, ok := req.Query["theme"]; ok {
		req.Session.Theme = th[0]
	}
	app.logger.Debug("preferences", "lang", req.Session.Lang, "theme", req.Session.Theme)
	return web.NewResponse("").Redirect(req.CurrentURLPath()), nil
}

const aboutPage = `<section class="section"><div class="content">
<h1 class="title">About</h1>
<p>This server shows the crudui toolkit over an in-memory store.</p>
</div></section>`

const preferencesPage = `<section class="section">
<h1 class="title">Preferences</h1>
<h2 class="subtitle">Language</h2>
<div class="buttons">
<button class="button" hx-post="{{ base_url }}/action/preferences?lang=en">English</button>
<button class="button" hx-post="{{ base_url }}/action/preferences?lang=fr">French</button>
</div>
<h2 class="subtitle">Theme</h2>
<div class="buttons">
<button class="button" hx-post="{{ base_url }}/action/preferences?theme=">Light</button>
<button class="button is-dark" hx-post="{{ base_url }}/action/preferences?theme=crudui:dark">Dark</button>
</div>
</section>`

package client

import (
	"log/slog"

	"github.com/goliatone/go-crudui/pkg/render/template/gotemplate"
	"github.com/goliatone/go-crudui/pkg/session"
	"github.com/goliatone/go-crudui/pkg/themes"
	"github.com/goliatone/go-crudui/pkg/translation"
	"github.com/goliatone/go-crudui/pkg/uischema"
	"github.com/goliatone/go-crudui/pkg/visibility"
	"github.com/goliatone/go-crudui/pkg/widgets"
)

// Default external assets of the document.
const (
	BulmaCSS = "https://cdn.jsdelivr.net/npm/bulma@1.0.2/css/bulma.min.css"
	HtmxJS   = "https://unpkg.com/htmx.org@2.0.3"
)

// CSRFSessionKey is the session data key holding the CSRF token of the
// current request. Host adapters set it before calling the client.
const CSRFSessionKey = "csrf_token"

// Option configures a Client.
type Option func(*config)

type config struct {
	title          string
	baseURL        string
	logger         *slog.Logger
	translations   *translation.Store
	auth           session.Authenticator
	themes         *themes.Registry
	evaluator      visibility.Evaluator
	widgets        *widgets.Registry
	overlays       *uischema.Store
	rendererOpts   []gotemplate.Option
	stylesheets    []string
	scripts        []string
	csrfField      string
	csrfHeader     string
	catalogVersion string
}

// WithTitle sets the document title and toolbar brand.
func WithTitle(title string) Option {
	return func(c *config) { c.title = title }
}

// WithBaseURL sets the path prefix of the action and static urls.
func WithBaseURL(base string) Option {
	return func(c *config) { c.baseURL = base }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTranslation uses store for template, field and menu translations.
func WithTranslation(store *translation.Store) Option {
	return func(c *config) { c.translations = store }
}

// WithAuthenticator enables the login, signup and logout workflows.
func WithAuthenticator(auth session.Authenticator) Option {
	return func(c *config) { c.auth = auth }
}

// WithThemes selects the document stylesheet from the session theme.
func WithThemes(reg *themes.Registry) Option {
	return func(c *config) { c.themes = reg }
}

// WithEvaluator replaces the expression evaluator of field predicates.
func WithEvaluator(ev visibility.Evaluator) Option {
	return func(c *config) { c.evaluator = ev }
}

// WithWidgets replaces the widget registry resolving field templates.
func WithWidgets(reg *widgets.Registry) Option {
	return func(c *config) { c.widgets = reg }
}

// WithOverlays applies the uischema overlays to every registered resource
// and menu.
func WithOverlays(store *uischema.Store) Option {
	return func(c *config) { c.overlays = store }
}

// WithRenderer passes options to the pongo2 engines rendering templates.
func WithRenderer(opts ...gotemplate.Option) Option {
	return func(c *config) { c.rendererOpts = append(c.rendererOpts, opts...) }
}

// WithExternalAssets replaces the stylesheets and scripts loaded from a
// CDN. Themes add their own stylesheet.
func WithExternalAssets(stylesheets, scripts []string) Option {
	return func(c *config) {
		c.stylesheets = stylesheets
		c.scripts = scripts
	}
}

// WithCSRF names the form field and the header carrying the token stored
// under CSRFSessionKey.
func WithCSRF(field, header string) Option {
	return func(c *config) {
		c.csrfField = field
		c.csrfHeader = header
	}
}

// WithCatalogVersion sets the Project-Id-Version of exported catalogs.
func WithCatalogVersion(version string) Option {
	return func(c *config) { c.catalogVersion = version }
}

package uischema

// Store keeps the overlays parsed from UI schema documents. It is safe for
// concurrent readers when treated as immutable after construction.
type Store struct {
	resources map[string]ResourceConfig
	menus     map[string]MenuConfig
}

// ResourceConfig overrides a resource declared in Go.
type ResourceConfig struct {
	Label       string                 `json:"label" yaml:"label"`
	MenuLabel   string                 `json:"menuLabel" yaml:"menuLabel"`
	DefaultView string                 `json:"defaultView" yaml:"defaultView"`
	Fields      map[string]FieldConfig `json:"fields" yaml:"fields"`
	Views       map[string]ViewConfig  `json:"views" yaml:"views"`
	Source      string                 `json:"-" yaml:"-"`
}

// FieldConfig overrides the non-empty attributes of a field. Predicates use
// the ParsePredicate syntax.
type FieldConfig struct {
	Label       string         `json:"label,omitempty" yaml:"label,omitempty"`
	Kind        string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Widget      string         `json:"widget,omitempty" yaml:"widget,omitempty"`
	Format      string         `json:"format,omitempty" yaml:"format,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Placeholder string         `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required    string         `json:"required,omitempty" yaml:"required,omitempty"`
	Readonly    string         `json:"readonly,omitempty" yaml:"readonly,omitempty"`
	Invisible   string         `json:"invisible,omitempty" yaml:"invisible,omitempty"`
	Default     any            `json:"default,omitempty" yaml:"default,omitempty"`
	Choices     []ChoiceConfig `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// ChoiceConfig is one option of a select field.
type ChoiceConfig struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// SectionConfig names a template id or holds inline markup.
type SectionConfig struct {
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Markup string `json:"markup,omitempty" yaml:"markup,omitempty"`
}

// ViewConfig overrides one view. Kind is only needed for views the Go
// declaration does not know.
type ViewConfig struct {
	Kind                   string                 `json:"kind,omitempty" yaml:"kind,omitempty"`
	Label                  string                 `json:"label,omitempty" yaml:"label,omitempty"`
	Limit                  int                    `json:"limit,omitempty" yaml:"limit,omitempty"`
	Layout                 string                 `json:"layout,omitempty" yaml:"layout,omitempty"`
	Filters                []string               `json:"filters,omitempty" yaml:"filters,omitempty"`
	CreateButtonRedirectTo string                 `json:"createButtonRedirectTo,omitempty" yaml:"createButtonRedirectTo,omitempty"`
	DeleteButtonRedirectTo string                 `json:"deleteButtonRedirectTo,omitempty" yaml:"deleteButtonRedirectTo,omitempty"`
	EditButtonRedirectTo   string                 `json:"editButtonRedirectTo,omitempty" yaml:"editButtonRedirectTo,omitempty"`
	ReturnButtonRedirectTo string                 `json:"returnButtonRedirectTo,omitempty" yaml:"returnButtonRedirectTo,omitempty"`
	CancelButtonRedirectTo string                 `json:"cancelButtonRedirectTo,omitempty" yaml:"cancelButtonRedirectTo,omitempty"`
	OpenEntryRedirectTo    string                 `json:"openEntryRedirectTo,omitempty" yaml:"openEntryRedirectTo,omitempty"`
	AfterCreateRedirectTo  string                 `json:"afterCreateRedirectTo,omitempty" yaml:"afterCreateRedirectTo,omitempty"`
	AfterUpdateRedirectTo  string                 `json:"afterUpdateRedirectTo,omitempty" yaml:"afterUpdateRedirectTo,omitempty"`
	AfterDeleteRedirectTo  string                 `json:"afterDeleteRedirectTo,omitempty" yaml:"afterDeleteRedirectTo,omitempty"`
	Header                 SectionConfig          `json:"header,omitempty" yaml:"header,omitempty"`
	Body                   SectionConfig          `json:"body,omitempty" yaml:"body,omitempty"`
	Footer                 SectionConfig          `json:"footer,omitempty" yaml:"footer,omitempty"`
	Fields                 map[string]FieldConfig `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// MenuConfig overrides a menu found by its translation context.
type MenuConfig struct {
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	Tooltip string `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
	// Icon is an icon class list or icon markup, sanitized on load.
	Icon   string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Source string `json:"-" yaml:"-"`
}

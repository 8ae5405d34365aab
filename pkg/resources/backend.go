package resources

import (
	"context"

	"github.com/goliatone/go-crudui/pkg/forms"
)

// Row is one entry of a resource, keyed by field name.
type Row = map[string]any

// Page is one window of a filtered listing. Total counts every entry
// matching the filters, not only the returned rows.
type Page struct {
	Total int
	Rows  []Row
}

// Lister returns the entries of a list view. It is the only contract every
// resource with a list view must implement.
type Lister interface {
	List(ctx context.Context, spec forms.Spec, filters []Filter, offset, limit int) (Page, error)
}

// Creator stores a new entry and returns its primary key.
type Creator interface {
	Create(ctx context.Context, form *forms.Form) (string, error)
}

// Reader loads one entry. A missing entry is a nil row and no error.
type Reader interface {
	Read(ctx context.Context, spec forms.Spec, pk string) (Row, error)
}

// Updater saves edited entries.
type Updater interface {
	Update(ctx context.Context, forms []*forms.Form) error
}

// Deleter removes entries by primary key.
type Deleter interface {
	Delete(ctx context.Context, pks []string) error
}

// Labeler names entries for the delete confirmation. Without it the
// primary keys are shown.
type Labeler interface {
	Labels(ctx context.Context, pks []string) ([]string, error)
}

// Package memstore is an in-memory resource backend. It keeps entries in
// insertion order and records the calls it receives, which makes it the
// backend of the example server and of the resource tests.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-crudui/pkg/fields"
	"github.com/goliatone/go-crudui/pkg/forms"
	"github.com/goliatone/go-crudui/pkg/resources"
)

// ErrNotFound is returned when updating or deleting a missing entry.
var ErrNotFound = errors.New("memstore: entry not found")

// ErrDuplicate is returned when creating an entry with a known key.
var ErrDuplicate = errors.New("memstore: duplicate entry")

// Call is one recorded backend call.
type Call struct {
	Op  string
	PKs []string
}

// Store implements every backend contract of the resources package.
type Store struct {
	mu    sync.RWMutex
	pk    string
	label string
	order []string
	rows  map[string]resources.Row
	calls []Call
}

// New returns an empty store keyed by the pk field. Entries are named by
// their label field in delete confirmations.
func New(pk, label string) *Store {
	return &Store{pk: pk, label: label, rows: make(map[string]resources.Row)}
}

// Insert adds rows, generating a uuid for those without key.
func (s *Store) Insert(rows ...resources.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		if _, err := s.insertLocked(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertLocked(row resources.Row) (string, error) {
	row = maps.Clone(row)
	pk := fields.FormatValue(row[s.pk])
	if pk == "" {
		pk = uuid.NewString()
		row[s.pk] = pk
	}
	if _, ok := s.rows[pk]; ok {
		return "", fmt.Errorf("%w: %q", ErrDuplicate, pk)
	}
	s.rows[pk] = row
	s.order = append(s.order, pk)
	return pk, nil
}

// Calls returns the recorded calls.
func (s *Store) Calls() []Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.calls)
}

// Len counts the stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Store) record(op string, pks ...string) {
	s.calls = append(s.calls, Call{Op: op, PKs: slices.Clone(pks)})
}

// List returns the window [offset, offset+limit) of the matching entries.
func (s *Store) List(_ context.Context, _ forms.Spec, filters []resources.Filter, offset, limit int) (resources.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("list", strconv.Itoa(offset), strconv.Itoa(limit))

	var matched []resources.Row
	for _, pk := range s.order {
		row := s.rows[pk]
		if matchAll(row, filters) {
			matched = append(matched, row)
		}
	}
	page := resources.Page{Total: len(matched)}
	if offset >= len(matched) {
		return page, nil
	}
	end := len(matched)
	if limit > 0 {
		end = min(end, offset+limit)
	}
	for _, row := range matched[offset:end] {
		page.Rows = append(page.Rows, maps.Clone(row))
	}
	return page, nil
}

// Create stores the form values.
func (s *Store) Create(_ context.Context, form *forms.Form) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pk, err := s.insertLocked(form.Values)
	if err != nil {
		return "", err
	}
	s.record("create", pk)
	return pk, nil
}

// Read returns a copy of the entry, nil when missing.
func (s *Store) Read(_ context.Context, _ forms.Spec, pk string) (resources.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("read", pk)
	row, ok := s.rows[pk]
	if !ok {
		return nil, nil
	}
	return maps.Clone(row), nil
}

// Update merges the values of each form into its entry. Nothing is written
// when one entry is missing.
func (s *Store) Update(_ context.Context, list []*forms.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pks := make([]string, 0, len(list))
	for _, form := range list {
		pk := form.PK()
		if _, ok := s.rows[pk]; !ok {
			return fmt.Errorf("%w: %q", ErrNotFound, pk)
		}
		pks = append(pks, pk)
	}
	for i, form := range list {
		maps.Copy(s.rows[pks[i]], form.Values)
	}
	s.record("update", pks...)
	return nil
}

// Delete removes the entries. Nothing is removed when one is missing.
func (s *Store) Delete(_ context.Context, pks []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pk := range pks {
		if _, ok := s.rows[pk]; !ok {
			return fmt.Errorf("%w: %q", ErrNotFound, pk)
		}
	}
	for _, pk := range pks {
		delete(s.rows, pk)
	}
	s.order = slices.DeleteFunc(s.order, func(pk string) bool {
		return slices.Contains(pks, pk)
	})
	s.record("delete", pks...)
	return nil
}

// Labels names the entries by their label field.
func (s *Store) Labels(_ context.Context, pks []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(pks))
	for _, pk := range pks {
		label := pk
		if row, ok := s.rows[pk]; ok && s.label != "" {
			if v := fields.FormatValue(row[s.label]); v != "" {
				label = v
			}
		}
		out = append(out, label)
	}
	return out, nil
}

func matchAll(row resources.Row, filters []resources.Filter) bool {
	for _, f := range filters {
		if !match(fields.FormatValue(row[f.Field]), f) {
			return false
		}
	}
	return true
}

// match applies one filter. The values of eq and contains filters are
// alternatives; ne excludes every value.
func match(got string, f resources.Filter) bool {
	if f.Operator == resources.OpNotEqual {
		return !slices.Contains(f.Values, got)
	}
	for _, want := range f.Values {
		if matchOne(got, f.Operator, want) {
			return true
		}
	}
	return false
}

func matchOne(got, op, want string) bool {
	switch op {
	case resources.OpEqual:
		return got == want
	case resources.OpContains:
		return strings.Contains(strings.ToLower(got), strings.ToLower(want))
	}
	c := compare(got, want)
	switch op {
	case resources.OpLess:
		return c < 0
	case resources.OpLessEqual:
		return c <= 0
	case resources.OpGreater:
		return c > 0
	case resources.OpGreaterEqual:
		return c >= 0
	}
	return false
}

// compare orders numbers numerically and anything else lexically.
func compare(a, b string) int {
	x, errA := strconv.ParseFloat(a, 64)
	y, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

var (
	_ resources.Lister  = (*Store)(nil)
	_ resources.Creator = (*Store)(nil)
	_ resources.Reader  = (*Store)(nil)
	_ resources.Updater = (*Store)(nil)
	_ resources.Deleter = (*Store)(nil)
	_ resources.Labeler = (*Store)(nil)
)

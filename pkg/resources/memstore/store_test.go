package memstore_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudui/pkg/forms"
	"github.com/goliatone/go-crudui/pkg/resources"
	"github.com/goliatone/go-crudui/pkg/resources/memstore"
)

func seeded(t *testing.T) *memstore.Store {
	t.Helper()
	store := memstore.New("id", "name")
	for i, name := range []string{"alice", "bob", "carol", "dave"} {
		row := resources.Row{"id": name, "name": name, "age": int64(20 + i*10)}
		if err := store.Insert(row); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return store
}

func pks(page resources.Page) []string {
	out := make([]string, 0, len(page.Rows))
	for _, row := range page.Rows {
		out = append(out, row["id"].(string))
	}
	return out
}

func TestListFilters(t *testing.T) {
	store := seeded(t)
	cases := []struct {
		name    string
		filters []resources.Filter
		want    []string
	}{
		{"none", nil, []string{"alice", "bob", "carol", "dave"}},
		{"eq alternatives", []resources.Filter{{Field: "name", Operator: resources.OpEqual, Values: []string{"bob", "dave"}}}, []string{"bob", "dave"}},
		{"ne", []resources.Filter{{Field: "name", Operator: resources.OpNotEqual, Values: []string{"bob", "dave"}}}, []string{"alice", "carol"}},
		{"contains", []resources.Filter{{Field: "name", Operator: resources.OpContains, Values: []string{"AR"}}}, []string{"carol"}},
		{"numeric gte", []resources.Filter{{Field: "age", Operator: resources.OpGreaterEqual, Values: []string{"40"}}}, []string{"carol", "dave"}},
		{"numeric lt", []resources.Filter{{Field: "age", Operator: resources.OpLess, Values: []string{"9"}}}, []string{}},
		{"and", []resources.Filter{
			{Field: "age", Operator: resources.OpGreater, Values: []string{"20"}},
			{Field: "name", Operator: resources.OpLessEqual, Values: []string{"carol"}},
		}, []string{"bob", "carol"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := store.List(context.Background(), forms.Spec{}, tc.filters, 0, 10)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if diff := cmp.Diff(tc.want, pks(page)); diff != "" {
				t.Fatalf("rows mismatch (-want +got):\n%s", diff)
			}
			if page.Total != len(tc.want) {
				t.Fatalf("total = %d, want %d", page.Total, len(tc.want))
			}
		})
	}
}

func TestListWindow(t *testing.T) {
	store := memstore.New("id", "")
	for i := range 45 {
		if err := store.Insert(resources.Row{"id": strconv.Itoa(i)}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	page, err := store.List(context.Background(), forms.Spec{}, nil, 40, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]string{"40", "41", "42", "43", "44"}, pks(page)); diff != "" {
		t.Fatalf("window mismatch (-want +got):\n%s", diff)
	}
	page, _ = store.List(context.Background(), forms.Spec{}, nil, 60, 20)
	if len(page.Rows) != 0 || page.Total != 45 {
		t.Fatalf("past the end: %d rows, total %d", len(page.Rows), page.Total)
	}
}

func TestWritesAreAtomic(t *testing.T) {
	store := seeded(t)
	ctx := context.Background()

	if err := store.Delete(ctx, []string{"alice", "zed"}); !errors.Is(err, memstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.Len() != 4 {
		t.Fatalf("partial delete: %d entries left", store.Len())
	}

	spec := forms.Spec{PK: "id"}
	if err := store.Insert(resources.Row{"id": "bob"}); !errors.Is(err, memstore.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := store.Update(ctx, []*forms.Form{spec.New(map[string]any{"id": "bob", "age": int64(99)})}); err != nil {
		t.Fatalf("update: %v", err)
	}
	row, _ := store.Read(ctx, spec, "bob")
	if row["age"] != int64(99) || row["name"] != "bob" {
		t.Fatalf("update merged to %v", row)
	}
	missing, err := store.Read(ctx, spec, "zed")
	if err != nil || missing != nil {
		t.Fatalf("missing read = %v, %v", missing, err)
	}

	pk, err := store.Create(ctx, spec.New(map[string]any{"name": "erin"}))
	if err != nil || pk == "" {
		t.Fatalf("create = %q, %v", pk, err)
	}
	labels, _ := store.Labels(ctx, []string{pk, "nobody"})
	if diff := cmp.Diff([]string{"erin", "nobody"}, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}

	var ops []string
	for _, c := range store.Calls() {
		ops = append(ops, c.Op)
	}
	if diff := cmp.Diff([]string{"update", "read", "read", "create"}, ops); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

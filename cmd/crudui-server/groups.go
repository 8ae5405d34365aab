package main

import (
	"context"
	_ "embed"

	"github.com/goliatone/go-crudui/pkg/openapi"
	"github.com/goliatone/go-crudui/pkg/resources"
	"github.com/goliatone/go-crudui/pkg/resources/memstore"
)

//go:embed groups.yaml
var groupsDocument []byte

// groupResource declares the group resource from the request body of the
// createGroup operation.
func groupResource(ctx context.Context, store *memstore.Store, security resources.PageSecurity) (*resources.Resource, error) {
	doc, err := openapi.Parse(ctx, groupsDocument)
	if err != nil {
		return nil, err
	}
	schema, err := openapi.OperationSchema(doc, "createGroup")
	if err != nil {
		return nil, err
	}
	spec, err := openapi.Spec("group", "code", schema)
	if err != nil {
		return nil, err
	}
	return &resources.Resource{
		Code:      "group",
		Label:     "Group",
		MenuLabel: "Groups",
		PK:        spec.PK,
		Fields:    spec.Fields,
		Views: []resources.ViewConfig{
			{
				Kind:                   resources.KindList,
				Label:                  "Groups",
				CreateButtonRedirectTo: "create",
				DeleteButtonRedirectTo: "delete",
				OpenEntryRedirectTo:    "read",
				Filters:                []string{"name", "visibility"},
			},
			{Kind: resources.KindCreate, AfterCreateRedirectTo: "read", CancelButtonRedirectTo: "list"},
			{Kind: resources.KindRead, EditButtonRedirectTo: "edit", DeleteButtonRedirectTo: "delete", ReturnButtonRedirectTo: "list"},
			{Kind: resources.KindEdit, AfterUpdateRedirectTo: "read", CancelButtonRedirectTo: "read"},
			{Kind: resources.KindDelete, AfterDeleteRedirectTo: "list", CancelButtonRedirectTo: "list"},
		},
		Backend:        store,
		PageSecurity:   security,
		ActionSecurity: resources.ActionForAuthenticated,
	}, nil
}

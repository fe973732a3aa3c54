package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/auth"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
	"github.com/iyhunko/storefront-backoffice/internal/repository/memory"
	"github.com/iyhunko/storefront-backoffice/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func adminContext() context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{UserID: uuid.New(), Name: "Admin", IsAdmin: true})
}

func userContext(userID uuid.UUID) context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{UserID: userID, Name: "Cliente"})
}

func createCategory(t *testing.T, store *memory.Store, name, slug string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name, Slug: slug}
	require.NoError(t, store.Categories().Create(context.Background(), category))
	return category
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func productInput(name string, categoryID uuid.UUID) service.ProductInput {
	return service.ProductInput{
		Name:        strPtr(name),
		Description: strPtr("Peça artesanal em prata 925."),
		Price:       decPtr("199.90"),
		CategoryID:  &categoryID,
		Stock:       intPtr(10),
	}
}

func auditEntries(t *testing.T, store *memory.Store, recordID uuid.UUID) []*model.AuditLog {
	t.Helper()
	entries, err := store.AuditLogs().List(context.Background(), repository.AuditQuery{
		RecordID:   &recordID,
		Pagination: repository.NewPagination(1, 100),
	})
	require.NoError(t, err)
	return entries
}

func allAuditEntries(t *testing.T, store *memory.Store) []*model.AuditLog {
	t.Helper()
	entries, err := store.AuditLogs().List(context.Background(), repository.AuditQuery{
		Pagination: repository.NewPagination(1, 100),
	})
	require.NoError(t, err)
	return entries
}

func pendingEvents(t *testing.T, store *memory.Store) []*model.Event {
	t.Helper()
	events, err := store.Events().ListPending(context.Background(), 100)
	require.NoError(t, err)
	return events
}

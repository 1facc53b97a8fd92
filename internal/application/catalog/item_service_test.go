package catalog

import (
	"context"
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemService_Lifecycle(t *testing.T) {
	l := testutil.NewLedger(t)
	svc := NewItemService(l.Scope, nil)
	ctx := context.Background()

	tenant := l.SeedTenant(t, "ACME")
	gst := l.SeedTax(t, tenant.ID, "GST", "18")

	item, err := svc.Create(ctx, tenant.ID, CreateItemRequest{Name: "Widget", UQC: "NOS", TaxID: &gst.ID, HSNCode: "8471"})
	require.NoError(t, err)
	assert.Equal(t, "Widget", item.Name)
	require.NotNil(t, item.TaxID)
	assert.Equal(t, gst.ID, *item.TaxID)
	assert.False(t, item.Deleted)

	require.NoError(t, svc.Delete(ctx, tenant.ID, item.ID))

	got, err := svc.Get(ctx, tenant.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)

	assert.ErrorIs(t, svc.Delete(ctx, tenant.ID, item.ID), shared.ErrInvalidState)
}

func TestItemService_CreateValidation(t *testing.T) {
	l := testutil.NewLedger(t)
	svc := NewItemService(l.Scope, nil)
	ctx := context.Background()

	tenant := l.SeedTenant(t, "ACME")
	other := l.SeedTenant(t, "OTHER")
	foreignTax := l.SeedTax(t, other.ID, "VAT", "5")

	_, err := svc.Create(ctx, tenant.ID, CreateItemRequest{Name: ""})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, tenant.ID, CreateItemRequest{Name: "Widget", TaxID: &foreignTax.ID})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Create(ctx, uuid.New(), CreateItemRequest{Name: "Widget"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestItemService_GetOtherTenant(t *testing.T) {
	l := testutil.NewLedger(t)
	svc := NewItemService(l.Scope, nil)

	tenant := l.SeedTenant(t, "ACME")
	other := l.SeedTenant(t, "OTHER")
	item := l.SeedItem(t, tenant.ID, "Widget", nil)

	_, err := svc.Get(context.Background(), other.ID, item.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

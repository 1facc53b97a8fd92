package identity

import (
	"context"
	"testing"

	appshared "github.com/erp/ledger/internal/application/shared"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/erp/ledger/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantService_Create(t *testing.T) {
	l := testutil.NewLedger(t)
	svc := NewTenantService(l.Scope, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTenantRequest{Code: " acme ", Name: "Acme Traders"})
	require.NoError(t, err)
	assert.Equal(t, "ACME", created.Code)
	assert.Equal(t, string(tax.LevelItem), created.TaxLevel)
	assert.False(t, created.AllowNegativeStock)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Create(ctx, CreateTenantRequest{Code: "ACME", Name: "Second"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, CreateTenantRequest{Code: "", Name: "Nameless"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTenantService_UpdateSettings(t *testing.T) {
	l := testutil.NewLedger(t)
	svc := NewTenantService(l.Scope, nil)
	ctx := context.Background()

	tenant := l.SeedTenant(t, "ACME")
	gst := l.SeedTax(t, tenant.ID, "GST", "18")

	t.Run("account level needs a default tax", func(t *testing.T) {
		_, err := svc.UpdateSettings(ctx, tenant.ID, TenantSettingsRequest{TaxLevel: "account"})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("default tax must belong to the tenant", func(t *testing.T) {
		foreign := l.SeedTax(t, l.SeedTenant(t, "OTHER").ID, "VAT", "5")
		_, err := svc.UpdateSettings(ctx, tenant.ID, TenantSettingsRequest{TaxLevel: "account", DefaultTaxID: &foreign.ID})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("account level with default", func(t *testing.T) {
		resp, err := svc.UpdateSettings(ctx, tenant.ID, TenantSettingsRequest{
			AllowNegativeStock: true,
			TaxLevel:           "ACCOUNT",
			DefaultTaxID:       &gst.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, string(tax.LevelAccount), resp.TaxLevel)
		assert.True(t, resp.AllowNegativeStock)
		require.NotNil(t, resp.DefaultTaxID)
		assert.Equal(t, gst.ID, *resp.DefaultTaxID)
	})

	t.Run("inactive default tax", func(t *testing.T) {
		old := l.SeedTax(t, tenant.ID, "Old", "12")
		old.Deactivate()
		require.NoError(t, l.Scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
			return repos.Taxes().Save(ctx, old)
		}))
		_, err := svc.UpdateSettings(ctx, tenant.ID, TenantSettingsRequest{TaxLevel: "bill", DefaultTaxID: &old.ID})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

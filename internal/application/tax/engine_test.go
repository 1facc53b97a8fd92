package tax

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/ledger/internal/domain/identity"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockTaxRepository struct {
	mock.Mock
}

func (m *MockTaxRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*tax.Tax, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tax.Tax), args.Error(1)
}

func (m *MockTaxRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*tax.Tax, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*tax.Tax), args.Error(1)
}

func (m *MockTaxRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]*tax.Tax, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tax.Tax), args.Error(1)
}

func (m *MockTaxRepository) Save(ctx context.Context, t *tax.Tax) error {
	return m.Called(ctx, t).Error(0)
}

func gst(t *testing.T, tenantID uuid.UUID) *tax.Tax {
	t.Helper()
	g, err := tax.NewTax(tenantID, "GST 18%", []tax.SubRate{
		{Name: "CGST", Rate: decimal.NewFromInt(9)},
		{Name: "SGST", Rate: decimal.NewFromInt(9)},
	}, "IN")
	require.NoError(t, err)
	return g
}

func tenantAt(t *testing.T, level tax.ApplicationLevel, defaultTax *uuid.UUID) *identity.Tenant {
	t.Helper()
	tenant, err := identity.NewTenant("ACME", "Acme Traders")
	require.NoError(t, err)
	require.NoError(t, tenant.UpdateSettings(identity.TenantSettings{TaxLevel: level, DefaultTaxID: defaultTax}))
	return tenant
}

func TestEngine_ResolveRate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("nil reference is zero", func(t *testing.T) {
		rate, err := NewEngine(nil).ResolveRate(ctx, new(MockTaxRepository), tenantID, nil)
		require.NoError(t, err)
		assert.True(t, rate.IsZero())
	})

	t.Run("sums sub-rates", func(t *testing.T) {
		g := gst(t, tenantID)
		repo := new(MockTaxRepository)
		repo.On("FindByIDForTenant", ctx, tenantID, g.ID).Return(g, nil)

		rate, err := NewEngine(nil).ResolveRate(ctx, repo, tenantID, &g.ID)
		require.NoError(t, err)
		assert.Equal(t, "18", rate.String())
	})

	t.Run("unknown reference warns and is zero", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		missing := uuid.New()
		repo := new(MockTaxRepository)
		repo.On("FindByIDForTenant", ctx, tenantID, missing).Return(nil, shared.NewNotFoundError("tax", missing))

		rate, err := NewEngine(zap.New(core)).ResolveRate(ctx, repo, tenantID, &missing)
		require.NoError(t, err)
		assert.True(t, rate.IsZero())
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "tax reference not found, using zero rate", logs.All()[0].Message)
	})

	t.Run("storage errors propagate", func(t *testing.T) {
		ref := uuid.New()
		repo := new(MockTaxRepository)
		repo.On("FindByIDForTenant", ctx, tenantID, ref).Return(nil, errors.New("connection reset"))

		_, err := NewEngine(nil).ResolveRate(ctx, repo, tenantID, &ref)
		assert.Error(t, err)
	})
}

func TestEngine_DocumentRate(t *testing.T) {
	ctx := context.Background()

	t.Run("item level refuses a document tax", func(t *testing.T) {
		tenant := tenantAt(t, tax.LevelItem, nil)
		ref := uuid.New()
		_, _, err := NewEngine(nil).DocumentRate(ctx, new(MockTaxRepository), tenant, &ref)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("bill level snapshots the document tax", func(t *testing.T) {
		tenant := tenantAt(t, tax.LevelBill, nil)
		g := gst(t, tenant.ID)
		repo := new(MockTaxRepository)
		repo.On("FindByIDForTenant", ctx, tenant.ID, g.ID).Return(g, nil)

		id, rate, err := NewEngine(nil).DocumentRate(ctx, repo, tenant, &g.ID)
		require.NoError(t, err)
		assert.Equal(t, g.ID, *id)
		assert.Equal(t, "18", rate.String())
	})

	t.Run("bill level rejects foreign taxes", func(t *testing.T) {
		tenant := tenantAt(t, tax.LevelBill, nil)
		ref := uuid.New()
		repo := new(MockTaxRepository)
		repo.On("FindByIDForTenant", ctx, tenant.ID, ref).Return(nil, shared.ErrNotFound)

		_, _, err := NewEngine(nil).DocumentRate(ctx, repo, tenant, &ref)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("account level uses the tenant default", func(t *testing.T) {
		defaultTax := uuid.New()
		tenant := tenantAt(t, tax.LevelAccount, &defaultTax)
		g := gst(t, tenant.ID)
		repo := new(MockTaxRepository)
		repo.On("FindByIDForTenant", ctx, tenant.ID, defaultTax).Return(g, nil)

		id, rate, err := NewEngine(nil).DocumentRate(ctx, repo, tenant, nil)
		require.NoError(t, err)
		assert.Equal(t, defaultTax, *id)
		assert.Equal(t, "18", rate.String())
	})
}

func TestEngine_DocumentTax(t *testing.T) {
	e := NewEngine(nil)
	line := tax.TaxableLine{Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100), Rate: decimal.NewFromInt(18)}

	assert.Equal(t, "36", e.LineTax(line.Quantity, line.UnitPrice, line.Rate).String())

	totals := e.DocumentTax([]tax.TaxableLine{line, line}, decimal.Zero, tax.LevelItem, decimal.Zero)
	assert.Equal(t, "400", totals.Subtotal.String())
	assert.Equal(t, "72", totals.Tax.String())
	assert.Equal(t, "472", totals.Total.String())
}

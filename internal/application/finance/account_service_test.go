package finance

import (
	"context"
	"testing"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_SeedChartOfAccounts(t *testing.T) {
	f := newFinanceFixture(t)
	ctx := context.Background()

	assert.Len(t, f.chart, len(finance.DefaultChart))

	again, err := f.accounts.SeedChartOfAccounts(ctx, f.tenant.ID)
	require.NoError(t, err)
	assert.Empty(t, again, "seeding twice creates nothing")

	accounts, err := f.accounts.ListAccounts(ctx, f.tenant.ID)
	require.NoError(t, err)
	require.Len(t, accounts, len(finance.DefaultChart))
	assert.Equal(t, "1000", accounts[0].Code)

	byCode := map[string]AccountResponse{}
	for _, a := range accounts {
		byCode[a.Code] = a
	}
	cash := byCode["1100"]
	assert.Equal(t, string(finance.SystemKeyCash), cash.SystemKey)
	assert.True(t, cash.IsSystem)
	require.NotNil(t, cash.ParentID)
	assert.Equal(t, byCode["1000"].ID, *cash.ParentID)
	assert.Equal(t, string(finance.NormalBalanceDebit), cash.NormalBalance)
	assert.Equal(t, string(finance.NormalBalanceCredit), byCode["4100"].NormalBalance)
}

func TestAccountService_SeedUnknownTenant(t *testing.T) {
	f := newFinanceFixture(t)
	_, err := f.accounts.SeedChartOfAccounts(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAccountService_DeleteAccount(t *testing.T) {
	f := newFinanceFixture(t)
	ctx := context.Background()

	err := f.accounts.DeleteAccount(ctx, f.tenant.ID, f.chart["1100"])
	assert.ErrorIs(t, err, shared.ErrInvalidState, "system account")

	err = f.accounts.DeleteAccount(ctx, f.tenant.ID, f.chart["1000"])
	assert.ErrorIs(t, err, shared.ErrInvalidState, "parent account")

	err = f.accounts.DeleteAccount(ctx, f.tenant.ID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	other := f.SeedTenant(t, "OTHER")
	err = f.accounts.DeleteAccount(ctx, other.ID, f.chart["1100"])
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

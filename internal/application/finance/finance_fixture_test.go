package finance

import (
	"context"
	"testing"

	"github.com/erp/ledger/internal/domain/identity"
	"github.com/erp/ledger/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type financeFixture struct {
	*testutil.Ledger
	accounts *AccountService
	journals *JournalEntryService
	payments *PaymentService
	handler  *JournalRequestHandler
	tenant   *identity.Tenant
	chart    map[string]uuid.UUID
}

func newFinanceFixture(t *testing.T) *financeFixture {
	t.Helper()

	l := testutil.NewLedger(t)
	journals := NewJournalEntryService(l.Scope, nil, l.Logger)
	handler := NewJournalRequestHandler(l.Scope, journals, nil, l.Logger)
	l.Subscribe(handler)

	f := &financeFixture{
		Ledger:   l,
		accounts: NewAccountService(l.Scope, l.Logger),
		journals: journals,
		payments: NewPaymentService(l.Scope, nil, l.Logger),
		handler:  handler,
		tenant:   l.SeedTenant(t, "ACME"),
		chart:    map[string]uuid.UUID{},
	}

	seeded, err := f.accounts.SeedChartOfAccounts(context.Background(), f.tenant.ID)
	require.NoError(t, err)
	for _, a := range seeded {
		f.chart[a.Code] = a.ID
	}
	return f
}

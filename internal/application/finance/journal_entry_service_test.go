package finance

import (
	"context"
	"testing"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *financeFixture) manual(t *testing.T, debitCode, creditCode string, debit, credit string) *JournalEntryResponse {
	t.Helper()
	entry, err := f.journals.CreateManual(context.Background(), f.tenant.ID, CreateManualEntryRequest{
		Description: "owner contribution",
		Lines: []JournalLineInput{
			{AccountID: f.chart[debitCode], Debit: decimal.RequireFromString(debit)},
			{AccountID: f.chart[creditCode], Credit: decimal.RequireFromString(credit)},
		},
	})
	require.NoError(t, err)
	return entry
}

func TestJournalEntryService_ManualLifecycle(t *testing.T) {
	f := newFinanceFixture(t)
	ctx := context.Background()

	draft := f.manual(t, "1100", "3100", "500", "500")
	assert.False(t, draft.IsPosted)
	assert.Equal(t, string(finance.SourceManual), draft.SourceType)
	assert.Equal(t, "JE-0001", draft.EntryNumber)
	require.Len(t, draft.Lines, 2)

	posted, err := f.journals.Post(ctx, f.tenant.ID, draft.ID)
	require.NoError(t, err)
	assert.True(t, posted.IsPosted)
	assert.NotNil(t, posted.PostingDate)

	_, err = f.journals.Post(ctx, f.tenant.ID, draft.ID)
	assert.ErrorIs(t, err, shared.ErrAlreadyPosted)

	mirrorID, err := f.journals.Reverse(ctx, f.tenant.ID, draft.ID, "entered twice")
	require.NoError(t, err)

	original, err := f.journals.Get(ctx, f.tenant.ID, draft.ID)
	require.NoError(t, err)
	assert.True(t, original.IsReversed)
	require.NotNil(t, original.ReversedByID)
	assert.Equal(t, mirrorID, *original.ReversedByID)

	mirror, err := f.journals.Get(ctx, f.tenant.ID, mirrorID)
	require.NoError(t, err)
	assert.True(t, mirror.IsPosted)
	assert.Equal(t, string(finance.SourceReversal), mirror.SourceType)
	require.NotNil(t, mirror.ReversalOfID)
	assert.Equal(t, draft.ID, *mirror.ReversalOfID)
	assert.Equal(t, "JE-0002", mirror.EntryNumber)

	// debits and credits swap line by line
	for i, l := range mirror.Lines {
		assert.Equal(t, original.Lines[i].AccountID, l.AccountID)
		assert.True(t, original.Lines[i].Debit.Equal(l.Credit))
		assert.True(t, original.Lines[i].Credit.Equal(l.Debit))
	}

	_, err = f.journals.Reverse(ctx, f.tenant.ID, draft.ID, "again")
	assert.ErrorIs(t, err, shared.ErrAlreadyReversed)
}

func TestJournalEntryService_UnbalancedDraftCannotPost(t *testing.T) {
	f := newFinanceFixture(t)
	ctx := context.Background()

	draft := f.manual(t, "1100", "3100", "500", "499.99")

	_, err := f.journals.Post(ctx, f.tenant.ID, draft.ID)
	assert.ErrorIs(t, err, shared.ErrUnbalanced)

	got, err := f.journals.Get(ctx, f.tenant.ID, draft.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPosted)
}

func TestJournalEntryService_ReverseNeedsPostedEntry(t *testing.T) {
	f := newFinanceFixture(t)

	draft := f.manual(t, "1100", "3100", "10", "10")
	_, err := f.journals.Reverse(context.Background(), f.tenant.ID, draft.ID, "")
	assert.ErrorIs(t, err, shared.ErrNotPosted)
}

func TestJournalEntryService_CreateManualValidation(t *testing.T) {
	f := newFinanceFixture(t)
	ctx := context.Background()
	other := f.SeedTenant(t, "OTHER")

	tests := []struct {
		name  string
		lines []JournalLineInput
	}{
		{"no lines", nil},
		{"unknown account", []JournalLineInput{
			{AccountID: uuid.New(), Debit: decimal.NewFromInt(1)},
			{AccountID: f.chart["3100"], Credit: decimal.NewFromInt(1)},
		}},
		{"both sides", []JournalLineInput{
			{AccountID: f.chart["1100"], Debit: decimal.NewFromInt(1), Credit: decimal.NewFromInt(1)},
			{AccountID: f.chart["3100"], Credit: decimal.NewFromInt(1)},
		}},
		{"negative", []JournalLineInput{
			{AccountID: f.chart["1100"], Debit: decimal.NewFromInt(-1)},
			{AccountID: f.chart["3100"], Credit: decimal.NewFromInt(1)},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.journals.CreateManual(ctx, f.tenant.ID, CreateManualEntryRequest{Lines: tt.lines})
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}

	t.Run("another tenant's account", func(t *testing.T) {
		_, err := f.journals.CreateManual(ctx, other.ID, CreateManualEntryRequest{Lines: []JournalLineInput{
			{AccountID: f.chart["1100"], Debit: decimal.NewFromInt(1)},
			{AccountID: f.chart["3100"], Credit: decimal.NewFromInt(1)},
		}})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	page, err := f.journals.List(ctx, f.tenant.ID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, page.Total, "rejected entries are not stored")
}

func TestJournalEntryService_GetOtherTenant(t *testing.T) {
	f := newFinanceFixture(t)
	other := f.SeedTenant(t, "OTHER")

	draft := f.manual(t, "1100", "3100", "10", "10")
	_, err := f.journals.Get(context.Background(), other.ID, draft.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

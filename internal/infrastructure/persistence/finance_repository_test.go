package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedChart(t *testing.T, repo *GormAccountRepository, tenantID uuid.UUID) []*finance.Account {
	t.Helper()
	accounts, err := finance.BuildChart(tenantID, finance.DefaultChart, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), accounts...))
	return accounts
}

func TestGormAccountRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormAccountRepository(newSQLiteDB(t))
	tenantID := uuid.New()
	accounts := seedChart(t, repo, tenantID)

	t.Run("lists the chart by code", func(t *testing.T) {
		all, err := repo.FindAllForTenant(ctx, tenantID)
		require.NoError(t, err)
		require.Len(t, all, len(accounts))
		for i := 1; i < len(all); i++ {
			assert.LessOrEqual(t, all[i-1].Code, all[i].Code)
		}
	})

	t.Run("posting chart maps every system key", func(t *testing.T) {
		chart, err := repo.PostingChart(ctx, tenantID)
		require.NoError(t, err)
		for _, a := range accounts {
			if a.SystemKey == finance.SystemKeyNone {
				continue
			}
			assert.Equal(t, a.ID, chart[a.SystemKey], "system key %s", a.SystemKey)
		}
	})

	t.Run("parents have children", func(t *testing.T) {
		var parent *finance.Account
		for _, a := range accounts {
			if a.Code == "1000" {
				parent = a
			}
		}
		require.NotNil(t, parent)
		has, err := repo.HasChildren(ctx, tenantID, parent.ID)
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("delete", func(t *testing.T) {
		extra, err := finance.NewAccount(tenantID, "6100", "Travel", finance.AccountTypeExpense, nil)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, extra))

		require.NoError(t, repo.Delete(ctx, tenantID, extra.ID))
		_, err = repo.FindByIDForTenant(ctx, tenantID, extra.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))

		err = repo.Delete(ctx, tenantID, extra.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func newPostedEntry(t *testing.T, tenantID uuid.UUID, number string, sourceID *uuid.UUID, debitAcct, creditAcct uuid.UUID) *finance.JournalEntry {
	t.Helper()
	entry, err := finance.NewJournalEntry(tenantID, number, time.Now(), finance.SourceSale, sourceID, "sale")
	require.NoError(t, err)
	require.NoError(t, entry.AddLine(debitAcct, decimal.NewFromInt(118), decimal.Zero, nil, ""))
	require.NoError(t, entry.AddLine(creditAcct, decimal.Zero, decimal.NewFromInt(118), nil, ""))
	require.NoError(t, entry.Post(time.Now()))
	return entry
}

func TestGormJournalEntryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormJournalEntryRepository(newSQLiteDB(t))
	tenantID := uuid.New()
	sourceID := uuid.New()
	debit, credit := uuid.New(), uuid.New()

	entry := newPostedEntry(t, tenantID, "JE-0001", &sourceID, debit, credit)
	require.NoError(t, repo.Create(ctx, entry))

	t.Run("round trips lines", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, entry.ID)
		require.NoError(t, err)
		require.Len(t, found.Lines, 2)
		assert.True(t, found.IsPosted)
		assert.True(t, found.IsBalanced())
		assert.Equal(t, debit, found.Lines[0].AccountID)
	})

	t.Run("active by source", func(t *testing.T) {
		found, err := repo.FindActiveBySource(ctx, tenantID, finance.SourceSale, sourceID)
		require.NoError(t, err)
		assert.Equal(t, entry.ID, found.ID)

		_, err = repo.FindActiveBySource(ctx, tenantID, finance.SourcePurchase, sourceID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("reversal links both entries and retires the original", func(t *testing.T) {
		loaded, err := repo.FindByIDForUpdate(ctx, tenantID, entry.ID)
		require.NoError(t, err)
		mirror, err := loaded.Reverse("JE-0002", "test", time.Now())
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, mirror))
		require.NoError(t, repo.Update(ctx, loaded))

		original, err := repo.FindByIDForTenant(ctx, tenantID, entry.ID)
		require.NoError(t, err)
		assert.True(t, original.IsReversed)
		require.NotNil(t, original.ReversedByID)
		assert.Equal(t, mirror.ID, *original.ReversedByID)

		_, err = repo.FindActiveBySource(ctx, tenantID, finance.SourceSale, sourceID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))

		count, err := repo.CountForTenant(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("stale update conflicts", func(t *testing.T) {
		err := repo.Update(ctx, entry)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
	})

	t.Run("list pages without lines", func(t *testing.T) {
		entries, total, err := repo.FindAllForTenant(ctx, tenantID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, entries, 2)
	})
}

func TestGormJournalEntryRepository_FindByIDForUpdate_SQL(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormJournalEntryRepository(db)
	tenantID, id := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "journal_entries" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "entry_number", "is_posted", "version"}).
			AddRow(id, tenantID, "JE-0009", true, 2))
	mock.ExpectQuery(`SELECT \* FROM "journal_entry_lines" WHERE tenant_id = \$1 AND entry_id = \$2 ORDER BY line_no ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "entry_id", "line_no", "debit", "credit"}).
			AddRow(uuid.New(), id, 1, "10.00", "0").
			AddRow(uuid.New(), id, 2, "0", "10.00"))

	entry, err := repo.FindByIDForUpdate(context.Background(), tenantID, id)
	require.NoError(t, err)
	assert.Equal(t, "JE-0009", entry.EntryNumber)
	assert.True(t, entry.IsBalanced())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPaymentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPaymentRepository(newSQLiteDB(t))
	tenantID := uuid.New()

	p, err := finance.NewPayment(tenantID, finance.PaymentReceived, uuid.New(), decimal.NewFromInt(250), time.Now(), finance.PaymentModeBank)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, p))

	t.Run("journal state update", func(t *testing.T) {
		state := p.Journal
		state.Failed("no chart")
		require.NoError(t, repo.UpdateJournalState(ctx, tenantID, p.ID, state))

		found, err := repo.FindByIDForTenant(ctx, tenantID, p.ID, false)
		require.NoError(t, err)
		assert.Equal(t, finance.JournalStatusFailed, found.Journal.Status)
		assert.Equal(t, "no chart", found.Journal.Error)

		backlog, err := repo.CountUnposted(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), backlog)
	})

	t.Run("soft delete", func(t *testing.T) {
		loaded, err := repo.FindByIDForUpdate(ctx, tenantID, p.ID)
		require.NoError(t, err)
		require.NoError(t, loaded.Delete())
		require.NoError(t, repo.Update(ctx, loaded))

		_, err = repo.FindByIDForUpdate(ctx, tenantID, p.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))

		found, err := repo.FindByIDForTenant(ctx, tenantID, p.ID, true)
		require.NoError(t, err)
		assert.True(t, found.IsDeleted())
	})
}

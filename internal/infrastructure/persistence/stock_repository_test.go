package persistence

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormStockRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormStockRepository(db)
	tenantID := uuid.New()
	a, b := uuid.New(), uuid.New()

	t.Run("creates missing records at zero", func(t *testing.T) {
		records, err := repo.LockForUpdate(ctx, tenantID, []uuid.UUID{a, b, a})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.True(t, records[a].Count.IsZero())
		assert.Equal(t, tenantID, records[b].TenantID)
		assert.Equal(t, 1, records[a].Version)
	})

	t.Run("returns existing records without duplicating them", func(t *testing.T) {
		first, err := repo.LockForUpdate(ctx, tenantID, []uuid.UUID{a})
		require.NoError(t, err)
		first[a].Count = decimal.NewFromInt(7)
		require.NoError(t, repo.Save(ctx, first[a]))

		again, err := repo.LockForUpdate(ctx, tenantID, []uuid.UUID{a})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(7).Equal(again[a].Count))
		assert.Equal(t, first[a].ID, again[a].ID)

		var rows int64
		require.NoError(t, db.Table("stocks").Where("tenant_id = ?", tenantID).Count(&rows).Error)
		assert.Equal(t, int64(2), rows)
	})

	t.Run("keeps tenants apart", func(t *testing.T) {
		other := uuid.New()
		records, err := repo.LockForUpdate(ctx, other, []uuid.UUID{a})
		require.NoError(t, err)
		assert.True(t, records[a].Count.IsZero())
	})

	t.Run("empty input", func(t *testing.T) {
		records, err := repo.LockForUpdate(ctx, tenantID, nil)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestGormStockRepository_Save(t *testing.T) {
	ctx := context.Background()
	repo := NewGormStockRepository(newSQLiteDB(t))
	tenantID, itemID := uuid.New(), uuid.New()

	records, err := repo.LockForUpdate(ctx, tenantID, []uuid.UUID{itemID})
	require.NoError(t, err)
	rec := records[itemID]

	t.Run("writes count and advances version", func(t *testing.T) {
		rec.Count = decimal.NewFromInt(5)
		require.NoError(t, repo.Save(ctx, rec))
		assert.Equal(t, 2, rec.Version)

		stored, err := repo.FindByItem(ctx, tenantID, itemID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(5).Equal(stored.Count))
		assert.Equal(t, 2, stored.Version)
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		stale := *rec
		stale.Version = 1
		stale.Count = decimal.NewFromInt(99)
		err := repo.Save(ctx, &stale)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))

		stored, err := repo.FindByItem(ctx, tenantID, itemID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(5).Equal(stored.Count))
	})
}

func TestGormStockRepository_FindByItem_NotFound(t *testing.T) {
	repo := NewGormStockRepository(newSQLiteDB(t))
	_, err := repo.FindByItem(context.Background(), uuid.New(), uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormStockRepository_Count(t *testing.T) {
	ctx := context.Background()
	repo := NewGormStockRepository(newSQLiteDB(t))
	tenantID, itemID := uuid.New(), uuid.New()

	count, err := repo.Count(ctx, tenantID, itemID)
	require.NoError(t, err)
	assert.True(t, count.IsZero())

	records, err := repo.LockForUpdate(ctx, tenantID, []uuid.UUID{itemID})
	require.NoError(t, err)
	records[itemID].Count = decimal.RequireFromString("3.5")
	require.NoError(t, repo.Save(ctx, records[itemID]))

	count, err = repo.Count(ctx, tenantID, itemID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("3.5").Equal(count))
}

func TestGormStockRepository_Save_SQL(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormStockRepository(db)

	rec := inventory.NewStockRecord(uuid.New(), uuid.New())

	t.Run("guards the update with the loaded version", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "stocks" SET .*"version"=version \+ 1.* WHERE id = \$\d+ AND tenant_id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Save(context.Background(), rec))
		assert.Equal(t, 2, rec.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows affected is a conflict", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "stocks" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Save(context.Background(), rec)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
		assert.Equal(t, 2, rec.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormMovementRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormMovementRepository(newSQLiteDB(t))
	tenantID, itemID := uuid.New(), uuid.New()
	sourceID := uuid.New()

	deltas := []string{"10", "-4", "2.5"}
	balance := decimal.Zero
	movements := make([]*inventory.StockMovement, 0, len(deltas))
	for _, d := range deltas {
		q := decimal.RequireFromString(d)
		balance = balance.Add(q)
		movements = append(movements, &inventory.StockMovement{
			ID:           uuid.New(),
			TenantID:     tenantID,
			ItemID:       itemID,
			Delta:        q,
			BalanceAfter: balance,
			SourceType:   inventory.SourceAdjustment,
			SourceID:     sourceID,
			Reason:       "count",
		})
	}
	require.NoError(t, repo.Create(ctx, movements))

	t.Run("sums deltas", func(t *testing.T) {
		sum, err := repo.SumByItem(ctx, tenantID, itemID)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("8.5").Equal(sum))
	})

	t.Run("pages movements", func(t *testing.T) {
		page, total, err := repo.FindByItem(ctx, tenantID, itemID, shared.Filter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, page, 2)
	})

	t.Run("other items are empty", func(t *testing.T) {
		sum, err := repo.SumByItem(ctx, tenantID, uuid.New())
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})
}

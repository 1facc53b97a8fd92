package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/ledger/internal/domain/numbering"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSequenceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSequenceRepository(newSQLiteDB(t))
	tenantID := uuid.New()

	t.Run("missing counter reports not found", func(t *testing.T) {
		_, found, err := repo.Increment(ctx, tenantID, numbering.KindQuote)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("seeded counter increments from the seed", func(t *testing.T) {
		require.NoError(t, repo.Seed(ctx, tenantID, numbering.KindQuote, 4))
		v, found, err := repo.Increment(ctx, tenantID, numbering.KindQuote)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(5), v)
	})

	t.Run("seeding again leaves the counter alone", func(t *testing.T) {
		require.NoError(t, repo.Seed(ctx, tenantID, numbering.KindQuote, 0))
		v, _, err := repo.Increment(ctx, tenantID, numbering.KindQuote)
		require.NoError(t, err)
		assert.Equal(t, int64(6), v)
	})

	t.Run("kinds and tenants are independent", func(t *testing.T) {
		require.NoError(t, repo.Seed(ctx, tenantID, numbering.KindOrder, 0))
		v, _, err := repo.Increment(ctx, tenantID, numbering.KindOrder)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		_, found, err := repo.Increment(ctx, uuid.New(), numbering.KindQuote)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestGenerator_WithGormCounters(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	tenantID := uuid.New()

	// two quotes created before the counter existed
	docs := NewGormDocumentRepository(db)
	for i := 1; i <= 2; i++ {
		doc, err := trade.NewDocument(tenantID, trade.KindQuote, uuid.New(), time.Now())
		require.NoError(t, err)
		require.NoError(t, doc.AssignNumber(fmt.Sprintf("QT-%04d", i)))
		require.NoError(t, docs.Create(ctx, doc))
	}

	gen := numbering.NewGenerator(NewGormSequenceRepository(db), NewGormNumberSeedSource(db))

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		n, err := gen.Next(ctx, tenantID, numbering.KindQuote)
		require.NoError(t, err)
		assert.False(t, seen[n], "number %s handed out twice", n)
		seen[n] = true
	}
	assert.True(t, seen["QT-0003"])
	assert.True(t, seen["QT-0007"])

	je, err := gen.Next(ctx, tenantID, numbering.KindJournalEntry)
	require.NoError(t, err)
	assert.Equal(t, "JE-0001", je)
}

func TestGormSequenceRepository_Increment_SQL(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormSequenceRepository(db)
	tenantID := uuid.New()

	mock.ExpectExec(`UPDATE "number_sequences" SET .*"value"=value \+ 1.* WHERE tenant_id = \$\d+ AND kind = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "number_sequences" WHERE tenant_id = \$1 AND kind = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "kind", "value", "updated_at"}).
			AddRow(tenantID, "GRN", 12, time.Now()))

	v, found, err := repo.Increment(context.Background(), tenantID, numbering.KindGRN)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(12), v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package event

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOutboxPublisher_Recorder(t *testing.T) {
	ctx := context.Background()
	db := newOutboxDB(t)
	publisher := NewOutboxPublisher(NewEventSerializer(), 3)
	repo := NewGormOutboxRepository(db)

	t.Run("commits with the transaction", func(t *testing.T) {
		event := finance.NewJournalRequestedEvent(uuid.New(), finance.SourcePayment, uuid.New(), finance.JournalActionCreate)

		err := db.Transaction(func(tx *gorm.DB) error {
			return publisher.Recorder(tx).Record(ctx, event)
		})
		require.NoError(t, err)

		pending, err := repo.FindPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, event.EventID(), pending[0].EventID)
		assert.Equal(t, event.TenantID(), pending[0].TenantID)
		assert.Equal(t, finance.EventTypeJournalRequested, pending[0].EventType)
		assert.Equal(t, 3, pending[0].MaxRetries)
	})

	t.Run("rolls back with the transaction", func(t *testing.T) {
		event := finance.NewJournalRequestedEvent(uuid.New(), finance.SourceSale, uuid.New(), finance.JournalActionReverse)
		boom := errors.New("boom")

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := publisher.Recorder(tx).Record(ctx, event); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		counts, err := repo.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[shared.OutboxStatusPending])
	})

	t.Run("no events writes nothing", func(t *testing.T) {
		require.NoError(t, publisher.PublishWithTx(ctx, db))
	})
}

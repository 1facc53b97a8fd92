package event

import (
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveEntry(t *testing.T, l *testutil.Ledger, status shared.OutboxStatus) *shared.OutboxEntry {
	t.Helper()
	tenantID := uuid.New()
	entry := shared.NewOutboxEntry(tenantID, testutil.NewTestEvent("JournalRequested", tenantID), []byte(`{}`))
	entry.Status = status
	if status == shared.OutboxStatusDead {
		entry.RetryCount = entry.MaxRetries
		entry.LastError = "chart of accounts not seeded"
	}
	require.NoError(t, l.Outbox.Save(testutil.ContextWithTimeout(t, 5*time.Second), entry))
	return entry
}

func TestOutboxService_ListAndStats(t *testing.T) {
	l := testutil.NewLedger(t)
	svc := NewOutboxService(l.Outbox, l.Logger)
	ctx := testutil.ContextWithTimeout(t, 5*time.Second)

	saveEntry(t, l, shared.OutboxStatusDead)
	saveEntry(t, l, shared.OutboxStatusDead)
	saveEntry(t, l, shared.OutboxStatusPending)

	page, err := svc.ListDead(ctx, shared.Filter{Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "DEAD", page.Items[0].Status)
	assert.Equal(t, "chart of accounts not seeded", page.Items[0].LastError)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Dead)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(3), stats.Total)
}

func TestOutboxService_Requeue(t *testing.T) {
	l := testutil.NewLedger(t)
	svc := NewOutboxService(l.Outbox, l.Logger)
	ctx := testutil.ContextWithTimeout(t, 5*time.Second)

	t.Run("dead entry goes back to pending", func(t *testing.T) {
		dead := saveEntry(t, l, shared.OutboxStatusDead)

		resp, err := svc.Requeue(ctx, dead.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", resp.Status)
		assert.Zero(t, resp.RetryCount)
		assert.Empty(t, resp.LastError)

		stored, err := svc.Get(ctx, dead.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", stored.Status)
	})

	t.Run("only dead entries", func(t *testing.T) {
		pending := saveEntry(t, l, shared.OutboxStatusPending)
		_, err := svc.Requeue(ctx, pending.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("unknown entry", func(t *testing.T) {
		_, err := svc.Requeue(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOutboxService_RequeueAll(t *testing.T) {
	l := testutil.NewLedger(t)
	svc := NewOutboxService(l.Outbox, l.Logger)
	ctx := testutil.ContextWithTimeout(t, 5*time.Second)

	for range 3 {
		saveEntry(t, l, shared.OutboxStatusDead)
	}
	saveEntry(t, l, shared.OutboxStatusSent)

	n, err := svc.RequeueAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Dead)
	assert.Equal(t, int64(3), stats.Pending)
	assert.Equal(t, int64(1), stats.Sent)

	n, err = svc.RequeueAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

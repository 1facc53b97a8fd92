package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestUUID_IsDeterministic(t *testing.T) {
	assert.Equal(t, NewTestUUID("tenant"), NewTestUUID("tenant"))
	assert.NotEqual(t, NewTestUUID("tenant"), NewTestUUID("item"))
}

func TestMockEventHandler(t *testing.T) {
	h := NewMockEventHandler("A")
	assert.Equal(t, []string{"A"}, h.EventTypes())

	e := NewTestEvent("A", NewTestUUID("t"))
	require.NoError(t, h.Handle(context.Background(), e))
	h.SetError(errors.New("boom"))
	assert.Error(t, h.Handle(context.Background(), e))
	assert.Equal(t, 2, h.HandledCount())
	assert.Same(t, e, h.Handled()[0])
}

func TestLedger_SeedsAndStartsEmpty(t *testing.T) {
	l := NewLedger(t)

	tenant := l.SeedTenant(t, "acme")
	assert.Equal(t, "ACME", tenant.Code)
	gst := l.SeedTax(t, tenant.ID, "GST", "18")
	item := l.SeedItem(t, tenant.ID, "Widget", &gst.ID)
	require.NotNil(t, item.TaxID)

	assert.Empty(t, l.OutboxCounts(t))
	assert.Zero(t, l.Drain(t))
}

func TestRequireEventually(t *testing.T) {
	start := time.Now()
	RequireEventually(t, func() bool { return time.Since(start) > 20*time.Millisecond }, time.Second, 5*time.Millisecond)
}

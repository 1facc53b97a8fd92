package event

import (
	"testing"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSerializer_JournalRequested(t *testing.T) {
	s := NewEventSerializer()
	require.True(t, s.IsRegistered(finance.EventTypeJournalRequested))

	tenantID := uuid.New()
	sourceID := uuid.New()
	event := finance.NewJournalRequestedEvent(tenantID, finance.SourceSale, sourceID, finance.JournalActionReplace)

	payload, err := s.Serialize(event)
	require.NoError(t, err)

	decoded, err := s.Deserialize(finance.EventTypeJournalRequested, payload)
	require.NoError(t, err)

	got, ok := decoded.(*finance.JournalRequestedEvent)
	require.True(t, ok)
	assert.Equal(t, event.EventID(), got.EventID())
	assert.Equal(t, tenantID, got.TenantID())
	assert.Equal(t, sourceID, got.SourceID)
	assert.Equal(t, finance.SourceSale, got.SourceType)
	assert.Equal(t, finance.JournalActionReplace, got.Action)
	assert.True(t, event.OccurredAt().Equal(got.OccurredAt()))
}

func TestEventSerializer_Errors(t *testing.T) {
	s := NewEventSerializer()

	_, err := s.Deserialize("Unknown", []byte(`{}`))
	assert.ErrorContains(t, err, "unknown event type")

	_, err = s.Deserialize(finance.EventTypeJournalRequested, []byte(`{not json`))
	assert.ErrorContains(t, err, "failed to unmarshal")
}

func TestEventSerializer_Register(t *testing.T) {
	s := NewEventSerializer()
	assert.False(t, s.IsRegistered("TestEvent"))

	s.Register("TestEvent", &testEvent{})
	event := newTestEvent("TestEvent", uuid.New())
	payload, err := s.Serialize(event)
	require.NoError(t, err)

	decoded, err := s.Deserialize("TestEvent", payload)
	require.NoError(t, err)
	assert.Equal(t, "test data", decoded.(*testEvent).Data)
}

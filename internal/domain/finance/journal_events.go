package finance

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// EventTypeJournalRequested is delivered to the journal handler through the outbox
const EventTypeJournalRequested = "JournalRequested"

// JournalAction tells the handler what to do with the source's entry
type JournalAction string

const (
	// JournalActionCreate posts an entry unless one is already active
	JournalActionCreate JournalAction = "CREATE"
	// JournalActionReplace reverses the active entry and posts a fresh one
	JournalActionReplace JournalAction = "REPLACE"
	// JournalActionReverse reverses the active entry
	JournalActionReverse JournalAction = "REVERSE"
)

// JournalRequestedEvent asks for the entry of a sale, purchase or payment
type JournalRequestedEvent struct {
	shared.BaseDomainEvent
	SourceType SourceType    `json:"source_type"`
	SourceID   uuid.UUID     `json:"source_id"`
	Action     JournalAction `json:"action"`
}

// NewJournalRequestedEvent creates a JournalRequestedEvent
func NewJournalRequestedEvent(tenantID uuid.UUID, sourceType SourceType, sourceID uuid.UUID, action JournalAction) *JournalRequestedEvent {
	return &JournalRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJournalRequested, string(sourceType), sourceID, tenantID),
		SourceType:      sourceType,
		SourceID:        sourceID,
		Action:          action,
	}
}

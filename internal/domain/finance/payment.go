package finance

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentDirection tells whether money came in or went out
type PaymentDirection string

const (
	PaymentReceived PaymentDirection = "RECEIVED"
	PaymentMade     PaymentDirection = "MADE"
)

// PaymentMode is the money account a payment moves through
type PaymentMode string

const (
	PaymentModeCash PaymentMode = "CASH"
	PaymentModeBank PaymentMode = "BANK"
)

// Payment is money received from a customer or paid to a supplier
type Payment struct {
	shared.TenantAggregateRoot
	Direction  PaymentDirection
	PartyID    uuid.UUID
	Amount     decimal.Decimal
	Date       time.Time
	Mode       PaymentMode
	Reference  string
	DocumentID *uuid.UUID
	Journal    JournalState
	DeletedAt  *time.Time
}

// NewPayment creates a payment and queues its journal posting
func NewPayment(tenantID uuid.UUID, direction PaymentDirection, partyID uuid.UUID, amount decimal.Decimal, date time.Time, mode PaymentMode) (*Payment, error) {
	if direction != PaymentReceived && direction != PaymentMade {
		return nil, shared.NewValidationError("invalid payment direction %q", direction)
	}
	if mode != PaymentModeCash && mode != PaymentModeBank {
		return nil, shared.NewValidationError("invalid payment mode %q", mode)
	}
	if partyID == uuid.Nil {
		return nil, shared.NewValidationError("payment needs a party")
	}
	amount = amount.Round(moneyPlaces)
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("payment amount must be at least 0.01")
	}
	if date.IsZero() {
		date = time.Now()
	}

	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Direction:           direction,
		PartyID:             partyID,
		Amount:              amount,
		Date:                date,
		Mode:                mode,
	}
	p.Journal.Request()
	p.AddDomainEvent(NewJournalRequestedEvent(tenantID, SourcePayment, p.ID, JournalActionCreate))
	return p, nil
}

// SetReference records the cheque/transfer reference and the settled document
func (p *Payment) SetReference(reference string, documentID *uuid.UUID) {
	p.Reference = strings.TrimSpace(reference)
	p.DocumentID = documentID
}

// Delete soft-deletes the payment and queues the reversal of its entry
func (p *Payment) Delete() error {
	if p.DeletedAt != nil {
		return shared.NewNotFoundError("payment", p.ID)
	}
	now := time.Now()
	p.DeletedAt = &now
	p.Touch()
	p.IncrementVersion()
	p.Journal.Request()
	p.AddDomainEvent(NewJournalRequestedEvent(p.TenantID, SourcePayment, p.ID, JournalActionReverse))
	return nil
}

// IsDeleted reports whether the payment was soft-deleted
func (p *Payment) IsDeleted() bool {
	return p.DeletedAt != nil
}

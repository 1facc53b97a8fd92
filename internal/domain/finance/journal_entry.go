package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SourceType names what generated a journal entry
type SourceType string

const (
	SourceManual   SourceType = "MANUAL"
	SourceSale     SourceType = "SALE"
	SourcePurchase SourceType = "PURCHASE"
	SourcePayment  SourceType = "PAYMENT"
	SourceReversal SourceType = "REVERSAL"
)

const moneyPlaces = 2

// JournalLine is one debit or credit of an entry. Exactly one side is non-zero.
type JournalLine struct {
	ID        uuid.UUID
	EntryID   uuid.UUID
	LineNo    int
	AccountID uuid.UUID
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	PartyID   *uuid.UUID
	Memo      string
}

// JournalEntry is a double-entry posting. Posted entries are immutable
// except for the reversal link.
type JournalEntry struct {
	shared.TenantAggregateRoot
	EntryNumber  string
	EntryDate    time.Time
	PostingDate  *time.Time
	IsPosted     bool
	IsReversed   bool
	ReversedByID *uuid.UUID
	ReversalOfID *uuid.UUID
	SourceType   SourceType
	SourceID     *uuid.UUID
	Description  string
	Lines        []JournalLine
}

// NewJournalEntry creates an unposted entry without lines
func NewJournalEntry(tenantID uuid.UUID, number string, date time.Time, sourceType SourceType, sourceID *uuid.UUID, description string) (*JournalEntry, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewValidationError("entry number cannot be empty")
	}
	if date.IsZero() {
		return nil, shared.NewValidationError("entry date is required")
	}
	if sourceType != SourceManual && sourceType != SourceReversal && sourceID == nil {
		return nil, shared.NewValidationError("entry from %s needs a source id", sourceType)
	}

	return &JournalEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EntryNumber:         number,
		EntryDate:           date,
		SourceType:          sourceType,
		SourceID:            sourceID,
		Description:         strings.TrimSpace(description),
		Lines:               make([]JournalLine, 0),
	}, nil
}

// AddLine appends a debit or credit line
func (e *JournalEntry) AddLine(accountID uuid.UUID, debit, credit decimal.Decimal, partyID *uuid.UUID, memo string) error {
	if e.IsPosted {
		return shared.ErrAlreadyPosted.WithEntity(e.ID)
	}
	if accountID == uuid.Nil {
		return shared.NewValidationError("journal line needs an account")
	}
	if debit.IsNegative() || credit.IsNegative() {
		return shared.NewValidationError("journal line amounts cannot be negative")
	}
	if debit.IsZero() == credit.IsZero() {
		return shared.NewValidationError("journal line must have either a debit or a credit")
	}

	e.Lines = append(e.Lines, JournalLine{
		ID:        uuid.New(),
		EntryID:   e.ID,
		LineNo:    len(e.Lines) + 1,
		AccountID: accountID,
		Debit:     debit.Round(moneyPlaces),
		Credit:    credit.Round(moneyPlaces),
		PartyID:   partyID,
		Memo:      memo,
	})
	e.Touch()
	return nil
}

// TotalDebit sums the debit side
func (e *JournalEntry) TotalDebit() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range e.Lines {
		sum = sum.Add(l.Debit)
	}
	return sum.Round(moneyPlaces)
}

// TotalCredit sums the credit side
func (e *JournalEntry) TotalCredit() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range e.Lines {
		sum = sum.Add(l.Credit)
	}
	return sum.Round(moneyPlaces)
}

// IsBalanced reports whether the entry has lines and equal totals
func (e *JournalEntry) IsBalanced() bool {
	return len(e.Lines) > 0 && e.TotalDebit().Equal(e.TotalCredit())
}

// Post freezes the entry
func (e *JournalEntry) Post(now time.Time) error {
	if e.IsPosted {
		return shared.ErrAlreadyPosted.WithEntity(e.ID)
	}
	if !e.IsBalanced() {
		return &shared.DomainError{
			Code:     shared.CodeUnbalanced,
			Message:  fmt.Sprintf("debits %s do not equal credits %s", e.TotalDebit(), e.TotalCredit()),
			EntityID: e.ID.String(),
		}
	}
	e.IsPosted = true
	e.PostingDate = &now
	e.Touch()
	e.IncrementVersion()
	return nil
}

// Reverse builds and posts the mirror entry and links the two.
// Both entries must be saved by the caller.
func (e *JournalEntry) Reverse(number, reason string, now time.Time) (*JournalEntry, error) {
	if !e.IsPosted {
		return nil, shared.ErrNotPosted.WithEntity(e.ID)
	}
	if e.IsReversed {
		return nil, shared.ErrAlreadyReversed.WithEntity(e.ID)
	}

	description := fmt.Sprintf("Reversal of %s", e.EntryNumber)
	if reason = strings.TrimSpace(reason); reason != "" {
		description += ": " + reason
	}
	mirror, err := NewJournalEntry(e.TenantID, number, now, SourceReversal, e.SourceID, description)
	if err != nil {
		return nil, err
	}
	for _, l := range e.Lines {
		if err := mirror.AddLine(l.AccountID, l.Credit, l.Debit, l.PartyID, l.Memo); err != nil {
			return nil, err
		}
	}
	if err := mirror.Post(now); err != nil {
		return nil, err
	}

	origID := e.ID
	mirror.ReversalOfID = &origID
	e.IsReversed = true
	e.ReversedByID = &mirror.ID
	e.Touch()
	e.IncrementVersion()

	return mirror, nil
}

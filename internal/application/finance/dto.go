package finance

import (
	"time"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalLineInput is a line of a manual entry
type JournalLineInput struct {
	AccountID uuid.UUID       `json:"account_id" binding:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	PartyID   *uuid.UUID      `json:"party_id"`
	Memo      string          `json:"memo" binding:"max=500"`
}

// CreateManualEntryRequest creates an unposted manual entry
type CreateManualEntryRequest struct {
	EntryDate   *time.Time         `json:"entry_date"`
	Description string             `json:"description" binding:"max=1000"`
	Lines       []JournalLineInput `json:"lines" binding:"required,min=2,dive"`
}

// ReverseEntryRequest carries the reason for a reversal
type ReverseEntryRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// JournalLineResponse is a persisted entry line
type JournalLineResponse struct {
	LineNo    int             `json:"line_no"`
	AccountID uuid.UUID       `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	PartyID   *uuid.UUID      `json:"party_id,omitempty"`
	Memo      string          `json:"memo,omitempty"`
}

// JournalEntryResponse is an entry with its lines
type JournalEntryResponse struct {
	ID           uuid.UUID             `json:"id"`
	EntryNumber  string                `json:"entry_number"`
	EntryDate    time.Time             `json:"entry_date"`
	PostingDate  *time.Time            `json:"posting_date,omitempty"`
	IsPosted     bool                  `json:"is_posted"`
	IsReversed   bool                  `json:"is_reversed"`
	ReversedByID *uuid.UUID            `json:"reversed_by_id,omitempty"`
	ReversalOfID *uuid.UUID            `json:"reversal_of_id,omitempty"`
	SourceType   string                `json:"source_type"`
	SourceID     *uuid.UUID            `json:"source_id,omitempty"`
	Description  string                `json:"description,omitempty"`
	TotalDebit   decimal.Decimal       `json:"total_debit"`
	TotalCredit  decimal.Decimal       `json:"total_credit"`
	Lines        []JournalLineResponse `json:"lines"`
}

// ToJournalEntryResponse converts an entry
func ToJournalEntryResponse(e *finance.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			LineNo:    l.LineNo,
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			PartyID:   l.PartyID,
			Memo:      l.Memo,
		}
	}
	return JournalEntryResponse{
		ID:           e.ID,
		EntryNumber:  e.EntryNumber,
		EntryDate:    e.EntryDate,
		PostingDate:  e.PostingDate,
		IsPosted:     e.IsPosted,
		IsReversed:   e.IsReversed,
		ReversedByID: e.ReversedByID,
		ReversalOfID: e.ReversalOfID,
		SourceType:   string(e.SourceType),
		SourceID:     e.SourceID,
		Description:  e.Description,
		TotalDebit:   e.TotalDebit(),
		TotalCredit:  e.TotalCredit(),
		Lines:        lines,
	}
}

// AccountResponse is a chart-of-accounts node
type AccountResponse struct {
	ID            uuid.UUID  `json:"id"`
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	NormalBalance string     `json:"normal_balance"`
	ParentID      *uuid.UUID `json:"parent_id,omitempty"`
	SystemKey     string     `json:"system_key,omitempty"`
	IsSystem      bool       `json:"is_system"`
}

// ToAccountResponse converts an account
func ToAccountResponse(a *finance.Account) AccountResponse {
	return AccountResponse{
		ID:            a.ID,
		Code:          a.Code,
		Name:          a.Name,
		Type:          string(a.Type),
		NormalBalance: string(a.NormalBalance),
		ParentID:      a.ParentID,
		SystemKey:     string(a.SystemKey),
		IsSystem:      a.IsSystem,
	}
}

// CreatePaymentRequest records money received or paid
type CreatePaymentRequest struct {
	Direction  string          `json:"direction" binding:"required,oneof=RECEIVED MADE"`
	PartyID    uuid.UUID       `json:"party_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Date       *time.Time      `json:"date"`
	Mode       string          `json:"mode" binding:"required,oneof=CASH BANK"`
	Reference  string          `json:"reference" binding:"max=100"`
	DocumentID *uuid.UUID      `json:"document_id"`
}

// PaymentResponse is a persisted payment
type PaymentResponse struct {
	ID             uuid.UUID       `json:"id"`
	Direction      string          `json:"direction"`
	PartyID        uuid.UUID       `json:"party_id"`
	Amount         decimal.Decimal `json:"amount"`
	Date           time.Time       `json:"date"`
	Mode           string          `json:"mode"`
	Reference      string          `json:"reference,omitempty"`
	DocumentID     *uuid.UUID      `json:"document_id,omitempty"`
	JournalStatus  string          `json:"journal_status"`
	JournalEntryID *uuid.UUID      `json:"journal_entry_id,omitempty"`
	Deleted        bool            `json:"deleted"`
}

// ToPaymentResponse converts a payment
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		Direction:      string(p.Direction),
		PartyID:        p.PartyID,
		Amount:         p.Amount,
		Date:           p.Date,
		Mode:           string(p.Mode),
		Reference:      p.Reference,
		DocumentID:     p.DocumentID,
		JournalStatus:  string(p.Journal.Status),
		JournalEntryID: p.Journal.EntryID,
		Deleted:        p.IsDeleted(),
	}
}

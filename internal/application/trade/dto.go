package trade

import (
	"time"

	appshared "github.com/erp/ledger/internal/application/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentLineInput is a line in a create or update request
type DocumentLineInput struct {
	ItemID    uuid.UUID       `json:"item_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxID     *uuid.UUID      `json:"tax_id"`
}

// CreateDocumentRequest creates a document of the kind in the path
type CreateDocumentRequest struct {
	PartyID          uuid.UUID           `json:"party_id" binding:"required"`
	Date             *time.Time          `json:"date"`
	InvoiceNumber    string              `json:"invoice_number" binding:"max=50"`
	TaxID            *uuid.UUID          `json:"tax_id"`
	SourceDocumentID *uuid.UUID          `json:"source_document_id"`
	Notes            string              `json:"notes" binding:"max=2000"`
	Lines            []DocumentLineInput `json:"lines" binding:"required,min=1,dive"`
}

// UpdateDocumentRequest replaces the editable fields and the full line set
type UpdateDocumentRequest struct {
	PartyID *uuid.UUID          `json:"party_id"`
	Date    *time.Time          `json:"date"`
	TaxID   *uuid.UUID          `json:"tax_id"`
	Notes   *string             `json:"notes" binding:"omitempty,max=2000"`
	Lines   []DocumentLineInput `json:"lines" binding:"required,min=1,dive"`
}

// DocumentLineResponse is a persisted line
type DocumentLineResponse struct {
	ID        uuid.UUID       `json:"id"`
	LineNo    int             `json:"line_no"`
	ItemID    uuid.UUID       `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxID     *uuid.UUID      `json:"tax_id,omitempty"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
}

// DocumentResponse is a document with its lines
type DocumentResponse struct {
	ID               uuid.UUID              `json:"id"`
	Kind             string                 `json:"kind"`
	Number           string                 `json:"number"`
	Date             time.Time              `json:"date"`
	PartyID          uuid.UUID              `json:"party_id"`
	TaxID            *uuid.UUID             `json:"tax_id,omitempty"`
	TaxRate          decimal.Decimal        `json:"tax_rate"`
	SourceDocumentID *uuid.UUID             `json:"source_document_id,omitempty"`
	Notes            string                 `json:"notes,omitempty"`
	Subtotal         decimal.Decimal        `json:"subtotal"`
	TaxAmount        decimal.Decimal        `json:"tax_amount"`
	Total            decimal.Decimal        `json:"total"`
	JournalStatus    string                 `json:"journal_status"`
	JournalEntryID   *uuid.UUID             `json:"journal_entry_id,omitempty"`
	JournalError     string                 `json:"journal_error,omitempty"`
	Deleted          bool                   `json:"deleted"`
	Version          int                    `json:"version"`
	Lines            []DocumentLineResponse `json:"lines"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// ToDocumentResponse converts a document
func ToDocumentResponse(d *trade.Document) DocumentResponse {
	lines := make([]DocumentLineResponse, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = DocumentLineResponse{
			ID:        l.ID,
			LineNo:    l.LineNo,
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			TaxID:     l.TaxID,
			TaxRate:   l.TaxRate,
			Subtotal:  l.Subtotal,
			TaxAmount: l.TaxAmount,
		}
	}
	return DocumentResponse{
		ID:               d.ID,
		Kind:             string(d.Kind),
		Number:           d.Number,
		Date:             d.Date,
		PartyID:          d.PartyID,
		TaxID:            d.TaxID,
		TaxRate:          d.TaxRate,
		SourceDocumentID: d.SourceDocumentID,
		Notes:            d.Notes,
		Subtotal:         d.Subtotal,
		TaxAmount:        d.TaxAmount,
		Total:            d.Total,
		JournalStatus:    string(d.Journal.Status),
		JournalEntryID:   d.Journal.EntryID,
		JournalError:     d.Journal.Error,
		Deleted:          d.IsDeleted(),
		Version:          d.GetVersion(),
		Lines:            lines,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func toLineInputs(in []DocumentLineInput) []trade.LineInput {
	out := make([]trade.LineInput, len(in))
	for i, l := range in {
		out[i] = trade.LineInput{ItemID: l.ItemID, Quantity: l.Quantity, UnitPrice: l.UnitPrice, TaxID: l.TaxID}
	}
	return out
}

// ToCreateCommand maps a request onto the command the services share
func (r CreateDocumentRequest) ToCreateCommand(tenantID uuid.UUID, kind trade.DocumentKind, userID *uuid.UUID) appshared.CreateDocumentCommand {
	cmd := appshared.CreateDocumentCommand{
		TenantID:         tenantID,
		Kind:             kind,
		PartyID:          r.PartyID,
		InvoiceNumber:    r.InvoiceNumber,
		TaxID:            r.TaxID,
		SourceDocumentID: r.SourceDocumentID,
		Notes:            r.Notes,
		Lines:            toLineInputs(r.Lines),
		CreatedBy:        userID,
	}
	if r.Date != nil {
		cmd.Date = *r.Date
	}
	return cmd
}

// ToUpdateCommand maps a request onto the command the services share
func (r UpdateDocumentRequest) ToUpdateCommand(tenantID uuid.UUID, kind trade.DocumentKind, id uuid.UUID) appshared.UpdateDocumentCommand {
	return appshared.UpdateDocumentCommand{
		TenantID:   tenantID,
		Kind:       kind,
		DocumentID: id,
		PartyID:    r.PartyID,
		Date:       r.Date,
		TaxID:      r.TaxID,
		Notes:      r.Notes,
		Lines:      toLineInputs(r.Lines),
	}
}

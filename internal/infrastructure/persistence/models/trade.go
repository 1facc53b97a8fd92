package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalStateColumns are the journal tracking columns shared by documents and payments
type JournalStateColumns struct {
	JournalStatus  string     `gorm:"type:varchar(20);not null;default:'NONE';index"`
	JournalEntryID *uuid.UUID `gorm:"type:uuid"`
	JournalError   string     `gorm:"type:text"`
}

// ToDomain converts the columns to a JournalState
func (c JournalStateColumns) ToDomain() finance.JournalState {
	status := finance.JournalStatus(c.JournalStatus)
	if status == "" {
		status = finance.JournalStatusNone
	}
	return finance.JournalState{Status: status, EntryID: c.JournalEntryID, Error: c.JournalError}
}

// JournalStateColumnsFromDomain maps a JournalState to columns
func JournalStateColumnsFromDomain(s finance.JournalState) JournalStateColumns {
	status := s.Status
	if status == "" {
		status = finance.JournalStatusNone
	}
	return JournalStateColumns{JournalStatus: string(status), JournalEntryID: s.EntryID, JournalError: s.Error}
}

// Updates returns the column map used for journal-only updates
func (c JournalStateColumns) Updates() map[string]any {
	return map[string]any{
		"journal_status":   c.JournalStatus,
		"journal_entry_id": c.JournalEntryID,
		"journal_error":    c.JournalError,
	}
}

// DocumentModel is the persistence model for every document kind.
// (tenant_id, kind, number) is unique, soft-deleted rows included.
type DocumentModel struct {
	AggregateModel
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_document_number,priority:1;index:idx_document_kind,priority:1"`
	Kind             string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_document_number,priority:2;index:idx_document_kind,priority:2"`
	Number           string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_document_number,priority:3"`
	Date             time.Time       `gorm:"not null"`
	PartyID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	TaxID            *uuid.UUID      `gorm:"type:uuid"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	SourceDocumentID *uuid.UUID      `gorm:"type:uuid"`
	Notes            string          `gorm:"type:text"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	JournalStateColumns
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
	DeletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the persistence model to a domain Document. Lines are loaded separately.
func (m *DocumentModel) ToDomain() *trade.Document {
	d := &trade.Document{
		Kind:             trade.DocumentKind(m.Kind),
		Number:           m.Number,
		Date:             m.Date,
		PartyID:          m.PartyID,
		TaxID:            m.TaxID,
		TaxRate:          m.TaxRate,
		SourceDocumentID: m.SourceDocumentID,
		Notes:            m.Notes,
		Subtotal:         m.Subtotal,
		TaxAmount:        m.TaxAmount,
		Total:            m.Total,
		Journal:          m.JournalStateColumns.ToDomain(),
		DeletedAt:        m.DeletedAt,
		Lines:            make([]trade.DocumentLine, 0),
	}
	m.PopulateAggregateRoot(&d.BaseAggregateRoot)
	d.TenantID = m.TenantID
	d.CreatedBy = m.CreatedBy
	return d
}

// FromDomain populates the persistence model from a domain Document.
func (m *DocumentModel) FromDomain(d *trade.Document) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.TenantID = d.TenantID
	m.CreatedBy = d.CreatedBy
	m.Kind = string(d.Kind)
	m.Number = d.Number
	m.Date = d.Date
	m.PartyID = d.PartyID
	m.TaxID = d.TaxID
	m.TaxRate = d.TaxRate
	m.SourceDocumentID = d.SourceDocumentID
	m.Notes = d.Notes
	m.Subtotal = d.Subtotal
	m.TaxAmount = d.TaxAmount
	m.Total = d.Total
	m.JournalStateColumns = JournalStateColumnsFromDomain(d.Journal)
	m.DeletedAt = d.DeletedAt
}

// DocumentModelFromDomain creates a new persistence model from a domain Document.
func DocumentModelFromDomain(d *trade.Document) *DocumentModel {
	m := &DocumentModel{}
	m.FromDomain(d)
	return m
}

// DocumentLineModel is one item row of a document
type DocumentLineModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	DocumentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo     int             `gorm:"not null"`
	ItemID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxID      *uuid.UUID      `gorm:"type:uuid"`
	TaxRate    decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (DocumentLineModel) TableName() string {
	return "document_lines"
}

// ToDomain converts the persistence model to a domain DocumentLine.
func (m *DocumentLineModel) ToDomain() trade.DocumentLine {
	return trade.DocumentLine{
		ID:         m.ID,
		TenantID:   m.TenantID,
		DocumentID: m.DocumentID,
		LineNo:     m.LineNo,
		ItemID:     m.ItemID,
		Quantity:   m.Quantity,
		UnitPrice:  m.UnitPrice,
		TaxID:      m.TaxID,
		TaxRate:    m.TaxRate,
		Subtotal:   m.Subtotal,
		TaxAmount:  m.TaxAmount,
	}
}

// DocumentLineModelFromDomain creates a new persistence model from a domain DocumentLine.
func DocumentLineModelFromDomain(l trade.DocumentLine) *DocumentLineModel {
	return &DocumentLineModel{
		ID:         l.ID,
		TenantID:   l.TenantID,
		DocumentID: l.DocumentID,
		LineNo:     l.LineNo,
		ItemID:     l.ItemID,
		Quantity:   l.Quantity,
		UnitPrice:  l.UnitPrice,
		TaxID:      l.TaxID,
		TaxRate:    l.TaxRate,
		Subtotal:   l.Subtotal,
		TaxAmount:  l.TaxAmount,
	}
}

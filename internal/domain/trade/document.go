package trade

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentLine is one item row of a document. TaxRate is the rate in force
// when the line was written.
type DocumentLine struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	DocumentID uuid.UUID
	LineNo     int
	ItemID     uuid.UUID
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TaxID      *uuid.UUID
	TaxRate    decimal.Decimal
	Subtotal   decimal.Decimal
	TaxAmount  decimal.Decimal
}

// Document is a quote, order, sale, purchase, delivery note or GRN
type Document struct {
	shared.TenantAggregateRoot
	Kind    DocumentKind
	Number  string
	Date    time.Time
	PartyID uuid.UUID
	// TaxID and TaxRate hold the bill-level (or account-default) tax snapshot
	TaxID            *uuid.UUID
	TaxRate          decimal.Decimal
	SourceDocumentID *uuid.UUID
	Notes            string
	Subtotal         decimal.Decimal
	TaxAmount        decimal.Decimal
	Total            decimal.Decimal
	Journal          finance.JournalState
	DeletedAt        *time.Time
	Lines            []DocumentLine
}

// NewDocument creates an empty document of a kind
func NewDocument(tenantID uuid.UUID, kind DocumentKind, partyID uuid.UUID, date time.Time) (*Document, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("unknown document kind %q", kind)
	}
	if partyID == uuid.Nil {
		return nil, shared.NewValidationError("document needs a party")
	}
	if date.IsZero() {
		date = time.Now()
	}

	return &Document{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Kind:                kind,
		Date:                date,
		PartyID:             partyID,
		Journal:             finance.JournalState{Status: finance.JournalStatusNone},
		Lines:               make([]DocumentLine, 0),
	}, nil
}

// AssignNumber sets the document number once
func (d *Document) AssignNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return shared.NewValidationError("%s number cannot be empty", strings.ToLower(string(d.Kind)))
	}
	if d.Number != "" {
		return shared.NewInvalidStateError("document already numbered %s", d.Number)
	}
	d.Number = number
	return nil
}

// LinkSource records the purchase a GRN receives or the sale a delivery note ships
func (d *Document) LinkSource(source *Document) error {
	want, ok := d.Kind.SourceKind()
	if !ok {
		return shared.NewValidationError("%s cannot reference a source document", d.Kind)
	}
	if source.Kind != want {
		return shared.NewValidationError("%s can only reference a %s", d.Kind, want)
	}
	if source.IsDeleted() {
		return shared.NewValidationError("source document %s is deleted", source.Number)
	}
	id := source.ID
	d.SourceDocumentID = &id
	return nil
}

// SetDocumentTax snapshots the bill-level tax
func (d *Document) SetDocumentTax(taxID *uuid.UUID, rate decimal.Decimal) {
	d.TaxID = taxID
	d.TaxRate = rate
}

// ReplaceLines swaps the line set and recomputes totals
func (d *Document) ReplaceLines(lines []DocumentLine, level tax.ApplicationLevel) {
	out := make([]DocumentLine, len(lines))
	for i, l := range lines {
		l.ID = uuid.New()
		l.TenantID = d.TenantID
		l.DocumentID = d.ID
		l.LineNo = i + 1
		out[i] = l
	}
	d.Lines = out
	d.recompute(level)
}

func (d *Document) recompute(level tax.ApplicationLevel) {
	if !d.Kind.IsPriced() {
		d.Subtotal, d.TaxAmount, d.Total = decimal.Zero, decimal.Zero, decimal.Zero
		return
	}
	totals := tax.DocumentTax(d.TaxableLines(), level, d.TaxRate, d.TaxRate)
	d.Subtotal = totals.Subtotal
	d.TaxAmount = totals.Tax
	d.Total = totals.Total
}

// TaxableLines returns the lines in the calculator's shape
func (d *Document) TaxableLines() []tax.TaxableLine {
	out := make([]tax.TaxableLine, len(d.Lines))
	for i, l := range d.Lines {
		out[i] = tax.TaxableLine{Quantity: l.Quantity, UnitPrice: l.UnitPrice, Rate: l.TaxRate}
	}
	return out
}

// StockLines returns the quantities that move stock
func (d *Document) StockLines() []inventory.LineQuantity {
	out := make([]inventory.LineQuantity, len(d.Lines))
	for i, l := range d.Lines {
		out[i] = inventory.LineQuantity{ItemID: l.ItemID, Quantity: l.Quantity}
	}
	return out
}

// StockDeltas returns the deltas the current line set applied
func (d *Document) StockDeltas() []inventory.Delta {
	if !d.Kind.MovesStock() {
		return nil
	}
	return inventory.Deltas(d.StockLines(), d.Kind.StockDirection())
}

// StockSource identifies the document in the movement log
func (d *Document) StockSource(reason string) inventory.Source {
	return inventory.Source{Type: d.Kind.StockSource(), ID: d.ID, Reason: reason}
}

// RequestJournal queues an automatic entry for sales and purchases
func (d *Document) RequestJournal(action finance.JournalAction) {
	source, ok := d.Kind.JournalSource()
	if !ok {
		return
	}
	d.Journal.Request()
	d.AddDomainEvent(finance.NewJournalRequestedEvent(d.TenantID, source, d.ID, action))
}

// MarkUpdated bumps the version after an edit
func (d *Document) MarkUpdated() {
	d.Touch()
	d.IncrementVersion()
}

// Delete soft-deletes the document. Its number is never handed out again.
func (d *Document) Delete() error {
	if d.IsDeleted() {
		return shared.NewNotFoundError(strings.ToLower(string(d.Kind)), d.ID)
	}
	now := time.Now()
	d.DeletedAt = &now
	d.MarkUpdated()
	d.RequestJournal(finance.JournalActionReverse)
	return nil
}

// IsDeleted reports whether the document was soft-deleted
func (d *Document) IsDeleted() bool {
	return d.DeletedAt != nil
}

package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is a node of the chart of accounts. Codes are unique per
// tenant and each system key maps to at most one account.
type AccountModel struct {
	AggregateModel
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_account_code,priority:1;uniqueIndex:idx_account_system_key,priority:1"`
	Code          string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_account_code,priority:2"`
	Name          string     `gorm:"type:varchar(200);not null"`
	Type          string     `gorm:"type:varchar(20);not null"`
	NormalBalance string     `gorm:"type:varchar(10);not null"`
	ParentID      *uuid.UUID `gorm:"type:uuid;index"`
	SystemKey     *string    `gorm:"type:varchar(40);uniqueIndex:idx_account_system_key,priority:2"`
	IsSystem      bool       `gorm:"not null;default:false"`
	CreatedBy     *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "chart_of_accounts"
}

// ToDomain converts the persistence model to a domain Account.
func (m *AccountModel) ToDomain() *finance.Account {
	a := &finance.Account{
		Code:          m.Code,
		Name:          m.Name,
		Type:          finance.AccountType(m.Type),
		NormalBalance: finance.NormalBalance(m.NormalBalance),
		ParentID:      m.ParentID,
		IsSystem:      m.IsSystem,
	}
	if m.SystemKey != nil {
		a.SystemKey = finance.SystemKey(*m.SystemKey)
	}
	m.PopulateAggregateRoot(&a.BaseAggregateRoot)
	a.TenantID = m.TenantID
	a.CreatedBy = m.CreatedBy
	return a
}

// AccountModelFromDomain creates a new persistence model from a domain Account.
func AccountModelFromDomain(a *finance.Account) *AccountModel {
	m := &AccountModel{
		TenantID:      a.TenantID,
		Code:          a.Code,
		Name:          a.Name,
		Type:          string(a.Type),
		NormalBalance: string(a.NormalBalance),
		ParentID:      a.ParentID,
		IsSystem:      a.IsSystem,
		CreatedBy:     a.CreatedBy,
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	if a.SystemKey != finance.SystemKeyNone {
		key := string(a.SystemKey)
		m.SystemKey = &key
	}
	return m
}

// JournalEntryModel is the header of a journal entry
type JournalEntryModel struct {
	TenantAggregateModel
	EntryNumber  string     `gorm:"type:varchar(30);not null;index"`
	EntryDate    time.Time  `gorm:"not null"`
	PostingDate  *time.Time
	IsPosted     bool       `gorm:"not null;default:false"`
	IsReversed   bool       `gorm:"not null;default:false"`
	ReversedByID *uuid.UUID `gorm:"type:uuid"`
	ReversalOfID *uuid.UUID `gorm:"type:uuid"`
	SourceType   string     `gorm:"type:varchar(20);not null;index:idx_journal_source,priority:1"`
	SourceID     *uuid.UUID `gorm:"type:uuid;index:idx_journal_source,priority:2"`
	Description  string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// ToDomain converts the persistence model to a domain JournalEntry. Lines are loaded separately.
func (m *JournalEntryModel) ToDomain() *finance.JournalEntry {
	e := &finance.JournalEntry{
		EntryNumber:  m.EntryNumber,
		EntryDate:    m.EntryDate,
		PostingDate:  m.PostingDate,
		IsPosted:     m.IsPosted,
		IsReversed:   m.IsReversed,
		ReversedByID: m.ReversedByID,
		ReversalOfID: m.ReversalOfID,
		SourceType:   finance.SourceType(m.SourceType),
		SourceID:     m.SourceID,
		Description:  m.Description,
		Lines:        make([]finance.JournalLine, 0),
	}
	m.PopulateTenantAggregateRoot(&e.TenantAggregateRoot)
	return e
}

// JournalEntryModelFromDomain creates a new persistence model from a domain JournalEntry.
func JournalEntryModelFromDomain(e *finance.JournalEntry) *JournalEntryModel {
	m := &JournalEntryModel{
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
	}
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	return m
}

// JournalLineModel is one debit or credit line
type JournalLineModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	EntryID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo    int             `gorm:"not null"`
	AccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Debit     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Credit    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PartyID   *uuid.UUID      `gorm:"type:uuid"`
	Memo      string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (JournalLineModel) TableName() string {
	return "journal_entry_lines"
}

// ToDomain converts the persistence model to a domain JournalLine.
func (m *JournalLineModel) ToDomain() finance.JournalLine {
	return finance.JournalLine{
		ID:        m.ID,
		EntryID:   m.EntryID,
		LineNo:    m.LineNo,
		AccountID: m.AccountID,
		Debit:     m.Debit,
		Credit:    m.Credit,
		PartyID:   m.PartyID,
		Memo:      m.Memo,
	}
}

// JournalLineModelFromDomain creates a new persistence model from a domain JournalLine.
func JournalLineModelFromDomain(tenantID, entryID uuid.UUID, l finance.JournalLine) *JournalLineModel {
	return &JournalLineModel{
		ID:        l.ID,
		TenantID:  tenantID,
		EntryID:   entryID,
		LineNo:    l.LineNo,
		AccountID: l.AccountID,
		Debit:     l.Debit,
		Credit:    l.Credit,
		PartyID:   l.PartyID,
		Memo:      l.Memo,
	}
}

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	TenantAggregateModel
	Direction  string          `gorm:"type:varchar(10);not null"`
	PartyID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Date       time.Time       `gorm:"not null"`
	Mode       string          `gorm:"type:varchar(10);not null"`
	Reference  string          `gorm:"type:varchar(100)"`
	DocumentID *uuid.UUID      `gorm:"type:uuid;index"`
	JournalStateColumns
	DeletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *finance.Payment {
	p := &finance.Payment{
		Direction:  finance.PaymentDirection(m.Direction),
		PartyID:    m.PartyID,
		Amount:     m.Amount,
		Date:       m.Date,
		Mode:       finance.PaymentMode(m.Mode),
		Reference:  m.Reference,
		DocumentID: m.DocumentID,
		Journal:    m.JournalStateColumns.ToDomain(),
		DeletedAt:  m.DeletedAt,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{
		Direction:           string(p.Direction),
		PartyID:             p.PartyID,
		Amount:              p.Amount,
		Date:                p.Date,
		Mode:                string(p.Mode),
		Reference:           p.Reference,
		DocumentID:          p.DocumentID,
		JournalStateColumns: JournalStateColumnsFromDomain(p.Journal),
		DeletedAt:           p.DeletedAt,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockModel holds the on-hand count of one item. (tenant_id, item_id) is unique.
type StockModel struct {
	AggregateModel
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_tenant_item,priority:1"`
	ItemID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_tenant_item,priority:2"`
	Count     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedBy *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StockModel) TableName() string {
	return "stocks"
}

// ToDomain converts the persistence model to a domain StockRecord.
func (m *StockModel) ToDomain() *inventory.StockRecord {
	s := &inventory.StockRecord{
		ItemID: m.ItemID,
		Count:  m.Count,
	}
	m.PopulateAggregateRoot(&s.BaseAggregateRoot)
	s.TenantID = m.TenantID
	s.CreatedBy = m.CreatedBy
	return s
}

// FromDomain populates the persistence model from a domain StockRecord.
func (m *StockModel) FromDomain(s *inventory.StockRecord) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.TenantID = s.TenantID
	m.CreatedBy = s.CreatedBy
	m.ItemID = s.ItemID
	m.Count = s.Count
}

// StockModelFromDomain creates a new persistence model from a domain StockRecord.
func StockModelFromDomain(s *inventory.StockRecord) *StockModel {
	m := &StockModel{}
	m.FromDomain(s)
	return m
}

// StockMovementModel is an append-only audit row of the stock ledger
type StockMovementModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_tenant_item,priority:1"`
	ItemID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_tenant_item,priority:2"`
	Delta        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SourceType   string          `gorm:"type:varchar(30);not null;index:idx_movement_source,priority:1"`
	SourceID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_source,priority:2"`
	Reason       string          `gorm:"type:varchar(500)"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement.
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		ID:           m.ID,
		TenantID:     m.TenantID,
		ItemID:       m.ItemID,
		Delta:        m.Delta,
		BalanceAfter: m.BalanceAfter,
		SourceType:   inventory.SourceType(m.SourceType),
		SourceID:     m.SourceID,
		Reason:       m.Reason,
		CreatedAt:    m.CreatedAt,
	}
}

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement.
func StockMovementModelFromDomain(mv *inventory.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:           mv.ID,
		TenantID:     mv.TenantID,
		ItemID:       mv.ItemID,
		Delta:        mv.Delta,
		BalanceAfter: mv.BalanceAfter,
		SourceType:   string(mv.SourceType),
		SourceID:     mv.SourceID,
		Reason:       mv.Reason,
		CreatedAt:    mv.CreatedAt,
	}
}

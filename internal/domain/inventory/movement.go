package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SourceType names what caused a stock movement
type SourceType string

const (
	SourceGRN          SourceType = "GRN"
	SourceDeliveryNote SourceType = "DELIVERY_NOTE"
	SourceAdjustment   SourceType = "ADJUSTMENT"
)

// Source identifies the document or action behind a set of deltas
type Source struct {
	Type   SourceType
	ID     uuid.UUID
	Reason string
}

// StockMovement is an immutable audit row for one applied delta
type StockMovement struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	ItemID       uuid.UUID
	Delta        decimal.Decimal
	BalanceAfter decimal.Decimal
	SourceType   SourceType
	SourceID     uuid.UUID
	Reason       string
	CreatedAt    time.Time
}

func newStockMovement(tenantID uuid.UUID, d Delta, balance decimal.Decimal, src Source) *StockMovement {
	return &StockMovement{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ItemID:       d.ItemID,
		Delta:        d.Quantity,
		BalanceAfter: balance,
		SourceType:   src.Type,
		SourceID:     src.ID,
		Reason:       src.Reason,
		CreatedAt:    time.Now(),
	}
}

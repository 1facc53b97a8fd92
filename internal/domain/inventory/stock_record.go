package inventory

import (
	"fmt"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockRecord holds the on-hand count of one item for a tenant.
// Count always equals the sum of the item's StockMovement deltas.
type StockRecord struct {
	shared.TenantAggregateRoot
	ItemID uuid.UUID
	Count  decimal.Decimal
}

// NewStockRecord creates an empty stock record
func NewStockRecord(tenantID, itemID uuid.UUID) *StockRecord {
	return &StockRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ItemID:              itemID,
		Count:               decimal.Zero,
	}
}

// CanApply reports whether adding delta keeps the count within policy
func (s *StockRecord) CanApply(delta decimal.Decimal, allowNegative bool) bool {
	if allowNegative || !delta.IsNegative() {
		return true
	}
	return !s.Count.Add(delta).IsNegative()
}

// apply adds delta to the count and returns the new balance.
// Only the Ledger mutates counts.
func (s *StockRecord) apply(delta decimal.Decimal) decimal.Decimal {
	s.Count = s.Count.Add(delta)
	s.Touch()
	return s.Count
}

// NewInsufficientStockError names the item, the requested outflow and what is on hand
func NewInsufficientStockError(itemID uuid.UUID, requested, available decimal.Decimal) *shared.DomainError {
	return &shared.DomainError{
		Code:     shared.CodeInsufficientStock,
		Message:  fmt.Sprintf("insufficient stock: requested %s, available %s", requested.String(), available.String()),
		EntityID: itemID.String(),
	}
}

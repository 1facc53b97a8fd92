package inventory

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockRepository persists stock records
type StockRepository interface {
	// LockForUpdate makes sure a record exists for every item and returns them
	// row-locked, acquired in ascending item id order
	LockForUpdate(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID) (map[uuid.UUID]*StockRecord, error)
	// FindByItem returns the record or a NOT_FOUND error
	FindByItem(ctx context.Context, tenantID, itemID uuid.UUID) (*StockRecord, error)
	// Save writes the count with an optimistic version check
	Save(ctx context.Context, record *StockRecord) error
}

// MovementRepository persists the movement audit trail
type MovementRepository interface {
	Create(ctx context.Context, movements []*StockMovement) error
	FindByItem(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]*StockMovement, int64, error)
	// SumByItem returns the algebraic sum of all deltas of an item
	SumByItem(ctx context.Context, tenantID, itemID uuid.UUID) (decimal.Decimal, error)
}

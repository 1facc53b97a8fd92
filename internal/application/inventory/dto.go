package inventory

import (
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockMovementResponse is one row of an item's movement history
type StockMovementResponse struct {
	ID           uuid.UUID       `json:"id"`
	ItemID       uuid.UUID       `json:"item_id"`
	Delta        decimal.Decimal `json:"delta"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	SourceType   string          `json:"source_type"`
	SourceID     uuid.UUID       `json:"source_id"`
	Reason       string          `json:"reason,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToStockMovementResponse converts a movement
func ToStockMovementResponse(m *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:           m.ID,
		ItemID:       m.ItemID,
		Delta:        m.Delta,
		BalanceAfter: m.BalanceAfter,
		SourceType:   string(m.SourceType),
		SourceID:     m.SourceID,
		Reason:       m.Reason,
		CreatedAt:    m.CreatedAt,
	}
}

// ToStockMovementResponses converts a list of movements
func ToStockMovementResponses(ms []*inventory.StockMovement) []StockMovementResponse {
	out := make([]StockMovementResponse, len(ms))
	for i, m := range ms {
		out[i] = ToStockMovementResponse(m)
	}
	return out
}

package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Step is one batch of deltas attributed to a single source
type Step struct {
	Deltas []Delta
	Source Source
}

// Ledger is the only writer of stock counts. All methods run inside the
// caller's transaction; nothing is committed here.
type Ledger struct {
	stocks    StockRepository
	movements MovementRepository
}

// NewLedger creates a Ledger
func NewLedger(stocks StockRepository, movements MovementRepository) *Ledger {
	return &Ledger{stocks: stocks, movements: movements}
}

// GetOrInit returns the item's stock record, creating it at zero when absent.
// The row stays locked until the transaction ends.
func (l *Ledger) GetOrInit(ctx context.Context, tenantID, itemID uuid.UUID) (*StockRecord, error) {
	records, err := l.stocks.LockForUpdate(ctx, tenantID, []uuid.UUID{itemID})
	if err != nil {
		return nil, err
	}
	rec, ok := records[itemID]
	if !ok {
		return nil, fmt.Errorf("stock record for item %s was not initialised", itemID)
	}
	return rec, nil
}

// ApplyDelta adds a signed quantity to one item
func (l *Ledger) ApplyDelta(ctx context.Context, tenantID, itemID uuid.UUID, qty decimal.Decimal, src Source, allowNegative bool) (*StockMovement, error) {
	movements, err := l.ApplyAll(ctx, tenantID, []Delta{{ItemID: itemID, Quantity: qty}}, src, allowNegative)
	if err != nil {
		return nil, err
	}
	if len(movements) == 0 {
		return nil, nil
	}
	return movements[0], nil
}

// ApplyAll applies a set of deltas from one source, all or nothing
func (l *Ledger) ApplyAll(ctx context.Context, tenantID uuid.UUID, deltas []Delta, src Source, allowNegative bool) ([]*StockMovement, error) {
	return l.ApplySteps(ctx, tenantID, []Step{{Deltas: deltas, Source: src}}, allowNegative)
}

// ApplySteps applies several batches (e.g. a reversal followed by a reapply).
// Affected rows are locked in ascending item order, the net effect per item is
// checked against the negative-stock policy, and only then is anything written.
func (l *Ledger) ApplySteps(ctx context.Context, tenantID uuid.UUID, steps []Step, allowNegative bool) ([]*StockMovement, error) {
	sets := make([][]Delta, len(steps))
	for i, s := range steps {
		for _, d := range s.Deltas {
			if err := CheckQuantityScale(d.Quantity); err != nil {
				return nil, err
			}
		}
		sets[i] = s.Deltas
	}
	ids := ItemIDs(sets...)
	if len(ids) == 0 {
		return nil, nil
	}

	records, err := l.stocks.LockForUpdate(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("lock stock records: %w", err)
	}

	for _, net := range Net(sets...) {
		rec, ok := records[net.ItemID]
		if !ok {
			return nil, fmt.Errorf("stock record for item %s was not locked", net.ItemID)
		}
		if !rec.CanApply(net.Quantity, allowNegative) {
			return nil, NewInsufficientStockError(net.ItemID, net.Quantity.Neg(), rec.Count)
		}
	}

	movements := make([]*StockMovement, 0)
	touched := make(map[uuid.UUID]*StockRecord)
	for _, step := range steps {
		for _, d := range step.Deltas {
			if d.Quantity.IsZero() {
				continue
			}
			rec := records[d.ItemID]
			balance := rec.apply(d.Quantity)
			touched[d.ItemID] = rec
			movements = append(movements, newStockMovement(tenantID, d, balance, step.Source))
		}
	}

	for _, id := range ids {
		rec, ok := touched[id]
		if !ok {
			continue
		}
		if err := l.stocks.Save(ctx, rec); err != nil {
			return nil, fmt.Errorf("save stock record %s: %w", id, err)
		}
	}
	if len(movements) > 0 {
		if err := l.movements.Create(ctx, movements); err != nil {
			return nil, fmt.Errorf("record stock movements: %w", err)
		}
	}

	return movements, nil
}

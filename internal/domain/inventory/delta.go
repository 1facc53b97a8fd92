package inventory

import (
	"bytes"
	"sort"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuantityPlaces is the scale of every stored quantity column
const QuantityPlaces int32 = 4

// CheckQuantityScale rejects quantities the storage would round
func CheckQuantityScale(q decimal.Decimal) error {
	if !q.Truncate(QuantityPlaces).Equal(q) {
		return shared.NewValidationError("quantity supports at most %d decimal places", QuantityPlaces)
	}
	return nil
}

// Delta is a signed change to one item's count
type Delta struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
}

// LineQuantity is the stock-relevant part of a document line
type LineQuantity struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
}

// Direction is the sign a document kind applies to its line quantities
type Direction int

const (
	Inbound  Direction = 1
	Outbound Direction = -1
)

// Deltas turns line quantities into per-item deltas. Lines for the same item
// are summed; the result is sorted by item id.
func Deltas(lines []LineQuantity, dir Direction) []Delta {
	sign := decimal.NewFromInt(int64(dir))
	byItem := make(map[uuid.UUID]decimal.Decimal, len(lines))
	for _, l := range lines {
		byItem[l.ItemID] = byItem[l.ItemID].Add(l.Quantity.Mul(sign))
	}
	return collect(byItem)
}

// Reverse returns the deltas that undo ds
func Reverse(ds []Delta) []Delta {
	out := make([]Delta, len(ds))
	for i, d := range ds {
		out[i] = Delta{ItemID: d.ItemID, Quantity: d.Quantity.Neg()}
	}
	return out
}

// Net sums several delta sets per item, sorted by item id
func Net(sets ...[]Delta) []Delta {
	byItem := make(map[uuid.UUID]decimal.Decimal)
	for _, set := range sets {
		for _, d := range set {
			byItem[d.ItemID] = byItem[d.ItemID].Add(d.Quantity)
		}
	}
	return collect(byItem)
}

// ItemIDs returns the distinct item ids of the sets in ascending order
func ItemIDs(sets ...[]Delta) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, set := range sets {
		for _, d := range set {
			if _, ok := seen[d.ItemID]; ok {
				continue
			}
			seen[d.ItemID] = struct{}{}
			ids = append(ids, d.ItemID)
		}
	}
	SortIDs(ids)
	return ids
}

// SortIDs sorts ids in byte order, the order stock rows are locked in
func SortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
}

func collect(byItem map[uuid.UUID]decimal.Decimal) []Delta {
	out := make([]Delta, 0, len(byItem))
	for id, q := range byItem {
		out = append(out, Delta{ItemID: id, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ItemID[:], out[j].ItemID[:]) < 0
	})
	return out
}

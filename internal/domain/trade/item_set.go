package trade

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MinQuantity is the smallest quantity a line may carry
var MinQuantity = decimal.RequireFromString("0.001")

// LineInput is a line as submitted by the caller
type LineInput struct {
	ItemID    uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	TaxID     *uuid.UUID
}

// ItemSet is a validated, normalised line set ready to replace a document's lines
type ItemSet struct {
	Lines []DocumentLine
}

// BuildItemSet checks inputs against the resolved items and taxes and
// snapshots each line's tax rate. items and taxes hold only usable entries.
func BuildItemSet(kind DocumentKind, level tax.ApplicationLevel, inputs []LineInput, items map[uuid.UUID]*catalog.Item, taxes map[uuid.UUID]*tax.Tax) (*ItemSet, error) {
	if len(inputs) == 0 {
		return nil, shared.NewValidationError("document needs at least one line")
	}

	lines := make([]DocumentLine, 0, len(inputs))
	for i, in := range inputs {
		n := i + 1
		item, ok := items[in.ItemID]
		if !ok || !item.Usable() {
			return nil, lineError(n, "item %s does not exist or is deleted", in.ItemID)
		}
		if in.Quantity.LessThan(MinQuantity) {
			return nil, lineError(n, "quantity must be at least %s", MinQuantity)
		}
		if err := inventory.CheckQuantityScale(in.Quantity); err != nil {
			return nil, lineError(n, "quantity supports at most %d decimal places", inventory.QuantityPlaces)
		}

		line := DocumentLine{
			ItemID:    in.ItemID,
			Quantity:  in.Quantity,
			UnitPrice: decimal.Zero,
			TaxRate:   decimal.Zero,
			Subtotal:  decimal.Zero,
			TaxAmount: decimal.Zero,
		}

		if !kind.IsPriced() {
			if !in.UnitPrice.IsZero() {
				return nil, lineError(n, "%s lines carry no price", kind)
			}
			if in.TaxID != nil {
				return nil, lineError(n, "%s lines carry no tax", kind)
			}
			lines = append(lines, line)
			continue
		}

		if in.UnitPrice.IsNegative() {
			return nil, lineError(n, "unit price cannot be negative")
		}
		line.UnitPrice = in.UnitPrice
		line.Subtotal = tax.LineSubtotal(in.Quantity, in.UnitPrice)

		if in.TaxID != nil {
			if !level.AllowsLineTax() {
				return nil, lineError(n, "line tax is not allowed at %s level", level)
			}
			t, ok := taxes[*in.TaxID]
			if !ok || !t.Active {
				return nil, lineError(n, "tax %s is not an active tax of the tenant", *in.TaxID)
			}
			taxID := *in.TaxID
			line.TaxID = &taxID
			line.TaxRate = t.EffectiveRate()
			line.TaxAmount = tax.LineTax(in.Quantity, in.UnitPrice, line.TaxRate)
		}
		lines = append(lines, line)
	}

	return &ItemSet{Lines: lines}, nil
}

func lineError(n int, format string, args ...any) error {
	return shared.NewValidationError("line %d: %s", n, fmt.Sprintf(format, args...))
}

// ItemSetValidator resolves the items and taxes a line set refers to
type ItemSetValidator struct {
	items catalog.ItemRepository
	taxes tax.Repository
}

// NewItemSetValidator creates an ItemSetValidator
func NewItemSetValidator(items catalog.ItemRepository, taxes tax.Repository) *ItemSetValidator {
	return &ItemSetValidator{items: items, taxes: taxes}
}

// Validate loads the referenced items and taxes of the tenant and builds the item set
func (v *ItemSetValidator) Validate(ctx context.Context, tenantID uuid.UUID, kind DocumentKind, level tax.ApplicationLevel, inputs []LineInput) (*ItemSet, error) {
	itemIDs := make([]uuid.UUID, 0, len(inputs))
	taxIDs := make([]uuid.UUID, 0)
	for _, in := range inputs {
		itemIDs = append(itemIDs, in.ItemID)
		if in.TaxID != nil {
			taxIDs = append(taxIDs, *in.TaxID)
		}
	}

	items, err := v.items.FindByIDs(ctx, tenantID, itemIDs, false)
	if err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}
	taxes := map[uuid.UUID]*tax.Tax{}
	if len(taxIDs) > 0 {
		taxes, err = v.taxes.FindByIDs(ctx, tenantID, taxIDs)
		if err != nil {
			return nil, fmt.Errorf("load line taxes: %w", err)
		}
	}

	return BuildItemSet(kind, level, inputs, items, taxes)
}

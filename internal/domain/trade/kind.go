package trade

import (
	"strings"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/numbering"
	"github.com/erp/ledger/internal/domain/shared"
)

// DocumentKind is the type of a transactional document
type DocumentKind string

const (
	KindQuote        DocumentKind = "QUOTE"
	KindOrder        DocumentKind = "ORDER"
	KindSale         DocumentKind = "SALE"
	KindPurchase     DocumentKind = "PURCHASE"
	KindDeliveryNote DocumentKind = "DELIVERY_NOTE"
	KindGRN          DocumentKind = "GRN"
)

// ParseKind accepts QUOTE, delivery-note, grn and similar spellings
func ParseKind(s string) (DocumentKind, error) {
	k := DocumentKind(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if !k.IsValid() {
		return "", shared.NewValidationError("unknown document kind %q", s)
	}
	return k, nil
}

// IsValid reports whether the kind is known
func (k DocumentKind) IsValid() bool {
	switch k {
	case KindQuote, KindOrder, KindSale, KindPurchase, KindDeliveryNote, KindGRN:
		return true
	}
	return false
}

// MovesStock reports whether the kind changes stock counts
func (k DocumentKind) MovesStock() bool {
	return k == KindGRN || k == KindDeliveryNote
}

// StockDirection returns the sign applied to line quantities
func (k DocumentKind) StockDirection() inventory.Direction {
	if k == KindDeliveryNote {
		return inventory.Outbound
	}
	return inventory.Inbound
}

// StockSource returns the movement source type of a stock document
func (k DocumentKind) StockSource() inventory.SourceType {
	if k == KindDeliveryNote {
		return inventory.SourceDeliveryNote
	}
	return inventory.SourceGRN
}

// IsPriced reports whether lines carry prices and tax
func (k DocumentKind) IsPriced() bool {
	return !k.MovesStock()
}

// NumberingKind returns the counter that numbers the kind. Sales and
// purchases carry a caller-supplied invoice number instead.
func (k DocumentKind) NumberingKind() (numbering.Kind, bool) {
	switch k {
	case KindQuote:
		return numbering.KindQuote, true
	case KindOrder:
		return numbering.KindOrder, true
	case KindDeliveryNote:
		return numbering.KindDeliveryNote, true
	case KindGRN:
		return numbering.KindGRN, true
	}
	return "", false
}

// JournalSource returns the entry source type when the kind posts to the ledger
func (k DocumentKind) JournalSource() (finance.SourceType, bool) {
	switch k {
	case KindSale:
		return finance.SourceSale, true
	case KindPurchase:
		return finance.SourcePurchase, true
	}
	return "", false
}

// SourceKind returns the kind a stock document may be raised against
func (k DocumentKind) SourceKind() (DocumentKind, bool) {
	switch k {
	case KindGRN:
		return KindPurchase, true
	case KindDeliveryNote:
		return KindSale, true
	}
	return "", false
}

// KindForNumbering maps a counter back to the document kind it numbers
func KindForNumbering(n numbering.Kind) (DocumentKind, bool) {
	for _, k := range []DocumentKind{KindQuote, KindOrder, KindDeliveryNote, KindGRN} {
		if nk, ok := k.NumberingKind(); ok && nk == n {
			return k, true
		}
	}
	return "", false
}

package tax

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the precision of every monetary amount
const MoneyPlaces = 2

// TaxableLine is the part of a document line the calculator needs.
// Rate is the line's snapshot percentage (zero when the line has no tax).
type TaxableLine struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Rate      decimal.Decimal
}

// Totals is the result of a document computation
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Amount rounds a value to monetary precision
func Amount(v decimal.Decimal) decimal.Decimal {
	return v.Round(MoneyPlaces)
}

// LineSubtotal returns qty * unitPrice at monetary precision
func LineSubtotal(qty, unitPrice decimal.Decimal) decimal.Decimal {
	return Amount(qty.Mul(unitPrice))
}

// LineTax returns qty * unitPrice * rate / 100 at monetary precision
func LineTax(qty, unitPrice, rate decimal.Decimal) decimal.Decimal {
	return Amount(qty.Mul(unitPrice).Mul(rate).Div(hundred))
}

// PercentOf returns rate percent of base at monetary precision
func PercentOf(base, rate decimal.Decimal) decimal.Decimal {
	return Amount(base.Mul(rate).Div(hundred))
}

// DocumentTax computes subtotal, tax and total for a set of lines.
// At item level each line is taxed at its own rate; at bill level billRate
// is applied once to the subtotal; at account level accountRate is.
func DocumentTax(lines []TaxableLine, level ApplicationLevel, billRate, accountRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	lineTax := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineSubtotal(l.Quantity, l.UnitPrice))
		lineTax = lineTax.Add(LineTax(l.Quantity, l.UnitPrice, l.Rate))
	}

	var taxAmount decimal.Decimal
	switch level {
	case LevelBill:
		taxAmount = PercentOf(subtotal, billRate)
	case LevelAccount:
		taxAmount = PercentOf(subtotal, accountRate)
	default:
		taxAmount = lineTax
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      taxAmount,
		Total:    subtotal.Add(taxAmount),
	}
}

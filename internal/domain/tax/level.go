package tax

// ApplicationLevel decides where the tax rate of a document comes from.
// Exactly one level is active per tenant.
type ApplicationLevel string

const (
	// LevelItem taxes every line with its own tax reference
	LevelItem ApplicationLevel = "item"
	// LevelBill applies the document's tax reference once to the subtotal
	LevelBill ApplicationLevel = "bill"
	// LevelAccount applies the tenant default tax once to the subtotal
	LevelAccount ApplicationLevel = "account"
)

// IsValid reports whether the level is known
func (l ApplicationLevel) IsValid() bool {
	switch l {
	case LevelItem, LevelBill, LevelAccount:
		return true
	}
	return false
}

// AllowsLineTax reports whether lines may carry their own tax reference
func (l ApplicationLevel) AllowsLineTax() bool {
	return l == LevelItem
}

// AllowsDocumentTax reports whether a document may carry a bill-level tax reference
func (l ApplicationLevel) AllowsDocumentTax() bool {
	return l == LevelBill
}

package tax

import (
	"strings"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxSubRates is the number of named components a scheme can hold (tax1..tax4)
const MaxSubRates = 4

// NoTaxName is the conventional name of the zero-rate scheme
const NoTaxName = "No Tax"

var hundred = decimal.NewFromInt(100)

// SubRate is one named component of a scheme, e.g. CGST 9
type SubRate struct {
	Name string
	Rate decimal.Decimal
}

// Tax is a tax scheme. Its effective rate is the sum of its sub-rates.
type Tax struct {
	shared.TenantAggregateRoot
	Name     string
	SubRates []SubRate
	Active   bool
	Country  string
}

// NewTax creates an active tax scheme
func NewTax(tenantID uuid.UUID, name string, subRates []SubRate, country string) (*Tax, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("tax name cannot be empty")
	}
	if err := validateSubRates(subRates); err != nil {
		return nil, err
	}

	return &Tax{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		SubRates:            append([]SubRate(nil), subRates...),
		Active:              true,
		Country:             strings.ToUpper(strings.TrimSpace(country)),
	}, nil
}

func validateSubRates(subRates []SubRate) error {
	if len(subRates) > MaxSubRates {
		return shared.NewValidationError("a tax scheme holds at most %d sub-rates", MaxSubRates)
	}
	for i, sr := range subRates {
		if strings.TrimSpace(sr.Name) == "" {
			return shared.NewValidationError("sub-rate %d needs a name", i+1)
		}
		if sr.Rate.IsNegative() || sr.Rate.GreaterThan(hundred) {
			return shared.NewValidationError("sub-rate %s must be between 0 and 100", sr.Name)
		}
	}
	return nil
}

// EffectiveRate returns the percentage charged by the scheme
func (t *Tax) EffectiveRate() decimal.Decimal {
	rate := decimal.Zero
	for _, sr := range t.SubRates {
		rate = rate.Add(sr.Rate)
	}
	return rate
}

// IsNoTax reports whether the scheme is the zero-rate placeholder
func (t *Tax) IsNoTax() bool {
	return strings.EqualFold(t.Name, NoTaxName) || t.EffectiveRate().IsZero()
}

// UpdateRates replaces the sub-rates. Historical lines keep their snapshot rate.
func (t *Tax) UpdateRates(subRates []SubRate) error {
	if err := validateSubRates(subRates); err != nil {
		return err
	}
	t.SubRates = append([]SubRate(nil), subRates...)
	t.Touch()
	t.IncrementVersion()
	return nil
}

// Deactivate hides the scheme from new lines
func (t *Tax) Deactivate() {
	t.Active = false
	t.Touch()
	t.IncrementVersion()
}

// Activate makes the scheme selectable again
func (t *Tax) Activate() {
	t.Active = true
	t.Touch()
	t.IncrementVersion()
}

// AvailableIn reports whether the scheme applies to a country; an empty
// country filter means everywhere.
func (t *Tax) AvailableIn(country string) bool {
	return t.Country == "" || country == "" || strings.EqualFold(t.Country, country)
}

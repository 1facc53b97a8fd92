package models

import (
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// TaxModel is the persistence model for a tax scheme. The up to four
// sub-rates are stored as fixed column pairs.
type TaxModel struct {
	TenantAggregateModel
	Name     string          `gorm:"type:varchar(100);not null"`
	Tax1Name string          `gorm:"column:tax1_name;type:varchar(50)"`
	Tax1Rate decimal.Decimal `gorm:"column:tax1_rate;type:decimal(7,4);not null;default:0"`
	Tax2Name string          `gorm:"column:tax2_name;type:varchar(50)"`
	Tax2Rate decimal.Decimal `gorm:"column:tax2_rate;type:decimal(7,4);not null;default:0"`
	Tax3Name string          `gorm:"column:tax3_name;type:varchar(50)"`
	Tax3Rate decimal.Decimal `gorm:"column:tax3_rate;type:decimal(7,4);not null;default:0"`
	Tax4Name string          `gorm:"column:tax4_name;type:varchar(50)"`
	Tax4Rate decimal.Decimal `gorm:"column:tax4_rate;type:decimal(7,4);not null;default:0"`
	Active   bool            `gorm:"not null"`
	Country  string          `gorm:"type:varchar(2)"`
}

// TableName returns the table name for GORM
func (TaxModel) TableName() string {
	return "taxes"
}

func (m *TaxModel) slots() []struct {
	name *string
	rate *decimal.Decimal
} {
	return []struct {
		name *string
		rate *decimal.Decimal
	}{
		{&m.Tax1Name, &m.Tax1Rate},
		{&m.Tax2Name, &m.Tax2Rate},
		{&m.Tax3Name, &m.Tax3Rate},
		{&m.Tax4Name, &m.Tax4Rate},
	}
}

// ToDomain converts the persistence model to a domain Tax entity.
func (m *TaxModel) ToDomain() *tax.Tax {
	t := &tax.Tax{
		Name:     m.Name,
		Active:   m.Active,
		Country:  m.Country,
		SubRates: make([]tax.SubRate, 0, tax.MaxSubRates),
	}
	for _, slot := range m.slots() {
		if *slot.name == "" {
			continue
		}
		t.SubRates = append(t.SubRates, tax.SubRate{Name: *slot.name, Rate: *slot.rate})
	}
	m.PopulateTenantAggregateRoot(&t.TenantAggregateRoot)
	return t
}

// FromDomain populates the persistence model from a domain Tax entity.
func (m *TaxModel) FromDomain(t *tax.Tax) {
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	m.Name = t.Name
	m.Active = t.Active
	m.Country = t.Country
	for i, slot := range m.slots() {
		*slot.name = ""
		*slot.rate = decimal.Zero
		if i < len(t.SubRates) {
			*slot.name = t.SubRates[i].Name
			*slot.rate = t.SubRates[i].Rate
		}
	}
}

// TaxModelFromDomain creates a new persistence model from a domain Tax entity.
func TaxModelFromDomain(t *tax.Tax) *TaxModel {
	m := &TaxModel{}
	m.FromDomain(t)
	return m
}

package models

import (
	"github.com/erp/ledger/internal/domain/identity"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/google/uuid"
)

// TenantModel is the persistence model for the Tenant aggregate root.
type TenantModel struct {
	AggregateModel
	Code               string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name               string     `gorm:"type:varchar(200);not null"`
	AllowNegativeStock bool       `gorm:"not null;default:false"`
	TaxLevel           string     `gorm:"type:varchar(20);not null;default:'item'"`
	DefaultTaxID       *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant entity.
func (m *TenantModel) ToDomain() *identity.Tenant {
	t := &identity.Tenant{
		Code: m.Code,
		Name: m.Name,
		Settings: identity.TenantSettings{
			AllowNegativeStock: m.AllowNegativeStock,
			TaxLevel:           tax.ApplicationLevel(m.TaxLevel),
			DefaultTaxID:       m.DefaultTaxID,
		},
	}
	m.PopulateAggregateRoot(&t.BaseAggregateRoot)
	return t
}

// FromDomain populates the persistence model from a domain Tenant entity.
func (m *TenantModel) FromDomain(t *identity.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Code = t.Code
	m.Name = t.Name
	m.AllowNegativeStock = t.Settings.AllowNegativeStock
	m.TaxLevel = string(t.Settings.TaxLevel)
	m.DefaultTaxID = t.Settings.DefaultTaxID
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant entity.
func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}

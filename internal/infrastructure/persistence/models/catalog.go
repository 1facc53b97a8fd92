package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/google/uuid"
)

// ItemModel is the persistence model for the Item aggregate root.
type ItemModel struct {
	TenantAggregateModel
	Name      string     `gorm:"type:varchar(200);not null"`
	UQC       string     `gorm:"column:uqc;type:varchar(20);not null;default:'PCS'"`
	TaxID     *uuid.UUID `gorm:"type:uuid"`
	HSNCode   string     `gorm:"column:hsn_code;type:varchar(20)"`
	DeletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the persistence model to a domain Item entity.
func (m *ItemModel) ToDomain() *catalog.Item {
	i := &catalog.Item{
		Name:      m.Name,
		UQC:       m.UQC,
		TaxID:     m.TaxID,
		HSNCode:   m.HSNCode,
		DeletedAt: m.DeletedAt,
	}
	m.PopulateTenantAggregateRoot(&i.TenantAggregateRoot)
	return i
}

// FromDomain populates the persistence model from a domain Item entity.
func (m *ItemModel) FromDomain(i *catalog.Item) {
	m.FromDomainTenantAggregateRoot(i.TenantAggregateRoot)
	m.Name = i.Name
	m.UQC = i.UQC
	m.TaxID = i.TaxID
	m.HSNCode = i.HSNCode
	m.DeletedAt = i.DeletedAt
}

// ItemModelFromDomain creates a new persistence model from a domain Item entity.
func ItemModelFromDomain(i *catalog.Item) *ItemModel {
	m := &ItemModel{}
	m.FromDomain(i)
	return m
}

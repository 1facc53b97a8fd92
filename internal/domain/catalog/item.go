package catalog

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Item is a stockable product of a tenant
type Item struct {
	shared.TenantAggregateRoot
	Name string
	// UQC is the unit quantity code (PCS, KGS, ...)
	UQC       string
	TaxID     *uuid.UUID
	HSNCode   string
	DeletedAt *time.Time
}

// NewItem creates a new item
func NewItem(tenantID uuid.UUID, name, uqc string) (*Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("item name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("item name cannot exceed 200 characters")
	}
	uqc = strings.ToUpper(strings.TrimSpace(uqc))
	if uqc == "" {
		uqc = "PCS"
	}

	return &Item{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		UQC:                 uqc,
	}, nil
}

// SetTax sets the default tax scheme offered for the item's lines
func (i *Item) SetTax(taxID *uuid.UUID) {
	i.TaxID = taxID
	i.Touch()
	i.IncrementVersion()
}

// SetHSNCode sets the harmonized classification code
func (i *Item) SetHSNCode(code string) {
	i.HSNCode = strings.TrimSpace(code)
	i.Touch()
	i.IncrementVersion()
}

// Delete soft-deletes the item. Historical documents keep resolving it.
func (i *Item) Delete() error {
	if i.IsDeleted() {
		return shared.NewInvalidStateError("item is already deleted")
	}
	now := time.Now()
	i.DeletedAt = &now
	i.Touch()
	i.IncrementVersion()
	return nil
}

// IsDeleted reports whether the item was soft-deleted
func (i *Item) IsDeleted() bool {
	return i.DeletedAt != nil
}

// Usable reports whether the item may appear on a new or edited line
func (i *Item) Usable() bool {
	return !i.IsDeleted()
}

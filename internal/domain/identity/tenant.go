package identity

import (
	"strings"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/google/uuid"
)

// TenantSettings are the company-wide switches that drive stock and tax rules
type TenantSettings struct {
	// AllowNegativeStock lets stock counts drop below zero
	AllowNegativeStock bool
	// TaxLevel selects where a tax rate is chosen: per line, per bill, or the account default
	TaxLevel tax.ApplicationLevel
	// DefaultTaxID is the account-level tax, used only when TaxLevel is account
	DefaultTaxID *uuid.UUID
}

// DefaultTenantSettings returns item-level tax with negative stock disallowed
func DefaultTenantSettings() TenantSettings {
	return TenantSettings{
		AllowNegativeStock: false,
		TaxLevel:           tax.LevelItem,
	}
}

// Validate checks the settings are internally consistent
func (s TenantSettings) Validate() error {
	if !s.TaxLevel.IsValid() {
		return shared.NewValidationError("invalid tax level %q", s.TaxLevel)
	}
	if s.TaxLevel == tax.LevelAccount && s.DefaultTaxID == nil {
		return shared.NewValidationError("account-level tax requires a default tax")
	}
	return nil
}

// Tenant is a company account. It owns every other row in the system.
type Tenant struct {
	shared.BaseAggregateRoot
	Code     string
	Name     string
	Settings TenantSettings
}

// NewTenant creates a tenant with default settings
func NewTenant(code, name string) (*Tenant, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewValidationError("tenant code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewValidationError("tenant code cannot exceed 50 characters")
	}
	if name == "" {
		return nil, shared.NewValidationError("tenant name cannot be empty")
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Settings:          DefaultTenantSettings(),
	}, nil
}

// UpdateSettings replaces the tenant settings after validation
func (t *Tenant) UpdateSettings(settings TenantSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	t.Settings = settings
	t.Touch()
	t.IncrementVersion()
	return nil
}

// Package identity manages tenants and their ledger settings.
package identity

import (
	"context"
	"errors"
	"strings"

	appshared "github.com/erp/ledger/internal/application/shared"
	"github.com/erp/ledger/internal/domain/identity"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantService handles tenant management operations
type TenantService struct {
	txScope appshared.TransactionScope
	logger  *zap.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(txScope appshared.TransactionScope, logger *zap.Logger) *TenantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantService{txScope: txScope, logger: logger}
}

// CreateTenantRequest creates a tenant with default settings
type CreateTenantRequest struct {
	Code string `json:"code" binding:"required,max=50"`
	Name string `json:"name" binding:"required,max=200"`
}

// TenantSettingsRequest replaces a tenant's settings
type TenantSettingsRequest struct {
	AllowNegativeStock bool       `json:"allow_negative_stock"`
	TaxLevel           string     `json:"tax_level" binding:"required,oneof=item bill account"`
	DefaultTaxID       *uuid.UUID `json:"default_tax_id"`
}

// TenantResponse is a tenant with its settings
type TenantResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Code               string     `json:"code"`
	Name               string     `json:"name"`
	AllowNegativeStock bool       `json:"allow_negative_stock"`
	TaxLevel           string     `json:"tax_level"`
	DefaultTaxID       *uuid.UUID `json:"default_tax_id,omitempty"`
	Version            int        `json:"version"`
}

// ToTenantResponse converts a tenant
func ToTenantResponse(t *identity.Tenant) TenantResponse {
	return TenantResponse{
		ID:                 t.ID,
		Code:               t.Code,
		Name:               t.Name,
		AllowNegativeStock: t.Settings.AllowNegativeStock,
		TaxLevel:           string(t.Settings.TaxLevel),
		DefaultTaxID:       t.Settings.DefaultTaxID,
		Version:            t.GetVersion(),
	}
}

// Create registers a tenant. Codes are stored upper-cased and are unique.
func (s *TenantService) Create(ctx context.Context, req CreateTenantRequest) (*TenantResponse, error) {
	tenant, err := identity.NewTenant(req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		existing, err := repos.Tenants().FindByCode(ctx, tenant.Code)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.NewValidationError("tenant code %s already exists", tenant.Code)
		}
		return repos.Tenants().Save(ctx, tenant)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("code", tenant.Code),
	)
	resp := ToTenantResponse(tenant)
	return &resp, nil
}

// GetByID returns a tenant
func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*TenantResponse, error) {
	var resp *TenantResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		tenant, err := appshared.LoadTenant(ctx, repos, id)
		if err != nil {
			return err
		}
		r := ToTenantResponse(tenant)
		resp = &r
		return nil
	})
	return resp, err
}

// UpdateSettings replaces the stock and tax settings. A default tax must be
// an active scheme of the tenant.
func (s *TenantService) UpdateSettings(ctx context.Context, id uuid.UUID, req TenantSettingsRequest) (*TenantResponse, error) {
	settings := identity.TenantSettings{
		AllowNegativeStock: req.AllowNegativeStock,
		TaxLevel:           tax.ApplicationLevel(strings.ToLower(req.TaxLevel)),
		DefaultTaxID:       req.DefaultTaxID,
	}

	var updated *identity.Tenant
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		tenant, err := appshared.LoadTenant(ctx, repos, id)
		if err != nil {
			return err
		}
		if settings.DefaultTaxID != nil {
			t, err := repos.Taxes().FindByIDForTenant(ctx, id, *settings.DefaultTaxID)
			if err != nil {
				return err
			}
			if !t.Active {
				return shared.NewValidationError("default tax %s is inactive", t.Name)
			}
		}
		if err := tenant.UpdateSettings(settings); err != nil {
			return err
		}
		if err := repos.Tenants().Save(ctx, tenant); err != nil {
			return err
		}
		updated = tenant
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tenant settings updated",
		zap.String("tenant_id", id.String()),
		zap.String("tax_level", string(settings.TaxLevel)),
		zap.Bool("allow_negative_stock", settings.AllowNegativeStock),
	)
	resp := ToTenantResponse(updated)
	return &resp, nil
}

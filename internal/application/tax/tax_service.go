package tax

import (
	"context"

	appshared "github.com/erp/ledger/internal/application/shared"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SubRateInput is one named component of a scheme
type SubRateInput struct {
	Name string          `json:"name" binding:"required,max=50"`
	Rate decimal.Decimal `json:"rate"`
}

// CreateTaxRequest creates a tax scheme
type CreateTaxRequest struct {
	Name     string         `json:"name" binding:"required,max=100"`
	SubRates []SubRateInput `json:"sub_rates" binding:"max=4,dive"`
	Country  string         `json:"country" binding:"max=2"`
}

// TaxResponse is a tax scheme with its effective rate
type TaxResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	SubRates      []SubRateInput  `json:"sub_rates"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`
	Active        bool            `json:"active"`
	Country       string          `json:"country,omitempty"`
}

// ToTaxResponse converts a tax scheme
func ToTaxResponse(t *tax.Tax) TaxResponse {
	rates := make([]SubRateInput, len(t.SubRates))
	for i, sr := range t.SubRates {
		rates[i] = SubRateInput{Name: sr.Name, Rate: sr.Rate}
	}
	return TaxResponse{
		ID:            t.ID,
		Name:          t.Name,
		SubRates:      rates,
		EffectiveRate: t.EffectiveRate(),
		Active:        t.Active,
		Country:       t.Country,
	}
}

// Service manages a tenant's tax schemes
type Service struct {
	txScope appshared.TransactionScope
	logger  *zap.Logger
}

// NewService creates a tax scheme service
func NewService(txScope appshared.TransactionScope, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{txScope: txScope, logger: logger}
}

// Create stores a new active scheme
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req CreateTaxRequest) (*TaxResponse, error) {
	rates := make([]tax.SubRate, len(req.SubRates))
	for i, sr := range req.SubRates {
		rates[i] = tax.SubRate{Name: sr.Name, Rate: sr.Rate}
	}
	t, err := tax.NewTax(tenantID, req.Name, rates, req.Country)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if _, err := appshared.LoadTenant(ctx, repos, tenantID); err != nil {
			return err
		}
		return repos.Taxes().Save(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tax created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("tax_id", t.ID.String()),
		zap.String("rate", t.EffectiveRate().String()),
	)
	resp := ToTaxResponse(t)
	return &resp, nil
}

// ListActive returns the tenant's active schemes ordered by name
func (s *Service) ListActive(ctx context.Context, tenantID uuid.UUID) ([]TaxResponse, error) {
	var out []TaxResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		taxes, err := repos.Taxes().FindActive(ctx, tenantID)
		if err != nil {
			return err
		}
		out = make([]TaxResponse, len(taxes))
		for i, t := range taxes {
			out[i] = ToTaxResponse(t)
		}
		return nil
	})
	return out, err
}

// Deactivate hides a scheme from new lines. Lines already written keep
// their snapshot rate.
func (s *Service) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		t, err := repos.Taxes().FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		t.Deactivate()
		return repos.Taxes().Save(ctx, t)
	})
}

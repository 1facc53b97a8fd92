// Package tax resolves tax rates against tenant configuration.
package tax

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/ledger/internal/domain/identity"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine turns tax references into rates and totals
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an Engine
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// ResolveRate returns the effective percentage of a tax reference.
// A nil reference is 0%. An unknown reference is 0% with a warning.
func (e *Engine) ResolveRate(ctx context.Context, taxes tax.Repository, tenantID uuid.UUID, taxRef *uuid.UUID) (decimal.Decimal, error) {
	if taxRef == nil {
		return decimal.Zero, nil
	}
	t, err := taxes.FindByIDForTenant(ctx, tenantID, *taxRef)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			e.logger.Warn("tax reference not found, using zero rate",
				zap.String("tenant_id", tenantID.String()),
				zap.String("tax_id", taxRef.String()),
			)
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("load tax %s: %w", taxRef, err)
	}
	return t.EffectiveRate(), nil
}

// LineTax returns qty * unitPrice * rate / 100 at monetary precision
func (e *Engine) LineTax(qty, unitPrice, rate decimal.Decimal) decimal.Decimal {
	return tax.LineTax(qty, unitPrice, rate)
}

// DocumentTax computes totals for lines at the given level
func (e *Engine) DocumentTax(lines []tax.TaxableLine, billRate decimal.Decimal, level tax.ApplicationLevel, accountRate decimal.Decimal) tax.Totals {
	return tax.DocumentTax(lines, level, billRate, accountRate)
}

// DocumentRate picks the document-wide tax for a new or edited document.
// At bill level the reference must be an active tax of the tenant; at
// account level the tenant default applies and no reference may be given.
func (e *Engine) DocumentRate(ctx context.Context, taxes tax.Repository, tenant *identity.Tenant, docTaxRef *uuid.UUID) (*uuid.UUID, decimal.Decimal, error) {
	level := tenant.Settings.TaxLevel
	switch level {
	case tax.LevelBill:
		if docTaxRef == nil {
			return nil, decimal.Zero, nil
		}
		t, err := taxes.FindByIDForTenant(ctx, tenant.ID, *docTaxRef)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, decimal.Zero, shared.NewValidationError("tax %s is not a tax of the tenant", docTaxRef)
			}
			return nil, decimal.Zero, fmt.Errorf("load document tax: %w", err)
		}
		if !t.Active {
			return nil, decimal.Zero, shared.NewValidationError("tax %s is inactive", t.Name)
		}
		id := t.ID
		return &id, t.EffectiveRate(), nil
	case tax.LevelAccount:
		if docTaxRef != nil {
			return nil, decimal.Zero, shared.NewValidationError("document tax is not allowed at %s level", level)
		}
		rate, err := e.ResolveRate(ctx, taxes, tenant.ID, tenant.Settings.DefaultTaxID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		return tenant.Settings.DefaultTaxID, rate, nil
	default:
		if docTaxRef != nil {
			return nil, decimal.Zero, shared.NewValidationError("document tax is not allowed at %s level", level)
		}
		return nil, decimal.Zero, nil
	}
}

package inventory

import (
	"context"
	"errors"
	"strings"

	appshared "github.com/erp/ledger/internal/application/shared"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockService answers stock queries and applies manual adjustments
type StockService struct {
	txScope appshared.TransactionScope
	locker  appshared.ItemLocker
	metrics *telemetry.BusinessMetrics
	logger  *zap.Logger
}

// NewStockService creates a StockService
func NewStockService(txScope appshared.TransactionScope, locker appshared.ItemLocker, metrics *telemetry.BusinessMetrics, logger *zap.Logger) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{txScope: txScope, locker: locker, metrics: metrics, logger: logger}
}

// GetStock returns the on-hand count, zero when the item never moved
func (s *StockService) GetStock(ctx context.Context, tenantID, itemID uuid.UUID) (decimal.Decimal, error) {
	count := decimal.Zero
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if _, err := repos.Items().FindByIDForTenant(ctx, tenantID, itemID, true); err != nil {
			return err
		}
		rec, err := repos.Stocks().FindByItem(ctx, tenantID, itemID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil
			}
			return err
		}
		count = rec.Count
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return count, nil
}

// AdjustStock applies a manual signed change with a mandatory reason
func (s *StockService) AdjustStock(ctx context.Context, tenantID, itemID uuid.UUID, delta decimal.Decimal, reason string) (*StockMovementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "adjust")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, tenantID.String(), telemetry.SpanAttrItemID, itemID.String())

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewValidationError("adjustment reason is required")
	}
	if delta.IsZero() {
		return nil, shared.NewValidationError("adjustment quantity cannot be zero")
	}
	if err := inventory.CheckQuantityScale(delta); err != nil {
		return nil, err
	}

	var held appshared.HeldLocks
	defer held.Release()

	var movement *inventory.StockMovement
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		tenant, err := appshared.LoadTenant(ctx, repos, tenantID)
		if err != nil {
			return err
		}
		item, err := repos.Items().FindByIDForTenant(ctx, tenantID, itemID, false)
		if err != nil {
			return err
		}

		release, err := s.locker.Lock(ctx, tenantID, []uuid.UUID{item.ID})
		if err != nil {
			return err
		}
		held.Hold(release)

		src := inventory.Source{Type: inventory.SourceAdjustment, ID: uuid.New(), Reason: reason}
		movement, err = appshared.Ledger(repos).ApplyDelta(ctx, tenantID, item.ID, delta, src, tenant.Settings.AllowNegativeStock)
		return err
	})
	if err != nil {
		if errors.Is(err, shared.ErrInsufficientStock) {
			s.metrics.RecordInsufficientStock(ctx, tenantID)
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordStockMovements(ctx, tenantID, string(inventory.SourceAdjustment), 1)
	s.logger.Info("stock adjusted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("item_id", itemID.String()),
		zap.String("delta", delta.String()),
		zap.String("balance", movement.BalanceAfter.String()),
	)
	resp := ToStockMovementResponse(movement)
	return &resp, nil
}

// ListMovements returns an item's movement history, newest first
func (s *StockService) ListMovements(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) (shared.Paginated[StockMovementResponse], error) {
	var page shared.Paginated[StockMovementResponse]
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if _, err := repos.Items().FindByIDForTenant(ctx, tenantID, itemID, true); err != nil {
			return err
		}
		rows, total, err := repos.Movements().FindByItem(ctx, tenantID, itemID, filter)
		if err != nil {
			return err
		}
		page = shared.NewPaginated(ToStockMovementResponses(rows), total, filter.Page, filter.Limit())
		return nil
	})
	return page, err
}

// VerifyConsistency checks that the item's count equals the sum of its movements
func (s *StockService) VerifyConsistency(ctx context.Context, tenantID, itemID uuid.UUID) (bool, error) {
	consistent := false
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		count := decimal.Zero
		rec, err := repos.Stocks().FindByItem(ctx, tenantID, itemID)
		switch {
		case err == nil:
			count = rec.Count
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}
		sum, err := repos.Movements().SumByItem(ctx, tenantID, itemID)
		if err != nil {
			return err
		}
		consistent = sum.Equal(count)
		return nil
	})
	return consistent, err
}

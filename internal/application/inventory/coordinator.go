package inventory

import (
	"context"
	"errors"
	"strings"

	appshared "github.com/erp/ledger/internal/application/shared"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockMovementCoordinator owns the lifecycle of GRNs and delivery notes.
// Every operation writes the document, its lines and the stock deltas in one
// transaction, holding the item locks until after commit.
type StockMovementCoordinator struct {
	txScope  appshared.TransactionScope
	locker   appshared.ItemLocker
	preparer *appshared.DocumentPreparer
	metrics  *telemetry.BusinessMetrics
	logger   *zap.Logger
}

// NewStockMovementCoordinator creates a StockMovementCoordinator
func NewStockMovementCoordinator(
	txScope appshared.TransactionScope,
	locker appshared.ItemLocker,
	preparer *appshared.DocumentPreparer,
	metrics *telemetry.BusinessMetrics,
	logger *zap.Logger,
) *StockMovementCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockMovementCoordinator{
		txScope:  txScope,
		locker:   locker,
		preparer: preparer,
		metrics:  metrics,
		logger:   logger,
	}
}

func requireStockKind(kind trade.DocumentKind) error {
	if !kind.MovesStock() {
		return shared.NewValidationError("%s does not move stock", kind)
	}
	return nil
}

// Create validates, numbers and persists a stock document, then applies its deltas
func (c *StockMovementCoordinator) Create(ctx context.Context, cmd appshared.CreateDocumentCommand) (*trade.Document, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_coordinator", "create")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, cmd.TenantID.String(), telemetry.SpanAttrDocumentKind, string(cmd.Kind))

	if err := requireStockKind(cmd.Kind); err != nil {
		return nil, err
	}

	var held appshared.HeldLocks
	defer held.Release()

	var created *trade.Document
	var moved int
	err := c.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		doc, tenant, err := c.preparer.Prepare(ctx, repos, cmd)
		if err != nil {
			return err
		}

		deltas := doc.StockDeltas()
		release, err := c.locker.Lock(ctx, tenant.ID, inventory.ItemIDs(deltas))
		if err != nil {
			return err
		}
		held.Hold(release)

		if err := repos.Documents().Create(ctx, doc); err != nil {
			return err
		}
		if err := repos.Lines().ReplaceAll(ctx, tenant.ID, doc.ID, doc.Lines); err != nil {
			return err
		}

		movements, err := appshared.Ledger(repos).ApplyAll(ctx, tenant.ID, deltas, doc.StockSource(""), tenant.Settings.AllowNegativeStock)
		if err != nil {
			return err
		}
		moved = len(movements)
		created = doc
		return nil
	})
	if err != nil {
		c.recordFailure(ctx, cmd.TenantID, err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	c.metrics.RecordDocumentWritten(ctx, created.TenantID, string(created.Kind), telemetry.OperationCreate)
	c.metrics.RecordStockMovements(ctx, created.TenantID, string(created.Kind.StockSource()), moved)
	c.logger.Info("stock document created",
		zap.String("tenant_id", created.TenantID.String()),
		zap.String("document_id", created.ID.String()),
		zap.String("kind", string(created.Kind)),
		zap.String("number", created.Number),
	)
	return created, nil
}

// Update reverses the persisted line set, replaces it and reapplies the new one.
// The stock check runs on the net effect before anything is written.
func (c *StockMovementCoordinator) Update(ctx context.Context, cmd appshared.UpdateDocumentCommand) (*trade.Document, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_coordinator", "update")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, cmd.TenantID.String(), telemetry.SpanAttrDocumentID, cmd.DocumentID.String())

	if err := requireStockKind(cmd.Kind); err != nil {
		return nil, err
	}

	var held appshared.HeldLocks
	defer held.Release()

	var updated *trade.Document
	var moved int
	err := c.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		tenant, err := appshared.LoadTenant(ctx, repos, cmd.TenantID)
		if err != nil {
			return err
		}
		doc, err := appshared.LoadForUpdate(ctx, repos, tenant.ID, cmd.Kind, cmd.DocumentID)
		if err != nil {
			return err
		}

		previous := doc.StockDeltas()
		if err := c.preparer.Revise(ctx, repos, tenant, doc, cmd); err != nil {
			return err
		}
		next := doc.StockDeltas()

		release, err := c.locker.Lock(ctx, tenant.ID, inventory.ItemIDs(previous, next))
		if err != nil {
			return err
		}
		held.Hold(release)

		movements, err := appshared.Ledger(repos).ApplySteps(ctx, tenant.ID, []inventory.Step{
			{Deltas: inventory.Reverse(previous), Source: doc.StockSource("document edited: reversal")},
			{Deltas: next, Source: doc.StockSource("document edited: reapply")},
		}, tenant.Settings.AllowNegativeStock)
		if err != nil {
			return err
		}

		if err := repos.Lines().ReplaceAll(ctx, tenant.ID, doc.ID, doc.Lines); err != nil {
			return err
		}
		if err := repos.Documents().Update(ctx, doc); err != nil {
			return err
		}
		moved = len(movements)
		updated = doc
		return nil
	})
	if err != nil {
		c.recordFailure(ctx, cmd.TenantID, err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	c.metrics.RecordDocumentWritten(ctx, updated.TenantID, string(updated.Kind), telemetry.OperationUpdate)
	c.metrics.RecordStockMovements(ctx, updated.TenantID, string(updated.Kind.StockSource()), moved)
	c.logger.Info("stock document updated",
		zap.String("tenant_id", updated.TenantID.String()),
		zap.String("document_id", updated.ID.String()),
		zap.Int("movements", moved),
	)
	return updated, nil
}

// Delete reverses the persisted deltas, soft-deletes the document and drops its lines
func (c *StockMovementCoordinator) Delete(ctx context.Context, tenantID uuid.UUID, kind trade.DocumentKind, documentID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_coordinator", "delete")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, tenantID.String(), telemetry.SpanAttrDocumentID, documentID.String())

	if err := requireStockKind(kind); err != nil {
		return err
	}

	var held appshared.HeldLocks
	defer held.Release()

	err := c.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		tenant, err := appshared.LoadTenant(ctx, repos, tenantID)
		if err != nil {
			return err
		}
		doc, err := appshared.LoadForUpdate(ctx, repos, tenant.ID, kind, documentID)
		if err != nil {
			return err
		}

		reversal := inventory.Reverse(doc.StockDeltas())
		release, err := c.locker.Lock(ctx, tenant.ID, inventory.ItemIDs(reversal))
		if err != nil {
			return err
		}
		held.Hold(release)

		reason := "document deleted"
		if _, err := appshared.Ledger(repos).ApplyAll(ctx, tenant.ID, reversal, doc.StockSource(reason), tenant.Settings.AllowNegativeStock); err != nil {
			return err
		}
		if err := doc.Delete(); err != nil {
			return err
		}
		if err := repos.Documents().Update(ctx, doc); err != nil {
			return err
		}
		return repos.Lines().DeleteByDocument(ctx, tenant.ID, doc.ID)
	})
	if err != nil {
		c.recordFailure(ctx, tenantID, err)
		telemetry.RecordError(span, err)
		return err
	}

	c.metrics.RecordDocumentWritten(ctx, tenantID, string(kind), telemetry.OperationDelete)
	c.logger.Info("stock document deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("document_id", documentID.String()),
		zap.String("kind", strings.ToLower(string(kind))),
	)
	return nil
}

func (c *StockMovementCoordinator) recordFailure(ctx context.Context, tenantID uuid.UUID, err error) {
	if errors.Is(err, shared.ErrInsufficientStock) {
		c.metrics.RecordInsufficientStock(ctx, tenantID)
		c.logger.Warn("stock operation rejected", zap.String("tenant_id", tenantID.String()), zap.Error(err))
	}
}

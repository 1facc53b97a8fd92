package trade

import (
	"context"

	appinv "github.com/erp/ledger/internal/application/inventory"
	appshared "github.com/erp/ledger/internal/application/shared"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentService is the entry point for every document kind. Stock
// documents are handed to the StockMovementCoordinator; sales and purchases
// queue their journal entry through the outbox in the same transaction.
type DocumentService struct {
	txScope     appshared.TransactionScope
	preparer    *appshared.DocumentPreparer
	coordinator *appinv.StockMovementCoordinator
	metrics     *telemetry.BusinessMetrics
	logger      *zap.Logger
}

// NewDocumentService creates a DocumentService
func NewDocumentService(
	txScope appshared.TransactionScope,
	preparer *appshared.DocumentPreparer,
	coordinator *appinv.StockMovementCoordinator,
	metrics *telemetry.BusinessMetrics,
	logger *zap.Logger,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		txScope:     txScope,
		preparer:    preparer,
		coordinator: coordinator,
		metrics:     metrics,
		logger:      logger,
	}
}

// Create creates a document and returns it with its assigned number
func (s *DocumentService) Create(ctx context.Context, cmd appshared.CreateDocumentCommand) (*DocumentResponse, error) {
	if cmd.Kind.MovesStock() {
		doc, err := s.coordinator.Create(ctx, cmd)
		if err != nil {
			return nil, err
		}
		resp := ToDocumentResponse(doc)
		return &resp, nil
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "document", "create")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, cmd.TenantID.String(), telemetry.SpanAttrDocumentKind, string(cmd.Kind))

	var created *trade.Document
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		doc, tenant, err := s.preparer.Prepare(ctx, repos, cmd)
		if err != nil {
			return err
		}
		doc.RequestJournal(finance.JournalActionCreate)

		if err := repos.Documents().Create(ctx, doc); err != nil {
			return err
		}
		if err := repos.Lines().ReplaceAll(ctx, tenant.ID, doc.ID, doc.Lines); err != nil {
			return err
		}
		if err := appshared.RecordEvents(ctx, repos, doc); err != nil {
			return err
		}
		created = doc
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordDocumentWritten(ctx, created.TenantID, string(created.Kind), telemetry.OperationCreate)
	s.logger.Info("document created",
		zap.String("tenant_id", created.TenantID.String()),
		zap.String("document_id", created.ID.String()),
		zap.String("kind", string(created.Kind)),
		zap.String("number", created.Number),
		zap.String("total", created.Total.String()),
	)
	resp := ToDocumentResponse(created)
	return &resp, nil
}

// Update replaces a document's line set. Sales and purchases queue a
// replacement of their journal entry.
func (s *DocumentService) Update(ctx context.Context, cmd appshared.UpdateDocumentCommand) (*DocumentResponse, error) {
	if cmd.Kind.MovesStock() {
		doc, err := s.coordinator.Update(ctx, cmd)
		if err != nil {
			return nil, err
		}
		resp := ToDocumentResponse(doc)
		return &resp, nil
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "document", "update")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, cmd.TenantID.String(), telemetry.SpanAttrDocumentID, cmd.DocumentID.String())

	var updated *trade.Document
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		tenant, err := appshared.LoadTenant(ctx, repos, cmd.TenantID)
		if err != nil {
			return err
		}
		doc, err := appshared.LoadForUpdate(ctx, repos, tenant.ID, cmd.Kind, cmd.DocumentID)
		if err != nil {
			return err
		}
		if err := s.preparer.Revise(ctx, repos, tenant, doc, cmd); err != nil {
			return err
		}
		doc.RequestJournal(finance.JournalActionReplace)

		if err := repos.Lines().ReplaceAll(ctx, tenant.ID, doc.ID, doc.Lines); err != nil {
			return err
		}
		if err := repos.Documents().Update(ctx, doc); err != nil {
			return err
		}
		if err := appshared.RecordEvents(ctx, repos, doc); err != nil {
			return err
		}
		updated = doc
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordDocumentWritten(ctx, updated.TenantID, string(updated.Kind), telemetry.OperationUpdate)
	s.logger.Info("document updated",
		zap.String("tenant_id", updated.TenantID.String()),
		zap.String("document_id", updated.ID.String()),
		zap.String("total", updated.Total.String()),
	)
	resp := ToDocumentResponse(updated)
	return &resp, nil
}

// Delete soft-deletes a document; its number is never reused
func (s *DocumentService) Delete(ctx context.Context, tenantID uuid.UUID, kind trade.DocumentKind, id uuid.UUID) error {
	if kind.MovesStock() {
		return s.coordinator.Delete(ctx, tenantID, kind, id)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "document", "delete")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, tenantID.String(), telemetry.SpanAttrDocumentID, id.String())

	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		doc, err := appshared.LoadForUpdate(ctx, repos, tenantID, kind, id)
		if err != nil {
			return err
		}
		if err := doc.Delete(); err != nil {
			return err
		}
		if err := repos.Documents().Update(ctx, doc); err != nil {
			return err
		}
		if err := repos.Lines().DeleteByDocument(ctx, tenantID, doc.ID); err != nil {
			return err
		}
		return appshared.RecordEvents(ctx, repos, doc)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.metrics.RecordDocumentWritten(ctx, tenantID, string(kind), telemetry.OperationDelete)
	s.logger.Info("document deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("document_id", id.String()),
		zap.String("kind", string(kind)),
	)
	return nil
}

// Get returns a document of the kind; includeDeleted makes soft-deleted ones visible
func (s *DocumentService) Get(ctx context.Context, tenantID uuid.UUID, kind trade.DocumentKind, id uuid.UUID, includeDeleted bool) (*DocumentResponse, error) {
	var resp *DocumentResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		doc, err := repos.Documents().FindByIDForTenant(ctx, tenantID, id, includeDeleted)
		if err != nil {
			return err
		}
		if doc.Kind != kind {
			return shared.NewNotFoundError("document", id)
		}
		r := ToDocumentResponse(doc)
		resp = &r
		return nil
	})
	return resp, err
}

// List pages through documents of a kind
func (s *DocumentService) List(ctx context.Context, tenantID uuid.UUID, filter trade.DocumentFilter) (shared.Paginated[DocumentResponse], error) {
	var page shared.Paginated[DocumentResponse]
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		docs, total, err := repos.Documents().FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		items := make([]DocumentResponse, len(docs))
		for i, d := range docs {
			items[i] = ToDocumentResponse(d)
		}
		page = shared.NewPaginated(items, total, filter.Page, filter.Limit())
		return nil
	})
	return page, err
}

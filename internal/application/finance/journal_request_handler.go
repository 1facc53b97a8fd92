package finance

import (
	"context"
	"errors"
	"fmt"

	appshared "github.com/erp/ledger/internal/application/shared"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JournalRequestHandler turns JournalRequested events delivered by the
// outbox into posted entries. Each event is handled in its own transaction;
// an error is returned to the outbox so the event is retried.
type JournalRequestHandler struct {
	txScope  appshared.TransactionScope
	journals *JournalEntryService
	metrics  *telemetry.BusinessMetrics
	logger   *zap.Logger
}

// NewJournalRequestHandler creates a JournalRequestHandler
func NewJournalRequestHandler(
	txScope appshared.TransactionScope,
	journals *JournalEntryService,
	metrics *telemetry.BusinessMetrics,
	logger *zap.Logger,
) *JournalRequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalRequestHandler{
		txScope:  txScope,
		journals: journals,
		metrics:  metrics,
		logger:   logger,
	}
}

// EventTypes implements shared.EventHandler
func (h *JournalRequestHandler) EventTypes() []string {
	return []string{finance.EventTypeJournalRequested}
}

// journalSource abstracts the sale, purchase or payment an entry is generated from
type journalSource struct {
	tenantID  uuid.UUID
	id        uuid.UUID
	deleted   bool
	zeroTotal bool
	state     finance.JournalState
	create    func(ctx context.Context, repos appshared.TransactionalRepositories) (*finance.JournalEntry, error)
	saveState func(ctx context.Context, repos appshared.TransactionalRepositories, state finance.JournalState) error
}

// Handle implements shared.EventHandler
func (h *JournalRequestHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	req, ok := event.(*finance.JournalRequestedEvent)
	if !ok {
		return fmt.Errorf("journal handler: unexpected event %T", event)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "journal", "handle_request")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID().String(),
		telemetry.SpanAttrDocumentID, req.SourceID.String(),
	)

	var outcome string
	err := h.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		src, err := h.loadSource(ctx, repos, req)
		if err != nil {
			return err
		}
		outcome, err = h.apply(ctx, repos, req, src)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		h.fail(ctx, req, err)
		return err
	}

	h.logger.Info("journal request handled",
		zap.String("tenant_id", req.TenantID().String()),
		zap.String("source_type", string(req.SourceType)),
		zap.String("source_id", req.SourceID.String()),
		zap.String("action", string(req.Action)),
		zap.String("outcome", outcome),
	)
	return nil
}

func (h *JournalRequestHandler) apply(ctx context.Context, repos appshared.TransactionalRepositories, req *finance.JournalRequestedEvent, src *journalSource) (string, error) {
	active, err := repos.JournalEntries().FindActiveBySource(ctx, src.tenantID, req.SourceType, src.id)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return "", err
	}
	if err != nil {
		active = nil
	}

	action := req.Action
	if src.deleted {
		action = finance.JournalActionReverse
	}

	state := src.state
	outcome := "noop"

	switch action {
	case finance.JournalActionCreate:
		if active != nil {
			// redelivery of an already handled request
			state.Posted(active.ID)
			outcome = "already_posted"
			break
		}
		if src.zeroTotal {
			state.Cleared()
			outcome = "zero_total"
			break
		}
		entry, err := src.create(ctx, repos)
		if err != nil {
			return "", err
		}
		state.Posted(entry.ID)
		outcome = "posted"
		h.metrics.RecordJournalPosted(ctx, src.tenantID, string(req.SourceType))

	case finance.JournalActionReplace:
		if active != nil && !active.CreatedAt.Before(req.OccurredAt()) {
			// the active entry already reflects this edit
			state.Posted(active.ID)
			outcome = "already_replaced"
			break
		}
		if active != nil {
			if _, err := h.journals.ReverseInTx(ctx, repos, active, "source document updated"); err != nil {
				return "", err
			}
			h.metrics.RecordJournalReversed(ctx, src.tenantID)
		}
		if src.zeroTotal {
			state.Cleared()
			outcome = "zero_total"
			break
		}
		entry, err := src.create(ctx, repos)
		if err != nil {
			return "", err
		}
		state.Posted(entry.ID)
		outcome = "replaced"
		h.metrics.RecordJournalPosted(ctx, src.tenantID, string(req.SourceType))

	case finance.JournalActionReverse:
		if active != nil {
			if _, err := h.journals.ReverseInTx(ctx, repos, active, "source deleted"); err != nil {
				return "", err
			}
			h.metrics.RecordJournalReversed(ctx, src.tenantID)
			outcome = "reversed"
		}
		state.Cleared()

	default:
		return "", shared.NewValidationError("unknown journal action %q", req.Action)
	}

	if err := src.saveState(ctx, repos, state); err != nil {
		return "", err
	}
	return outcome, nil
}

func (h *JournalRequestHandler) loadSource(ctx context.Context, repos appshared.TransactionalRepositories, req *finance.JournalRequestedEvent) (*journalSource, error) {
	tenantID := req.TenantID()

	switch req.SourceType {
	case finance.SourceSale, finance.SourcePurchase:
		doc, err := repos.Documents().FindByIDForTenant(ctx, tenantID, req.SourceID, true)
		if err != nil {
			return nil, err
		}
		if src, ok := doc.Kind.JournalSource(); !ok || src != req.SourceType {
			return nil, shared.NewValidationError("document %s is a %s, not a %s", doc.ID, doc.Kind, req.SourceType)
		}
		return &journalSource{
			tenantID:  tenantID,
			id:        doc.ID,
			deleted:   doc.IsDeleted(),
			zeroTotal: doc.Total.IsZero(),
			state:     doc.Journal,
			create: func(ctx context.Context, repos appshared.TransactionalRepositories) (*finance.JournalEntry, error) {
				if doc.Kind == trade.KindSale {
					return h.journals.CreateFromSale(ctx, repos, doc)
				}
				return h.journals.CreateFromPurchase(ctx, repos, doc)
			},
			saveState: func(ctx context.Context, repos appshared.TransactionalRepositories, state finance.JournalState) error {
				return repos.Documents().UpdateJournalState(ctx, tenantID, doc.ID, state)
			},
		}, nil

	case finance.SourcePayment:
		p, err := repos.Payments().FindByIDForTenant(ctx, tenantID, req.SourceID, true)
		if err != nil {
			return nil, err
		}
		return &journalSource{
			tenantID:  tenantID,
			id:        p.ID,
			deleted:   p.IsDeleted(),
			zeroTotal: p.Amount.IsZero(),
			state:     p.Journal,
			create: func(ctx context.Context, repos appshared.TransactionalRepositories) (*finance.JournalEntry, error) {
				return h.journals.CreateFromPayment(ctx, repos, p)
			},
			saveState: func(ctx context.Context, repos appshared.TransactionalRepositories, state finance.JournalState) error {
				return repos.Payments().UpdateJournalState(ctx, tenantID, p.ID, state)
			},
		}, nil
	}
	return nil, shared.NewValidationError("journal requests are not supported for %s", req.SourceType)
}

// fail records FAILED on the source in a fresh transaction. The original
// error is what goes back to the outbox.
func (h *JournalRequestHandler) fail(ctx context.Context, req *finance.JournalRequestedEvent, cause error) {
	h.metrics.RecordJournalFailed(ctx, req.TenantID(), string(req.SourceType))
	h.logger.Error("journal request failed",
		zap.String("tenant_id", req.TenantID().String()),
		zap.String("source_type", string(req.SourceType)),
		zap.String("source_id", req.SourceID.String()),
		zap.String("action", string(req.Action)),
		zap.Error(cause),
	)

	err := h.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		src, err := h.loadSource(ctx, repos, req)
		if err != nil {
			return err
		}
		state := src.state
		state.Failed(cause.Error())
		return src.saveState(ctx, repos, state)
	})
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		h.logger.Warn("failed to mark journal state",
			zap.String("source_id", req.SourceID.String()),
			zap.Error(err),
		)
	}
}

var _ shared.EventHandler = (*JournalRequestHandler)(nil)

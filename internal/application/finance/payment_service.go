package finance

import (
	"context"
	"time"

	appshared "github.com/erp/ledger/internal/application/shared"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService records payments. Their journal entries are posted by the
// JournalRequestHandler after commit.
type PaymentService struct {
	txScope appshared.TransactionScope
	metrics *telemetry.BusinessMetrics
	logger  *zap.Logger
}

// NewPaymentService creates a PaymentService
func NewPaymentService(txScope appshared.TransactionScope, metrics *telemetry.BusinessMetrics, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{txScope: txScope, metrics: metrics, logger: logger}
}

// CreatePayment stores a payment and queues its entry
func (s *PaymentService) CreatePayment(ctx context.Context, tenantID uuid.UUID, req CreatePaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "create")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, tenantID.String())

	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}

	var created *finance.Payment
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if _, err := appshared.LoadTenant(ctx, repos, tenantID); err != nil {
			return err
		}
		if req.DocumentID != nil {
			doc, err := repos.Documents().FindByIDForTenant(ctx, tenantID, *req.DocumentID, false)
			if err != nil {
				return err
			}
			if _, ok := doc.Kind.JournalSource(); !ok {
				return shared.NewValidationError("payments can only settle sales or purchases, not %s", doc.Kind)
			}
		}

		p, err := finance.NewPayment(tenantID, finance.PaymentDirection(req.Direction), req.PartyID, req.Amount, date, finance.PaymentMode(req.Mode))
		if err != nil {
			return err
		}
		p.SetReference(req.Reference, req.DocumentID)

		if err := repos.Payments().Create(ctx, p); err != nil {
			return err
		}
		if err := appshared.RecordEvents(ctx, repos, p); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordDocumentWritten(ctx, tenantID, string(finance.SourcePayment), telemetry.OperationCreate)
	s.logger.Info("payment created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payment_id", created.ID.String()),
		zap.String("direction", string(created.Direction)),
		zap.String("amount", created.Amount.String()),
	)
	resp := ToPaymentResponse(created)
	return &resp, nil
}

// DeletePayment soft-deletes a payment and queues the reversal of its entry
func (s *PaymentService) DeletePayment(ctx context.Context, tenantID, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, tenantID.String())

	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		p, err := repos.Payments().FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := p.Delete(); err != nil {
			return err
		}
		if err := repos.Payments().Update(ctx, p); err != nil {
			return err
		}
		return appshared.RecordEvents(ctx, repos, p)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.metrics.RecordDocumentWritten(ctx, tenantID, string(finance.SourcePayment), telemetry.OperationDelete)
	s.logger.Info("payment deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payment_id", id.String()),
	)
	return nil
}

// GetPayment returns a payment, deleted ones included
func (s *PaymentService) GetPayment(ctx context.Context, tenantID, id uuid.UUID) (*PaymentResponse, error) {
	var resp *PaymentResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		p, err := repos.Payments().FindByIDForTenant(ctx, tenantID, id, true)
		if err != nil {
			return err
		}
		r := ToPaymentResponse(p)
		resp = &r
		return nil
	})
	return resp, err
}

package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	appshared "github.com/erp/ledger/internal/application/shared"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/numbering"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JournalEntryService builds, posts and reverses journal entries.
//
// The CreateFrom* and ReverseInTx methods run inside a caller's transaction
// and are used by the journal request handler. Post, Reverse and
// CreateManual open their own transaction.
type JournalEntryService struct {
	txScope appshared.TransactionScope
	metrics *telemetry.BusinessMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewJournalEntryService creates a JournalEntryService
func NewJournalEntryService(
	txScope appshared.TransactionScope,
	metrics *telemetry.BusinessMetrics,
	logger *zap.Logger,
) *JournalEntryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalEntryService{
		txScope: txScope,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// GenerateEntryNumber hands out the next JE-#### number of the tenant
func (s *JournalEntryService) GenerateEntryNumber(ctx context.Context, repos appshared.TransactionalRepositories, tenantID uuid.UUID) (string, error) {
	return appshared.Numbers(repos).Next(ctx, tenantID, numbering.KindJournalEntry)
}

// CreateFromPurchase posts Dr Inventory, Dr Tax Payable, Cr Accounts Payable
func (s *JournalEntryService) CreateFromPurchase(ctx context.Context, repos appshared.TransactionalRepositories, doc *trade.Document) (*finance.JournalEntry, error) {
	if doc.Kind != trade.KindPurchase {
		return nil, shared.NewValidationError("document %s is not a purchase", doc.ID)
	}
	chart, err := repos.Accounts().PostingChart(ctx, doc.TenantID)
	if err != nil {
		return nil, err
	}
	specs, err := finance.PurchaseLines(chart, tradeAmounts(doc))
	if err != nil {
		return nil, err
	}
	return s.createPosted(ctx, repos, doc.TenantID, finance.SourcePurchase, doc.ID, doc.Date,
		fmt.Sprintf("Purchase %s", doc.Number), specs)
}

// CreateFromSale posts Dr Accounts Receivable, Cr Sales Revenue, Cr Tax Payable
func (s *JournalEntryService) CreateFromSale(ctx context.Context, repos appshared.TransactionalRepositories, doc *trade.Document) (*finance.JournalEntry, error) {
	if doc.Kind != trade.KindSale {
		return nil, shared.NewValidationError("document %s is not a sale", doc.ID)
	}
	chart, err := repos.Accounts().PostingChart(ctx, doc.TenantID)
	if err != nil {
		return nil, err
	}
	specs, err := finance.SaleLines(chart, tradeAmounts(doc))
	if err != nil {
		return nil, err
	}
	return s.createPosted(ctx, repos, doc.TenantID, finance.SourceSale, doc.ID, doc.Date,
		fmt.Sprintf("Sale %s", doc.Number), specs)
}

// CreateFromPayment posts the cash or bank movement of a payment
func (s *JournalEntryService) CreateFromPayment(ctx context.Context, repos appshared.TransactionalRepositories, p *finance.Payment) (*finance.JournalEntry, error) {
	chart, err := repos.Accounts().PostingChart(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	specs, err := finance.PaymentLines(chart, p)
	if err != nil {
		return nil, err
	}
	description := fmt.Sprintf("Payment %s", p.Direction)
	if p.Reference != "" {
		description += " " + p.Reference
	}
	return s.createPosted(ctx, repos, p.TenantID, finance.SourcePayment, p.ID, p.Date, description, specs)
}

func tradeAmounts(doc *trade.Document) finance.TradeAmounts {
	return finance.TradeAmounts{
		Subtotal: doc.Subtotal,
		Tax:      doc.TaxAmount,
		Total:    doc.Total,
		PartyID:  doc.PartyID,
	}
}

func (s *JournalEntryService) createPosted(
	ctx context.Context,
	repos appshared.TransactionalRepositories,
	tenantID uuid.UUID,
	sourceType finance.SourceType,
	sourceID uuid.UUID,
	date time.Time,
	description string,
	specs []finance.LineSpec,
) (*finance.JournalEntry, error) {
	number, err := s.GenerateEntryNumber(ctx, repos, tenantID)
	if err != nil {
		return nil, err
	}
	entry, err := finance.NewJournalEntry(tenantID, number, date, sourceType, &sourceID, description)
	if err != nil {
		return nil, err
	}
	if err := entry.AddLines(specs); err != nil {
		return nil, err
	}
	if err := entry.Post(s.now()); err != nil {
		return nil, err
	}
	if err := repos.JournalEntries().Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ReverseInTx creates and stores the mirror of entry, and links both
func (s *JournalEntryService) ReverseInTx(ctx context.Context, repos appshared.TransactionalRepositories, entry *finance.JournalEntry, reason string) (*finance.JournalEntry, error) {
	if !entry.IsPosted {
		return nil, shared.ErrNotPosted.WithEntity(entry.ID)
	}
	if entry.IsReversed {
		return nil, shared.ErrAlreadyReversed.WithEntity(entry.ID)
	}
	number, err := s.GenerateEntryNumber(ctx, repos, entry.TenantID)
	if err != nil {
		return nil, err
	}
	mirror, err := entry.Reverse(number, reason, s.now())
	if err != nil {
		return nil, err
	}
	if err := repos.JournalEntries().Create(ctx, mirror); err != nil {
		return nil, err
	}
	if err := repos.JournalEntries().Update(ctx, entry); err != nil {
		return nil, err
	}
	return mirror, nil
}

// Post freezes a draft entry
func (s *JournalEntryService) Post(ctx context.Context, tenantID, entryID uuid.UUID) (*JournalEntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "journal", "post")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, tenantID.String(), telemetry.SpanAttrEntryID, entryID.String())

	var posted *finance.JournalEntry
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		entry, err := repos.JournalEntries().FindByIDForUpdate(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if err := entry.Post(s.now()); err != nil {
			return err
		}
		if err := repos.JournalEntries().Update(ctx, entry); err != nil {
			return err
		}
		posted = entry
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordJournalPosted(ctx, tenantID, string(posted.SourceType))
	s.logger.Info("journal entry posted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("entry_id", posted.ID.String()),
		zap.String("entry_number", posted.EntryNumber),
		zap.String("total", posted.TotalDebit().String()),
	)
	resp := ToJournalEntryResponse(posted)
	return &resp, nil
}

// Reverse posts the mirror of a posted entry and returns the mirror's id
func (s *JournalEntryService) Reverse(ctx context.Context, tenantID, entryID uuid.UUID, reason string) (uuid.UUID, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "journal", "reverse")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, tenantID.String(), telemetry.SpanAttrEntryID, entryID.String())

	var mirror *finance.JournalEntry
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		entry, err := repos.JournalEntries().FindByIDForUpdate(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		mirror, err = s.ReverseInTx(ctx, repos, entry, reason)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return uuid.Nil, err
	}

	s.metrics.RecordJournalReversed(ctx, tenantID)
	s.logger.Info("journal entry reversed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("entry_id", entryID.String()),
		zap.String("reversal_id", mirror.ID.String()),
	)
	return mirror.ID, nil
}

// CreateManual stores an unposted manual entry after checking that every
// account belongs to the tenant
func (s *JournalEntryService) CreateManual(ctx context.Context, tenantID uuid.UUID, req CreateManualEntryRequest) (*JournalEntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "journal", "create_manual")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, tenantID.String())

	date := s.now()
	if req.EntryDate != nil && !req.EntryDate.IsZero() {
		date = *req.EntryDate
	}

	var created *finance.JournalEntry
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if len(req.Lines) == 0 {
			return shared.NewValidationError("journal entry needs at least one line")
		}
		ids := make([]uuid.UUID, 0, len(req.Lines))
		for _, l := range req.Lines {
			ids = append(ids, l.AccountID)
		}
		accounts, err := repos.Accounts().FindByIDs(ctx, tenantID, ids)
		if err != nil {
			return err
		}

		number, err := s.GenerateEntryNumber(ctx, repos, tenantID)
		if err != nil {
			return err
		}
		entry, err := finance.NewJournalEntry(tenantID, number, date, finance.SourceManual, nil, req.Description)
		if err != nil {
			return err
		}
		for i, l := range req.Lines {
			if _, ok := accounts[l.AccountID]; !ok {
				return shared.NewValidationError("line %d: account %s not found", i+1, l.AccountID)
			}
			if err := entry.AddLine(l.AccountID, l.Debit, l.Credit, l.PartyID, l.Memo); err != nil {
				return lineError(i, err)
			}
		}
		if err := repos.JournalEntries().Create(ctx, entry); err != nil {
			return err
		}
		created = entry
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("manual journal entry created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("entry_id", created.ID.String()),
		zap.String("entry_number", created.EntryNumber),
	)
	resp := ToJournalEntryResponse(created)
	return &resp, nil
}

func lineError(i int, err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return &shared.DomainError{
			Code:     de.Code,
			Message:  fmt.Sprintf("line %d: %s", i+1, de.Message),
			EntityID: de.EntityID,
		}
	}
	return err
}

// Get returns an entry with its lines
func (s *JournalEntryService) Get(ctx context.Context, tenantID, entryID uuid.UUID) (*JournalEntryResponse, error) {
	var resp *JournalEntryResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		entry, err := repos.JournalEntries().FindByIDForTenant(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		r := ToJournalEntryResponse(entry)
		resp = &r
		return nil
	})
	return resp, err
}

// List pages through a tenant's entries, newest first
func (s *JournalEntryService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[JournalEntryResponse], error) {
	var page shared.Paginated[JournalEntryResponse]
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		entries, total, err := repos.JournalEntries().FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		items := make([]JournalEntryResponse, len(entries))
		for i, e := range entries {
			items[i] = ToJournalEntryResponse(e)
		}
		page = shared.NewPaginated(items, total, filter.Page, filter.Limit())
		return nil
	})
	return page, err
}

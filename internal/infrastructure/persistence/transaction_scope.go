package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	appshared "github.com/erp/ledger/internal/application/shared"
	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/identity"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/numbering"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/erp/ledger/internal/domain/trade"
	"gorm.io/gorm"
)

// DefaultTransactionTimeout bounds a unit of work when none is configured
const DefaultTransactionTimeout = 10 * time.Second

// TxEventRecorderFactory binds an outbox recorder to a transaction
type TxEventRecorderFactory interface {
	Recorder(tx *gorm.DB) shared.EventRecorder
}

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db      *gorm.DB
	events  TxEventRecorderFactory
	timeout time.Duration
}

// NewGormTransactionScope creates a new GormTransactionScope. events may be nil,
// in which case recorded events are dropped.
func NewGormTransactionScope(db *gorm.DB, events TxEventRecorderFactory, timeout time.Duration) *GormTransactionScope {
	if timeout <= 0 {
		timeout = DefaultTransactionTimeout
	}
	return &GormTransactionScope{db: db, events: events, timeout: timeout}
}

// Execute runs fn within a database transaction bounded by the scope timeout.
// If fn returns an error, or the deadline passes, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshared.TransactionalRepositories) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx, events: s.events}
		if err := fn(repos); err != nil {
			return err
		}
		return ctx.Err()
	})
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("transaction exceeded %s: %w", s.timeout, err)
	}
	return err
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx     *gorm.DB
	events TxEventRecorderFactory
}

func (r *gormTransactionalRepositories) Tenants() identity.TenantRepository {
	return NewGormTenantRepository(r.tx)
}

func (r *gormTransactionalRepositories) Items() catalog.ItemRepository {
	return NewGormItemRepository(r.tx)
}

func (r *gormTransactionalRepositories) Taxes() tax.Repository {
	return NewGormTaxRepository(r.tx)
}

func (r *gormTransactionalRepositories) Stocks() inventory.StockRepository {
	return NewGormStockRepository(r.tx)
}

func (r *gormTransactionalRepositories) Movements() inventory.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) Documents() trade.DocumentRepository {
	return NewGormDocumentRepository(r.tx)
}

func (r *gormTransactionalRepositories) Lines() trade.LineRepository {
	return NewGormLineRepository(r.tx)
}

func (r *gormTransactionalRepositories) Sequences() numbering.SequenceRepository {
	return NewGormSequenceRepository(r.tx)
}

func (r *gormTransactionalRepositories) NumberSeeds() numbering.SeedSource {
	return NewGormNumberSeedSource(r.tx)
}

func (r *gormTransactionalRepositories) Accounts() finance.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

func (r *gormTransactionalRepositories) JournalEntries() finance.JournalEntryRepository {
	return NewGormJournalEntryRepository(r.tx)
}

func (r *gormTransactionalRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// Events returns the outbox recorder bound to the transaction
func (r *gormTransactionalRepositories) Events() shared.EventRecorder {
	if r.events == nil {
		return discardRecorder{}
	}
	return r.events.Recorder(r.tx)
}

type discardRecorder struct{}

func (discardRecorder) Record(context.Context, ...shared.DomainEvent) error { return nil }

// Ensure GormTransactionScope implements TransactionScope
var _ appshared.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appshared.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

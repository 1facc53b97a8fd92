package shared

import (
	"context"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/identity"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/numbering"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/erp/ledger/internal/domain/trade"
)

// TransactionScope runs a unit of work in one database transaction.
// If fn returns an error, or the configured timeout elapses, everything is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to every repository bound to the
// current transaction, plus the outbox recorder.
type TransactionalRepositories interface {
	Tenants() identity.TenantRepository
	Items() catalog.ItemRepository
	Taxes() tax.Repository
	Stocks() inventory.StockRepository
	Movements() inventory.MovementRepository
	Documents() trade.DocumentRepository
	Lines() trade.LineRepository
	Sequences() numbering.SequenceRepository
	NumberSeeds() numbering.SeedSource
	Accounts() finance.AccountRepository
	JournalEntries() finance.JournalEntryRepository
	Payments() finance.PaymentRepository
	// Events stores domain events in the outbox inside the transaction
	Events() shared.EventRecorder
}

// Ledger returns a stock ledger over the transaction's repositories
func Ledger(repos TransactionalRepositories) *inventory.Ledger {
	return inventory.NewLedger(repos.Stocks(), repos.Movements())
}

// Numbers returns a number generator over the transaction's counter table
func Numbers(repos TransactionalRepositories) *numbering.Generator {
	return numbering.NewGenerator(repos.Sequences(), repos.NumberSeeds())
}

// RecordEvents moves an aggregate's pending events into the outbox
func RecordEvents(ctx context.Context, repos TransactionalRepositories, agg shared.AggregateRoot) error {
	events := agg.GetDomainEvents()
	if len(events) == 0 {
		return nil
	}
	if err := repos.Events().Record(ctx, events...); err != nil {
		return err
	}
	agg.ClearDomainEvents()
	return nil
}

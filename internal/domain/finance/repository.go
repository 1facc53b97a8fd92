package finance

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountRepository persists the chart of accounts
type AccountRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*Account, error)
	// FindByIDs returns the tenant's accounts among ids keyed by id
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Account, error)
	// PostingChart returns the system-key mapping of the tenant
	PostingChart(ctx context.Context, tenantID uuid.UUID) (PostingChart, error)
	HasChildren(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	Create(ctx context.Context, accounts ...*Account) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// JournalEntryRepository persists entries with their lines
type JournalEntryRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*JournalEntry, error)
	// FindByIDForUpdate loads the entry with a row lock
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*JournalEntry, error)
	// FindActiveBySource returns the posted, unreversed entry generated from a source,
	// or a NOT_FOUND error
	FindActiveBySource(ctx context.Context, tenantID uuid.UUID, sourceType SourceType, sourceID uuid.UUID) (*JournalEntry, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*JournalEntry, int64, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
	// Create inserts the entry and its lines
	Create(ctx context.Context, entry *JournalEntry) error
	// Update writes header changes with an optimistic version check
	Update(ctx context.Context, entry *JournalEntry) error
}

// PaymentRepository persists payments
type PaymentRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID, includeDeleted bool) (*Payment, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)
	Create(ctx context.Context, payment *Payment) error
	Update(ctx context.Context, payment *Payment) error
	// UpdateJournalState writes only the journal columns, leaving the version alone
	UpdateJournalState(ctx context.Context, tenantID, id uuid.UUID, state JournalState) error
}

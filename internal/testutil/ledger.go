package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/identity"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/erp/ledger/internal/infrastructure/event"
	"github.com/erp/ledger/internal/infrastructure/lock"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ledger is an in-memory deployment: a sqlite database, a transaction scope
// writing to the outbox, and a processor delivering to an in-process bus.
type Ledger struct {
	DB        *gorm.DB
	Scope     *persistence.GormTransactionScope
	Bus       *event.InMemoryEventBus
	Outbox    *event.GormOutboxRepository
	Processor *event.OutboxProcessor
	Locker    *lock.LocalItemLocker
	Logger    *zap.Logger
}

// NewLedger builds a Ledger. Nothing is delivered until Drain is called.
func NewLedger(t *testing.T) *Ledger {
	t.Helper()

	db := NewSQLiteDB(t)
	log := zap.NewNop()
	serializer := event.NewEventSerializer()
	bus := event.NewInMemoryEventBus(log)
	outbox := event.NewGormOutboxRepository(db)

	cfg := event.DefaultOutboxProcessorConfig()
	cfg.CleanupEnabled = false

	return &Ledger{
		DB:        db,
		Scope:     persistence.NewGormTransactionScope(db, event.NewOutboxPublisher(serializer, 3), 5*time.Second),
		Bus:       bus,
		Outbox:    outbox,
		Processor: event.NewOutboxProcessor(outbox, bus, serializer, cfg, nil, log),
		Locker:    lock.NewLocalItemLocker(nil),
		Logger:    log,
	}
}

// Subscribe registers a handler on the bus
func (l *Ledger) Subscribe(h shared.EventHandler) {
	l.Bus.Subscribe(h, h.EventTypes()...)
}

// Drain delivers pending outbox entries until none are left and returns the
// number delivered.
func (l *Ledger) Drain(t *testing.T) int {
	t.Helper()
	total := 0
	for range 10 {
		n := l.Processor.ProcessOnce(context.Background())
		if n == 0 {
			return total
		}
		total += n
	}
	return total
}

// OutboxCounts returns entry counts by status
func (l *Ledger) OutboxCounts(t *testing.T) map[shared.OutboxStatus]int64 {
	t.Helper()
	counts, err := l.Outbox.CountByStatus(context.Background())
	require.NoError(t, err)
	return counts
}

// SeedTenant stores a tenant with default settings
func (l *Ledger) SeedTenant(t *testing.T, code string) *identity.Tenant {
	t.Helper()
	tenant, err := identity.NewTenant(code, code+" Ltd")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormTenantRepository(l.DB).Save(context.Background(), tenant))
	return tenant
}

// UpdateSettings replaces and stores a tenant's settings
func (l *Ledger) UpdateSettings(t *testing.T, tenant *identity.Tenant, settings identity.TenantSettings) {
	t.Helper()
	require.NoError(t, tenant.UpdateSettings(settings))
	require.NoError(t, persistence.NewGormTenantRepository(l.DB).Save(context.Background(), tenant))
}

// SeedTax stores a single-component tax scheme of the given percentage
func (l *Ledger) SeedTax(t *testing.T, tenantID uuid.UUID, name string, rate string) *tax.Tax {
	t.Helper()
	scheme, err := tax.NewTax(tenantID, name, []tax.SubRate{{Name: name, Rate: decimal.RequireFromString(rate)}}, "")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormTaxRepository(l.DB).Save(context.Background(), scheme))
	return scheme
}

// SeedItem stores an item, optionally bound to a tax scheme
func (l *Ledger) SeedItem(t *testing.T, tenantID uuid.UUID, name string, taxID *uuid.UUID) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(tenantID, name, "NOS")
	require.NoError(t, err)
	item.SetTax(taxID)
	require.NoError(t, persistence.NewGormItemRepository(l.DB).Save(context.Background(), item))
	return item
}

// Package lock implements the stock ItemLocker: an in-process keyed mutex
// for single instances and a redis lock for several instances sharing one
// database.
package lock

import (
	"fmt"
	"time"

	appshared "github.com/erp/ledger/internal/application/shared"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backends
const (
	BackendLocal = "local"
	BackendRedis = "redis"
)

// ErrNotObtained is returned when an item lock could not be taken in time
var ErrNotObtained = shared.NewDomainError(shared.CodeConcurrencyConflict, "stock is locked by another operation")

// Config selects and tunes the locker
type Config struct {
	Backend      string
	TTL          time.Duration
	RetryBackoff time.Duration
	RetryLimit   int
}

// DefaultConfig returns the defaults used when a field is zero
func DefaultConfig() Config {
	return Config{
		Backend:      BackendLocal,
		TTL:          30 * time.Second,
		RetryBackoff: 50 * time.Millisecond,
		RetryLimit:   100,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.TTL <= 0 {
		c.TTL = d.TTL
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = d.RetryBackoff
	}
	if c.RetryLimit <= 0 {
		c.RetryLimit = d.RetryLimit
	}
	return c
}

// Option configures NewItemLocker
type Option func(*options)

type options struct {
	logger  *zap.Logger
	metrics *metrics.LockMetrics
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics sets the lock metrics
func WithMetrics(m *metrics.LockMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// NewItemLocker builds the locker for cfg.Backend. The redis backend needs
// a client.
func NewItemLocker(cfg Config, client redis.UniversalClient, opts ...Option) (appshared.ItemLocker, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	cfg = cfg.withDefaults()

	switch cfg.Backend {
	case BackendLocal:
		return NewLocalItemLocker(o.metrics), nil
	case BackendRedis:
		if client == nil {
			return nil, fmt.Errorf("lock backend %q requires a redis client", cfg.Backend)
		}
		return NewRedisItemLocker(client, cfg, o.metrics, o.logger), nil
	}
	return nil, fmt.Errorf("unknown lock backend %q", cfg.Backend)
}

// lockKeys returns the keys of the distinct items in ascending item order
func lockKeys(tenantID uuid.UUID, itemIDs []uuid.UUID) []string {
	seen := make(map[uuid.UUID]struct{}, len(itemIDs))
	ids := make([]uuid.UUID, 0, len(itemIDs))
	for _, id := range itemIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	inventory.SortIDs(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = appshared.StockLockKey(tenantID, id)
	}
	return keys
}

// releaseAll frees releases in reverse order
func releaseAll(releases []func()) {
	for i := len(releases) - 1; i >= 0; i-- {
		releases[i]()
	}
}

package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/ledger/internal/infrastructure/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisItemLocker takes one redislock per item. Locks expire after the TTL
// so a crashed holder cannot block an item forever.
type RedisItemLocker struct {
	client  *redislock.Client
	cfg     Config
	metrics *metrics.LockMetrics
	logger  *zap.Logger
}

// NewRedisItemLocker creates a RedisItemLocker
func NewRedisItemLocker(client redis.UniversalClient, cfg Config, m *metrics.LockMetrics, logger *zap.Logger) *RedisItemLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisItemLocker{
		client:  redislock.New(client),
		cfg:     cfg.withDefaults(),
		metrics: m,
		logger:  logger,
	}
}

// Lock implements ItemLocker
func (l *RedisItemLocker) Lock(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID) (func(), error) {
	start := time.Now()
	keys := lockKeys(tenantID, itemIDs)
	releases := make([]func(), 0, len(keys))

	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.cfg.RetryBackoff), l.cfg.RetryLimit),
	}
	for _, key := range keys {
		lk, err := l.client.Obtain(ctx, key, l.cfg.TTL, opts)
		if err != nil {
			releaseAll(releases)
			l.metrics.IncFailure(BackendRedis)
			if errors.Is(err, redislock.ErrNotObtained) {
				return nil, fmt.Errorf("%w: %s", ErrNotObtained, key)
			}
			return nil, fmt.Errorf("obtain lock %s: %w", key, err)
		}
		releases = append(releases, l.releaser(key, lk))
	}
	l.metrics.ObserveWait(BackendRedis, time.Since(start))

	var once sync.Once
	return func() { once.Do(func() { releaseAll(releases) }) }, nil
}

// releaser frees a lock with a fresh context so a cancelled request still
// releases what it took
func (l *RedisItemLocker) releaser(key string, lk *redislock.Lock) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lk.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("failed to release stock lock",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}

package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erp/ledger/internal/infrastructure/metrics"
	"github.com/google/uuid"
)

// LocalItemLocker is a keyed mutex. Entries are reference counted and
// dropped when no goroutine holds or waits for them.
type LocalItemLocker struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	metrics *metrics.LockMetrics
}

type localEntry struct {
	ch   chan struct{}
	refs int
}

// NewLocalItemLocker creates a LocalItemLocker
func NewLocalItemLocker(m *metrics.LockMetrics) *LocalItemLocker {
	return &LocalItemLocker{
		entries: make(map[string]*localEntry),
		metrics: m,
	}
}

// Lock implements ItemLocker. It waits until every key is free or ctx ends.
func (l *LocalItemLocker) Lock(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID) (func(), error) {
	start := time.Now()
	keys := lockKeys(tenantID, itemIDs)
	releases := make([]func(), 0, len(keys))

	for _, key := range keys {
		release, err := l.acquire(ctx, key)
		if err != nil {
			releaseAll(releases)
			l.metrics.IncFailure(BackendLocal)
			return nil, fmt.Errorf("%w: %s: %v", ErrNotObtained, key, err)
		}
		releases = append(releases, release)
	}
	l.metrics.ObserveWait(BackendLocal, time.Since(start))

	var once sync.Once
	return func() { once.Do(func() { releaseAll(releases) }) }, nil
}

func (l *LocalItemLocker) acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return func() {
			<-e.ch
			l.unref(key, e)
		}, nil
	case <-ctx.Done():
		l.unref(key, e)
		return nil, ctx.Err()
	}
}

func (l *LocalItemLocker) unref(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// size reports the number of live keys
func (l *LocalItemLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalItemLocker_SerializesSameItem(t *testing.T) {
	locker := NewLocalItemLocker(metrics.NewLockMetrics(prometheus.NewRegistry()))
	tenantID := uuid.New()
	itemID := uuid.New()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Lock(context.Background(), tenantID, []uuid.UUID{itemID})
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 0, locker.size(), "idle keys are dropped")
}

func TestLocalItemLocker_IndependentKeys(t *testing.T) {
	locker := NewLocalItemLocker(nil)
	tenantID := uuid.New()

	releaseA, err := locker.Lock(context.Background(), tenantID, []uuid.UUID{uuid.New()})
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	releaseB, err := locker.Lock(ctx, tenantID, []uuid.UUID{uuid.New()})
	require.NoError(t, err)
	releaseB()

	otherTenant, err := locker.Lock(ctx, uuid.New(), nil)
	require.NoError(t, err)
	otherTenant()
}

func TestLocalItemLocker_TimesOut(t *testing.T) {
	locker := NewLocalItemLocker(nil)
	tenantID := uuid.New()
	free := uuid.New()
	held := uuid.New()

	release, err := locker.Lock(context.Background(), tenantID, []uuid.UUID{held})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, tenantID, []uuid.UUID{free, held})

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))

	// the free item taken before the timeout was given back
	quick, cancelQuick := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelQuick()
	again, err := locker.Lock(quick, tenantID, []uuid.UUID{free})
	require.NoError(t, err)
	again()

	release()
	assert.Equal(t, 0, locker.size())
}

func TestLocalItemLocker_DuplicateItemsAndDoubleRelease(t *testing.T) {
	locker := NewLocalItemLocker(nil)
	tenantID := uuid.New()
	itemID := uuid.New()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	release, err := locker.Lock(ctx, tenantID, []uuid.UUID{itemID, itemID})
	require.NoError(t, err, "a document listing an item twice must not deadlock")

	release()
	release()

	next, err := locker.Lock(ctx, tenantID, []uuid.UUID{itemID})
	require.NoError(t, err)
	next()
}

func TestLockKeysAreSorted(t *testing.T) {
	tenantID := uuid.New()
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	keys := lockKeys(tenantID, []uuid.UUID{b, a, b})

	assert.Equal(t, []string{
		"stock:" + tenantID.String() + ":" + a.String(),
		"stock:" + tenantID.String() + ":" + b.String(),
	}, keys)
}

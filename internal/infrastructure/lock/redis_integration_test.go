//go:build integration

package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start redis container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisItemLocker_Integration(t *testing.T) {
	client := newRedisClient(t)
	cfg := Config{TTL: 5 * time.Second, RetryBackoff: 10 * time.Millisecond, RetryLimit: 5}
	first := NewRedisItemLocker(client, cfg, nil, nil)
	second := NewRedisItemLocker(client, cfg, nil, nil)

	ctx := context.Background()
	tenantID := uuid.New()
	itemID := uuid.New()

	release, err := first.Lock(ctx, tenantID, []uuid.UUID{itemID})
	require.NoError(t, err)

	_, err = second.Lock(ctx, tenantID, []uuid.UUID{itemID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))

	release()

	again, err := second.Lock(ctx, tenantID, []uuid.UUID{itemID})
	require.NoError(t, err)
	again()
}

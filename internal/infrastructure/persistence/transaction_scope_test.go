package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	appshared "github.com/erp/ledger/internal/application/shared"
	"github.com/erp/ledger/internal/domain/identity"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type capturedEvents struct {
	recorded []shared.DomainEvent
}

type capturingRecorder struct {
	sink *capturedEvents
}

func (r capturingRecorder) Record(_ context.Context, events ...shared.DomainEvent) error {
	r.sink.recorded = append(r.sink.recorded, events...)
	return nil
}

func (c *capturedEvents) Recorder(*gorm.DB) shared.EventRecorder {
	return capturingRecorder{sink: c}
}

type pingEvent struct {
	shared.BaseDomainEvent
}

func TestGormTransactionScope_Execute(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	events := &capturedEvents{}
	scope := NewGormTransactionScope(db, events, time.Second)

	t.Run("commits on success", func(t *testing.T) {
		tenant, err := identity.NewTenant("acme", "Acme")
		require.NoError(t, err)

		err = scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
			return repos.Tenants().Save(ctx, tenant)
		})
		require.NoError(t, err)

		found, err := NewGormTenantRepository(db).FindByCode(ctx, "ACME")
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, found.ID)
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		tenant, err := identity.NewTenant("globex", "Globex")
		require.NoError(t, err)
		boom := errors.New("boom")

		err = scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
			if err := repos.Tenants().Save(ctx, tenant); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = NewGormTenantRepository(db).FindByID(ctx, tenant.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("routes events to the bound recorder", func(t *testing.T) {
		ev := &pingEvent{BaseDomainEvent: shared.NewBaseDomainEvent("Ping", "Test", uuid.New(), uuid.New())}
		err := scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
			return repos.Events().Record(ctx, ev)
		})
		require.NoError(t, err)
		require.Len(t, events.recorded, 1)
		assert.Equal(t, "Ping", events.recorded[0].EventType())
	})

	t.Run("nil factory drops events", func(t *testing.T) {
		bare := NewGormTransactionScope(db, nil, 0)
		err := bare.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
			return repos.Events().Record(ctx, &pingEvent{})
		})
		assert.NoError(t, err)
	})
}

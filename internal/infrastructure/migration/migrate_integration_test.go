//go:build integration

package migration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erp/ledger/migrations"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_migrate_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, db.PingContext(ctx))
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var exists bool
	err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`, name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestMigrator_EmbeddedUpAndDown(t *testing.T) {
	db := startPostgres(t)

	m, err := NewFromFS(db, migrations.FS, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	require.NoError(t, m.Up())
	for _, table := range []string{
		"tenants", "taxes", "items", "number_sequences", "stocks", "stock_movements",
		"documents", "document_lines", "chart_of_accounts", "journal_entries",
		"journal_entry_lines", "payments", "outbox_events",
	} {
		assert.True(t, tableExists(t, db, table), table)
	}

	version, dirty, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(20260301000006), version)
	assert.False(t, dirty)

	// a second Up is a no-op
	require.NoError(t, m.Up())

	require.NoError(t, m.Steps(-1))
	assert.False(t, tableExists(t, db, "outbox_events"))
	assert.True(t, tableExists(t, db, "payments"))

	require.NoError(t, m.Down())
	assert.False(t, tableExists(t, db, "tenants"))
}

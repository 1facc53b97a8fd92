package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/erp/ledger/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"create stock ledger", "create_stock_ledger"},
		{"Add-Journal-Index", "add_journal_index"},
		{"ADD__OUTBOX__TABLE", "add_outbox_table"},
		{"  spaces  ", "spaces"},
		{"special!@#chars", "specialchars"},
		{"_leading", "leading"},
		{"tenant 42", "tenant_42"},
		{"ünïcode", "ncode"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	mf, err := createMigrationAt(dir, "add payment index", "Index payments by party", now)
	require.NoError(t, err)

	assert.Equal(t, "20260304050607", mf.Version)
	assert.Equal(t, filepath.Join(dir, "20260304050607_add_payment_index.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "20260304050607_add_payment_index.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add payment index")
	assert.Contains(t, string(up), "-- Description: Index payments by party")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")

	_, err = createMigrationAt(dir, "add payment index", "", now)
	assert.Error(t, err, "existing files are not overwritten")
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_b.up.sql":   {},
		"002_b.down.sql": {},
		"001_a.up.sql":   {},
		"001_a.down.sql": {},
		"README.md":      {},
		"sub/003.up.sql": {},
	}
	names, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a", "002_b"}, names)
}

func TestCheckPairs(t *testing.T) {
	require.NoError(t, CheckPairs(fstest.MapFS{
		"001_a.up.sql":   {},
		"001_a.down.sql": {},
	}))

	err := CheckPairs(fstest.MapFS{
		"001_a.up.sql":   {},
		"002_b.down.sql": {},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_a.down.sql")
	assert.Contains(t, err.Error(), "002_b.up.sql")
}

func TestEmbeddedMigrations(t *testing.T) {
	require.NoError(t, CheckPairs(migrations.FS))

	names, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"20260301000001_create_tenants",
		"20260301000002_create_number_sequences",
		"20260301000003_create_stock_ledger",
		"20260301000004_create_documents",
		"20260301000005_create_ledger",
		"20260301000006_create_outbox_events",
	}, names)
}

package catalog

import (
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates item with defaults", func(t *testing.T) {
		item, err := NewItem(tenantID, " Widget ", "")
		require.NoError(t, err)
		assert.Equal(t, "Widget", item.Name)
		assert.Equal(t, "PCS", item.UQC)
		assert.Equal(t, tenantID, item.TenantID)
		assert.Nil(t, item.TaxID)
		assert.True(t, item.Usable())
		assert.Equal(t, 1, item.GetVersion())
	})

	t.Run("uppercases the unit", func(t *testing.T) {
		item, err := NewItem(tenantID, "Rice", "kgs")
		require.NoError(t, err)
		assert.Equal(t, "KGS", item.UQC)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewItem(tenantID, "", "PCS")
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})
}

func TestItem_Delete(t *testing.T) {
	item, err := NewItem(uuid.New(), "Widget", "PCS")
	require.NoError(t, err)

	require.NoError(t, item.Delete())
	assert.True(t, item.IsDeleted())
	assert.False(t, item.Usable())

	err = item.Delete()
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestItem_SetTax(t *testing.T) {
	item, err := NewItem(uuid.New(), "Widget", "PCS")
	require.NoError(t, err)

	taxID := uuid.New()
	item.SetTax(&taxID)
	item.SetHSNCode(" 8471 ")

	require.NotNil(t, item.TaxID)
	assert.Equal(t, taxID, *item.TaxID)
	assert.Equal(t, "8471", item.HSNCode)
	assert.Equal(t, 3, item.GetVersion())
}

package tax

import (
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gst18(t *testing.T) *Tax {
	t.Helper()
	tx, err := NewTax(uuid.New(), "GST 18%", []SubRate{
		{Name: "CGST", Rate: decimal.NewFromInt(9)},
		{Name: "SGST", Rate: decimal.NewFromInt(9)},
	}, "in")
	require.NoError(t, err)
	return tx
}

func TestNewTax(t *testing.T) {
	t.Run("sums sub-rates into the effective rate", func(t *testing.T) {
		tx := gst18(t)
		assert.True(t, tx.EffectiveRate().Equal(decimal.NewFromInt(18)))
		assert.True(t, tx.Active)
		assert.Equal(t, "IN", tx.Country)
		assert.False(t, tx.IsNoTax())
	})

	t.Run("rejects more than four sub-rates", func(t *testing.T) {
		rates := make([]SubRate, 5)
		for i := range rates {
			rates[i] = SubRate{Name: "R", Rate: decimal.NewFromInt(1)}
		}
		_, err := NewTax(uuid.New(), "Too many", rates, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewTax(uuid.New(), "  ", nil, "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects negative rate", func(t *testing.T) {
		_, err := NewTax(uuid.New(), "Bad", []SubRate{{Name: "X", Rate: decimal.NewFromInt(-1)}}, "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("no tax scheme has zero rate", func(t *testing.T) {
		tx, err := NewTax(uuid.New(), NoTaxName, nil, "")
		require.NoError(t, err)
		assert.True(t, tx.IsNoTax())
		assert.True(t, tx.EffectiveRate().IsZero())
	})
}

func TestTax_UpdateRates(t *testing.T) {
	tx := gst18(t)
	require.NoError(t, tx.UpdateRates([]SubRate{{Name: "IGST", Rate: decimal.NewFromInt(12)}}))
	assert.True(t, tx.EffectiveRate().Equal(decimal.NewFromInt(12)))
	assert.Equal(t, 2, tx.GetVersion())

	tx.Deactivate()
	assert.False(t, tx.Active)
	tx.Activate()
	assert.True(t, tx.Active)
}

func TestLineTax(t *testing.T) {
	got := LineTax(decimal.NewFromInt(2), decimal.NewFromInt(100), decimal.NewFromInt(18))
	assert.Equal(t, "36", got.String())

	// 3 * 33.33 * 7.5% = 7.49925
	got = LineTax(decimal.NewFromInt(3), decimal.RequireFromString("33.33"), decimal.RequireFromString("7.5"))
	assert.Equal(t, "7.5", got.String())

	assert.True(t, LineTax(decimal.NewFromInt(5), decimal.NewFromInt(10), decimal.Zero).IsZero())
}

func TestDocumentTax(t *testing.T) {
	lines := []TaxableLine{
		{Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100), Rate: decimal.NewFromInt(18)},
		{Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100), Rate: decimal.NewFromInt(18)},
	}

	t.Run("item level sums line taxes", func(t *testing.T) {
		totals := DocumentTax(lines, LevelItem, decimal.Zero, decimal.Zero)
		assert.Equal(t, "400", totals.Subtotal.String())
		assert.Equal(t, "72", totals.Tax.String())
		assert.Equal(t, "472", totals.Total.String())
	})

	t.Run("bill level applies the bill rate once", func(t *testing.T) {
		plain := []TaxableLine{
			{Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(100)},
		}
		totals := DocumentTax(plain, LevelBill, decimal.NewFromInt(5), decimal.NewFromInt(18))
		assert.Equal(t, "400", totals.Subtotal.String())
		assert.Equal(t, "20", totals.Tax.String())
		assert.Equal(t, "420", totals.Total.String())
	})

	t.Run("account level applies the tenant default", func(t *testing.T) {
		plain := []TaxableLine{
			{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("99.99")},
		}
		totals := DocumentTax(plain, LevelAccount, decimal.Zero, decimal.NewFromInt(10))
		assert.Equal(t, "10", totals.Tax.String())
		assert.Equal(t, "109.99", totals.Total.String())
	})

	t.Run("empty document is zero", func(t *testing.T) {
		totals := DocumentTax(nil, LevelItem, decimal.Zero, decimal.Zero)
		assert.True(t, totals.Total.IsZero())
	})
}

func TestApplicationLevel(t *testing.T) {
	assert.True(t, LevelItem.IsValid())
	assert.True(t, LevelBill.IsValid())
	assert.True(t, LevelAccount.IsValid())
	assert.False(t, ApplicationLevel("").IsValid())

	assert.True(t, LevelItem.AllowsLineTax())
	assert.False(t, LevelBill.AllowsLineTax())
	assert.True(t, LevelBill.AllowsDocumentTax())
	assert.False(t, LevelAccount.AllowsDocumentTax())
}

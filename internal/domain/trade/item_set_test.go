package trade

import (
	"testing"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	tenant uuid.UUID
	item   *catalog.Item
	gst    *tax.Tax
	items  map[uuid.UUID]*catalog.Item
	taxes  map[uuid.UUID]*tax.Tax
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	tenant := uuid.New()
	item, err := catalog.NewItem(tenant, "Widget", "PCS")
	require.NoError(t, err)
	gst, err := tax.NewTax(tenant, "GST 18%", []tax.SubRate{
		{Name: "CGST", Rate: decimal.NewFromInt(9)},
		{Name: "SGST", Rate: decimal.NewFromInt(9)},
	}, "IN")
	require.NoError(t, err)
	return fixture{
		tenant: tenant,
		item:   item,
		gst:    gst,
		items:  map[uuid.UUID]*catalog.Item{item.ID: item},
		taxes:  map[uuid.UUID]*tax.Tax{gst.ID: gst},
	}
}

func TestBuildItemSet(t *testing.T) {
	f := newFixture(t)
	two := decimal.NewFromInt(2)
	hundred := decimal.NewFromInt(100)

	t.Run("snapshots line tax at item level", func(t *testing.T) {
		set, err := BuildItemSet(KindSale, tax.LevelItem, []LineInput{
			{ItemID: f.item.ID, Quantity: two, UnitPrice: hundred, TaxID: &f.gst.ID},
			{ItemID: f.item.ID, Quantity: two, UnitPrice: hundred, TaxID: &f.gst.ID},
		}, f.items, f.taxes)
		require.NoError(t, err)
		require.Len(t, set.Lines, 2)
		assert.Equal(t, "18", set.Lines[0].TaxRate.String())
		assert.Equal(t, "36", set.Lines[0].TaxAmount.String())
		assert.Equal(t, "200", set.Lines[0].Subtotal.String())
	})

	t.Run("rejects empty line set", func(t *testing.T) {
		_, err := BuildItemSet(KindSale, tax.LevelItem, nil, f.items, f.taxes)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects unknown or deleted items", func(t *testing.T) {
		_, err := BuildItemSet(KindOrder, tax.LevelItem, []LineInput{{ItemID: uuid.New(), Quantity: two}}, f.items, f.taxes)
		assert.ErrorIs(t, err, shared.ErrValidation)

		gone, err := catalog.NewItem(f.tenant, "Old", "PCS")
		require.NoError(t, err)
		require.NoError(t, gone.Delete())
		items := map[uuid.UUID]*catalog.Item{gone.ID: gone}
		_, err = BuildItemSet(KindOrder, tax.LevelItem, []LineInput{{ItemID: gone.ID, Quantity: two}}, items, f.taxes)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects quantities below the minimum", func(t *testing.T) {
		_, err := BuildItemSet(KindGRN, tax.LevelItem, []LineInput{
			{ItemID: f.item.ID, Quantity: decimal.RequireFromString("0.0009")},
		}, f.items, f.taxes)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 1")
	})

	t.Run("rejects quantities finer than the stored scale", func(t *testing.T) {
		fine := decimal.RequireFromString("1.00005")
		_, err := BuildItemSet(KindGRN, tax.LevelItem, []LineInput{
			{ItemID: f.item.ID, Quantity: fine},
			{ItemID: f.item.ID, Quantity: fine},
		}, f.items, f.taxes)
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Contains(t, err.Error(), "at most 4 decimal places")

		set, err := BuildItemSet(KindGRN, tax.LevelItem, []LineInput{
			{ItemID: f.item.ID, Quantity: decimal.RequireFromString("1.0001")},
			{ItemID: f.item.ID, Quantity: decimal.RequireFromString("2.500000")},
		}, f.items, f.taxes)
		require.NoError(t, err)
		assert.Len(t, set.Lines, 2)
	})

	t.Run("stock documents carry no price or tax", func(t *testing.T) {
		_, err := BuildItemSet(KindDeliveryNote, tax.LevelItem, []LineInput{
			{ItemID: f.item.ID, Quantity: two, UnitPrice: hundred},
		}, f.items, f.taxes)
		assert.ErrorIs(t, err, shared.ErrValidation)

		set, err := BuildItemSet(KindGRN, tax.LevelItem, []LineInput{{ItemID: f.item.ID, Quantity: two}}, f.items, f.taxes)
		require.NoError(t, err)
		assert.True(t, set.Lines[0].UnitPrice.IsZero())
	})

	t.Run("line tax is refused outside item level", func(t *testing.T) {
		_, err := BuildItemSet(KindSale, tax.LevelBill, []LineInput{
			{ItemID: f.item.ID, Quantity: two, UnitPrice: hundred, TaxID: &f.gst.ID},
		}, f.items, f.taxes)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("inactive tax is refused", func(t *testing.T) {
		f.gst.Deactivate()
		defer f.gst.Activate()
		_, err := BuildItemSet(KindSale, tax.LevelItem, []LineInput{
			{ItemID: f.item.ID, Quantity: two, UnitPrice: hundred, TaxID: &f.gst.ID},
		}, f.items, f.taxes)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("negative price is refused", func(t *testing.T) {
		_, err := BuildItemSet(KindQuote, tax.LevelItem, []LineInput{
			{ItemID: f.item.ID, Quantity: two, UnitPrice: decimal.NewFromInt(-1)},
		}, f.items, f.taxes)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

package trade

import (
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/numbering"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("delivery-note")
	require.NoError(t, err)
	assert.Equal(t, KindDeliveryNote, k)

	k, err = ParseKind("grn")
	require.NoError(t, err)
	assert.Equal(t, KindGRN, k)

	_, err = ParseKind("invoice")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDocumentKind(t *testing.T) {
	nk, ok := KindDeliveryNote.NumberingKind()
	assert.True(t, ok)
	assert.Equal(t, numbering.KindDeliveryNote, nk)

	_, ok = KindSale.NumberingKind()
	assert.False(t, ok)

	back, ok := KindForNumbering(numbering.KindGRN)
	assert.True(t, ok)
	assert.Equal(t, KindGRN, back)

	assert.Equal(t, inventory.Outbound, KindDeliveryNote.StockDirection())
	assert.Equal(t, inventory.Inbound, KindGRN.StockDirection())
	assert.False(t, KindOrder.MovesStock())

	src, ok := KindPurchase.JournalSource()
	assert.True(t, ok)
	assert.Equal(t, finance.SourcePurchase, src)
	_, ok = KindQuote.JournalSource()
	assert.False(t, ok)
}

func TestDocument_ReplaceLines(t *testing.T) {
	f := newFixture(t)
	doc, err := NewDocument(f.tenant, KindSale, uuid.New(), time.Now())
	require.NoError(t, err)

	set, err := BuildItemSet(KindSale, tax.LevelItem, []LineInput{
		{ItemID: f.item.ID, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100), TaxID: &f.gst.ID},
		{ItemID: f.item.ID, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100), TaxID: &f.gst.ID},
	}, f.items, f.taxes)
	require.NoError(t, err)

	doc.ReplaceLines(set.Lines, tax.LevelItem)
	assert.Equal(t, "400", doc.Subtotal.String())
	assert.Equal(t, "72", doc.TaxAmount.String())
	assert.Equal(t, "472", doc.Total.String())
	assert.Equal(t, 2, doc.Lines[1].LineNo)
	assert.Equal(t, doc.ID, doc.Lines[0].DocumentID)

	t.Run("rate edits do not change snapshot totals", func(t *testing.T) {
		require.NoError(t, f.gst.UpdateRates([]tax.SubRate{{Name: "IGST", Rate: decimal.NewFromInt(28)}}))
		doc.recompute(tax.LevelItem)
		assert.Equal(t, "472", doc.Total.String())
	})

	t.Run("bill level applies the document rate", func(t *testing.T) {
		bill, err := NewDocument(f.tenant, KindPurchase, uuid.New(), time.Now())
		require.NoError(t, err)
		bill.SetDocumentTax(&f.gst.ID, decimal.NewFromInt(5))
		bill.ReplaceLines([]DocumentLine{{ItemID: f.item.ID, Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(100)}}, tax.LevelBill)
		assert.Equal(t, "20", bill.TaxAmount.String())
		assert.Equal(t, "420", bill.Total.String())
	})
}

func TestDocument_Lifecycle(t *testing.T) {
	tenant := uuid.New()

	t.Run("number is assigned once", func(t *testing.T) {
		doc, err := NewDocument(tenant, KindOrder, uuid.New(), time.Now())
		require.NoError(t, err)
		require.NoError(t, doc.AssignNumber("ORD-0001"))
		assert.ErrorIs(t, doc.AssignNumber("ORD-0002"), shared.ErrInvalidState)
	})

	t.Run("delete queues a reversal for posting kinds", func(t *testing.T) {
		doc, err := NewDocument(tenant, KindSale, uuid.New(), time.Now())
		require.NoError(t, err)
		require.NoError(t, doc.Delete())
		assert.True(t, doc.IsDeleted())
		assert.Equal(t, finance.JournalStatusPending, doc.Journal.Status)

		events := doc.GetDomainEvents()
		require.Len(t, events, 1)
		ev := events[0].(*finance.JournalRequestedEvent)
		assert.Equal(t, finance.JournalActionReverse, ev.Action)
		assert.Equal(t, doc.ID, ev.SourceID)

		assert.ErrorIs(t, doc.Delete(), shared.ErrNotFound)
	})

	t.Run("quotes never request journals", func(t *testing.T) {
		doc, err := NewDocument(tenant, KindQuote, uuid.New(), time.Now())
		require.NoError(t, err)
		doc.RequestJournal(finance.JournalActionCreate)
		assert.Empty(t, doc.GetDomainEvents())
		assert.Equal(t, finance.JournalStatusNone, doc.Journal.Status)
	})

	t.Run("GRN links only to purchases", func(t *testing.T) {
		grn, err := NewDocument(tenant, KindGRN, uuid.New(), time.Now())
		require.NoError(t, err)
		sale, err := NewDocument(tenant, KindSale, uuid.New(), time.Now())
		require.NoError(t, err)
		purchase, err := NewDocument(tenant, KindPurchase, uuid.New(), time.Now())
		require.NoError(t, err)

		assert.ErrorIs(t, grn.LinkSource(sale), shared.ErrValidation)
		require.NoError(t, grn.LinkSource(purchase))
		assert.Equal(t, purchase.ID, *grn.SourceDocumentID)
	})

	t.Run("stock deltas follow the kind direction", func(t *testing.T) {
		dn, err := NewDocument(tenant, KindDeliveryNote, uuid.New(), time.Now())
		require.NoError(t, err)
		item := uuid.New()
		dn.ReplaceLines([]DocumentLine{{ItemID: item, Quantity: decimal.NewFromInt(3)}}, tax.LevelItem)
		deltas := dn.StockDeltas()
		require.Len(t, deltas, 1)
		assert.Equal(t, "-3", deltas[0].Quantity.String())
		assert.True(t, dn.Total.IsZero())
	})
}

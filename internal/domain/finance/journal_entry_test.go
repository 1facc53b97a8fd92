package finance

import (
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChart() PostingChart {
	chart := PostingChart{}
	for _, key := range []SystemKey{
		SystemKeyInventory, SystemKeyAccountsReceivable, SystemKeyAccountsPayable,
		SystemKeySalesRevenue, SystemKeyTaxPayable, SystemKeyCash, SystemKeyBank,
	} {
		chart[key] = uuid.New()
	}
	return chart
}

func newEntry(t *testing.T, source SourceType) *JournalEntry {
	t.Helper()
	id := uuid.New()
	e, err := NewJournalEntry(uuid.New(), "JE-0001", time.Now(), source, &id, "test")
	require.NoError(t, err)
	return e
}

func TestJournalEntry_AddLine(t *testing.T) {
	e := newEntry(t, SourceManual)
	acc := uuid.New()

	t.Run("rejects both sides", func(t *testing.T) {
		err := e.AddLine(acc, decimal.NewFromInt(1), decimal.NewFromInt(1), nil, "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects neither side", func(t *testing.T) {
		err := e.AddLine(acc, decimal.Zero, decimal.Zero, nil, "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		err := e.AddLine(acc, decimal.NewFromInt(-5), decimal.Zero, nil, "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("numbers lines in order", func(t *testing.T) {
		require.NoError(t, e.AddLine(acc, decimal.NewFromInt(10), decimal.Zero, nil, "a"))
		require.NoError(t, e.AddLine(uuid.New(), decimal.Zero, decimal.NewFromInt(10), nil, "b"))
		assert.Equal(t, 1, e.Lines[0].LineNo)
		assert.Equal(t, 2, e.Lines[1].LineNo)
	})
}

func TestJournalEntry_Post(t *testing.T) {
	t.Run("unbalanced entry is rejected", func(t *testing.T) {
		e := newEntry(t, SourceManual)
		require.NoError(t, e.AddLine(uuid.New(), decimal.NewFromInt(10), decimal.Zero, nil, ""))
		require.NoError(t, e.AddLine(uuid.New(), decimal.Zero, decimal.RequireFromString("9.99"), nil, ""))

		err := e.Post(time.Now())
		assert.ErrorIs(t, err, shared.ErrUnbalanced)
		assert.False(t, e.IsPosted)
	})

	t.Run("entry without lines is unbalanced", func(t *testing.T) {
		e := newEntry(t, SourceManual)
		assert.ErrorIs(t, e.Post(time.Now()), shared.ErrUnbalanced)
	})

	t.Run("amounts compare at two decimals", func(t *testing.T) {
		e := newEntry(t, SourceManual)
		require.NoError(t, e.AddLine(uuid.New(), decimal.RequireFromString("10.004"), decimal.Zero, nil, ""))
		require.NoError(t, e.AddLine(uuid.New(), decimal.Zero, decimal.RequireFromString("10.001"), nil, ""))
		require.NoError(t, e.Post(time.Now()))
	})

	t.Run("posting twice fails", func(t *testing.T) {
		e := newEntry(t, SourceManual)
		require.NoError(t, e.AddLine(uuid.New(), decimal.NewFromInt(5), decimal.Zero, nil, ""))
		require.NoError(t, e.AddLine(uuid.New(), decimal.Zero, decimal.NewFromInt(5), nil, ""))
		now := time.Now()
		require.NoError(t, e.Post(now))
		assert.True(t, e.IsPosted)
		assert.Equal(t, now, *e.PostingDate)

		assert.ErrorIs(t, e.Post(now), shared.ErrAlreadyPosted)
		assert.ErrorIs(t, e.AddLine(uuid.New(), decimal.NewFromInt(1), decimal.Zero, nil, ""), shared.ErrAlreadyPosted)
	})
}

func TestJournalEntry_Reverse(t *testing.T) {
	chart := testChart()
	e := newEntry(t, SourceSale)
	specs, err := SaleLines(chart, TradeAmounts{
		Subtotal: decimal.NewFromInt(400), Tax: decimal.NewFromInt(72), Total: decimal.NewFromInt(472), PartyID: uuid.New(),
	})
	require.NoError(t, err)
	require.NoError(t, e.AddLines(specs))

	t.Run("unposted entry cannot be reversed", func(t *testing.T) {
		_, err := e.Reverse("JE-0002", "", time.Now())
		assert.ErrorIs(t, err, shared.ErrNotPosted)
	})

	require.NoError(t, e.Post(time.Now()))

	t.Run("mirror swaps every line and links both entries", func(t *testing.T) {
		rev, err := e.Reverse("JE-0002", "wrong customer", time.Now())
		require.NoError(t, err)

		require.Len(t, rev.Lines, len(e.Lines))
		for i := range e.Lines {
			assert.Equal(t, e.Lines[i].AccountID, rev.Lines[i].AccountID)
			assert.True(t, e.Lines[i].Debit.Equal(rev.Lines[i].Credit))
			assert.True(t, e.Lines[i].Credit.Equal(rev.Lines[i].Debit))
		}
		assert.True(t, rev.IsPosted)
		assert.True(t, rev.IsBalanced())
		assert.True(t, e.IsReversed)
		assert.Equal(t, rev.ID, *e.ReversedByID)
		assert.Equal(t, e.ID, *rev.ReversalOfID)
		assert.Equal(t, SourceReversal, rev.SourceType)
		assert.Contains(t, rev.Description, "wrong customer")
	})

	t.Run("second reversal fails", func(t *testing.T) {
		_, err := e.Reverse("JE-0003", "", time.Now())
		assert.ErrorIs(t, err, shared.ErrAlreadyReversed)
	})
}

func TestPostingMappings(t *testing.T) {
	chart := testChart()
	party := uuid.New()
	amounts := TradeAmounts{
		Subtotal: decimal.NewFromInt(400), Tax: decimal.NewFromInt(72), Total: decimal.NewFromInt(472), PartyID: party,
	}

	t.Run("purchase balances", func(t *testing.T) {
		e := newEntry(t, SourcePurchase)
		specs, err := PurchaseLines(chart, amounts)
		require.NoError(t, err)
		require.NoError(t, e.AddLines(specs))
		require.NoError(t, e.Post(time.Now()))

		assert.Equal(t, chart[SystemKeyInventory], e.Lines[0].AccountID)
		assert.Equal(t, "400", e.Lines[0].Debit.String())
		assert.Equal(t, chart[SystemKeyTaxPayable], e.Lines[1].AccountID)
		assert.Equal(t, chart[SystemKeyAccountsPayable], e.Lines[2].AccountID)
		assert.Equal(t, "472", e.Lines[2].Credit.String())
	})

	t.Run("tax-free sale has two lines", func(t *testing.T) {
		specs, err := SaleLines(chart, TradeAmounts{Subtotal: decimal.NewFromInt(50), Total: decimal.NewFromInt(50), PartyID: party})
		require.NoError(t, err)
		assert.Len(t, specs, 2)
	})

	t.Run("payments use the money account of the mode", func(t *testing.T) {
		p, err := NewPayment(uuid.New(), PaymentMade, party, decimal.NewFromInt(100), time.Now(), PaymentModeBank)
		require.NoError(t, err)
		specs, err := PaymentLines(chart, p)
		require.NoError(t, err)
		require.Len(t, specs, 2)
		assert.Equal(t, chart[SystemKeyAccountsPayable], specs[0].AccountID)
		assert.Equal(t, chart[SystemKeyBank], specs[1].AccountID)

		p.Direction = PaymentReceived
		p.Mode = PaymentModeCash
		specs, err = PaymentLines(chart, p)
		require.NoError(t, err)
		assert.Equal(t, chart[SystemKeyCash], specs[0].AccountID)
		assert.Equal(t, chart[SystemKeyAccountsReceivable], specs[1].AccountID)
	})

	t.Run("missing mapping names the key", func(t *testing.T) {
		_, err := PurchaseLines(PostingChart{}, amounts)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Contains(t, err.Error(), "INVENTORY")
	})
}

func TestBuildChart(t *testing.T) {
	tenant := uuid.New()
	accounts, err := BuildChart(tenant, DefaultChart, nil)
	require.NoError(t, err)
	require.Len(t, accounts, len(DefaultChart))

	byCode := make(map[string]*Account)
	for _, a := range accounts {
		byCode[a.Code] = a
	}
	assert.Equal(t, byCode["1000"].ID, *byCode["1300"].ParentID)
	assert.Equal(t, SystemKeyInventory, byCode["1300"].SystemKey)
	assert.True(t, byCode["1300"].IsSystem)
	assert.Equal(t, NormalBalanceCredit, byCode["2100"].NormalBalance)
	assert.ErrorIs(t, byCode["1300"].CanDelete(false), shared.ErrInvalidState)

	existing := map[string]uuid.UUID{}
	for _, a := range accounts {
		existing[a.Code] = a.ID
	}
	again, err := BuildChart(tenant, DefaultChart, existing)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestPayment(t *testing.T) {
	p, err := NewPayment(uuid.New(), PaymentReceived, uuid.New(), decimal.NewFromInt(10), time.Time{}, PaymentModeCash)
	require.NoError(t, err)
	assert.Equal(t, JournalStatusPending, p.Journal.Status)
	require.Len(t, p.GetDomainEvents(), 1)

	require.NoError(t, p.Delete())
	assert.True(t, p.IsDeleted())
	events := p.GetDomainEvents()
	require.Len(t, events, 2)
	ev, ok := events[1].(*JournalRequestedEvent)
	require.True(t, ok)
	assert.Equal(t, JournalActionReverse, ev.Action)

	assert.ErrorIs(t, p.Delete(), shared.ErrNotFound)

	_, err = NewPayment(uuid.New(), PaymentReceived, uuid.New(), decimal.Zero, time.Now(), PaymentModeCash)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestPayment_AmountIsCheckedAtCentPrecision(t *testing.T) {
	_, err := NewPayment(uuid.New(), PaymentReceived, uuid.New(), decimal.RequireFromString("0.004"), time.Now(), PaymentModeCash)
	assert.ErrorIs(t, err, shared.ErrValidation)

	p, err := NewPayment(uuid.New(), PaymentMade, uuid.New(), decimal.RequireFromString("0.005"), time.Now(), PaymentModeBank)
	require.NoError(t, err)
	assert.Equal(t, "0.01", p.Amount.StringFixed(2))
}

package finance

import (
	"fmt"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostingChart maps system keys to the tenant's account ids
type PostingChart map[SystemKey]uuid.UUID

// Account returns the account for a key, or NOT_FOUND naming the key
func (c PostingChart) Account(key SystemKey) (uuid.UUID, error) {
	id, ok := c[key]
	if !ok {
		return uuid.Nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("no account mapped to system key %s", key))
	}
	return id, nil
}

// LineSpec is a line waiting to be added to an entry
type LineSpec struct {
	AccountID uuid.UUID
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	PartyID   *uuid.UUID
	Memo      string
}

// TradeAmounts are the totals of a sale or purchase
type TradeAmounts struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	PartyID  uuid.UUID
}

// PurchaseLines: Dr Inventory subtotal, Dr Tax Payable tax, Cr Accounts Payable total
func PurchaseLines(chart PostingChart, amt TradeAmounts) ([]LineSpec, error) {
	inventory, err := chart.Account(SystemKeyInventory)
	if err != nil {
		return nil, err
	}
	payable, err := chart.Account(SystemKeyAccountsPayable)
	if err != nil {
		return nil, err
	}
	party := amt.PartyID

	lines := []LineSpec{{AccountID: inventory, Debit: amt.Subtotal, Memo: "Inventory purchased"}}
	if !amt.Tax.IsZero() {
		taxAcc, err := chart.Account(SystemKeyTaxPayable)
		if err != nil {
			return nil, err
		}
		lines = append(lines, LineSpec{AccountID: taxAcc, Debit: amt.Tax, Memo: "Input tax"})
	}
	lines = append(lines, LineSpec{AccountID: payable, Credit: amt.Total, PartyID: &party, Memo: "Payable to supplier"})
	return lines, nil
}

// SaleLines: Dr Accounts Receivable total, Cr Sales Revenue subtotal, Cr Tax Payable tax
func SaleLines(chart PostingChart, amt TradeAmounts) ([]LineSpec, error) {
	receivable, err := chart.Account(SystemKeyAccountsReceivable)
	if err != nil {
		return nil, err
	}
	revenue, err := chart.Account(SystemKeySalesRevenue)
	if err != nil {
		return nil, err
	}
	party := amt.PartyID

	lines := []LineSpec{
		{AccountID: receivable, Debit: amt.Total, PartyID: &party, Memo: "Receivable from customer"},
		{AccountID: revenue, Credit: amt.Subtotal, Memo: "Sales revenue"},
	}
	if !amt.Tax.IsZero() {
		taxAcc, err := chart.Account(SystemKeyTaxPayable)
		if err != nil {
			return nil, err
		}
		lines = append(lines, LineSpec{AccountID: taxAcc, Credit: amt.Tax, Memo: "Output tax"})
	}
	return lines, nil
}

// PaymentLines: received is Dr Cash/Bank, Cr Accounts Receivable;
// made is Dr Accounts Payable, Cr Cash/Bank
func PaymentLines(chart PostingChart, p *Payment) ([]LineSpec, error) {
	moneyKey := SystemKeyCash
	if p.Mode == PaymentModeBank {
		moneyKey = SystemKeyBank
	}
	money, err := chart.Account(moneyKey)
	if err != nil {
		return nil, err
	}
	party := p.PartyID

	switch p.Direction {
	case PaymentReceived:
		receivable, err := chart.Account(SystemKeyAccountsReceivable)
		if err != nil {
			return nil, err
		}
		return []LineSpec{
			{AccountID: money, Debit: p.Amount, Memo: "Payment received"},
			{AccountID: receivable, Credit: p.Amount, PartyID: &party, Memo: "Receivable settled"},
		}, nil
	case PaymentMade:
		payable, err := chart.Account(SystemKeyAccountsPayable)
		if err != nil {
			return nil, err
		}
		return []LineSpec{
			{AccountID: payable, Debit: p.Amount, PartyID: &party, Memo: "Payable settled"},
			{AccountID: money, Credit: p.Amount, Memo: "Payment made"},
		}, nil
	}
	return nil, shared.NewValidationError("unknown payment direction %q", p.Direction)
}

// AddLines appends specs to an entry in order. Zero-amount specs are skipped.
func (e *JournalEntry) AddLines(specs []LineSpec) error {
	for _, s := range specs {
		if s.Debit.IsZero() && s.Credit.IsZero() {
			continue
		}
		if err := e.AddLine(s.AccountID, s.Debit, s.Credit, s.PartyID, s.Memo); err != nil {
			return err
		}
	}
	return nil
}

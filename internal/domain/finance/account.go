package finance

import (
	"strings"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountType is the top-level classification of an account
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// IsValid reports whether the account type is known
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// NormalBalance is the side on which an account increases
type NormalBalance string

const (
	NormalBalanceDebit  NormalBalance = "DEBIT"
	NormalBalanceCredit NormalBalance = "CREDIT"
)

// NormalBalance returns the natural side of the account type
func (t AccountType) NormalBalance() NormalBalance {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return NormalBalanceDebit
	default:
		return NormalBalanceCredit
	}
}

// SystemKey marks the accounts automatic postings are mapped to
type SystemKey string

const (
	SystemKeyNone               SystemKey = ""
	SystemKeyInventory          SystemKey = "INVENTORY"
	SystemKeyAccountsReceivable SystemKey = "ACCOUNTS_RECEIVABLE"
	SystemKeyAccountsPayable    SystemKey = "ACCOUNTS_PAYABLE"
	SystemKeySalesRevenue       SystemKey = "SALES_REVENUE"
	SystemKeyTaxPayable         SystemKey = "TAX_PAYABLE"
	SystemKeyCash               SystemKey = "CASH"
	SystemKeyBank               SystemKey = "BANK"
	SystemKeyOwnerEquity        SystemKey = "OWNER_EQUITY"
	SystemKeyCostOfGoodsSold    SystemKey = "COST_OF_GOODS_SOLD"
	SystemKeyStockAdjustment    SystemKey = "STOCK_ADJUSTMENT"
)

// Account is a node of the chart of accounts
type Account struct {
	shared.TenantAggregateRoot
	Code          string
	Name          string
	Type          AccountType
	NormalBalance NormalBalance
	ParentID      *uuid.UUID
	SystemKey     SystemKey
	IsSystem      bool
}

// NewAccount creates a user-defined account
func NewAccount(tenantID uuid.UUID, code, name string, accountType AccountType, parentID *uuid.UUID) (*Account, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewValidationError("account code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewValidationError("invalid account type %q", accountType)
	}

	return &Account{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Type:                accountType,
		NormalBalance:       accountType.NormalBalance(),
		ParentID:            parentID,
	}, nil
}

// MarkSystem flags the account as a posting target that cannot be deleted
func (a *Account) MarkSystem(key SystemKey) {
	a.SystemKey = key
	a.IsSystem = true
}

// CanDelete checks the account is neither a system account nor a parent
func (a *Account) CanDelete(hasChildren bool) error {
	if a.IsSystem {
		return shared.NewInvalidStateError("system account %s cannot be deleted", a.Code)
	}
	if hasChildren {
		return shared.NewInvalidStateError("account %s has child accounts", a.Code)
	}
	return nil
}

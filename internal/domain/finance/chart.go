package finance

import (
	"github.com/google/uuid"
)

// AccountTemplate describes one account of the default chart
type AccountTemplate struct {
	Code       string
	Name       string
	Type       AccountType
	ParentCode string
	SystemKey  SystemKey
}

// DefaultChart is the hierarchical chart every tenant starts with.
// Parents come before their children.
var DefaultChart = []AccountTemplate{
	{Code: "1000", Name: "Assets", Type: AccountTypeAsset},
	{Code: "1100", Name: "Cash", Type: AccountTypeAsset, ParentCode: "1000", SystemKey: SystemKeyCash},
	{Code: "1110", Name: "Bank", Type: AccountTypeAsset, ParentCode: "1000", SystemKey: SystemKeyBank},
	{Code: "1200", Name: "Accounts Receivable", Type: AccountTypeAsset, ParentCode: "1000", SystemKey: SystemKeyAccountsReceivable},
	{Code: "1300", Name: "Inventory", Type: AccountTypeAsset, ParentCode: "1000", SystemKey: SystemKeyInventory},
	{Code: "2000", Name: "Liabilities", Type: AccountTypeLiability},
	{Code: "2100", Name: "Accounts Payable", Type: AccountTypeLiability, ParentCode: "2000", SystemKey: SystemKeyAccountsPayable},
	{Code: "2200", Name: "Tax Payable", Type: AccountTypeLiability, ParentCode: "2000", SystemKey: SystemKeyTaxPayable},
	{Code: "3000", Name: "Equity", Type: AccountTypeEquity},
	{Code: "3100", Name: "Owner Equity", Type: AccountTypeEquity, ParentCode: "3000", SystemKey: SystemKeyOwnerEquity},
	{Code: "4000", Name: "Revenue", Type: AccountTypeRevenue},
	{Code: "4100", Name: "Sales Revenue", Type: AccountTypeRevenue, ParentCode: "4000", SystemKey: SystemKeySalesRevenue},
	{Code: "5000", Name: "Expenses", Type: AccountTypeExpense},
	{Code: "5100", Name: "Cost of Goods Sold", Type: AccountTypeExpense, ParentCode: "5000", SystemKey: SystemKeyCostOfGoodsSold},
	{Code: "5200", Name: "Stock Adjustment", Type: AccountTypeExpense, ParentCode: "5000", SystemKey: SystemKeyStockAdjustment},
}

// BuildChart instantiates the templates whose code is not in existing.
// existing maps code to account id so new children can attach to old parents.
func BuildChart(tenantID uuid.UUID, templates []AccountTemplate, existing map[string]uuid.UUID) ([]*Account, error) {
	ids := make(map[string]uuid.UUID, len(existing)+len(templates))
	for code, id := range existing {
		ids[code] = id
	}

	created := make([]*Account, 0, len(templates))
	for _, tpl := range templates {
		if _, ok := ids[tpl.Code]; ok {
			continue
		}
		var parentID *uuid.UUID
		if tpl.ParentCode != "" {
			if id, ok := ids[tpl.ParentCode]; ok {
				parentID = &id
			}
		}
		acc, err := NewAccount(tenantID, tpl.Code, tpl.Name, tpl.Type, parentID)
		if err != nil {
			return nil, err
		}
		if tpl.SystemKey != SystemKeyNone {
			acc.MarkSystem(tpl.SystemKey)
		}
		ids[tpl.Code] = acc.ID
		created = append(created, acc)
	}
	return created, nil
}

package finance

import (
	"context"

	appshared "github.com/erp/ledger/internal/application/shared"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountService manages the chart of accounts
type AccountService struct {
	txScope appshared.TransactionScope
	logger  *zap.Logger
}

// NewAccountService creates an AccountService
func NewAccountService(txScope appshared.TransactionScope, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{txScope: txScope, logger: logger}
}

// SeedChartOfAccounts creates the default chart. Accounts whose code already
// exists are left alone, so seeding twice is harmless.
func (s *AccountService) SeedChartOfAccounts(ctx context.Context, tenantID uuid.UUID) ([]AccountResponse, error) {
	var created []*finance.Account
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if _, err := appshared.LoadTenant(ctx, repos, tenantID); err != nil {
			return err
		}
		existing, err := repos.Accounts().FindAllForTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		codes := make(map[string]uuid.UUID, len(existing))
		for _, a := range existing {
			codes[a.Code] = a.ID
		}
		accounts, err := finance.BuildChart(tenantID, finance.DefaultChart, codes)
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			return nil
		}
		if err := repos.Accounts().Create(ctx, accounts...); err != nil {
			return err
		}
		created = accounts
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("chart of accounts seeded",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("created", len(created)),
	)
	resp := make([]AccountResponse, len(created))
	for i, a := range created {
		resp[i] = ToAccountResponse(a)
	}
	return resp, nil
}

// ListAccounts returns the tenant's chart ordered by code
func (s *AccountService) ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]AccountResponse, error) {
	var resp []AccountResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		accounts, err := repos.Accounts().FindAllForTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		resp = make([]AccountResponse, len(accounts))
		for i, a := range accounts {
			resp[i] = ToAccountResponse(a)
		}
		return nil
	})
	return resp, err
}

// DeleteAccount removes a leaf account that is not a system account
func (s *AccountService) DeleteAccount(ctx context.Context, tenantID, id uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		account, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		hasChildren, err := repos.Accounts().HasChildren(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := account.CanDelete(hasChildren); err != nil {
			return err
		}
		return repos.Accounts().Delete(ctx, tenantID, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("account deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("account_id", id.String()),
	)
	return nil
}

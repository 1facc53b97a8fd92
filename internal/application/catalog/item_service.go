// Package catalog manages the items documents and stock refer to.
package catalog

import (
	"context"

	appshared "github.com/erp/ledger/internal/application/shared"
	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateItemRequest creates an item
type CreateItemRequest struct {
	Name    string     `json:"name" binding:"required,max=200"`
	UQC     string     `json:"uqc" binding:"max=20"`
	TaxID   *uuid.UUID `json:"tax_id"`
	HSNCode string     `json:"hsn_code" binding:"max=20"`
}

// ItemResponse is an item
type ItemResponse struct {
	ID      uuid.UUID  `json:"id"`
	Name    string     `json:"name"`
	UQC     string     `json:"uqc"`
	TaxID   *uuid.UUID `json:"tax_id,omitempty"`
	HSNCode string     `json:"hsn_code,omitempty"`
	Deleted bool       `json:"deleted"`
}

// ToItemResponse converts an item
func ToItemResponse(i *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:      i.ID,
		Name:    i.Name,
		UQC:     i.UQC,
		TaxID:   i.TaxID,
		HSNCode: i.HSNCode,
		Deleted: i.IsDeleted(),
	}
}

// ItemService creates, reads and retires items
type ItemService struct {
	txScope appshared.TransactionScope
	logger  *zap.Logger
}

// NewItemService creates an ItemService
func NewItemService(txScope appshared.TransactionScope, logger *zap.Logger) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemService{txScope: txScope, logger: logger}
}

// Create stores a new item. Its tax, when given, must be a scheme of the tenant.
func (s *ItemService) Create(ctx context.Context, tenantID uuid.UUID, req CreateItemRequest) (*ItemResponse, error) {
	item, err := catalog.NewItem(tenantID, req.Name, req.UQC)
	if err != nil {
		return nil, err
	}
	item.SetHSNCode(req.HSNCode)

	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if _, err := appshared.LoadTenant(ctx, repos, tenantID); err != nil {
			return err
		}
		if req.TaxID != nil {
			if _, err := repos.Taxes().FindByIDForTenant(ctx, tenantID, *req.TaxID); err != nil {
				return err
			}
			item.SetTax(req.TaxID)
		}
		return repos.Items().Save(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("item_id", item.ID.String()),
	)
	resp := ToItemResponse(item)
	return &resp, nil
}

// Get returns an item, deleted ones included
func (s *ItemService) Get(ctx context.Context, tenantID, id uuid.UUID) (*ItemResponse, error) {
	var resp *ItemResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		item, err := repos.Items().FindByIDForTenant(ctx, tenantID, id, true)
		if err != nil {
			return err
		}
		r := ToItemResponse(item)
		resp = &r
		return nil
	})
	return resp, err
}

// Delete soft-deletes an item. Its stock row and history stay; new lines
// can no longer use it.
func (s *ItemService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		item, err := repos.Items().FindByIDForTenant(ctx, tenantID, id, true)
		if err != nil {
			return err
		}
		if err := item.Delete(); err != nil {
			return err
		}
		return repos.Items().Save(ctx, item)
	})
	if err != nil {
		return err
	}
	s.logger.Info("item deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("item_id", id.String()),
	)
	return nil
}

package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements finance.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByIDForTenant finds an account within a tenant
func (r *GormAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "account", id)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant returns the chart ordered by code
func (r *GormAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*finance.Account, error) {
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*finance.Account, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindByIDs loads the tenant's accounts among ids
func (r *GormAccountRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*finance.Account, error) {
	result := make(map[uuid.UUID]*finance.Account, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, uniqueIDs(ids)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ID] = rows[i].ToDomain()
	}
	return result, nil
}

// PostingChart maps each system key of the tenant to its account id
func (r *GormAccountRepository) PostingChart(ctx context.Context, tenantID uuid.UUID) (finance.PostingChart, error) {
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).
		Select("id", "system_key").
		Where("tenant_id = ? AND system_key IS NOT NULL", tenantID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	chart := make(finance.PostingChart, len(rows))
	for _, row := range rows {
		if row.SystemKey == nil {
			continue
		}
		chart[finance.SystemKey(*row.SystemKey)] = row.ID
	}
	return chart, nil
}

// HasChildren reports whether any account names id as its parent
func (r *GormAccountRepository) HasChildren(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("tenant_id = ? AND parent_id = ?", tenantID, id).
		Count(&count).Error
	return count > 0, err
}

// Create inserts accounts in the given order so parents land before children
func (r *GormAccountRepository) Create(ctx context.Context, accounts ...*finance.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	rows := make([]*models.AccountModel, len(accounts))
	for i, a := range accounts {
		rows[i] = models.AccountModelFromDomain(a)
	}
	return r.db.WithContext(ctx).Create(rows).Error
}

// Delete removes an account row
func (r *GormAccountRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.AccountModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("account", id)
	}
	return nil
}

var _ finance.AccountRepository = (*GormAccountRepository)(nil)

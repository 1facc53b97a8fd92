package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/tax"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTaxRepository implements tax.Repository using GORM
type GormTaxRepository struct {
	db *gorm.DB
}

// NewGormTaxRepository creates a new GormTaxRepository
func NewGormTaxRepository(db *gorm.DB) *GormTaxRepository {
	return &GormTaxRepository{db: db}
}

// FindByIDForTenant finds a tax scheme within a tenant
func (r *GormTaxRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*tax.Tax, error) {
	var model models.TaxModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "tax", id)
	}
	return model.ToDomain(), nil
}

// FindByIDs loads the tenant's schemes among ids
func (r *GormTaxRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*tax.Tax, error) {
	result := make(map[uuid.UUID]*tax.Tax, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.TaxModel
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

// FindActive lists the tenant's active schemes by name
func (r *GormTaxRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]*tax.Tax, error) {
	var rows []models.TaxModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("name").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*tax.Tax, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a tax scheme
func (r *GormTaxRepository) Save(ctx context.Context, t *tax.Tax) error {
	return r.db.WithContext(ctx).Save(models.TaxModelFromDomain(t)).Error
}

var _ tax.Repository = (*GormTaxRepository)(nil)

package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormItemRepository implements catalog.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByIDForTenant finds an item within a tenant
func (r *GormItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID, includeDeleted bool) (*catalog.Item, error) {
	var model models.ItemModel
	query := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id)
	if !includeDeleted {
		query = query.Where("deleted_at IS NULL")
	}
	if err := query.First(&model).Error; err != nil {
		return nil, notFound(err, "item", id)
	}
	return model.ToDomain(), nil
}

// FindByIDs loads the tenant's items among ids. Missing ids are simply absent from the map.
func (r *GormItemRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, includeDeleted bool) (map[uuid.UUID]*catalog.Item, error) {
	result := make(map[uuid.UUID]*catalog.Item, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.ItemModel
	query := r.db.WithContext(ctx).Where("tenant_id = ? AND id IN ?", tenantID, uniqueIDs(ids))
	if !includeDeleted {
		query = query.Where("deleted_at IS NULL")
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ID] = rows[i].ToDomain()
	}
	return result, nil
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return r.db.WithContext(ctx).Save(models.ItemModelFromDomain(item)).Error
}

var _ catalog.ItemRepository = (*GormItemRepository)(nil)

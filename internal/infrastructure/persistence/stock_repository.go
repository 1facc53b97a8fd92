package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRepository implements inventory.StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// LockForUpdate creates missing rows at zero, then selects every row
// FOR UPDATE ordered by item id so concurrent writers lock in the same order.
func (r *GormStockRepository) LockForUpdate(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID) (map[uuid.UUID]*inventory.StockRecord, error) {
	ids := uniqueIDs(itemIDs)
	inventory.SortIDs(ids)
	result := make(map[uuid.UUID]*inventory.StockRecord, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	db := r.db.WithContext(ctx)
	fresh := make([]*models.StockModel, len(ids))
	for i, id := range ids {
		fresh[i] = models.StockModelFromDomain(inventory.NewStockRecord(tenantID, id))
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "item_id"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, fmt.Errorf("init stock rows: %w", err)
	}

	var rows []models.StockModel
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND item_id IN ?", tenantID, ids).
		Order("item_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ItemID] = rows[i].ToDomain()
	}
	return result, nil
}

// FindByItem returns the item's stock record without locking it
func (r *GormStockRepository) FindByItem(ctx context.Context, tenantID, itemID uuid.UUID) (*inventory.StockRecord, error) {
	var model models.StockModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND item_id = ?", tenantID, itemID).
		First(&model).Error; err != nil {
		return nil, notFound(err, "stock", itemID)
	}
	return model.ToDomain(), nil
}

// Save writes the count when the stored version still matches the record's,
// then advances the version on both sides.
func (r *GormStockRepository) Save(ctx context.Context, record *inventory.StockRecord) error {
	result := r.db.WithContext(ctx).
		Model(&models.StockModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", record.ID, record.TenantID, record.Version).
		Updates(map[string]any{
			"count":      record.Count,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithEntity(record.ItemID)
	}
	record.IncrementVersion()
	return nil
}

// Count returns the on-hand count of an item, zero when it has never moved
func (r *GormStockRepository) Count(ctx context.Context, tenantID, itemID uuid.UUID) (decimal.Decimal, error) {
	var counts []decimal.Decimal
	if err := r.db.WithContext(ctx).
		Model(&models.StockModel{}).
		Where("tenant_id = ? AND item_id = ?", tenantID, itemID).
		Limit(1).
		Pluck("count", &counts).Error; err != nil {
		return decimal.Zero, err
	}
	if len(counts) == 0 {
		return decimal.Zero, nil
	}
	return counts[0], nil
}

var _ inventory.StockRepository = (*GormStockRepository)(nil)

// GormMovementRepository implements inventory.MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create appends movements in one batch
func (r *GormMovementRepository) Create(ctx context.Context, movements []*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	rows := make([]*models.StockMovementModel, len(movements))
	for i, mv := range movements {
		rows[i] = models.StockMovementModelFromDomain(mv)
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, 200).Error
}

// FindByItem pages through an item's movements, newest first
func (r *GormMovementRepository) FindByItem(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]*inventory.StockMovement, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StockMovementModel{}).
		Where("tenant_id = ? AND item_id = ?", tenantID, itemID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.StockMovementModel
	if err := query.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*inventory.StockMovement, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// SumByItem adds up every delta recorded for an item
func (r *GormMovementRepository) SumByItem(ctx context.Context, tenantID, itemID uuid.UUID) (decimal.Decimal, error) {
	var rows []models.StockMovementModel
	if err := r.db.WithContext(ctx).
		Select("delta").
		Where("tenant_id = ? AND item_id = ?", tenantID, itemID).
		Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, row := range rows {
		sum = sum.Add(row.Delta)
	}
	return sum, nil
}

var _ inventory.MovementRepository = (*GormMovementRepository)(nil)

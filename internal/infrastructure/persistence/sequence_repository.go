package persistence

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/numbering"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceRepository implements numbering.SequenceRepository over the
// number_sequences table. The UPDATE takes the row lock, so two
// transactions asking for the same counter are serialized by the database.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Increment bumps the counter and reads back the new value
func (r *GormSequenceRepository) Increment(ctx context.Context, tenantID uuid.UUID, kind numbering.Kind) (int64, bool, error) {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.NumberSequenceModel{}).
		Where("tenant_id = ? AND kind = ?", tenantID, string(kind)).
		Updates(map[string]any{
			"value":      gorm.Expr("value + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, false, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, false, nil
	}

	var model models.NumberSequenceModel
	if err := db.Where("tenant_id = ? AND kind = ?", tenantID, string(kind)).First(&model).Error; err != nil {
		return 0, false, err
	}
	return model.Value, true, nil
}

// Seed inserts the counter unless a concurrent transaction already did
func (r *GormSequenceRepository) Seed(ctx context.Context, tenantID uuid.UUID, kind numbering.Kind, value int64) error {
	model := &models.NumberSequenceModel{
		TenantID:  tenantID,
		Kind:      string(kind),
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
}

var _ numbering.SequenceRepository = (*GormSequenceRepository)(nil)

// GormNumberSeedSource counts already numbered rows so a new counter starts past them
type GormNumberSeedSource struct {
	db *gorm.DB
}

// NewGormNumberSeedSource creates a new GormNumberSeedSource
func NewGormNumberSeedSource(db *gorm.DB) *GormNumberSeedSource {
	return &GormNumberSeedSource{db: db}
}

// CountNumbered counts journal entries or documents of the kind, deleted ones included
func (s *GormNumberSeedSource) CountNumbered(ctx context.Context, tenantID uuid.UUID, kind numbering.Kind) (int64, error) {
	if kind == numbering.KindJournalEntry {
		return NewGormJournalEntryRepository(s.db).CountForTenant(ctx, tenantID)
	}
	return NewGormDocumentRepository(s.db).CountByKind(ctx, tenantID, trade.DocumentKind(kind), true)
}

var _ numbering.SeedSource = (*GormNumberSeedSource)(nil)

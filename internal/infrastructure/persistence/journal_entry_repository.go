package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormJournalEntryRepository implements finance.JournalEntryRepository using GORM
type GormJournalEntryRepository struct {
	db *gorm.DB
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

// FindByIDForTenant loads an entry with its lines
func (r *GormJournalEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "journal entry", id)
	}
	return r.withLines(ctx, &model)
}

// FindByIDForUpdate loads an entry with its lines under a row lock
func (r *GormJournalEntryRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "journal entry", id)
	}
	return r.withLines(ctx, &model)
}

// FindActiveBySource returns the posted, unreversed entry generated from a source
func (r *GormJournalEntryRepository) FindActiveBySource(ctx context.Context, tenantID uuid.UUID, sourceType finance.SourceType, sourceID uuid.UUID) (*finance.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND source_type = ? AND source_id = ? AND is_posted = ? AND is_reversed = ?",
			tenantID, string(sourceType), sourceID, true, false).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		return nil, notFound(err, "journal entry", sourceID)
	}
	return r.withLines(ctx, &model)
}

func (r *GormJournalEntryRepository) withLines(ctx context.Context, model *models.JournalEntryModel) (*finance.JournalEntry, error) {
	var rows []models.JournalLineModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entry_id = ?", model.TenantID, model.ID).
		Order("line_no ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entry := model.ToDomain()
	for i := range rows {
		entry.Lines = append(entry.Lines, rows[i].ToDomain())
	}
	return entry, nil
}

// FindAllForTenant pages through entries, newest first. Lines are not loaded.
func (r *GormJournalEntryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*finance.JournalEntry, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.JournalEntryModel{}).
		Where("tenant_id = ?", tenantID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.JournalEntryModel
	if err := query.
		Order(orderClause(filter, JournalEntrySortFields, "entry_date")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*finance.JournalEntry, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// CountForTenant counts every entry of the tenant
func (r *GormJournalEntryRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.JournalEntryModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// Create inserts the header and its lines
func (r *GormJournalEntryRepository) Create(ctx context.Context, entry *finance.JournalEntry) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(models.JournalEntryModelFromDomain(entry)).Error; err != nil {
		return err
	}
	if len(entry.Lines) == 0 {
		return nil
	}
	rows := make([]*models.JournalLineModel, len(entry.Lines))
	for i, l := range entry.Lines {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		rows[i] = models.JournalLineModelFromDomain(entry.TenantID, entry.ID, l)
	}
	return db.CreateInBatches(rows, 200).Error
}

// Update writes posting and reversal state if the version still matches
func (r *GormJournalEntryRepository) Update(ctx context.Context, entry *finance.JournalEntry) error {
	result := r.db.WithContext(ctx).
		Model(&models.JournalEntryModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", entry.ID, entry.TenantID, entry.Version-1).
		Updates(map[string]any{
			"description":    entry.Description,
			"posting_date":   entry.PostingDate,
			"is_posted":      entry.IsPosted,
			"is_reversed":    entry.IsReversed,
			"reversed_by_id": entry.ReversedByID,
			"version":        entry.Version,
			"updated_at":     entry.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithEntity(entry.ID)
	}
	return nil
}

var _ finance.JournalEntryRepository = (*GormJournalEntryRepository)(nil)

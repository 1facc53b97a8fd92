package persistence

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements finance.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByIDForTenant finds a payment within a tenant
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID, includeDeleted bool) (*finance.Payment, error) {
	var model models.PaymentModel
	query := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id)
	if !includeDeleted {
		query = query.Where("deleted_at IS NULL")
	}
	if err := query.First(&model).Error; err != nil {
		return nil, notFound(err, "payment", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads a live payment under a row lock
func (r *GormPaymentRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ? AND deleted_at IS NULL", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "payment", id)
	}
	return model.ToDomain(), nil
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	return r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error
}

// Update writes a payment if the version still matches
func (r *GormPaymentRepository) Update(ctx context.Context, payment *finance.Payment) error {
	journal := models.JournalStateColumnsFromDomain(payment.Journal)
	result := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", payment.ID, payment.TenantID, payment.Version-1).
		Updates(map[string]any{
			"amount":           payment.Amount,
			"date":             payment.Date,
			"mode":             string(payment.Mode),
			"reference":        payment.Reference,
			"document_id":      payment.DocumentID,
			"journal_status":   journal.JournalStatus,
			"journal_entry_id": journal.JournalEntryID,
			"journal_error":    journal.JournalError,
			"deleted_at":       payment.DeletedAt,
			"version":          payment.Version,
			"updated_at":       payment.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithEntity(payment.ID)
	}
	return nil
}

// UpdateJournalState writes only the journal columns
func (r *GormPaymentRepository) UpdateJournalState(ctx context.Context, tenantID, id uuid.UUID, state finance.JournalState) error {
	updates := models.JournalStateColumnsFromDomain(state).Updates()
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("payment", id)
	}
	return nil
}

// CountUnposted counts payments whose journal is pending or failed
func (r *GormPaymentRepository) CountUnposted(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("tenant_id = ? AND journal_status IN ?", tenantID, []finance.JournalStatus{finance.JournalStatusPending, finance.JournalStatusFailed}).
		Count(&count).Error
	return count, err
}

var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)

package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var unpostedStatuses = []string{"PENDING", "FAILED"}

// GormJournalBacklogProvider counts sales, purchases and payments whose
// journal posting is pending or failed
type GormJournalBacklogProvider struct {
	db *gorm.DB
}

// NewGormJournalBacklogProvider creates a GormJournalBacklogProvider
func NewGormJournalBacklogProvider(db *gorm.DB) *GormJournalBacklogProvider {
	return &GormJournalBacklogProvider{db: db}
}

// CountUnposted implements JournalBacklogProvider
func (p *GormJournalBacklogProvider) CountUnposted(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var docs, payments int64
	if err := p.db.WithContext(ctx).
		Table("documents").
		Where("tenant_id = ? AND journal_status IN ?", tenantID, unpostedStatuses).
		Count(&docs).Error; err != nil {
		return 0, err
	}
	if err := p.db.WithContext(ctx).
		Table("payments").
		Where("tenant_id = ? AND journal_status IN ?", tenantID, unpostedStatuses).
		Count(&payments).Error; err != nil {
		return 0, err
	}
	return docs + payments, nil
}

// GormTenantProvider implements TenantProvider using GORM.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetActiveTenantIDs returns every tenant id
func (p *GormTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("tenants").
		Pluck("id", &ids).Error
	return ids, err
}

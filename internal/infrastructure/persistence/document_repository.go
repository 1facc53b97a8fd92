package persistence

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDocumentRepository implements trade.DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByIDForTenant loads a document and its lines
func (r *GormDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID, includeDeleted bool) (*trade.Document, error) {
	var model models.DocumentModel
	query := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id)
	if !includeDeleted {
		query = query.Where("deleted_at IS NULL")
	}
	if err := query.First(&model).Error; err != nil {
		return nil, notFound(err, "document", id)
	}
	return r.withLines(ctx, &model)
}

// FindByIDForUpdate loads a live document under a row lock
func (r *GormDocumentRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ? AND deleted_at IS NULL", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "document", id)
	}
	return r.withLines(ctx, &model)
}

func (r *GormDocumentRepository) withLines(ctx context.Context, model *models.DocumentModel) (*trade.Document, error) {
	doc := model.ToDomain()
	lines, err := NewGormLineRepository(r.db).FindByDocument(ctx, doc.TenantID, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Lines = lines
	return doc, nil
}

// FindAllForTenant pages through documents, newest first
func (r *GormDocumentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter trade.DocumentFilter) ([]*trade.Document, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DocumentModel{}).Where("tenant_id = ?", tenantID)
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.PartyID != nil {
		query = query.Where("party_id = ?", *filter.PartyID)
	}
	if !filter.IncludeDeleted {
		query = query.Where("deleted_at IS NULL")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.DocumentModel
	if err := query.
		Order(orderClause(filter.Filter, DocumentSortFields, "date")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return []*trade.Document{}, total, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	var lineRows []models.DocumentLineModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_id IN ?", tenantID, ids).
		Order("line_no ASC").
		Find(&lineRows).Error; err != nil {
		return nil, 0, err
	}
	byDoc := make(map[uuid.UUID][]trade.DocumentLine, len(rows))
	for i := range lineRows {
		byDoc[lineRows[i].DocumentID] = append(byDoc[lineRows[i].DocumentID], lineRows[i].ToDomain())
	}

	docs := make([]*trade.Document, len(rows))
	for i := range rows {
		docs[i] = rows[i].ToDomain()
		if lines, ok := byDoc[rows[i].ID]; ok {
			docs[i].Lines = lines
		}
	}
	return docs, total, nil
}

// CountByKind counts documents of one kind
func (r *GormDocumentRepository) CountByKind(ctx context.Context, tenantID uuid.UUID, kind trade.DocumentKind, includeDeleted bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.DocumentModel{}).Where("tenant_id = ? AND kind = ?", tenantID, kind)
	if !includeDeleted {
		query = query.Where("deleted_at IS NULL")
	}
	err := query.Count(&count).Error
	return count, err
}

// ExistsByNumber checks whether a number is taken, deleted documents included
func (r *GormDocumentRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, kind trade.DocumentKind, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("tenant_id = ? AND kind = ? AND number = ?", tenantID, kind, number).
		Count(&count).Error
	return count > 0, err
}

// Create inserts the document header
func (r *GormDocumentRepository) Create(ctx context.Context, doc *trade.Document) error {
	return r.db.WithContext(ctx).Create(models.DocumentModelFromDomain(doc)).Error
}

// Update writes the header if nobody else changed it since it was loaded
func (r *GormDocumentRepository) Update(ctx context.Context, doc *trade.Document) error {
	journal := models.JournalStateColumnsFromDomain(doc.Journal)
	result := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", doc.ID, doc.TenantID, doc.Version-1).
		Updates(map[string]any{
			"number":             doc.Number,
			"date":               doc.Date,
			"party_id":           doc.PartyID,
			"tax_id":             doc.TaxID,
			"tax_rate":           doc.TaxRate,
			"source_document_id": doc.SourceDocumentID,
			"notes":              doc.Notes,
			"subtotal":           doc.Subtotal,
			"tax_amount":         doc.TaxAmount,
			"total":              doc.Total,
			"journal_status":     journal.JournalStatus,
			"journal_entry_id":   journal.JournalEntryID,
			"journal_error":      journal.JournalError,
			"deleted_at":         doc.DeletedAt,
			"version":            doc.Version,
			"updated_at":         doc.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithEntity(doc.ID)
	}
	return nil
}

// UpdateJournalState writes only the journal columns
func (r *GormDocumentRepository) UpdateJournalState(ctx context.Context, tenantID, id uuid.UUID, state finance.JournalState) error {
	updates := models.JournalStateColumnsFromDomain(state).Updates()
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("document", id)
	}
	return nil
}

// CountUnposted counts documents whose journal is pending or failed
func (r *GormDocumentRepository) CountUnposted(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("tenant_id = ? AND journal_status IN ?", tenantID, []finance.JournalStatus{finance.JournalStatusPending, finance.JournalStatusFailed}).
		Count(&count).Error
	return count, err
}

var _ trade.DocumentRepository = (*GormDocumentRepository)(nil)

// GormLineRepository implements trade.LineRepository using GORM
type GormLineRepository struct {
	db *gorm.DB
}

// NewGormLineRepository creates a new GormLineRepository
func NewGormLineRepository(db *gorm.DB) *GormLineRepository {
	return &GormLineRepository{db: db}
}

// FindByDocument returns a document's lines in line order
func (r *GormLineRepository) FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]trade.DocumentLine, error) {
	var rows []models.DocumentLineModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_id = ?", tenantID, documentID).
		Order("line_no ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	lines := make([]trade.DocumentLine, len(rows))
	for i := range rows {
		lines[i] = rows[i].ToDomain()
	}
	return lines, nil
}

// ReplaceAll swaps the document's line set
func (r *GormLineRepository) ReplaceAll(ctx context.Context, tenantID, documentID uuid.UUID, lines []trade.DocumentLine) error {
	if err := r.DeleteByDocument(ctx, tenantID, documentID); err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	rows := make([]*models.DocumentLineModel, len(lines))
	for i, l := range lines {
		l.TenantID = tenantID
		l.DocumentID = documentID
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		rows[i] = models.DocumentLineModelFromDomain(l)
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, 200).Error
}

// DeleteByDocument removes every line of a document
func (r *GormLineRepository) DeleteByDocument(ctx context.Context, tenantID, documentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_id = ?", tenantID, documentID).
		Delete(&models.DocumentLineModel{}).Error
}

var _ trade.LineRepository = (*GormLineRepository)(nil)

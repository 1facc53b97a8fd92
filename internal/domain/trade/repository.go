package trade

import (
	"context"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentFilter narrows document list queries
type DocumentFilter struct {
	shared.Filter
	Kind    DocumentKind
	PartyID *uuid.UUID
}

// DocumentRepository persists document headers. Lines go through LineRepository.
type DocumentRepository interface {
	// FindByIDForTenant loads a document with its lines; includeDeleted
	// makes soft-deleted documents visible
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID, includeDeleted bool) (*Document, error)
	// FindByIDForUpdate loads a live document with its lines under a row lock
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Document, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter) ([]*Document, int64, error)
	// CountByKind counts documents of a kind; includeDeleted counts soft-deleted ones too
	CountByKind(ctx context.Context, tenantID uuid.UUID, kind DocumentKind, includeDeleted bool) (int64, error)
	// ExistsByNumber checks number uniqueness per tenant and kind, deleted documents included
	ExistsByNumber(ctx context.Context, tenantID uuid.UUID, kind DocumentKind, number string) (bool, error)
	Create(ctx context.Context, doc *Document) error
	// Update writes header changes with an optimistic version check
	Update(ctx context.Context, doc *Document) error
	// UpdateJournalState writes only the journal columns, leaving the version alone
	UpdateJournalState(ctx context.Context, tenantID, id uuid.UUID, state finance.JournalState) error
}

// LineRepository persists document lines
type LineRepository interface {
	FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]DocumentLine, error)
	// ReplaceAll deletes the document's lines and inserts the given set
	ReplaceAll(ctx context.Context, tenantID, documentID uuid.UUID, lines []DocumentLine) error
	DeleteByDocument(ctx context.Context, tenantID, documentID uuid.UUID) error
}

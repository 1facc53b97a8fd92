package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepository defines the persistence contract for items
type ItemRepository interface {
	// FindByIDForTenant finds an item; includeDeleted controls whether
	// soft-deleted items are visible
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID, includeDeleted bool) (*Item, error)

	// FindByIDs returns the tenant's items among ids keyed by id
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, includeDeleted bool) (map[uuid.UUID]*Item, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *Item) error
}

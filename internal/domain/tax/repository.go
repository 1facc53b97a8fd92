package tax

import (
	"context"

	"github.com/google/uuid"
)

// Repository loads and stores tax schemes
type Repository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Tax, error)
	// FindByIDs returns the schemes of the tenant among ids, keyed by id
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Tax, error)
	FindActive(ctx context.Context, tenantID uuid.UUID) ([]*Tax, error)
	Save(ctx context.Context, t *Tax) error
}

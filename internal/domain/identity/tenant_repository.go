package identity

import (
	"context"

	"github.com/google/uuid"
)

// TenantRepository loads and stores tenants
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindByCode(ctx context.Context, code string) (*Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
}

package tenant

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists tenants and locations. The lookup methods used by the
// context resolver (ByAgentID, ByPhone, ByName, ByNameLike,
// LocationTenantByPhone) return (nil, nil) on no match so a miss is a
// normal probe outcome, not an error.
type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	Update(ctx context.Context, t *Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Tenant, int, error)

	ByAgentID(ctx context.Context, agentID string) (*Tenant, error)
	ByPhone(ctx context.Context, phone string) (*Tenant, error)
	ByName(ctx context.Context, name string) (*Tenant, error)
	ByNameLike(ctx context.Context, name string) (*Tenant, error)
	LocationTenantByPhone(ctx context.Context, phone string) (*Tenant, error)

	CreateLocation(ctx context.Context, loc *Location) error
	ListLocations(ctx context.Context, tenantID uuid.UUID) ([]*Location, error)
	UpdateLocation(ctx context.Context, loc *Location) error
	DeleteLocation(ctx context.Context, tenantID, id uuid.UUID) error
}

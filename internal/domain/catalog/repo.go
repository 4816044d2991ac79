package catalog

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, o *Offering) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Offering, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*Offering, error)
	Update(ctx context.Context, o *Offering) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

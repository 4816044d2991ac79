package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTenant   = errors.New("invalid tenant")
	ErrInvalidLocation = errors.New("invalid location")
)

// Service owns tenant and location lifecycle plus call-context resolution.
type Service struct {
	repo     Repository
	resolver *Resolver
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, resolver: NewResolver(repo)}
}

// ResolveContext maps an inbound tool-call payload to a tenant.
func (s *Service) ResolveContext(ctx context.Context, payload map[string]any, explicitID string) (Resolution, error) {
	return s.resolver.Resolve(ctx, payload, explicitID)
}

func (s *Service) Create(ctx context.Context, t *Tenant) (*Tenant, error) {
	if err := validateTenant(t); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Tenant, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, t *Tenant) (*Tenant, error) {
	if err := validateTenant(t); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update tenant: %w", err)
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) CreateLocation(ctx context.Context, loc *Location) (*Location, error) {
	if err := validateLocation(loc); err != nil {
		return nil, err
	}
	if err := s.repo.CreateLocation(ctx, loc); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return loc, nil
}

func (s *Service) ListLocations(ctx context.Context, tenantID uuid.UUID) ([]*Location, error) {
	return s.repo.ListLocations(ctx, tenantID)
}

func (s *Service) UpdateLocation(ctx context.Context, loc *Location) (*Location, error) {
	if err := validateLocation(loc); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLocation(ctx, loc); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	return loc, nil
}

func (s *Service) DeleteLocation(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.repo.DeleteLocation(ctx, tenantID, id)
}

func validateTenant(t *Tenant) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTenant)
	}
	switch t.Kind {
	case KindClinic, KindRestaurant:
	default:
		return fmt.Errorf("%w: kind must be %q or %q", ErrInvalidTenant, KindClinic, KindRestaurant)
	}
	if t.Timezone != "" {
		if _, err := time.LoadLocation(t.Timezone); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", ErrInvalidTenant, t.Timezone)
		}
	}
	return nil
}

func validateLocation(loc *Location) error {
	if strings.TrimSpace(loc.Label) == "" {
		return fmt.Errorf("%w: label is required", ErrInvalidLocation)
	}
	return nil
}

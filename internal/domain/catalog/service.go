package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidOffering = errors.New("invalid offering")

// Durations bounds chosen to catch unit mistakes (seconds or hours passed
// as minutes) rather than to enforce business policy.
const (
	minDurationMinutes = 5
	maxDurationMinutes = 8 * 60
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, o *Offering) (*Offering, error) {
	if err := validate(o); err != nil {
		return nil, err
	}
	o.Active = true
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create offering: %w", err)
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*Offering, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]*Offering, error) {
	return s.repo.List(ctx, tenantID)
}

func (s *Service) Update(ctx context.Context, o *Offering) (*Offering, error) {
	if err := validate(o); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("update offering: %w", err)
	}
	return o, nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.repo.Delete(ctx, tenantID, id)
}

func validate(o *Offering) error {
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidOffering)
	}
	if o.DurationMinutes < minDurationMinutes || o.DurationMinutes > maxDurationMinutes {
		return fmt.Errorf("%w: duration_minutes must be between %d and %d",
			ErrInvalidOffering, minDurationMinutes, maxDurationMinutes)
	}
	if o.PriceCents != nil && *o.PriceCents < 0 {
		return fmt.Errorf("%w: price_cents must not be negative", ErrInvalidOffering)
	}
	return nil
}

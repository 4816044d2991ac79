package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	offerings []*Offering
}

func (m *mockRepo) Create(ctx context.Context, o *Offering) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	m.offerings = append(m.offerings, o)
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Offering, error) {
	for _, o := range m.offerings {
		if o.TenantID == tenantID && o.ID == id {
			return o, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*Offering, error) {
	var out []*Offering
	for _, o := range m.offerings {
		if o.TenantID == tenantID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockRepo) Update(ctx context.Context, o *Offering) error {
	for i, existing := range m.offerings {
		if existing.TenantID == o.TenantID && existing.ID == o.ID {
			m.offerings[i] = o
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	for i, o := range m.offerings {
		if o.TenantID == tenantID && o.ID == id {
			m.offerings = append(m.offerings[:i], m.offerings[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func TestCreateOffering(t *testing.T) {
	svc := NewService(&mockRepo{})
	o, err := svc.Create(context.Background(), &Offering{
		TenantID:        uuid.New(),
		Name:            "Checkup",
		DurationMinutes: 30,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if o.ID == uuid.Nil || !o.Active {
		t.Fatalf("got %+v", o)
	}
}

func TestCreateOffering_Validation(t *testing.T) {
	svc := NewService(&mockRepo{})
	neg := -100
	cases := []struct {
		name string
		o    Offering
	}{
		{"blank name", Offering{DurationMinutes: 30}},
		{"duration too small", Offering{Name: "X", DurationMinutes: 2}},
		{"duration too large", Offering{Name: "X", DurationMinutes: 9 * 60}},
		{"negative price", Offering{Name: "X", DurationMinutes: 30, PriceCents: &neg}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), &tc.o); !errors.Is(err, ErrInvalidOffering) {
				t.Fatalf("got %v, want ErrInvalidOffering", err)
			}
		})
	}
}

func TestUpdateOffering_NotFound(t *testing.T) {
	svc := NewService(&mockRepo{})
	_, err := svc.Update(context.Background(), &Offering{
		ID: uuid.New(), TenantID: uuid.New(), Name: "X", DurationMinutes: 30,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Offering is a bookable service with the duration the slot engine uses
// when that service is requested by name.
type Offering struct {
	ID              uuid.UUID `json:"id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      *int      `json:"price_cents,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

package tenant

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Tenant kinds.
const (
	KindClinic     = "clinic"
	KindRestaurant = "restaurant"
)

// Tenant maps to the tenants table: one clinic or restaurant account owning
// its own hours, services, and appointments.
type Tenant struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Kind         string    `db:"kind" json:"kind"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Email        *string   `db:"email" json:"email,omitempty"`
	Timezone     string    `db:"timezone" json:"timezone"`
	VoiceAgentID *string   `db:"voice_agent_id" json:"voice_agent_id,omitempty"`
	Greeting     *string   `db:"greeting" json:"greeting,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Location maps to the locations table. Hours is the day-name-keyed
// open/close JSON used as the secondary hours source by the availability
// engine; it is stored opaquely here.
type Location struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	TenantID  uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	Label     string          `db:"label" json:"label"`
	Phone     *string         `db:"phone" json:"phone,omitempty"`
	Address   *string         `db:"address" json:"address,omitempty"`
	Hours     json.RawMessage `db:"hours" json:"hours,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

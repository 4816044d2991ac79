package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusRequested = "requested"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// WorkingHourRule maps to the working_hours table. One open/close window for
// a weekday; a weekday may carry several rules (split shifts).
type WorkingHourRule struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TenantID  uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Weekday   int       `db:"weekday" json:"weekday"` // 0=Sunday .. 6=Saturday
	OpenTime  string    `db:"open_time" json:"open_time"`
	CloseTime string    `db:"close_time" json:"close_time"`
	IsOpen    bool      `db:"is_open" json:"is_open"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BreakRule maps to the break_rules table. A sub-interval of a weekday that
// is excluded from bookability (e.g. lunch).
type BreakRule struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TenantID  uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Weekday   int       `db:"weekday" json:"weekday"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	Label     *string   `db:"label" json:"label,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Appointment maps to the appointments table.
type Appointment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	TenantID      uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Status        string    `db:"status" json:"status"`
	StartTime     time.Time `db:"start_time" json:"start_time"`
	ServiceName   *string   `db:"service_name" json:"service_name,omitempty"`
	CustomerName  string    `db:"customer_name" json:"customer_name"`
	CustomerPhone *string   `db:"customer_phone" json:"customer_phone,omitempty"`
	CustomerEmail *string   `db:"customer_email" json:"customer_email,omitempty"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// OpenInterval is a [Start, End) span of bookable minutes within one day.
// Derived per query, never persisted.
type OpenInterval struct {
	Start int // minutes since midnight, inclusive
	End   int // minutes since midnight, exclusive
}

// DayHours is one entry of the per-location fallback hours map, keyed by
// lowercase day name ("monday" .. "sunday") in the locations.hours JSON.
type DayHours struct {
	Enabled bool   `json:"enabled"`
	Open    string `json:"open"`
	Close   string `json:"close"`
}

// BookingRequest is the write-path input consumed by Service.BookAppointment.
type BookingRequest struct {
	TenantID      uuid.UUID `json:"tenant_id"`
	StartTime     string    `json:"start_time"`
	ServiceName   string    `json:"service_name,omitempty"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

// AvailabilityResult is returned by Service.FindAvailableSlots. Slots are
// RFC 3339 start timestamps in chronological order. Message is set on the
// expected-empty outcomes (closed day, no hours configured, fully booked).
type AvailabilityResult struct {
	Slots       []string `json:"slots"`
	SlotMinutes int      `json:"slot_minutes"`
	Message     string   `json:"message,omitempty"`
}

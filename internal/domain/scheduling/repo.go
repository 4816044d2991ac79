package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Availability reads.
	HoursForWeekday(ctx context.Context, tenantID uuid.UUID, weekday int) ([]WorkingHourRule, error)
	BreaksForWeekday(ctx context.Context, tenantID uuid.UUID, weekday int) ([]BreakRule, error)
	// LocationHours returns the day-name-keyed fallback hours map from the
	// tenant's primary location, or nil when no location carries one.
	LocationHours(ctx context.Context, tenantID uuid.UUID) (map[string]DayHours, error)
	ServiceDurations(ctx context.Context, tenantID uuid.UUID) (map[string]int, error)
	// AppointmentsOn returns the tenant's non-cancelled appointments for a
	// "YYYY-MM-DD" UTC date.
	AppointmentsOn(ctx context.Context, tenantID uuid.UUID, date string) ([]Appointment, error)

	// Booking writes.
	CreateAppointment(ctx context.Context, appt *Appointment) error
	GetAppointment(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error)
	CancelAppointment(ctx context.Context, tenantID, id uuid.UUID, reason string) error
	ListAppointments(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	// AppointmentsBetween returns non-cancelled appointments across all
	// tenants in [from, to), for the reminder job.
	AppointmentsBetween(ctx context.Context, from, to time.Time) ([]Appointment, error)

	// Hours administration.
	ListHours(ctx context.Context, tenantID uuid.UUID) ([]WorkingHourRule, error)
	CreateHourRule(ctx context.Context, rule *WorkingHourRule) error
	DeleteHourRule(ctx context.Context, tenantID, id uuid.UUID) error
	ListBreaks(ctx context.Context, tenantID uuid.UUID) ([]BreakRule, error)
	CreateBreakRule(ctx context.Context, rule *BreakRule) error
	DeleteBreakRule(ctx context.Context, tenantID, id uuid.UUID) error
}

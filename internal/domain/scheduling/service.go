package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidWindow indicates a missing, unparseable, or inverted
	// availability window. Detected before any store access.
	ErrInvalidWindow = errors.New("invalid availability window")

	// ErrInvalidBooking indicates a booking request that fails validation.
	ErrInvalidBooking = errors.New("invalid booking request")

	// ErrDataUnavailable indicates the backing store failed to return
	// hours, breaks, appointments, or service data.
	ErrDataUnavailable = errors.New("scheduling data unavailable")

	// ErrSlotTaken indicates the requested start overlaps an existing
	// appointment at write time.
	ErrSlotTaken = errors.New("slot is no longer available")

	// ErrAppointmentNotFound indicates the appointment does not exist for
	// the tenant.
	ErrAppointmentNotFound = errors.New("appointment not found")
)

const (
	DefaultSlotMinutes = 30
	DefaultMaxResults  = 12

	msgHoursUnavailable = "Clinic hours unavailable"
	msgClosed           = "Clinic is closed during that window"
	msgFullyBooked      = "No open slots during that window"
)

// Accepted timestamp layouts for availability windows and booking starts.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Options carries the per-deployment knobs of the availability engine.
// Zero values fall back to the package defaults.
type Options struct {
	MaxResults         int
	DefaultSlotMinutes int
}

// Service composes the availability engine: it loads hours, breaks,
// appointments, and service durations for a tenant, builds open windows,
// generates candidate slots, and filters conflicts. It holds no mutable
// state between calls.
type Service struct {
	repo        Repository
	maxResults  int
	defaultSlot int
}

func NewService(repo Repository, opts Options) *Service {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.DefaultSlotMinutes <= 0 {
		opts.DefaultSlotMinutes = DefaultSlotMinutes
	}
	return &Service{
		repo:        repo,
		maxResults:  opts.MaxResults,
		defaultSlot: opts.DefaultSlotMinutes,
	}
}

// FindAvailableSlots computes the bookable slot starts for a tenant within
// [windowStart, windowEnd). Closed days and fully booked windows are
// expected outcomes reported through AvailabilityResult.Message, not errors.
func (s *Service) FindAvailableSlots(ctx context.Context, tenantID uuid.UUID, serviceName, windowStart, windowEnd string) (*AvailabilityResult, error) {
	start, err := parseTimestamp(windowStart)
	if err != nil {
		return nil, fmt.Errorf("%w: start %q", ErrInvalidWindow, windowStart)
	}
	end, err := parseTimestamp(windowEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: end %q", ErrInvalidWindow, windowEnd)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start is not before end", ErrInvalidWindow)
	}

	date := start.UTC().Format("2006-01-02")
	weekday := int(start.UTC().Weekday())

	windows, configured, err := s.openWindows(ctx, tenantID, weekday)
	if err != nil {
		return nil, err
	}

	durations, err := s.repo.ServiceDurations(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: service durations: %v", ErrDataUnavailable, err)
	}
	name := serviceName
	slotMinutes := resolveDuration(&name, durations, s.defaultSlot)

	if len(windows) == 0 {
		msg := msgClosed
		if !configured {
			msg = msgHoursUnavailable
		}
		return &AvailabilityResult{Slots: []string{}, SlotMinutes: slotMinutes, Message: msg}, nil
	}

	candidates := GenerateSlots(windows, slotMinutes)

	appts, err := s.repo.AppointmentsOn(ctx, tenantID, date)
	if err != nil {
		return nil, fmt.Errorf("%w: appointments: %v", ErrDataUnavailable, err)
	}
	free := FilterConflicts(candidates, slotMinutes, appts, durations, s.defaultSlot)

	day, _ := time.Parse("2006-01-02", date)
	slots := make([]string, 0, len(free))
	for _, minute := range free {
		slotStart := day.Add(time.Duration(minute) * time.Minute)
		slotEnd := slotStart.Add(time.Duration(slotMinutes) * time.Minute)
		if slotStart.Before(start) || slotEnd.After(end) {
			continue
		}
		slots = append(slots, slotStart.UTC().Format(time.RFC3339))
		if len(slots) == s.maxResults {
			break
		}
	}
	sort.Strings(slots)

	result := &AvailabilityResult{Slots: slots, SlotMinutes: slotMinutes}
	if len(slots) == 0 {
		result.Message = msgFullyBooked
	}
	return result, nil
}

// openWindows loads the weekday's rules and breaks (in parallel, they are
// independent reads) and builds the merged open intervals. When the tenant
// has no working-hour rows at all it falls back to the per-location hours
// map; configured reports whether either source existed.
func (s *Service) openWindows(ctx context.Context, tenantID uuid.UUID, weekday int) (windows []OpenInterval, configured bool, err error) {
	type breaksResult struct {
		breaks []BreakRule
		err    error
	}
	breaksCh := make(chan breaksResult, 1)
	go func() {
		b, berr := s.repo.BreaksForWeekday(ctx, tenantID, weekday)
		breaksCh <- breaksResult{breaks: b, err: berr}
	}()

	rules, err := s.repo.HoursForWeekday(ctx, tenantID, weekday)
	br := <-breaksCh
	if err != nil {
		return nil, false, fmt.Errorf("%w: working hours: %v", ErrDataUnavailable, err)
	}
	if br.err != nil {
		return nil, false, fmt.Errorf("%w: break rules: %v", ErrDataUnavailable, br.err)
	}

	if len(rules) > 0 {
		return BuildOpenWindows(rules, br.breaks), true, nil
	}

	// No rows configured (not merely closed): secondary per-location hours.
	fallback, err := s.repo.LocationHours(ctx, tenantID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: location hours: %v", ErrDataUnavailable, err)
	}
	if len(fallback) == 0 {
		return nil, false, nil
	}

	day, ok := fallback[strings.ToLower(time.Weekday(weekday).String())]
	if !ok || !day.Enabled {
		return nil, true, nil
	}
	rule := WorkingHourRule{Weekday: weekday, OpenTime: day.Open, CloseTime: day.Close, IsOpen: true}
	return BuildOpenWindows([]WorkingHourRule{rule}, br.breaks), true, nil
}

// BookAppointment persists a booking after re-running the conflict check
// against the latest appointment state. The availability list is a
// snapshot, not a reservation; this write-time re-validation is what
// prevents double booking.
func (s *Service) BookAppointment(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if req.CustomerName == "" {
		return nil, fmt.Errorf("%w: customer_name is required", ErrInvalidBooking)
	}
	start, err := parseTimestamp(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: start_time %q", ErrInvalidBooking, req.StartTime)
	}
	start = start.UTC()

	durations, err := s.repo.ServiceDurations(ctx, req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: service durations: %v", ErrDataUnavailable, err)
	}
	name := req.ServiceName
	duration := resolveDuration(&name, durations, s.defaultSlot)

	appts, err := s.repo.AppointmentsOn(ctx, req.TenantID, start.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("%w: appointments: %v", ErrDataUnavailable, err)
	}
	startMin := start.Hour()*60 + start.Minute()
	for _, b := range busyIntervals(appts, durations, s.defaultSlot) {
		if Overlaps(startMin, startMin+duration, b.Start, b.End) {
			return nil, ErrSlotTaken
		}
	}

	appt := &Appointment{
		TenantID:     req.TenantID,
		Status:       StatusConfirmed,
		StartTime:    start,
		CustomerName: req.CustomerName,
	}
	if req.ServiceName != "" {
		appt.ServiceName = &req.ServiceName
	}
	if req.CustomerPhone != "" {
		appt.CustomerPhone = &req.CustomerPhone
	}
	if req.CustomerEmail != "" {
		appt.CustomerEmail = &req.CustomerEmail
	}
	if req.Notes != "" {
		appt.Notes = &req.Notes
	}
	if err := s.repo.CreateAppointment(ctx, appt); err != nil {
		return nil, fmt.Errorf("%w: create appointment: %v", ErrDataUnavailable, err)
	}
	return appt, nil
}

func (s *Service) GetAppointment(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointment(ctx, tenantID, id)
}

func (s *Service) CancelAppointment(ctx context.Context, tenantID, id uuid.UUID, reason string) error {
	return s.repo.CancelAppointment(ctx, tenantID, id, reason)
}

func (s *Service) ListAppointments(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListAppointments(ctx, tenantID, limit, offset)
}

// UpcomingAppointments returns non-cancelled appointments in [from, to)
// across all tenants, consumed by the reminder job.
func (s *Service) UpcomingAppointments(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	return s.repo.AppointmentsBetween(ctx, from, to)
}

func parseTimestamp(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", v)
}

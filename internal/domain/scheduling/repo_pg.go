package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) HoursForWeekday(ctx context.Context, tenantID uuid.UUID, weekday int) ([]WorkingHourRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, weekday,
		       to_char(open_time, 'HH24:MI'), to_char(close_time, 'HH24:MI'),
		       is_open, created_at, updated_at
		FROM working_hours
		WHERE tenant_id = $1 AND weekday = $2
		ORDER BY open_time`, tenantID, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHourRules(rows)
}

func (r *repoPG) ListHours(ctx context.Context, tenantID uuid.UUID) ([]WorkingHourRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, weekday,
		       to_char(open_time, 'HH24:MI'), to_char(close_time, 'HH24:MI'),
		       is_open, created_at, updated_at
		FROM working_hours
		WHERE tenant_id = $1
		ORDER BY weekday, open_time`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHourRules(rows)
}

func scanHourRules(rows pgx.Rows) ([]WorkingHourRule, error) {
	var rules []WorkingHourRule
	for rows.Next() {
		var h WorkingHourRule
		if err := rows.Scan(&h.ID, &h.TenantID, &h.Weekday, &h.OpenTime, &h.CloseTime, &h.IsOpen, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, h)
	}
	return rules, rows.Err()
}

func (r *repoPG) CreateHourRule(ctx context.Context, rule *WorkingHourRule) error {
	rule.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO working_hours (id, tenant_id, weekday, open_time, close_time, is_open)
		VALUES ($1, $2, $3, $4::time, $5::time, $6)`,
		rule.ID, rule.TenantID, rule.Weekday, rule.OpenTime, rule.CloseTime, rule.IsOpen)
	return err
}

func (r *repoPG) DeleteHourRule(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM working_hours WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return err
}

func (r *repoPG) BreaksForWeekday(ctx context.Context, tenantID uuid.UUID, weekday int) ([]BreakRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, weekday,
		       to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
		       label, created_at
		FROM break_rules
		WHERE tenant_id = $1 AND weekday = $2
		ORDER BY start_time`, tenantID, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBreakRules(rows)
}

func (r *repoPG) ListBreaks(ctx context.Context, tenantID uuid.UUID) ([]BreakRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, weekday,
		       to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
		       label, created_at
		FROM break_rules
		WHERE tenant_id = $1
		ORDER BY weekday, start_time`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBreakRules(rows)
}

func scanBreakRules(rows pgx.Rows) ([]BreakRule, error) {
	var rules []BreakRule
	for rows.Next() {
		var b BreakRule
		if err := rows.Scan(&b.ID, &b.TenantID, &b.Weekday, &b.StartTime, &b.EndTime, &b.Label, &b.CreatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, b)
	}
	return rules, rows.Err()
}

func (r *repoPG) CreateBreakRule(ctx context.Context, rule *BreakRule) error {
	rule.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO break_rules (id, tenant_id, weekday, start_time, end_time, label)
		VALUES ($1, $2, $3, $4::time, $5::time, $6)`,
		rule.ID, rule.TenantID, rule.Weekday, rule.StartTime, rule.EndTime, rule.Label)
	return err
}

func (r *repoPG) DeleteBreakRule(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM break_rules WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return err
}

func (r *repoPG) LocationHours(ctx context.Context, tenantID uuid.UUID) (map[string]DayHours, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `
		SELECT hours FROM locations
		WHERE tenant_id = $1 AND hours IS NOT NULL
		ORDER BY created_at
		LIMIT 1`, tenantID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var hours map[string]DayHours
	if err := json.Unmarshal(raw, &hours); err != nil {
		return nil, err
	}
	return hours, nil
}

func (r *repoPG) ServiceDurations(ctx context.Context, tenantID uuid.UUID) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT lower(name), duration_minutes FROM service_offerings
		WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	durations := make(map[string]int)
	for rows.Next() {
		var name string
		var minutes int
		if err := rows.Scan(&name, &minutes); err != nil {
			return nil, err
		}
		durations[name] = minutes
	}
	return durations, rows.Err()
}

const apptCols = `id, tenant_id, status, start_time, service_name,
	customer_name, customer_phone, customer_email, notes, created_at, updated_at`

func (r *repoPG) AppointmentsOn(ctx context.Context, tenantID uuid.UUID, date string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptCols+` FROM appointments
		WHERE tenant_id = $1
		  AND status <> $2
		  AND start_time >= $3::date
		  AND start_time < $3::date + interval '1 day'
		ORDER BY start_time`, tenantID, StatusCancelled, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func (r *repoPG) AppointmentsBetween(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptCols+` FROM appointments
		WHERE status <> $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time`, StatusCancelled, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	var appts []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Status, &a.StartTime, &a.ServiceName,
			&a.CustomerName, &a.CustomerPhone, &a.CustomerEmail, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

func (r *repoPG) CreateAppointment(ctx context.Context, appt *Appointment) error {
	appt.ID = uuid.New()
	if appt.Status == "" {
		appt.Status = StatusConfirmed
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, tenant_id, status, start_time, service_name,
			customer_name, customer_phone, customer_email, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		appt.ID, appt.TenantID, appt.Status, appt.StartTime, appt.ServiceName,
		appt.CustomerName, appt.CustomerPhone, appt.CustomerEmail, appt.Notes)
	return err
}

func (r *repoPG) GetAppointment(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	var a Appointment
	err := r.pool.QueryRow(ctx, `
		SELECT `+apptCols+` FROM appointments
		WHERE tenant_id = $1 AND id = $2`, tenantID, id).
		Scan(&a.ID, &a.TenantID, &a.Status, &a.StartTime, &a.ServiceName,
			&a.CustomerName, &a.CustomerPhone, &a.CustomerEmail, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) CancelAppointment(ctx context.Context, tenantID, id uuid.UUID, reason string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET status = $3, notes = COALESCE(NULLIF($4, ''), notes), updated_at = now()
		WHERE tenant_id = $1 AND id = $2`, tenantID, id, StatusCancelled, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *repoPG) ListAppointments(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM appointments WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+apptCols+` FROM appointments
		WHERE tenant_id = $1
		ORDER BY start_time DESC
		LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var appts []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Status, &a.StartTime, &a.ServiceName,
			&a.CustomerName, &a.CustomerPhone, &a.CustomerEmail, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		appts = append(appts, &a)
	}
	return appts, total, rows.Err()
}

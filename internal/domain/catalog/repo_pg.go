package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("offering not found")

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const offeringCols = `id, tenant_id, name, duration_minutes, price_cents, description, active, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, o *Offering) error {
	o.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO service_offerings (id, tenant_id, name, duration_minutes, price_cents, description, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.TenantID, o.Name, o.DurationMinutes, o.PriceCents, o.Description, o.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Offering, error) {
	var o Offering
	err := scanOffering(r.pool.QueryRow(ctx, `
		SELECT `+offeringCols+` FROM service_offerings
		WHERE tenant_id = $1 AND id = $2`, tenantID, id), &o)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repoPG) List(ctx context.Context, tenantID uuid.UUID) ([]*Offering, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+offeringCols+` FROM service_offerings
		WHERE tenant_id = $1
		ORDER BY name`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offerings []*Offering
	for rows.Next() {
		var o Offering
		if err := scanOffering(rows, &o); err != nil {
			return nil, err
		}
		offerings = append(offerings, &o)
	}
	return offerings, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, o *Offering) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE service_offerings
		SET name = $3, duration_minutes = $4, price_cents = $5, description = $6, active = $7, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`,
		o.TenantID, o.ID, o.Name, o.DurationMinutes, o.PriceCents, o.Description, o.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM service_offerings WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOffering(row pgx.Row, o *Offering) error {
	return row.Scan(&o.ID, &o.TenantID, &o.Name, &o.DurationMinutes, &o.PriceCents,
		&o.Description, &o.Active, &o.CreatedAt, &o.UpdatedAt)
}

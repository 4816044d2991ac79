package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("tenant not found")

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const tenantCols = `id, name, kind, phone, email, timezone, voice_agent_id, greeting, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, t *Tenant) error {
	t.ID = uuid.New()
	if t.Timezone == "" {
		t.Timezone = "UTC"
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tenants (id, name, kind, phone, email, timezone, voice_agent_id, greeting)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Name, t.Kind, t.Phone, t.Email, t.Timezone, t.VoiceAgentID, t.Greeting)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	t, err := r.scanOne(r.pool.QueryRow(ctx, `SELECT `+tenantCols+` FROM tenants WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	return t, nil
}

func (r *repoPG) Update(ctx context.Context, t *Tenant) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tenants
		SET name = $2, kind = $3, phone = $4, email = $5, timezone = $6,
		    voice_agent_id = $7, greeting = $8, updated_at = now()
		WHERE id = $1`,
		t.ID, t.Name, t.Kind, t.Phone, t.Email, t.Timezone, t.VoiceAgentID, t.Greeting)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Tenant, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM tenants`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+tenantCols+` FROM tenants ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tenants []*Tenant
	for rows.Next() {
		var t Tenant
		if err := scanTenant(rows, &t); err != nil {
			return nil, 0, err
		}
		tenants = append(tenants, &t)
	}
	return tenants, total, rows.Err()
}

func (r *repoPG) ByAgentID(ctx context.Context, agentID string) (*Tenant, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT `+tenantCols+` FROM tenants WHERE voice_agent_id = $1`, agentID))
}

func (r *repoPG) ByPhone(ctx context.Context, phone string) (*Tenant, error) {
	// Stored numbers are compared digit-for-digit so formatting variants
	// ("+1 555..." vs "1555...") still match.
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT `+tenantCols+` FROM tenants
		WHERE phone = $1 OR regexp_replace(phone, '\D', '', 'g') = regexp_replace($1, '\D', '', 'g')
		ORDER BY created_at
		LIMIT 1`, phone))
}

func (r *repoPG) ByName(ctx context.Context, name string) (*Tenant, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT `+tenantCols+` FROM tenants
		WHERE lower(name) = lower($1)
		ORDER BY created_at
		LIMIT 1`, name))
}

func (r *repoPG) ByNameLike(ctx context.Context, name string) (*Tenant, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT `+tenantCols+` FROM tenants
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY created_at
		LIMIT 1`, name))
}

func (r *repoPG) LocationTenantByPhone(ctx context.Context, phone string) (*Tenant, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT t.id, t.name, t.kind, t.phone, t.email, t.timezone,
		       t.voice_agent_id, t.greeting, t.created_at, t.updated_at
		FROM locations l
		JOIN tenants t ON t.id = l.tenant_id
		WHERE l.phone = $1 OR regexp_replace(l.phone, '\D', '', 'g') = regexp_replace($1, '\D', '', 'g')
		ORDER BY l.created_at
		LIMIT 1`, phone))
}

func (r *repoPG) scanOne(row pgx.Row) (*Tenant, error) {
	var t Tenant
	err := scanTenant(row, &t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTenant(row pgx.Row, t *Tenant) error {
	return row.Scan(&t.ID, &t.Name, &t.Kind, &t.Phone, &t.Email, &t.Timezone,
		&t.VoiceAgentID, &t.Greeting, &t.CreatedAt, &t.UpdatedAt)
}

func (r *repoPG) CreateLocation(ctx context.Context, loc *Location) error {
	loc.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO locations (id, tenant_id, label, phone, address, hours)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		loc.ID, loc.TenantID, loc.Label, loc.Phone, loc.Address, loc.Hours)
	return err
}

func (r *repoPG) ListLocations(ctx context.Context, tenantID uuid.UUID) ([]*Location, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, label, phone, address, hours, created_at, updated_at
		FROM locations
		WHERE tenant_id = $1
		ORDER BY created_at`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locs []*Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.TenantID, &l.Label, &l.Phone, &l.Address, &l.Hours, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		locs = append(locs, &l)
	}
	return locs, rows.Err()
}

func (r *repoPG) UpdateLocation(ctx context.Context, loc *Location) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE locations
		SET label = $3, phone = $4, address = $5, hours = $6, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`,
		loc.TenantID, loc.ID, loc.Label, loc.Phone, loc.Address, loc.Hours)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) DeleteLocation(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM locations WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

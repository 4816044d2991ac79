package tenant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Resolution identifies the tenant an inbound call belongs to and how the
// match was made. A zero-value Resolution means no strategy produced a
// match; callers decide whether that is an error.
type Resolution struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Source   string    `json:"source"`
}

// Resolution sources, in priority order.
const (
	SourceExplicit = "explicit"
	SourceAgentID  = "agent_id"
	SourcePhone    = "phone"
	SourceName     = "name"
)

// Found reports whether any strategy matched.
func (r Resolution) Found() bool {
	return r.TenantID != uuid.Nil
}

// Resolver maps the identity hints of an inbound tool call to a tenant.
// Strategies run strictly in priority order: an explicit UUID wins without
// any lookup, then the agent id, then phone numbers, then business names.
// Within a strategy, hints are tried in the order they were extracted, so
// resolution is deterministic for a given payload.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve runs the strategy chain over payload plus an optional explicit
// id from the route or query string. Lookup errors abort resolution; an
// exhausted chain returns a zero Resolution and no error.
func (r *Resolver) Resolve(ctx context.Context, payload map[string]any, explicitID string) (Resolution, error) {
	hints := ExtractHints(payload, explicitID)

	for _, h := range hints {
		if h.Kind != HintExplicit {
			continue
		}
		// A well-formed UUID is trusted as-is. Downstream queries are
		// tenant-scoped anyway, so a stale id fails there, not here.
		id, err := uuid.Parse(h.Value)
		if err != nil {
			continue
		}
		return Resolution{TenantID: id, Source: SourceExplicit}, nil
	}

	for _, h := range hints {
		if h.Kind != HintAgentID {
			continue
		}
		t, err := r.repo.ByAgentID(ctx, h.Value)
		if err != nil {
			return Resolution{}, fmt.Errorf("resolve by agent id: %w", err)
		}
		if t != nil {
			return Resolution{TenantID: t.ID, Source: SourceAgentID}, nil
		}
	}

	if res, err := r.resolveByPhone(ctx, hints); err != nil || res.Found() {
		return res, err
	}

	if res, err := r.resolveByName(ctx, hints); err != nil || res.Found() {
		return res, err
	}

	return Resolution{}, nil
}

// resolveByPhone tries every phone hint against tenant numbers before
// falling back to location numbers, so a tenant's main line always beats a
// branch line that happens to share digits.
func (r *Resolver) resolveByPhone(ctx context.Context, hints []Hint) (Resolution, error) {
	lookups := []func(context.Context, string) (*Tenant, error){
		r.repo.ByPhone,
		r.repo.LocationTenantByPhone,
	}
	for _, lookup := range lookups {
		for _, h := range hints {
			if h.Kind != HintPhone {
				continue
			}
			for _, form := range phoneForms(h.Value) {
				t, err := lookup(ctx, form)
				if err != nil {
					return Resolution{}, fmt.Errorf("resolve by phone: %w", err)
				}
				if t != nil {
					return Resolution{TenantID: t.ID, Source: SourcePhone}, nil
				}
			}
		}
	}
	return Resolution{}, nil
}

// resolveByName tries exact matches for every name hint before any
// substring match, so "Sunrise Dental" never loses to a tenant whose name
// merely contains it.
func (r *Resolver) resolveByName(ctx context.Context, hints []Hint) (Resolution, error) {
	names := make([]string, 0, len(hints))
	for _, h := range hints {
		if h.Kind != HintName {
			continue
		}
		if n := normalizeName(h.Value); n != "" {
			names = append(names, n)
		}
	}

	for _, n := range names {
		t, err := r.repo.ByName(ctx, n)
		if err != nil {
			return Resolution{}, fmt.Errorf("resolve by name: %w", err)
		}
		if t != nil {
			return Resolution{TenantID: t.ID, Source: SourceName}, nil
		}
	}
	for _, n := range names {
		t, err := r.repo.ByNameLike(ctx, n)
		if err != nil {
			return Resolution{}, fmt.Errorf("resolve by name: %w", err)
		}
		if t != nil {
			return Resolution{TenantID: t.ID, Source: SourceName}, nil
		}
	}
	return Resolution{}, nil
}

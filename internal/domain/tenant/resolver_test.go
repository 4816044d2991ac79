package tenant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// mockRepo backs resolver and service tests with in-memory tenants. The
// resolver lookups mirror the store's matching rules: phones compare
// digit-for-digit, names case-insensitively.
type mockRepo struct {
	tenants   []*Tenant
	locations []*Location
	failWith  error
}

func (m *mockRepo) Create(ctx context.Context, t *Tenant) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	m.tenants = append(m.tenants, t)
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	for _, t := range m.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(ctx context.Context, t *Tenant) error {
	for i, existing := range m.tenants {
		if existing.ID == t.ID {
			m.tenants[i] = t
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i, t := range m.tenants {
		if t.ID == id {
			m.tenants = append(m.tenants[:i], m.tenants[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]*Tenant, int, error) {
	return m.tenants, len(m.tenants), nil
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (m *mockRepo) ByAgentID(ctx context.Context, agentID string) (*Tenant, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, t := range m.tenants {
		if t.VoiceAgentID != nil && *t.VoiceAgentID == agentID {
			return t, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) ByPhone(ctx context.Context, phone string) (*Tenant, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, t := range m.tenants {
		if t.Phone != nil && digitsOf(*t.Phone) == digitsOf(phone) {
			return t, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) ByName(ctx context.Context, name string) (*Tenant, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, t := range m.tenants {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) ByNameLike(ctx context.Context, name string) (*Tenant, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, t := range m.tenants {
		if strings.Contains(strings.ToLower(t.Name), strings.ToLower(name)) {
			return t, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) LocationTenantByPhone(ctx context.Context, phone string) (*Tenant, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, l := range m.locations {
		if l.Phone != nil && digitsOf(*l.Phone) == digitsOf(phone) {
			return m.GetByID(ctx, l.TenantID)
		}
	}
	return nil, nil
}

func (m *mockRepo) CreateLocation(ctx context.Context, loc *Location) error {
	if loc.ID == uuid.Nil {
		loc.ID = uuid.New()
	}
	m.locations = append(m.locations, loc)
	return nil
}

func (m *mockRepo) ListLocations(ctx context.Context, tenantID uuid.UUID) ([]*Location, error) {
	var out []*Location
	for _, l := range m.locations {
		if l.TenantID == tenantID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockRepo) UpdateLocation(ctx context.Context, loc *Location) error {
	for i, existing := range m.locations {
		if existing.ID == loc.ID && existing.TenantID == loc.TenantID {
			m.locations[i] = loc
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockRepo) DeleteLocation(ctx context.Context, tenantID, id uuid.UUID) error {
	for i, l := range m.locations {
		if l.ID == id && l.TenantID == tenantID {
			m.locations = append(m.locations[:i], m.locations[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func strPtr(s string) *string { return &s }

func seedRepo() (*mockRepo, *Tenant, *Tenant) {
	clinic := &Tenant{
		ID:           uuid.New(),
		Name:         "Sunrise Dental",
		Kind:         KindClinic,
		Phone:        strPtr("+1 (555) 010-2000"),
		Timezone:     "America/New_York",
		VoiceAgentID: strPtr("agent_sunrise"),
	}
	bistro := &Tenant{
		ID:           uuid.New(),
		Name:         "Luigi's Bistro",
		Kind:         KindRestaurant,
		Phone:        strPtr("+1 (555) 010-3000"),
		Timezone:     "America/Chicago",
		VoiceAgentID: strPtr("agent_luigi"),
	}
	repo := &mockRepo{tenants: []*Tenant{clinic, bistro}}
	repo.locations = append(repo.locations, &Location{
		ID:       uuid.New(),
		TenantID: bistro.ID,
		Label:    "Downtown",
		Phone:    strPtr("+1 (555) 010-3001"),
	})
	return repo, clinic, bistro
}

func TestResolve_ExplicitIDWinsWithoutLookup(t *testing.T) {
	repo, clinic, _ := seedRepo()
	// A lookup failure proves the explicit path never touches the store.
	repo.failWith = errors.New("store down")
	r := NewResolver(repo)

	res, err := r.Resolve(context.Background(), map[string]any{
		"clinic_id": clinic.ID.String(),
		"agent_id":  "agent_luigi",
	}, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.TenantID != clinic.ID || res.Source != SourceExplicit {
		t.Fatalf("got %+v, want explicit %s", res, clinic.ID)
	}
}

func TestResolve_RouteIDBeatsBody(t *testing.T) {
	repo, clinic, bistro := seedRepo()
	r := NewResolver(repo)

	res, err := r.Resolve(context.Background(), map[string]any{
		"tenant_id": bistro.ID.String(),
	}, clinic.ID.String())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.TenantID != clinic.ID {
		t.Fatalf("route id should win, got %s", res.TenantID)
	}
}

func TestResolve_AgentIDBeatsPhoneAndName(t *testing.T) {
	repo, clinic, bistro := seedRepo()
	r := NewResolver(repo)

	res, err := r.Resolve(context.Background(), map[string]any{
		"agent_id":    *bistro.VoiceAgentID,
		"to_number":   *clinic.Phone,
		"clinic_name": clinic.Name,
	}, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.TenantID != bistro.ID || res.Source != SourceAgentID {
		t.Fatalf("got %+v, want agent_id %s", res, bistro.ID)
	}
}

func TestResolve_PhoneMatchesFormattingVariants(t *testing.T) {
	repo, clinic, _ := seedRepo()
	r := NewResolver(repo)

	for _, raw := range []string{"+15550102000", "1-555-010-2000", "(555) 010 2000 ext"} {
		res, err := r.Resolve(context.Background(), map[string]any{"to_number": raw}, "")
		if err != nil {
			t.Fatalf("Resolve(%q): %v", raw, err)
		}
		want := clinic.ID
		if raw == "(555) 010 2000 ext" {
			// Without a country code the digits differ from the stored
			// number, which includes the leading 1.
			want = uuid.Nil
		}
		if res.TenantID != want {
			t.Fatalf("Resolve(%q) = %s, want %s", raw, res.TenantID, want)
		}
	}
}

func TestResolve_TenantPhoneBeatsLocationPhone(t *testing.T) {
	repo, _, bistro := seedRepo()
	// Give a second tenant's location the same number as the bistro's
	// main line; the tenants pass must still win.
	repo.locations = append(repo.locations, &Location{
		ID:       uuid.New(),
		TenantID: repo.tenants[0].ID,
		Label:    "Annex",
		Phone:    bistro.Phone,
	})
	r := NewResolver(repo)

	res, err := r.Resolve(context.Background(), map[string]any{"to_number": *bistro.Phone}, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.TenantID != bistro.ID || res.Source != SourcePhone {
		t.Fatalf("got %+v, want tenant-line match %s", res, bistro.ID)
	}
}

func TestResolve_LocationPhoneFallback(t *testing.T) {
	repo, _, bistro := seedRepo()
	r := NewResolver(repo)

	res, err := r.Resolve(context.Background(), map[string]any{"called_number": "+1 555 010 3001"}, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.TenantID != bistro.ID || res.Source != SourcePhone {
		t.Fatalf("got %+v, want location match %s", res, bistro.ID)
	}
}

func TestResolve_NameExactBeatsSubstring(t *testing.T) {
	repo, _, _ := seedRepo()
	exact := &Tenant{ID: uuid.New(), Name: "Dental", Kind: KindClinic}
	repo.tenants = append(repo.tenants, exact)
	r := NewResolver(repo)

	res, err := r.Resolve(context.Background(), map[string]any{"business_name": "dental"}, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.TenantID != exact.ID || res.Source != SourceName {
		t.Fatalf("got %+v, want exact-name match %s", res, exact.ID)
	}
}

func TestResolve_NameNormalizesSeparators(t *testing.T) {
	repo, clinic, _ := seedRepo()
	r := NewResolver(repo)

	res, err := r.Resolve(context.Background(), map[string]any{"clinic_name": "sunrise_dental"}, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.TenantID != clinic.ID {
		t.Fatalf("got %s, want %s", res.TenantID, clinic.ID)
	}
}

func TestResolve_NonUUIDExplicitIDFallsBackToName(t *testing.T) {
	repo, clinic, _ := seedRepo()
	r := NewResolver(repo)

	res, err := r.Resolve(context.Background(), map[string]any{
		"clinic_id": "sunrise-dental",
	}, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.TenantID != clinic.ID || res.Source != SourceName {
		t.Fatalf("got %+v, want name match %s", res, clinic.ID)
	}
}

func TestResolve_NestedPayloadShapes(t *testing.T) {
	repo, clinic, _ := seedRepo()
	r := NewResolver(repo)

	payloads := []map[string]any{
		{"call": map[string]any{"metadata": map[string]any{"tenant_id": clinic.ID.String()}}},
		{"parameters": map[string]any{"agent_id": "agent_sunrise"}},
		{"args": map[string]any{"toNumber": "+15550102000"}},
		{"dynamic_variables": map[string]any{"clinicName": "Sunrise Dental"}},
	}
	for i, p := range payloads {
		res, err := r.Resolve(context.Background(), p, "")
		if err != nil {
			t.Fatalf("payload %d: %v", i, err)
		}
		if res.TenantID != clinic.ID {
			t.Fatalf("payload %d resolved %s, want %s", i, res.TenantID, clinic.ID)
		}
	}
}

func TestResolve_ExhaustedReturnsZeroValueNoError(t *testing.T) {
	repo, _, _ := seedRepo()
	r := NewResolver(repo)

	res, err := r.Resolve(context.Background(), map[string]any{
		"to_number":   "+1 999 999 9999",
		"clinic_name": "No Such Place",
	}, "")
	if err != nil {
		t.Fatalf("exhaustion must not be an error, got %v", err)
	}
	if res.Found() {
		t.Fatalf("got %+v, want zero-value resolution", res)
	}
}

func TestResolve_EmptyPayload(t *testing.T) {
	repo, _, _ := seedRepo()
	r := NewResolver(repo)

	res, err := r.Resolve(context.Background(), map[string]any{}, "")
	if err != nil || res.Found() {
		t.Fatalf("got %+v, %v; want zero-value, nil", res, err)
	}
}

func TestResolve_LookupErrorAborts(t *testing.T) {
	repo, _, _ := seedRepo()
	repo.failWith = errors.New("connection refused")
	r := NewResolver(repo)

	_, err := r.Resolve(context.Background(), map[string]any{"agent_id": "agent_sunrise"}, "")
	if err == nil {
		t.Fatal("expected lookup error to propagate")
	}
}

func TestResolve_Deterministic(t *testing.T) {
	repo, clinic, bistro := seedRepo()
	r := NewResolver(repo)

	// Two phone hints that both match; the extraction order of the key
	// list decides, so repeated runs must agree.
	payload := map[string]any{
		"to_number":   *clinic.Phone,
		"from_number": *bistro.Phone,
	}
	first, err := r.Resolve(context.Background(), payload, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first.TenantID != clinic.ID {
		t.Fatalf("to_number should be probed before from_number, got %s", first.TenantID)
	}
	for i := 0; i < 20; i++ {
		res, err := r.Resolve(context.Background(), payload, "")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if res != first {
			t.Fatalf("run %d resolved %+v, want %+v", i, res, first)
		}
	}
}

package tenant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler(repo Repository) (*Handler, *echo.Echo) {
	e := echo.New()
	h := NewHandler(NewService(repo))
	h.RegisterRoutes(e.Group(""))
	return h, e
}

func TestResolveContextEndpoint(t *testing.T) {
	repo, clinic, _ := seedRepo()
	_, e := newTestHandler(repo)

	body := `{"call":{"to_number":"+15550102000"}}`
	req := httptest.NewRequest(http.MethodPost, "/resolve", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res Resolution
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.TenantID != clinic.ID || res.Source != SourcePhone {
		t.Fatalf("got %+v", res)
	}
}

func TestResolveContextEndpoint_NoMatch(t *testing.T) {
	repo, _, _ := seedRepo()
	_, e := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodPost, "/resolve", strings.NewReader(`{"clinic_name":"Nowhere"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestCreateTenant(t *testing.T) {
	repo := &mockRepo{}
	_, e := newTestHandler(repo)

	body := `{"name":"Harbor Clinic","kind":"clinic","phone":"+1 555 020 1000","timezone":"America/New_York"}`
	req := httptest.NewRequest(http.MethodPost, "/tenants", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var created Tenant
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == uuid.Nil || created.Name != "Harbor Clinic" {
		t.Fatalf("got %+v", created)
	}
}

func TestCreateTenant_BadKind(t *testing.T) {
	repo := &mockRepo{}
	_, e := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodPost, "/tenants", strings.NewReader(`{"name":"X","kind":"gym"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestGetTenant_NotFound(t *testing.T) {
	repo := &mockRepo{}
	_, e := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/tenants/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestCreateLocation(t *testing.T) {
	repo, clinic, _ := seedRepo()
	_, e := newTestHandler(repo)

	body := `{"label":"Annex","phone":"+1 555 020 2000"}`
	req := httptest.NewRequest(http.MethodPost, "/tenants/"+clinic.ID.String()+"/locations", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var loc Location
	if err := json.Unmarshal(rec.Body.Bytes(), &loc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if loc.TenantID != clinic.ID || loc.Label != "Annex" {
		t.Fatalf("got %+v", loc)
	}
}

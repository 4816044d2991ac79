package scheduling

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler(repo *mockRepo) (*Handler, *echo.Echo) {
	h := NewHandler(newTestService(repo))
	e := echo.New()
	return h, e
}

func TestHandler_GetAvailability(t *testing.T) {
	h, e := newTestHandler(mondayClinic())

	req := httptest.NewRequest(http.MethodGet, "/?service=checkup&start=2025-01-06T09:00:00Z&end=2025-01-06T12:00:00Z", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	if err := h.GetAvailability(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result AvailabilityResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.Slots) == 0 {
		t.Error("expected slots in response")
	}
	if result.SlotMinutes != 30 {
		t.Errorf("slot_minutes = %d, want 30", result.SlotMinutes)
	}
}

func TestHandler_GetAvailability_InvalidWindow(t *testing.T) {
	h, e := newTestHandler(mondayClinic())

	req := httptest.NewRequest(http.MethodGet, "/?start=nope&end=2025-01-06T12:00:00Z", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.GetAvailability(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandler_GetAvailability_InvalidTenant(t *testing.T) {
	h, e := newTestHandler(mondayClinic())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.GetAvailability(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandler_CreateAppointment(t *testing.T) {
	h, e := newTestHandler(mondayClinic())

	body := `{"start_time":"2025-01-06T09:00:00Z","service_name":"checkup","customer_name":"Ada Lovelace","customer_phone":"+15551234567"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	if err := h.CreateAppointment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_CreateAppointment_Conflict(t *testing.T) {
	repo := mondayClinic()
	repo.appts = []Appointment{appointmentAt("10:00", "checkup")}
	h, e := newTestHandler(repo)

	body := `{"start_time":"2025-01-06T10:00:00Z","service_name":"checkup","customer_name":"Ada"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.CreateAppointment(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Errorf("expected 409 HTTPError, got %v", err)
	}
}

func TestHandler_CreateHourRule_Validation(t *testing.T) {
	h, e := newTestHandler(newMockRepo())

	body := `{"weekday":1,"open_time":"17:00","close_time":"09:00","is_open":true}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.CreateHourRule(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 HTTPError for inverted hours, got %v", err)
	}
}

func TestHandler_CancelAppointment_NotFound(t *testing.T) {
	h, e := newTestHandler(newMockRepo())

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "apptID")
	c.SetParamValues(uuid.New().String(), uuid.New().String())

	err := h.CancelAppointment(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404 HTTPError, got %v", err)
	}
}

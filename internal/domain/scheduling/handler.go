package scheduling

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/geko-ai/receptionist/pkg/pagination"
)

// BookingNotifier is notified after a booking is persisted. Delivery
// failures are the notifier's concern; the booking has already succeeded.
type BookingNotifier interface {
	BookingConfirmed(ctx context.Context, appt *Appointment)
}

type Handler struct {
	svc      *Service
	notifier BookingNotifier
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// SetNotifier attaches an optional confirmation notifier to the handler.
func (h *Handler) SetNotifier(n BookingNotifier) {
	h.notifier = n
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/tenants/:id/availability", h.GetAvailability)
	api.GET("/tenants/:id/appointments", h.ListAppointments)
	api.POST("/tenants/:id/appointments", h.CreateAppointment)
	api.GET("/tenants/:id/appointments/:apptID", h.GetAppointment)
	api.DELETE("/tenants/:id/appointments/:apptID", h.CancelAppointment)
	api.GET("/tenants/:id/hours", h.ListHours)
	api.POST("/tenants/:id/hours", h.CreateHourRule)
	api.DELETE("/tenants/:id/hours/:ruleID", h.DeleteHourRule)
	api.GET("/tenants/:id/breaks", h.ListBreaks)
	api.POST("/tenants/:id/breaks", h.CreateBreakRule)
	api.DELETE("/tenants/:id/breaks/:ruleID", h.DeleteBreakRule)
}

// GetAvailability handles
// GET /tenants/:id/availability?service=...&start=...&end=...
func (h *Handler) GetAvailability(c echo.Context) error {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant id")
	}

	result, err := h.svc.FindAvailableSlots(c.Request().Context(), tenantID,
		c.QueryParam("service"), c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		if errors.Is(err, ErrInvalidWindow) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, ErrDataUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant id")
	}
	var req BookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.TenantID = tenantID

	appt, err := h.svc.BookAppointment(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidBooking) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, ErrSlotTaken) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		if errors.Is(err, ErrDataUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if h.notifier != nil {
		h.notifier.BookingConfirmed(c.Request().Context(), appt)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	tenantID, apptID, err := tenantAndChildID(c, "apptID")
	if err != nil {
		return err
	}
	appt, err := h.svc.GetAppointment(c.Request().Context(), tenantID, apptID)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, appt)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) CancelAppointment(c echo.Context) error {
	tenantID, apptID, err := tenantAndChildID(c, "apptID")
	if err != nil {
		return err
	}
	var req cancelRequest
	_ = c.Bind(&req) // body is optional

	if err := h.svc.CancelAppointment(c.Request().Context(), tenantID, apptID, req.Reason); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAppointments(c.Request().Context(), tenantID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListHours(c echo.Context) error {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant id")
	}
	rules, err := h.svc.repo.ListHours(c.Request().Context(), tenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rules)
}

func (h *Handler) CreateHourRule(c echo.Context) error {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant id")
	}
	var rule WorkingHourRule
	if err := c.Bind(&rule); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rule.TenantID = tenantID
	if err := validateHourRule(&rule); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.repo.CreateHourRule(c.Request().Context(), &rule); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, rule)
}

func (h *Handler) DeleteHourRule(c echo.Context) error {
	tenantID, ruleID, err := tenantAndChildID(c, "ruleID")
	if err != nil {
		return err
	}
	if err := h.svc.repo.DeleteHourRule(c.Request().Context(), tenantID, ruleID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListBreaks(c echo.Context) error {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant id")
	}
	rules, err := h.svc.repo.ListBreaks(c.Request().Context(), tenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rules)
}

func (h *Handler) CreateBreakRule(c echo.Context) error {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant id")
	}
	var rule BreakRule
	if err := c.Bind(&rule); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rule.TenantID = tenantID
	if err := validateBreakRule(&rule); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.repo.CreateBreakRule(c.Request().Context(), &rule); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, rule)
}

func (h *Handler) DeleteBreakRule(c echo.Context) error {
	tenantID, ruleID, err := tenantAndChildID(c, "ruleID")
	if err != nil {
		return err
	}
	if err := h.svc.repo.DeleteBreakRule(c.Request().Context(), tenantID, ruleID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func tenantAndChildID(c echo.Context, param string) (uuid.UUID, uuid.UUID, error) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid tenant id")
	}
	childID, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return tenantID, childID, nil
}

func validateHourRule(rule *WorkingHourRule) error {
	if rule.Weekday < 0 || rule.Weekday > 6 {
		return errors.New("weekday must be 0 (Sunday) through 6 (Saturday)")
	}
	open, err := ToMinutes(rule.OpenTime)
	if err != nil {
		return err
	}
	close, err := ToMinutes(rule.CloseTime)
	if err != nil {
		return err
	}
	if rule.IsOpen && close <= open {
		return errors.New("close_time must be after open_time")
	}
	return nil
}

func validateBreakRule(rule *BreakRule) error {
	if rule.Weekday < 0 || rule.Weekday > 6 {
		return errors.New("weekday must be 0 (Sunday) through 6 (Saturday)")
	}
	start, err := ToMinutes(rule.StartTime)
	if err != nil {
		return err
	}
	end, err := ToMinutes(rule.EndTime)
	if err != nil {
		return err
	}
	if end <= start {
		return errors.New("end_time must be after start_time")
	}
	return nil
}

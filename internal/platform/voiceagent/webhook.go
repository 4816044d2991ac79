package voiceagent

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/geko-ai/receptionist/internal/domain/scheduling"
	"github.com/geko-ai/receptionist/internal/domain/tenant"
)

// Tool names the voice platform invokes.
const (
	ToolCheckAvailability = "check_availability"
	ToolBookAppointment   = "book_appointment"
	ToolCancelAppointment = "cancel_appointment"
)

// toolResponse is what the agent reads back to the caller. Result is
// always speakable text; the structured fields let the platform fill
// prompt variables.
type toolResponse struct {
	OK          bool     `json:"ok"`
	Result      string   `json:"result"`
	Slots       []string `json:"slots,omitempty"`
	Appointment any      `json:"appointment,omitempty"`
}

// Webhook receives tool invocations from the voice platform, resolves the
// tenant behind the call, and runs the requested operation. Every outcome,
// including failures, answers 200 with speakable text: the agent is
// mid-conversation and has to say something either way.
type Webhook struct {
	tenants   *tenant.Service
	scheduler *scheduling.Service
	notifier  scheduling.BookingNotifier
	logger    zerolog.Logger
}

func NewWebhook(tenants *tenant.Service, scheduler *scheduling.Service, logger zerolog.Logger) *Webhook {
	return &Webhook{tenants: tenants, scheduler: scheduler, logger: logger}
}

// SetNotifier attaches an optional booking confirmation notifier.
func (w *Webhook) SetNotifier(n scheduling.BookingNotifier) {
	w.notifier = n
}

func (w *Webhook) RegisterRoutes(g *echo.Group) {
	g.POST("/tool", w.HandleToolCall)
}

func (w *Webhook) HandleToolCall(c echo.Context) error {
	var payload map[string]any
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "body must be a JSON object")
	}

	tool := toolName(payload)
	if tool == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing tool name")
	}

	ctx := c.Request().Context()
	res, err := w.tenants.ResolveContext(ctx, payload, c.QueryParam("tenant_id"))
	if err != nil {
		w.logger.Error().Err(err).Str("tool", tool).Msg("tenant resolution failed")
		return c.JSON(http.StatusOK, speak("I'm having trouble reaching the booking system right now. Please try again in a moment."))
	}
	if !res.Found() {
		w.logger.Warn().Str("tool", tool).Msg("tool call did not match any tenant")
		return c.JSON(http.StatusOK, speak("I couldn't find the business this call belongs to. Please contact the business directly."))
	}

	switch tool {
	case ToolCheckAvailability:
		return w.checkAvailability(c, res.TenantID, payload)
	case ToolBookAppointment:
		return w.bookAppointment(c, res.TenantID, payload)
	case ToolCancelAppointment:
		return w.cancelAppointment(c, res.TenantID, payload)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown tool %q", tool))
	}
}

func (w *Webhook) checkAvailability(c echo.Context, tenantID uuid.UUID, payload map[string]any) error {
	date := argString(payload, "date")
	if date == "" {
		return c.JSON(http.StatusOK, speak("What day would you like to come in?"))
	}
	from := argString(payload, "from")
	if from == "" {
		from = "00:00"
	}
	until := argString(payload, "until")
	if until == "" {
		until = "23:59"
	}
	service := argString(payload, "service")

	result, err := w.scheduler.FindAvailableSlots(c.Request().Context(), tenantID,
		service, date+"T"+from, date+"T"+until)
	if err != nil {
		if errors.Is(err, scheduling.ErrInvalidWindow) {
			return c.JSON(http.StatusOK, speak("I didn't catch that date. Could you repeat it?"))
		}
		w.logger.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("availability lookup failed")
		return c.JSON(http.StatusOK, speak("I'm having trouble checking the calendar right now. Please try again in a moment."))
	}

	if len(result.Slots) == 0 {
		msg := result.Message
		if msg == "" {
			msg = "There are no open times in that window."
		}
		return c.JSON(http.StatusOK, toolResponse{OK: true, Result: msg, Slots: []string{}})
	}

	return c.JSON(http.StatusOK, toolResponse{
		OK:     true,
		Result: fmt.Sprintf("Available times on %s: %s.", date, speakableTimes(result.Slots)),
		Slots:  result.Slots,
	})
}

func (w *Webhook) bookAppointment(c echo.Context, tenantID uuid.UUID, payload map[string]any) error {
	req := scheduling.BookingRequest{
		TenantID:      tenantID,
		StartTime:     argString(payload, "start_time"),
		ServiceName:   argString(payload, "service"),
		CustomerName:  argString(payload, "customer_name"),
		CustomerPhone: argString(payload, "customer_phone"),
		CustomerEmail: argString(payload, "customer_email"),
		Notes:         argString(payload, "notes"),
	}
	if req.StartTime == "" {
		if date, at := argString(payload, "date"), argString(payload, "time"); date != "" && at != "" {
			req.StartTime = date + "T" + at
		}
	}

	appt, err := w.scheduler.BookAppointment(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, scheduling.ErrInvalidBooking):
			return c.JSON(http.StatusOK, speak("I still need a name and a time to book that. Could you confirm them?"))
		case errors.Is(err, scheduling.ErrSlotTaken):
			return c.JSON(http.StatusOK, speak("I'm sorry, that time was just taken. Would another time work?"))
		default:
			w.logger.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("booking failed")
			return c.JSON(http.StatusOK, speak("I couldn't complete the booking just now. Please try again in a moment."))
		}
	}

	if w.notifier != nil {
		w.notifier.BookingConfirmed(c.Request().Context(), appt)
	}
	return c.JSON(http.StatusOK, toolResponse{
		OK:          true,
		Result:      fmt.Sprintf("You're booked for %s. A confirmation is on its way.", speakableTime(appt.StartTime)),
		Appointment: appt,
	})
}

func (w *Webhook) cancelAppointment(c echo.Context, tenantID uuid.UUID, payload map[string]any) error {
	apptID, err := uuid.Parse(argString(payload, "appointment_id"))
	if err != nil {
		return c.JSON(http.StatusOK, speak("I need the appointment reference to cancel it. Do you have the confirmation number?"))
	}

	reason := argString(payload, "reason")
	if err := w.scheduler.CancelAppointment(c.Request().Context(), tenantID, apptID, reason); err != nil {
		if errors.Is(err, scheduling.ErrAppointmentNotFound) {
			return c.JSON(http.StatusOK, speak("I couldn't find that appointment. It may already be cancelled."))
		}
		w.logger.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("cancellation failed")
		return c.JSON(http.StatusOK, speak("I couldn't cancel that just now. Please try again in a moment."))
	}
	return c.JSON(http.StatusOK, speak("Your appointment is cancelled. Is there anything else I can help with?"))
}

func speak(msg string) toolResponse {
	return toolResponse{Result: msg}
}

// toolName accepts the envelope spellings the platform has used: a top
// level "tool" or "name" field, or a nested "function" object.
func toolName(payload map[string]any) string {
	for _, key := range []string{"tool", "name"} {
		if v, ok := payload[key].(string); ok && v != "" {
			return v
		}
	}
	if fn, ok := payload["function"].(map[string]any); ok {
		if v, ok := fn["name"].(string); ok {
			return v
		}
	}
	return ""
}

// argViews are the objects tool arguments may live under, tried in order
// with the payload root last as some envelopes inline the arguments.
var argViews = []string{"parameters", "args", "arguments"}

func argString(payload map[string]any, key string) string {
	for _, view := range argViews {
		if m, ok := payload[view].(map[string]any); ok {
			if v, ok := m[key].(string); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	if v, ok := payload[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func speakableTime(t time.Time) string {
	return t.UTC().Format("Monday, January 2 at 3:04 PM")
}

func speakableTimes(slots []string) string {
	spoken := make([]string, 0, len(slots))
	for _, s := range slots {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			continue
		}
		spoken = append(spoken, t.UTC().Format("3:04 PM"))
	}
	return strings.Join(spoken, ", ")
}

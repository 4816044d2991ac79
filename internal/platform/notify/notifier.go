package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/geko-ai/receptionist/internal/domain/scheduling"
)

// smsSender and emailSender isolate the provider SDKs so tests can swap
// them out.
type smsSender interface {
	SendSMS(to, body string) error
}

type emailSender interface {
	SendEmail(to, subject, plain string) error
}

type Config struct {
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	SendgridAPIKey string
	FromEmail      string
	FromName       string
}

// Notifier sends booking confirmations and reminders over SMS and email.
// Channels without a destination on the appointment are skipped; delivery
// failures are logged, never propagated, because the booking itself has
// already been persisted.
type Notifier struct {
	sms    smsSender
	email  emailSender
	logger zerolog.Logger
}

func New(cfg Config, logger zerolog.Logger) *Notifier {
	n := &Notifier{logger: logger}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromNumber != "" {
		n.sms = newTwilioSender(cfg)
	}
	if cfg.SendgridAPIKey != "" && cfg.FromEmail != "" {
		n.email = newSendgridSender(cfg)
	}
	return n
}

// BookingConfirmed implements scheduling.BookingNotifier.
func (n *Notifier) BookingConfirmed(ctx context.Context, appt *scheduling.Appointment) {
	when := appt.StartTime.UTC().Format("Monday, January 2 at 3:04 PM")
	service := "your appointment"
	if appt.ServiceName != nil && *appt.ServiceName != "" {
		service = *appt.ServiceName
	}

	n.deliver(appt,
		fmt.Sprintf("Hi %s, you're confirmed for %s on %s. Reply to this number if you need to change it.",
			firstName(appt.CustomerName), service, when),
		"Booking confirmed",
		fmt.Sprintf("Hi %s,\n\nYour booking for %s on %s is confirmed.\n\nSee you then!",
			firstName(appt.CustomerName), service, when),
	)
}

// ReminderDue sends the day-before reminder for an upcoming appointment.
func (n *Notifier) ReminderDue(ctx context.Context, appt *scheduling.Appointment) {
	when := appt.StartTime.UTC().Format("Monday, January 2 at 3:04 PM")

	n.deliver(appt,
		fmt.Sprintf("Hi %s, a reminder about your appointment tomorrow, %s.",
			firstName(appt.CustomerName), when),
		"Appointment reminder",
		fmt.Sprintf("Hi %s,\n\nThis is a reminder about your appointment tomorrow, %s.\n\nSee you then!",
			firstName(appt.CustomerName), when),
	)
}

func (n *Notifier) deliver(appt *scheduling.Appointment, smsBody, subject, emailBody string) {
	if n.sms != nil && appt.CustomerPhone != nil && *appt.CustomerPhone != "" {
		if err := n.sms.SendSMS(*appt.CustomerPhone, smsBody); err != nil {
			n.logger.Error().Err(err).
				Str("appointment_id", appt.ID.String()).
				Msg("sms delivery failed")
		}
	}
	if n.email != nil && appt.CustomerEmail != nil && *appt.CustomerEmail != "" {
		if err := n.email.SendEmail(*appt.CustomerEmail, subject, emailBody); err != nil {
			n.logger.Error().Err(err).
				Str("appointment_id", appt.ID.String()).
				Msg("email delivery failed")
		}
	}
}

func firstName(full string) string {
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}

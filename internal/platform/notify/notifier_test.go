package notify

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/geko-ai/receptionist/internal/domain/scheduling"
)

type fakeSMS struct {
	to, body string
	err      error
	calls    int
}

func (f *fakeSMS) SendSMS(to, body string) error {
	f.calls++
	f.to, f.body = to, body
	return f.err
}

type fakeEmail struct {
	to, subject, body string
	calls             int
}

func (f *fakeEmail) SendEmail(to, subject, plain string) error {
	f.calls++
	f.to, f.subject, f.body = to, subject, plain
	return nil
}

func testAppointment() *scheduling.Appointment {
	phone := "+15550109999"
	email := "ada@example.com"
	service := "Checkup"
	return &scheduling.Appointment{
		ID:            uuid.New(),
		TenantID:      uuid.New(),
		Status:        scheduling.StatusConfirmed,
		StartTime:     time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC),
		ServiceName:   &service,
		CustomerName:  "Ada Lovelace",
		CustomerPhone: &phone,
		CustomerEmail: &email,
	}
}

func testNotifier(sms smsSender, email emailSender) *Notifier {
	return &Notifier{
		sms:    sms,
		email:  email,
		logger: zerolog.New(os.Stderr).Level(zerolog.Disabled),
	}
}

func TestBookingConfirmed_SendsBothChannels(t *testing.T) {
	sms := &fakeSMS{}
	email := &fakeEmail{}
	n := testNotifier(sms, email)

	n.BookingConfirmed(context.Background(), testAppointment())

	if sms.calls != 1 || sms.to != "+15550109999" {
		t.Fatalf("sms not sent: %+v", sms)
	}
	if !strings.Contains(sms.body, "Ada") || !strings.Contains(sms.body, "Checkup") {
		t.Errorf("sms body: %q", sms.body)
	}
	if !strings.Contains(sms.body, "Monday, January 6 at 10:00 AM") {
		t.Errorf("sms body missing spoken time: %q", sms.body)
	}
	if email.calls != 1 || email.subject != "Booking confirmed" {
		t.Fatalf("email not sent: %+v", email)
	}
}

func TestBookingConfirmed_SkipsMissingDestinations(t *testing.T) {
	sms := &fakeSMS{}
	email := &fakeEmail{}
	n := testNotifier(sms, email)

	appt := testAppointment()
	appt.CustomerPhone = nil
	appt.CustomerEmail = nil
	n.BookingConfirmed(context.Background(), appt)

	if sms.calls != 0 || email.calls != 0 {
		t.Fatalf("channels without a destination must be skipped: sms=%d email=%d", sms.calls, email.calls)
	}
}

func TestBookingConfirmed_DeliveryFailureDoesNotPanic(t *testing.T) {
	sms := &fakeSMS{err: errors.New("unreachable")}
	n := testNotifier(sms, nil)

	n.BookingConfirmed(context.Background(), testAppointment())
	if sms.calls != 1 {
		t.Fatal("sms attempt expected")
	}
}

func TestReminderDue(t *testing.T) {
	sms := &fakeSMS{}
	n := testNotifier(sms, nil)

	n.ReminderDue(context.Background(), testAppointment())
	if !strings.Contains(sms.body, "reminder") || !strings.Contains(sms.body, "tomorrow") {
		t.Errorf("reminder body: %q", sms.body)
	}
}

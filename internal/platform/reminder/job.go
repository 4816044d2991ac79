package reminder

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/geko-ai/receptionist/internal/domain/scheduling"
)

// DefaultSchedule runs the job daily at 16:00 UTC, late enough that the
// next day's calendar has settled.
const DefaultSchedule = "0 16 * * *"

// Sender delivers a reminder for one appointment.
type Sender interface {
	ReminderDue(ctx context.Context, appt *scheduling.Appointment)
}

// Job sends day-before reminders for every appointment scheduled tomorrow,
// across all tenants.
type Job struct {
	scheduler *scheduling.Service
	sender    Sender
	schedule  string
	logger    zerolog.Logger
	cron      *cron.Cron
	now       func() time.Time
}

func NewJob(scheduler *scheduling.Service, sender Sender, schedule string, logger zerolog.Logger) *Job {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Job{
		scheduler: scheduler,
		sender:    sender,
		schedule:  schedule,
		logger:    logger,
		cron:      cron.New(),
		now:       time.Now,
	}
}

// Start registers the cron entry and begins the schedule.
func (j *Job) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		j.Run(ctx)
	}); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info().Str("schedule", j.schedule).Msg("reminder job started")
	return nil
}

// Stop halts the schedule and waits for a running invocation to finish.
func (j *Job) Stop() {
	<-j.cron.Stop().Done()
}

// Run sends reminders for tomorrow's appointments. Exposed so an operator
// can trigger it outside the schedule.
func (j *Job) Run(ctx context.Context) {
	now := j.now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	to := from.AddDate(0, 0, 1)

	appts, err := j.scheduler.UpcomingAppointments(ctx, from, to)
	if err != nil {
		j.logger.Error().Err(err).Msg("reminder sweep failed to load appointments")
		return
	}

	for i := range appts {
		j.sender.ReminderDue(ctx, &appts[i])
	}
	j.logger.Info().
		Int("appointments", len(appts)).
		Str("date", from.Format("2006-01-02")).
		Msg("reminder sweep complete")
}

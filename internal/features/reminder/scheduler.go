package reminder

import (
	"context"
	"fmt"
	"time"

	"vowops/internal/config"
	"vowops/internal/email"
	"vowops/internal/features/booking"
	"vowops/internal/features/lead"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler emails leads ahead of their confirmed ceremony date. One cron
// entry runs at the configured schedule and sweeps the reminder window; every
// booking gets at most one reminder.
type Scheduler struct {
	bookings   booking.BookingRepository
	leads      lead.LeadService
	dispatcher *email.Dispatcher
	cfg        *config.Config
	cron       *cron.Cron
	log        *zap.Logger
}

func NewScheduler(
	bookings booking.BookingRepository,
	leads lead.LeadService,
	dispatcher *email.Dispatcher,
	cfg *config.Config,
	log *zap.Logger,
) *Scheduler {
	return &Scheduler{
		bookings:   bookings,
		leads:      leads,
		dispatcher: dispatcher,
		cfg:        cfg,
		cron:       cron.New(),
		log:        log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.ReminderSchedule, s.sweep); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", s.cfg.ReminderSchedule, err)
	}
	s.cron.Start()
	s.log.Info("reminder scheduler started", zap.String("schedule", s.cfg.ReminderSchedule))
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CommandTimeout)
	defer cancel()

	now := time.Now()
	due, err := s.bookings.ConfirmedBetween(ctx, now, now.Add(s.cfg.ReminderWindow))
	if err != nil {
		s.log.Error("reminder sweep failed", zap.Error(err))
		return
	}

	for _, b := range due {
		s.remind(ctx, b)
	}
}

func (s *Scheduler) remind(ctx context.Context, b booking.Booking) {
	ld, err := s.leads.GetLead(ctx, b.LeadID)
	if err != nil || ld == nil || ld.Email == "" {
		s.log.Warn("cannot remind booking without lead email",
			zap.String("bookingId", b.ID.Hex()))
		return
	}

	when := b.CeremonyDate.Format("Monday, January 2 2006 at 3:04 PM")
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>This is a friendly reminder that your ceremony is coming up on %s",
		ld.Name, when)
	if b.Location != "" {
		body += " at " + b.Location
	}
	body += ".</p><p>We look forward to celebrating with you!</p>"

	msg := &email.Email{
		To:       []string{ld.Email},
		Subject:  "Your ceremony is coming up on " + b.CeremonyDate.Format("January 2"),
		HtmlBody: body,
	}

	result := s.dispatcher.Send(ctx, msg)
	if !result.Success {
		s.log.Error("reminder delivery failed",
			zap.String("bookingId", b.ID.Hex()),
			zap.String("error", result.Error))
		return
	}

	if err := s.bookings.MarkReminderSent(ctx, b.ID); err != nil {
		s.log.Error("failed to mark reminder sent",
			zap.String("bookingId", b.ID.Hex()),
			zap.Error(err))
	}
}

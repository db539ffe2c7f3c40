package worker

import (
	"context"
	"time"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository"
	"github.com/bookhaven/booking-api/internal/service/notification"
	"github.com/bookhaven/booking-api/pkg/logger"
	"github.com/bookhaven/booking-api/pkg/messaging"
	"github.com/bookhaven/booking-api/pkg/metrics"
)

// ReminderWorker periodically sweeps the booking ledger for upcoming
// appointments that have not yet received an email reminder and
// dispatches one per booking. A booking is marked before the sweep
// moves on, so a crashed sweep can at worst skip, never double-send
// within one process.
type ReminderWorker struct {
	bookings repository.BookingRepository
	notifier notification.Service
	broker   messaging.Broker
	logger   *logger.Logger
	metrics  *metrics.Metrics

	interval  time.Duration
	leadTime  time.Duration
	batchSize int

	now func() time.Time
}

type ReminderConfig struct {
	// Interval is the sweep period.
	Interval time.Duration
	// LeadTime is how far ahead of the appointment reminders go out.
	LeadTime time.Duration
	// BatchSize caps how many bookings one sweep picks up.
	BatchSize int
}

func NewReminderWorker(
	bookings repository.BookingRepository,
	notifier notification.Service,
	broker messaging.Broker,
	log *logger.Logger,
	m *metrics.Metrics,
	cfg ReminderConfig,
) *ReminderWorker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.LeadTime <= 0 {
		cfg.LeadTime = 24 * time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &ReminderWorker{
		bookings:  bookings,
		notifier:  notifier,
		broker:    broker,
		logger:    log,
		metrics:   m,
		interval:  cfg.Interval,
		leadTime:  cfg.LeadTime,
		batchSize: cfg.BatchSize,
		now:       time.Now,
	}
}

// Start runs the sweep loop until ctx is canceled.
func (w *ReminderWorker) Start(ctx context.Context) {
	w.logger.Info("reminder worker started",
		"interval", w.interval.String(),
		"lead_time", w.leadTime.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reminder worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ReminderWorker) sweep(ctx context.Context) {
	start := w.now()
	defer func() {
		w.metrics.ReminderLatency.Observe(time.Since(start).Seconds())
	}()

	due, err := w.bookings.ListDueReminders(ctx, start, start.Add(w.leadTime), w.batchSize)
	if err != nil {
		w.logger.Error(err, "failed to list due reminders")
		return
	}
	w.metrics.ReminderBatchSize.Observe(float64(len(due)))
	if len(due) == 0 {
		return
	}

	for _, booking := range due {
		if err := w.remind(ctx, booking); err != nil {
			w.metrics.RemindersFailed.WithLabelValues(string(model.NotificationChannelEmail)).Inc()
			w.logger.Error(err, "failed to send reminder",
				"booking_id", booking.ID.String())
			continue
		}
		w.metrics.RemindersSent.WithLabelValues(string(model.NotificationChannelEmail)).Inc()
	}
}

func (w *ReminderWorker) remind(ctx context.Context, booking *model.Booking) error {
	// Mark first so a send that succeeds but fails to record does not
	// spam the customer on the next sweep.
	sent := booking.RemindersSent
	sent.Email = true
	if err := w.bookings.UpdateRemindersSent(ctx, booking.ID, sent); err != nil {
		return err
	}

	if err := w.notifier.SendBookingReminder(ctx, booking); err != nil {
		return err
	}

	if err := w.broker.Publish(ctx, messaging.ChannelReminderSent, messaging.Message{
		Type:    "reminder_sent",
		Payload: booking.ID,
	}); err != nil {
		w.logger.Error(err, "failed to publish reminder event",
			"booking_id", booking.ID.String())
	}
	return nil
}

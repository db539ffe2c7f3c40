package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository/memory"
	"github.com/bookhaven/booking-api/pkg/logger"
	"github.com/bookhaven/booking-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("bookhaven_test", "reminder_worker")

type recordingNotifier struct {
	mu       sync.Mutex
	reminded []uuid.UUID
	fail     bool
}

func (n *recordingNotifier) SendBookingConfirmation(ctx context.Context, booking *model.Booking, svc *model.Service, clinic *model.Clinic) error {
	return nil
}

func (n *recordingNotifier) SendBookingReminder(ctx context.Context, booking *model.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.reminded = append(n.reminded, booking.ID)
	return nil
}

type recordingBroker struct {
	mu       sync.Mutex
	channels []string
}

func (b *recordingBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.channels = append(b.channels, channel)
	return nil
}

func (b *recordingBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (b *recordingBroker) Close() error { return nil }

func seedBooking(t *testing.T, repo *memory.BookingRepository, serviceID uuid.UUID, scheduledAt time.Time) *model.Booking {
	t.Helper()
	booking := &model.Booking{
		ServiceID:     serviceID,
		CustomerName:  "Sara",
		CustomerEmail: "sara@example.com",
		ScheduledAt:   scheduledAt,
		Status:        model.BookingStatusConfirmed,
	}
	require.NoError(t, repo.CreateIfNoOverlap(context.Background(), booking, 30*time.Minute))
	return booking
}

func TestSweepSendsDueRemindersOnce(t *testing.T) {
	store := memory.NewStore()
	bookings := memory.NewBookingRepository(store)
	notifier := &recordingNotifier{}
	broker := &recordingBroker{}

	w := NewReminderWorker(bookings, notifier, broker, logger.NewLogger(nil), testMetrics, ReminderConfig{
		LeadTime: 24 * time.Hour,
	})

	now := time.Now()
	due := seedBooking(t, bookings, uuid.New(), now.Add(2*time.Hour))
	seedBooking(t, bookings, uuid.New(), now.Add(72*time.Hour)) // outside lead time

	ctx := context.Background()
	w.sweep(ctx)

	require.Len(t, notifier.reminded, 1)
	assert.Equal(t, due.ID, notifier.reminded[0])
	assert.Contains(t, broker.channels, "reminder.sent")

	stored, err := bookings.Get(ctx, due.ID)
	require.NoError(t, err)
	assert.True(t, stored.RemindersSent.Email)

	// A second sweep picks up nothing.
	w.sweep(ctx)
	assert.Len(t, notifier.reminded, 1)
}

func TestSweepSkipsFailedSendNextRound(t *testing.T) {
	store := memory.NewStore()
	bookings := memory.NewBookingRepository(store)
	notifier := &recordingNotifier{fail: true}
	broker := &recordingBroker{}

	w := NewReminderWorker(bookings, notifier, broker, logger.NewLogger(nil), testMetrics, ReminderConfig{
		LeadTime: 24 * time.Hour,
	})

	booking := seedBooking(t, bookings, uuid.New(), time.Now().Add(2*time.Hour))

	ctx := context.Background()
	w.sweep(ctx)

	assert.Empty(t, notifier.reminded)

	// Marked before the send attempt, so the booking is not retried
	// and the customer is never double-mailed.
	stored, err := bookings.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.True(t, stored.RemindersSent.Email)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	store := memory.NewStore()
	bookings := memory.NewBookingRepository(store)

	w := NewReminderWorker(bookings, &recordingNotifier{}, &recordingBroker{}, logger.NewLogger(nil), testMetrics, ReminderConfig{
		Interval: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}

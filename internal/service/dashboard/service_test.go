package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository/memory"
)

func TestStatsEmptyLedger(t *testing.T) {
	store := memory.NewStore()
	clinics := memory.NewClinicRepository(store)
	bookings := memory.NewBookingRepository(store)

	providerID := uuid.New()
	require.NoError(t, clinics.Create(context.Background(), &model.Clinic{
		ProviderID:  providerID,
		Name:        "Empty Clinic",
		Active:      true,
		BookingSlug: "empty-clinic",
	}))

	svc := NewService(bookings, clinics)
	stats, err := svc.Stats(context.Background(), providerID)
	require.NoError(t, err)

	// No division error on an empty ledger.
	assert.Equal(t, 0, stats.TotalBookings)
	assert.Equal(t, float64(0), stats.CompletionRate)
	assert.Equal(t, float64(0), stats.NoShowRate)
	assert.Equal(t, float64(0), stats.TotalRevenue)
}

func TestStatsCachesPerProvider(t *testing.T) {
	store := memory.NewStore()
	clinics := memory.NewClinicRepository(store)
	bookings := memory.NewBookingRepository(store)

	providerID := uuid.New()
	ctx := context.Background()
	clinic := &model.Clinic{
		ProviderID:  providerID,
		Name:        "Clinic",
		Active:      true,
		BookingSlug: "clinic",
	}
	require.NoError(t, clinics.Create(ctx, clinic))

	service := &model.Service{ClinicID: clinic.ID, Name: "Visit", Duration: 30, Price: 200, Active: true}
	require.NoError(t, clinics.CreateService(ctx, service))

	svc := NewService(bookings, clinics)

	first, err := svc.Stats(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, 0, first.TotalBookings)

	require.NoError(t, bookings.CreateIfNoOverlap(ctx, &model.Booking{
		ServiceID:     service.ID,
		CustomerName:  "Sara",
		CustomerEmail: "sara@example.com",
		ScheduledAt:   time.Now().Add(time.Hour),
		Status:        model.BookingStatusPending,
	}, 30*time.Minute))

	// Served from cache inside the TTL; the new booking is not yet
	// visible.
	cached, err := svc.Stats(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, 0, cached.TotalBookings)
}

func TestComputeRatesAndRevenue(t *testing.T) {
	now := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)
	monthStart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	svc := &Service{now: func() time.Time { return now }}

	serviceID := uuid.New()
	prices := map[uuid.UUID]float64{serviceID: 250}

	mk := func(status model.BookingStatus, createdAt, scheduledAt time.Time) *model.Booking {
		b := &model.Booking{
			ServiceID:   serviceID,
			Status:      status,
			ScheduledAt: scheduledAt,
		}
		b.CreatedAt = createdAt
		return b
	}

	lastMonth := monthStart.Add(-72 * time.Hour)
	bookings := []*model.Booking{
		mk(model.BookingStatusCompleted, lastMonth, lastMonth),
		mk(model.BookingStatusCompleted, now.Add(-time.Hour), now.Add(-time.Hour)),
		mk(model.BookingStatusNoShow, now.Add(-time.Hour), now.Add(-time.Hour)),
		mk(model.BookingStatusCanceled, now.Add(-time.Hour), now.Add(time.Hour)),
		mk(model.BookingStatusConfirmed, now.Add(-time.Hour), now.Add(2*time.Hour)),
		mk(model.BookingStatusPending, now.Add(-time.Hour), now.Add(3*time.Hour)),
	}

	stats := svc.compute(bookings, prices)

	assert.Equal(t, 6, stats.TotalBookings)
	assert.Equal(t, 5, stats.ThisMonthBookings)
	// Canceled bookings contribute no revenue.
	assert.Equal(t, float64(5*250), stats.TotalRevenue)
	assert.Equal(t, float64(4*250), stats.ThisMonthRevenue)
	assert.Equal(t, 2, stats.UpcomingBookings)
	assert.InDelta(t, 100.0*2/6, stats.CompletionRate, 1e-9)
	assert.InDelta(t, 100.0*1/6, stats.NoShowRate, 1e-9)
}

package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository/memory"
	"github.com/bookhaven/booking-api/internal/service/availability"
	apperrors "github.com/bookhaven/booking-api/pkg/errors"
	"github.com/bookhaven/booking-api/pkg/logger"
)

type noopNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *noopNotifier) SendBookingConfirmation(ctx context.Context, booking *model.Booking, svc *model.Service, clinic *model.Clinic) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return nil
}

func (n *noopNotifier) SendBookingReminder(ctx context.Context, booking *model.Booking) error {
	return nil
}

type fixture struct {
	svc      *Service
	store    *memory.Store
	clinics  *memory.ClinicRepository
	bookings *memory.BookingRepository
	rules    *memory.AvailabilityRepository

	clinic  *model.Clinic
	service *model.Service
	date    time.Time
}

// newFixture builds a clinic with a single service and one open-hours
// rule covering the test date's weekday.
func newFixture(t *testing.T, durationMin, granularity int, ruleStart, ruleEnd string) *fixture {
	t.Helper()

	store := memory.NewStore()
	clinics := memory.NewClinicRepository(store)
	bookings := memory.NewBookingRepository(store)
	rules := memory.NewAvailabilityRepository(store)

	ctx := context.Background()

	clinic := &model.Clinic{
		ProviderID:      uuid.New(),
		Name:            "Downtown Clinic",
		Active:          true,
		BookingSlug:     "downtown-clinic",
		SlotGranularity: granularity,
	}
	require.NoError(t, clinics.Create(ctx, clinic))

	service := &model.Service{
		ClinicID: clinic.ID,
		Name:     "Consultation",
		Duration: durationMin,
		Price:    300,
		Currency: "EGP",
		Active:   true,
	}
	require.NoError(t, clinics.CreateService(ctx, service))

	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	require.NoError(t, rules.Create(ctx, &model.AvailabilityRule{
		ClinicID:  clinic.ID,
		DayOfWeek: int(date.Weekday()),
		StartTime: ruleStart,
		EndTime:   ruleEnd,
		Active:    true,
	}))

	availabilitySvc := availability.NewService(rules, clinics)
	svc := NewService(bookings, clinics, availabilitySvc, &noopNotifier{}, logger.NewLogger(nil))
	svc.now = func() time.Time { return date.Add(-48 * time.Hour) }

	return &fixture{
		svc:      svc,
		store:    store,
		clinics:  clinics,
		bookings: bookings,
		rules:    rules,
		clinic:   clinic,
		service:  service,
		date:     date,
	}
}

func (f *fixture) at(clock string) time.Time {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		panic(err)
	}
	return f.date.Add(time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute)
}

func TestFreeSlotsFullDay(t *testing.T) {
	f := newFixture(t, 30, 30, "09:00", "17:00")

	slots, err := f.svc.FreeSlots(context.Background(), f.service.ID, f.date)
	require.NoError(t, err)

	require.Len(t, slots, 16)
	assert.Equal(t, f.at("09:00"), slots[0])
	assert.Equal(t, f.at("16:30"), slots[15])
	for i := 1; i < len(slots); i++ {
		assert.True(t, slots[i].After(slots[i-1]), "slots must be ascending")
	}
}

func TestFreeSlotsExcludeBookedSlot(t *testing.T) {
	f := newFixture(t, 30, 30, "09:00", "17:00")
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, &model.CreateBookingRequest{
		ServiceID:     f.service.ID,
		CustomerName:  "Nadia",
		CustomerEmail: "nadia@example.com",
		ScheduledAt:   f.at("10:00"),
	})
	require.NoError(t, err)

	slots, err := f.svc.FreeSlots(ctx, f.service.ID, f.date)
	require.NoError(t, err)

	require.Len(t, slots, 15)
	assert.NotContains(t, slots, f.at("10:00"))
	assert.Contains(t, slots, f.at("09:30"))
	assert.Contains(t, slots, f.at("10:30"))
}

func TestFreeSlotsLongerDurationBlocksNeighbors(t *testing.T) {
	// A 60-minute booking at 10:00 occupies [10:00, 11:00), so 09:30,
	// 10:00 and 10:30 all collide for a 60-minute service.
	f := newFixture(t, 60, 30, "09:00", "12:00")
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, &model.CreateBookingRequest{
		ServiceID:     f.service.ID,
		CustomerName:  "Omar",
		CustomerEmail: "omar@example.com",
		ScheduledAt:   f.at("10:00"),
	})
	require.NoError(t, err)

	slots, err := f.svc.FreeSlots(ctx, f.service.ID, f.date)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{f.at("09:00"), f.at("11:00")}, slots)
}

func TestFreeSlotsClosedDay(t *testing.T) {
	f := newFixture(t, 30, 30, "09:00", "17:00")

	// The day after the rule's weekday has no rules at all.
	slots, err := f.svc.FreeSlots(context.Background(), f.service.ID, f.date.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestFreeSlotsDropPastStartsToday(t *testing.T) {
	f := newFixture(t, 30, 30, "09:00", "17:00")
	f.svc.now = func() time.Time { return f.at("12:10") }

	slots, err := f.svc.FreeSlots(context.Background(), f.service.ID, f.date)
	require.NoError(t, err)

	require.NotEmpty(t, slots)
	assert.Equal(t, f.at("12:30"), slots[0])
	assert.Equal(t, f.at("16:30"), slots[len(slots)-1])
}

func TestFreeSlotsDurationMustFitWindow(t *testing.T) {
	f := newFixture(t, 60, 30, "09:00", "10:30")

	slots, err := f.svc.FreeSlots(context.Background(), f.service.ID, f.date)
	require.NoError(t, err)

	// 10:00 would run past closing.
	assert.Equal(t, []time.Time{f.at("09:00"), f.at("09:30")}, slots)
}

func TestCreateBookingOutsideWindow(t *testing.T) {
	f := newFixture(t, 30, 30, "09:00", "17:00")

	_, err := f.svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
		ServiceID:     f.service.ID,
		CustomerName:  "Sara",
		CustomerEmail: "sara@example.com",
		ScheduledAt:   f.at("08:00"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err), "expected validation error, got %v", err)
}

func TestCreateBookingMisalignedStart(t *testing.T) {
	f := newFixture(t, 30, 30, "09:00", "17:00")

	_, err := f.svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
		ServiceID:     f.service.ID,
		CustomerName:  "Sara",
		CustomerEmail: "sara@example.com",
		ScheduledAt:   f.at("09:15"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateBookingMissingCustomer(t *testing.T) {
	f := newFixture(t, 30, 30, "09:00", "17:00")

	_, err := f.svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
		ServiceID:   f.service.ID,
		ScheduledAt: f.at("09:00"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateBookingInactiveService(t *testing.T) {
	f := newFixture(t, 30, 30, "09:00", "17:00")
	ctx := context.Background()

	f.service.Active = false
	require.NoError(t, f.clinics.UpdateService(ctx, f.service))

	_, err := f.svc.CreateBooking(ctx, &model.CreateBookingRequest{
		ServiceID:     f.service.ID,
		CustomerName:  "Sara",
		CustomerEmail: "sara@example.com",
		ScheduledAt:   f.at("09:00"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateBookingOccupiedSlotConflicts(t *testing.T) {
	f := newFixture(t, 30, 30, "09:00", "17:00")
	ctx := context.Background()

	req := &model.CreateBookingRequest{
		ServiceID:     f.service.ID,
		CustomerName:  "First",
		CustomerEmail: "first@example.com",
		ScheduledAt:   f.at("11:00"),
	}
	_, err := f.svc.CreateBooking(ctx, req)
	require.NoError(t, err)

	req.CustomerName = "Second"
	req.CustomerEmail = "second@example.com"
	_, err = f.svc.CreateBooking(ctx, req)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err), "expected conflict error, got %v", err)
}

func TestCreateBookingConcurrentSameSlot(t *testing.T) {
	f := newFixture(t, 30, 30, "09:00", "17:00")
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateBooking(ctx, &model.CreateBookingRequest{
				ServiceID:     f.service.ID,
				CustomerName:  "Racer",
				CustomerEmail: "racer@example.com",
				ScheduledAt:   f.at("14:00"),
			})
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case apperrors.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, writers-1, conflicts)
}

func TestCreateBookingCanceledSlotReusable(t *testing.T) {
	f := newFixture(t, 30, 30, "09:00", "17:00")
	ctx := context.Background()

	created, err := f.svc.CreateBooking(ctx, &model.CreateBookingRequest{
		ServiceID:     f.service.ID,
		CustomerName:  "Sara",
		CustomerEmail: "sara@example.com",
		ScheduledAt:   f.at("15:00"),
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, created.ID, model.BookingStatusCanceled)
	require.NoError(t, err)

	// Canceled bookings release the slot.
	slots, err := f.svc.FreeSlots(ctx, f.service.ID, f.date)
	require.NoError(t, err)
	assert.Contains(t, slots, f.at("15:00"))

	_, err = f.svc.CreateBooking(ctx, &model.CreateBookingRequest{
		ServiceID:     f.service.ID,
		CustomerName:  "Laila",
		CustomerEmail: "laila@example.com",
		ScheduledAt:   f.at("15:00"),
	})
	require.NoError(t, err)
}

func TestCreateBookingRoundTrip(t *testing.T) {
	f := newFixture(t, 30, 30, "09:00", "17:00")
	ctx := context.Background()

	slots, err := f.svc.FreeSlots(ctx, f.service.ID, f.date)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	created, err := f.svc.CreateBooking(ctx, &model.CreateBookingRequest{
		ServiceID:     f.service.ID,
		CustomerName:  "Sara",
		CustomerEmail: "sara@example.com",
		ScheduledAt:   slots[3],
		Notes:         "first visit",
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, created.Status)
	assert.Equal(t, model.PaymentStatusPending, created.PaymentStatus)
	assert.NotEqual(t, created.ID.String(), "00000000-0000-0000-0000-000000000000")

	fetched, err := f.svc.GetBooking(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ScheduledAt, fetched.ScheduledAt)
	assert.Equal(t, "first visit", fetched.Notes)

	after, err := f.svc.FreeSlots(ctx, f.service.ID, f.date)
	require.NoError(t, err)
	assert.Len(t, after, len(slots)-1)
	assert.NotContains(t, after, slots[3])
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := newFixture(t, 30, 30, "09:00", "17:00")
	ctx := context.Background()

	created, err := f.svc.CreateBooking(ctx, &model.CreateBookingRequest{
		ServiceID:     f.service.ID,
		CustomerName:  "Sara",
		CustomerEmail: "sara@example.com",
		ScheduledAt:   f.at("09:00"),
	})
	require.NoError(t, err)

	confirmed, err := f.svc.UpdateStatus(ctx, created.ID, model.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, confirmed.Status)

	_, err = f.svc.UpdateStatus(ctx, created.ID, model.BookingStatusCompleted)
	require.NoError(t, err)

	// Terminal states reject further transitions.
	_, err = f.svc.UpdateStatus(ctx, created.ID, model.BookingStatusConfirmed)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	// Same-status updates are idempotent.
	_, err = f.svc.UpdateStatus(ctx, created.ID, model.BookingStatusCompleted)
	require.NoError(t, err)
}

func TestListBookingsScopedToProvider(t *testing.T) {
	f := newFixture(t, 30, 30, "09:00", "17:00")
	ctx := context.Background()

	created, err := f.svc.CreateBooking(ctx, &model.CreateBookingRequest{
		ServiceID:     f.service.ID,
		CustomerName:  "Sara",
		CustomerEmail: "sara@example.com",
		ScheduledAt:   f.at("09:00"),
	})
	require.NoError(t, err)

	owned, err := f.svc.ListBookings(ctx, f.clinic.ProviderID, nil)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, created.ID, owned[0].ID)

	other, err := f.svc.ListBookings(ctx, uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, other)
}

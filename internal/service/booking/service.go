package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository"
	"github.com/bookhaven/booking-api/internal/service/availability"
	"github.com/bookhaven/booking-api/internal/service/notification"
	apperrors "github.com/bookhaven/booking-api/pkg/errors"
	"github.com/bookhaven/booking-api/pkg/logger"
)

type Service struct {
	bookings     repository.BookingRepository
	clinics      repository.ClinicRepository
	availability *availability.Service
	notifier     notification.Service
	logger       *logger.Logger

	// now is swapped out in tests.
	now func() time.Time
}

func NewService(
	bookings repository.BookingRepository,
	clinics repository.ClinicRepository,
	availabilitySvc *availability.Service,
	notifier notification.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		bookings:     bookings,
		clinics:      clinics,
		availability: availabilitySvc,
		notifier:     notifier,
		logger:       log,
		now:          time.Now,
	}
}

// FreeSlots returns the bookable start times for a service on a date,
// ordered ascending. A slot is offered when it fits entirely inside a
// merged availability window, does not overlap any pending or
// confirmed booking, and has not already passed when the date is
// today.
func (s *Service) FreeSlots(ctx context.Context, serviceID uuid.UUID, date time.Time) ([]time.Time, error) {
	svc, clinic, err := s.activeService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidateStarts(ctx, svc, clinic, date)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	existing, err := s.bookings.ListForServiceOnDate(ctx, serviceID, date, model.ActiveBookingStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	duration := svc.DurationD()
	var free []time.Time
	for _, start := range candidates {
		if !overlapsAny(start, start.Add(duration), existing, duration) {
			free = append(free, start)
		}
	}
	return free, nil
}

// candidateStarts generates the slot grid for a date: every
// granularity step inside each effective window where the full service
// duration still fits, minus starts already in the past. Existing
// bookings are not considered here; that is FreeSlots' concern.
func (s *Service) candidateStarts(ctx context.Context, svc *model.Service, clinic *model.Clinic, date time.Time) ([]time.Time, error) {
	windows, err := s.availability.EffectiveWindows(ctx, clinic.ID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get effective windows: %w", err)
	}
	if len(windows) == 0 {
		// Clinic closed that day.
		return nil, nil
	}

	step := clinic.Granularity()
	durationMin := svc.Duration
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	now := s.now()

	var candidates []time.Time
	for _, w := range windows {
		for m := w.Start; m+durationMin <= w.End; m += step {
			start := dayStart.Add(time.Duration(m) * time.Minute)
			if start.Before(now) {
				continue
			}
			candidates = append(candidates, start)
		}
	}
	return candidates, nil
}

// CreateBooking validates the requested slot against the current
// schedule and commits it. The overlap re-check and the insert are one
// atomic unit in the repository, so two concurrent writers for the
// same slot cannot both succeed: the loser gets a conflict error.
func (s *Service) CreateBooking(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	if req.CustomerName == "" || req.CustomerEmail == "" {
		return nil, apperrors.Validation("customer name and email are required", nil)
	}

	svc, clinic, err := s.activeService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}

	requested := req.ScheduledAt.Truncate(time.Minute)

	candidates, err := s.candidateStarts(ctx, svc, clinic, requested)
	if err != nil {
		return nil, err
	}
	if !containsTime(candidates, requested) {
		return nil, apperrors.Validation(
			fmt.Sprintf("requested time %s is not a bookable slot", requested.Format(time.RFC3339)), nil)
	}

	booking := &model.Booking{
		ServiceID:     svc.ID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		ScheduledAt:   requested,
		Status:        model.BookingStatusPending,
		Notes:         req.Notes,
		PaymentStatus: model.PaymentStatusPending,
	}
	if req.CustomerPhone != "" {
		phone := req.CustomerPhone
		booking.CustomerPhone = &phone
	}

	if err := s.bookings.CreateIfNoOverlap(ctx, booking, svc.DurationD()); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			return nil, apperrors.Conflict("slot is no longer available", err)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	// Confirmation dispatch is best effort and never fails the
	// booking; the exclusive scope in the repository is already
	// released by the time it runs.
	go s.notifyCreated(booking, svc, clinic)

	return booking, nil
}

func (s *Service) notifyCreated(booking *model.Booking, svc *model.Service, clinic *model.Clinic) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.notifier.SendBookingConfirmation(ctx, booking, svc, clinic); err != nil {
		s.logger.Error(err, "failed to send booking confirmation",
			"booking_id", booking.ID.String())
	}
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("booking", err)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (s *Service) ListBookings(ctx context.Context, providerID uuid.UUID, filters *model.BookingFilters) ([]*model.Booking, error) {
	clinics, err := s.clinics.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}

	clinicIDs := make([]uuid.UUID, 0, len(clinics))
	for _, c := range clinics {
		if filters != nil && filters.ClinicID != uuid.Nil && c.ID != filters.ClinicID {
			continue
		}
		clinicIDs = append(clinicIDs, c.ID)
	}

	bookings, err := s.bookings.ListForClinics(ctx, clinicIDs, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// UpdateStatus transitions a booking's lifecycle status. ScheduledAt
// is immutable and bookings are never physically deleted; cancellation
// and no-show are status transitions like any other.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) (*model.Booking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validateTransition(booking.Status, status); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	if err := s.bookings.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	booking.Status = status
	return booking, nil
}

func validateTransition(from, to model.BookingStatus) error {
	if from == to {
		return nil
	}
	switch from {
	case model.BookingStatusCanceled:
		return fmt.Errorf("booking is already canceled")
	case model.BookingStatusCompleted:
		return fmt.Errorf("cannot change a completed booking")
	case model.BookingStatusNoShow:
		return fmt.Errorf("cannot change a no-show booking")
	}
	return nil
}

// activeService resolves a service and its clinic, rejecting inactive
// or unknown entities the same way regardless of which is missing.
func (s *Service) activeService(ctx context.Context, serviceID uuid.UUID) (*model.Service, *model.Clinic, error) {
	svc, err := s.clinics.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.Validation("service not found", err)
		}
		return nil, nil, fmt.Errorf("failed to get service: %w", err)
	}
	if !svc.Active {
		return nil, nil, apperrors.Validation("service is not active", nil)
	}

	clinic, err := s.clinics.Get(ctx, svc.ClinicID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.Validation("clinic not found", err)
		}
		return nil, nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	if !clinic.Active {
		return nil, nil, apperrors.Validation("clinic is not active", nil)
	}

	return svc, clinic, nil
}

// overlapsAny applies the half-open interval test: two intervals
// overlap when a.start < b.end && b.start < a.end.
func overlapsAny(start, end time.Time, bookings []*model.Booking, duration time.Duration) bool {
	for _, b := range bookings {
		bStart, bEnd := b.Interval(duration)
		if start.Before(bEnd) && bStart.Before(end) {
			return true
		}
	}
	return false
}

func containsTime(times []time.Time, t time.Time) bool {
	for _, candidate := range times {
		if candidate.Equal(t) {
			return true
		}
	}
	return false
}

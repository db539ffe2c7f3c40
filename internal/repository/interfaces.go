package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/booking-api/internal/model"
)

// Sentinel errors shared by all backing implementations.
var (
	ErrNotFound = errors.New("record not found")

	// ErrOverlap is returned by CreateIfNoOverlap when the requested
	// interval collides with an active booking at commit time.
	ErrOverlap = errors.New("booking overlaps an existing booking")

	// ErrDuplicateSlug is returned when a clinic slug is already taken.
	ErrDuplicateSlug = errors.New("booking slug already in use")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
	}

	// ClinicRepository owns clinics and their service catalog.
	ClinicRepository interface {
		Create(ctx context.Context, clinic *model.Clinic) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		GetBySlug(ctx context.Context, slug string) (*model.Clinic, error)
		Update(ctx context.Context, clinic *model.Clinic) error
		ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Clinic, error)

		CreateService(ctx context.Context, service *model.Service) error
		GetService(ctx context.Context, serviceID uuid.UUID) (*model.Service, error)
		UpdateService(ctx context.Context, service *model.Service) error
		ListServices(ctx context.Context, clinicID uuid.UUID) ([]*model.Service, error)
	}

	AvailabilityRepository interface {
		Create(ctx context.Context, rule *model.AvailabilityRule) error
		Get(ctx context.Context, id uuid.UUID) (*model.AvailabilityRule, error)
		Update(ctx context.Context, rule *model.AvailabilityRule) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListForClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.AvailabilityRule, error)
		GetActiveRules(ctx context.Context, clinicID uuid.UUID, dayOfWeek int) ([]*model.AvailabilityRule, error)
	}

	// BookingRepository is the booking ledger. CreateIfNoOverlap is the
	// single transactional write: the overlap check and the insert are
	// one atomic unit, serialized per service.
	BookingRepository interface {
		CreateIfNoOverlap(ctx context.Context, booking *model.Booking, duration time.Duration) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error
		UpdateRemindersSent(ctx context.Context, id uuid.UUID, sent model.RemindersSent) error
		ListForServiceOnDate(ctx context.Context, serviceID uuid.UUID, date time.Time, statuses []model.BookingStatus) ([]*model.Booking, error)
		ListForClinics(ctx context.Context, clinicIDs []uuid.UUID, filters *model.BookingFilters) ([]*model.Booking, error)
		ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]*model.Booking, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		Update(ctx context.Context, notification *model.Notification) error
		ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]*model.Notification, error)
	}
)

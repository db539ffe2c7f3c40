package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository"
)

type BookingRepository struct {
	store *Store
}

func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

// CreateIfNoOverlap holds the per-service mutex across the overlap
// check and the insert, mirroring the advisory-lock transaction in the
// postgres implementation.
func (r *BookingRepository) CreateIfNoOverlap(ctx context.Context, booking *model.Booking, duration time.Duration) error {
	lock := r.store.serviceLock(booking.ServiceID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	start := booking.ScheduledAt
	end := booking.ScheduledAt.Add(duration)

	r.store.mu.RLock()
	for _, existing := range r.store.bookings {
		if existing.ServiceID != booking.ServiceID {
			continue
		}
		if !isActiveStatus(existing.Status) {
			continue
		}
		es, ee := existing.Interval(duration)
		if es.Before(end) && start.Before(ee) {
			r.store.mu.RUnlock()
			return repository.ErrOverlap
		}
	}
	r.store.mu.RUnlock()

	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	cp := *booking
	r.store.mu.Lock()
	r.store.bookings[booking.ID] = &cp
	r.store.mu.Unlock()
	return nil
}

func (r *BookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	booking, ok := r.store.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *booking
	return &cp, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	booking, ok := r.store.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	booking.Status = status
	booking.UpdatedAt = time.Now()
	return nil
}

func (r *BookingRepository) UpdateRemindersSent(ctx context.Context, id uuid.UUID, sent model.RemindersSent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	booking, ok := r.store.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	booking.RemindersSent = sent
	booking.UpdatedAt = time.Now()
	return nil
}

func (r *BookingRepository) ListForServiceOnDate(ctx context.Context, serviceID uuid.UUID, date time.Time, statuses []model.BookingStatus) ([]*model.Booking, error) {
	if len(statuses) == 0 {
		statuses = model.ActiveBookingStatuses
	}
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.Booking
	for _, b := range r.store.bookings {
		if b.ServiceID != serviceID {
			continue
		}
		if b.ScheduledAt.Before(dayStart) || !b.ScheduledAt.Before(dayEnd) {
			continue
		}
		if !statusIn(b.Status, statuses) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sortByScheduledAt(out)
	return out, nil
}

func (r *BookingRepository) ListForClinics(ctx context.Context, clinicIDs []uuid.UUID, filters *model.BookingFilters) ([]*model.Booking, error) {
	clinicSet := make(map[uuid.UUID]bool, len(clinicIDs))
	for _, id := range clinicIDs {
		clinicSet[id] = true
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.Booking
	for _, b := range r.store.bookings {
		svc, ok := r.store.services[b.ServiceID]
		if !ok || !clinicSet[svc.ClinicID] {
			continue
		}
		if filters != nil {
			if filters.ServiceID != uuid.Nil && b.ServiceID != filters.ServiceID {
				continue
			}
			if filters.Status != "" && b.Status != filters.Status {
				continue
			}
			if !filters.StartDate.IsZero() && b.ScheduledAt.Before(filters.StartDate) {
				continue
			}
			if !filters.EndDate.IsZero() && !b.ScheduledAt.Before(filters.EndDate) {
				continue
			}
		}
		cp := *b
		out = append(out, &cp)
	}
	sortByScheduledAt(out)
	return out, nil
}

func (r *BookingRepository) ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]*model.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.Booking
	for _, b := range r.store.bookings {
		if !isActiveStatus(b.Status) || b.RemindersSent.Email {
			continue
		}
		if b.ScheduledAt.Before(from) || !b.ScheduledAt.Before(to) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sortByScheduledAt(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func isActiveStatus(s model.BookingStatus) bool {
	return statusIn(s, model.ActiveBookingStatuses)
}

func statusIn(s model.BookingStatus, set []model.BookingStatus) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}

func sortByScheduledAt(bookings []*model.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].ScheduledAt.Before(bookings[j].ScheduledAt)
	})
}

package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository"
)

type NotificationRepository struct {
	store *Store
}

func NewNotificationRepository(store *Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	notification.ID = uuid.New()
	notification.CreatedAt = time.Now()
	notification.UpdatedAt = notification.CreatedAt

	cp := *notification
	r.store.notifications[notification.ID] = &cp
	return nil
}

func (r *NotificationRepository) Update(ctx context.Context, notification *model.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.notifications[notification.ID]; !ok {
		return repository.ErrNotFound
	}
	notification.UpdatedAt = time.Now()
	cp := *notification
	r.store.notifications[notification.ID] = &cp
	return nil
}

func (r *NotificationRepository) ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]*model.Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.Notification
	for _, n := range r.store.notifications {
		if n.BookingID == bookingID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

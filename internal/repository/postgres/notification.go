package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository"
)

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	query := `
		INSERT INTO notifications (
			id, booking_id, channel, status, recipient, subject, content,
			sent_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	notification.ID = uuid.New()
	notification.CreatedAt = time.Now()
	notification.UpdatedAt = notification.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		notification.ID,
		notification.BookingID,
		notification.Channel,
		notification.Status,
		notification.Recipient,
		notification.Subject,
		notification.Content,
		notification.SentAt,
		notification.CreatedAt,
		notification.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) Update(ctx context.Context, notification *model.Notification) error {
	notification.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET status = $1, sent_at = $2, updated_at = $3
		WHERE id = $4
	`,
		notification.Status,
		notification.SentAt,
		notification.UpdatedAt,
		notification.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]*model.Notification, error) {
	var notifications []*model.Notification
	err := r.db.SelectContext(ctx, &notifications, `
		SELECT id, booking_id, channel, status, recipient, subject, content,
		       sent_at, created_at, updated_at
		FROM notifications
		WHERE booking_id = $1
		ORDER BY created_at ASC
	`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository"
)

const bookingColumns = `
	id, service_id, customer_id, customer_name, customer_email, customer_phone,
	scheduled_at, status, notes, payment_status, reminders_sent,
	created_at, updated_at
`

// CreateIfNoOverlap commits a booking only if its interval is free.
// Writers for the same service are serialized with a transaction-scoped
// advisory lock, so the overlap check and the insert form one atomic
// unit. The lock is released at commit/rollback and is never held
// across notification or network calls.
func (r *bookingRepository) CreateIfNoOverlap(ctx context.Context, booking *model.Booking, duration time.Duration) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`,
		booking.ServiceID,
	); err != nil {
		return fmt.Errorf("failed to acquire service lock: %w", err)
	}

	start := booking.ScheduledAt
	end := booking.ScheduledAt.Add(duration)

	var exists bool
	err = tx.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE service_id = $1
			AND status IN ('pending', 'confirmed')
			AND scheduled_at < $3
			AND scheduled_at + ($4 * interval '1 minute') > $2
		)
	`, booking.ServiceID, start, end, int(duration.Minutes()))
	if err != nil {
		return fmt.Errorf("failed to check overlap: %w", err)
	}
	if exists {
		return repository.ErrOverlap
	}

	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings (
			id, service_id, customer_id, customer_name, customer_email, customer_phone,
			scheduled_at, status, notes, payment_status, reminders_sent,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		booking.ID,
		booking.ServiceID,
		booking.CustomerID,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.ScheduledAt,
		booking.Status,
		booking.Notes,
		booking.PaymentStatus,
		booking.RemindersSent,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
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

func (r *bookingRepository) UpdateRemindersSent(ctx context.Context, id uuid.UUID, sent model.RemindersSent) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET reminders_sent = $1, updated_at = $2
		WHERE id = $3
	`, sent, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update reminders: %w", err)
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

func (r *bookingRepository) ListForServiceOnDate(ctx context.Context, serviceID uuid.UUID, date time.Time, statuses []model.BookingStatus) ([]*model.Booking, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	if len(statuses) == 0 {
		statuses = model.ActiveBookingStatuses
	}
	statusStrs := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrs[i] = string(s)
	}

	query, args, err := sqlxIn(`
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE service_id = ?
		AND scheduled_at >= ? AND scheduled_at < ?
		AND status IN (?)
		ORDER BY scheduled_at ASC
	`, serviceID, dayStart, dayEnd, statusStrs)
	if err != nil {
		return nil, err
	}

	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) ListForClinics(ctx context.Context, clinicIDs []uuid.UUID, filters *model.BookingFilters) ([]*model.Booking, error) {
	if len(clinicIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(clinicIDs))
	for i, id := range clinicIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT b.id, b.service_id, b.customer_id, b.customer_name, b.customer_email, b.customer_phone,
		       b.scheduled_at, b.status, b.notes, b.payment_status, b.reminders_sent,
		       b.created_at, b.updated_at
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		WHERE s.clinic_id IN (?)
	`
	args := []interface{}{ids}

	if filters != nil {
		if filters.ServiceID != uuid.Nil {
			query += " AND b.service_id = ?"
			args = append(args, filters.ServiceID)
		}
		if filters.Status != "" {
			query += " AND b.status = ?"
			args = append(args, filters.Status)
		}
		if !filters.StartDate.IsZero() {
			query += " AND b.scheduled_at >= ?"
			args = append(args, filters.StartDate)
		}
		if !filters.EndDate.IsZero() {
			query += " AND b.scheduled_at < ?"
			args = append(args, filters.EndDate)
		}
	}

	query += " ORDER BY b.scheduled_at ASC"

	query, inArgs, err := sqlxIn(query, args...)
	if err != nil {
		return nil, err
	}

	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, r.db.Rebind(query), inArgs...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// ListDueReminders returns active bookings scheduled inside [from, to)
// whose email reminder has not fired yet.
func (r *bookingRepository) ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]*model.Booking, error) {
	var bookings []*model.Booking
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE scheduled_at >= $1 AND scheduled_at < $2
		AND status IN ('pending', 'confirmed')
		AND (reminders_sent ->> 'email')::boolean = false
		ORDER BY scheduled_at ASC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return bookings, nil
}

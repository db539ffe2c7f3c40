package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCanceled  BookingStatus = "canceled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusNoShow    BookingStatus = "no_show"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// ActiveBookingStatuses are the statuses that occupy a slot for
// overlap-checking purposes.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
}

// RemindersSent tracks which reminder channels have fired for a
// booking. Stored as JSONB.
type RemindersSent struct {
	Email    bool `json:"email"`
	SMS      bool `json:"sms"`
	WhatsApp bool `json:"whatsapp"`
}

func (r RemindersSent) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *RemindersSent) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	case nil:
		*r = RemindersSent{}
		return nil
	default:
		return fmt.Errorf("unsupported type %T for RemindersSent", src)
	}
}

type Booking struct {
	Base
	ServiceID     uuid.UUID     `db:"service_id" json:"service_id"`
	CustomerID    *uuid.UUID    `db:"customer_id" json:"customer_id,omitempty"`
	CustomerName  string        `db:"customer_name" json:"customer_name"`
	CustomerEmail string        `db:"customer_email" json:"customer_email"`
	CustomerPhone *string       `db:"customer_phone" json:"customer_phone,omitempty"`
	ScheduledAt   time.Time     `db:"scheduled_at" json:"scheduled_at"`
	Status        BookingStatus `db:"status" json:"status"`
	Notes         string        `db:"notes" json:"notes,omitempty"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
	RemindersSent RemindersSent `db:"reminders_sent" json:"reminders_sent"`
}

// Interval returns the half-open interval occupied by the booking
// given its service duration.
func (b *Booking) Interval(duration time.Duration) (start, end time.Time) {
	return b.ScheduledAt, b.ScheduledAt.Add(duration)
}

type CreateBookingRequest struct {
	ServiceID     uuid.UUID `json:"service_id" binding:"required"`
	CustomerName  string    `json:"customer_name" binding:"required,max=100"`
	CustomerEmail string    `json:"customer_email" binding:"required,email"`
	CustomerPhone string    `json:"customer_phone" binding:"omitempty,e164"`
	ScheduledAt   time.Time `json:"scheduled_at" binding:"required"`
	Notes         string    `json:"notes" binding:"max=500"`
}

type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required,oneof=pending confirmed canceled completed no_show"`
}

type BookingFilters struct {
	ClinicID  uuid.UUID
	ServiceID uuid.UUID
	Status    BookingStatus
	StartDate time.Time
	EndDate   time.Time
}

// SlotsResponse is the payload for free-slot queries on the public
// booking surface.
type SlotsResponse struct {
	Date        string   `json:"date"`
	Granularity int      `json:"granularity"`
	Slots       []string `json:"slots"`
}

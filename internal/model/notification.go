package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationChannel string

const (
	NotificationChannelEmail    NotificationChannel = "email"
	NotificationChannelSMS      NotificationChannel = "sms"
	NotificationChannelWhatsApp NotificationChannel = "whatsapp"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

type Notification struct {
	Base
	BookingID uuid.UUID           `db:"booking_id" json:"booking_id"`
	Channel   NotificationChannel `db:"channel" json:"channel"`
	Status    NotificationStatus  `db:"status" json:"status"`
	Recipient string              `db:"recipient" json:"recipient"`
	Subject   string              `db:"subject" json:"subject"`
	Content   string              `db:"content" json:"content"`
	SentAt    *time.Time          `db:"sent_at" json:"sent_at,omitempty"`
}

package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Channels published by the booking platform.
const (
	ChannelBookingCreated  = "booking.created"
	ChannelBookingUpdated  = "booking.updated"
	ChannelReminderSent    = "reminder.sent"
	ChannelNotificationDLQ = "notification.failed"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

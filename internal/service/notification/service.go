package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/bookhaven/booking-api/internal/email"
	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository"
	"github.com/bookhaven/booking-api/pkg/logger"
	"github.com/bookhaven/booking-api/pkg/messaging"
)

// Service dispatches customer-facing messages for bookings. All sends
// are best effort: a failed dispatch is recorded and logged but never
// propagated into the booking write path.
type Service interface {
	SendBookingConfirmation(ctx context.Context, booking *model.Booking, svc *model.Service, clinic *model.Clinic) error
	SendBookingReminder(ctx context.Context, booking *model.Booking) error
}

type service struct {
	repo     repository.NotificationRepository
	emailSvc email.Service
	broker   messaging.Broker
	logger   *logger.Logger
}

func NewService(repo repository.NotificationRepository, emailSvc email.Service, broker messaging.Broker, log *logger.Logger) Service {
	return &service{
		repo:     repo,
		emailSvc: emailSvc,
		broker:   broker,
		logger:   log,
	}
}

func (s *service) SendBookingConfirmation(ctx context.Context, booking *model.Booking, svc *model.Service, clinic *model.Clinic) error {
	subject := fmt.Sprintf("Booking confirmed at %s", clinic.Name)
	content := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your booking for <b>%s</b> at %s is scheduled for %s.</p>",
		booking.CustomerName,
		svc.Name,
		clinic.Name,
		booking.ScheduledAt.Format("Mon, 2 Jan 2006 15:04"),
	)

	if err := s.dispatch(ctx, booking, subject, content); err != nil {
		return err
	}

	if err := s.broker.Publish(ctx, messaging.ChannelBookingCreated, messaging.Message{
		Type:    "booking_created",
		Payload: booking,
	}); err != nil {
		s.logger.Error(err, "failed to publish booking event",
			"booking_id", booking.ID.String())
	}
	return nil
}

func (s *service) SendBookingReminder(ctx context.Context, booking *model.Booking) error {
	subject := "Upcoming appointment reminder"
	content := fmt.Sprintf(
		"<p>Hi %s,</p><p>This is a reminder for your appointment on %s.</p>",
		booking.CustomerName,
		booking.ScheduledAt.Format("Mon, 2 Jan 2006 15:04"),
	)
	return s.dispatch(ctx, booking, subject, content)
}

func (s *service) dispatch(ctx context.Context, booking *model.Booking, subject, content string) error {
	notification := &model.Notification{
		BookingID: booking.ID,
		Channel:   model.NotificationChannelEmail,
		Status:    model.NotificationStatusPending,
		Recipient: booking.CustomerEmail,
		Subject:   subject,
		Content:   content,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}

	if err := s.emailSvc.SendCustom(ctx, notification.Recipient, subject, content); err != nil {
		notification.Status = model.NotificationStatusFailed
		if updateErr := s.repo.Update(ctx, notification); updateErr != nil {
			s.logger.Error(updateErr, "failed to mark notification failed",
				"notification_id", notification.ID.String())
		}
		return fmt.Errorf("failed to send email: %w", err)
	}

	now := time.Now()
	notification.Status = model.NotificationStatusSent
	notification.SentAt = &now
	if err := s.repo.Update(ctx, notification); err != nil {
		s.logger.Error(err, "failed to mark notification sent",
			"notification_id", notification.ID.String())
	}
	return nil
}

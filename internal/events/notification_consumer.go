package events

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/petatwork/service-booking/internal/pkg/kafka"
)

// Mailer delivers a notification to a recipient. The default implementation
// only logs; a real mail gateway can be swapped in behind this interface.
type Mailer interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogMailer writes notifications to the service log instead of sending mail.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a new LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, recipient, subject, body string) error {
	m.logger.Info("notification delivered",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

// NotificationConsumer listens to the notification topic and hands events to
// the mailer.
type NotificationConsumer struct {
	consumer *kafka.Consumer
	mailer   Mailer
	logger   *zap.Logger
}

// NewNotificationConsumer creates a new NotificationConsumer.
func NewNotificationConsumer(
	brokers []string,
	groupID string,
	mailer Mailer,
	logger *zap.Logger,
) *NotificationConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicNotificationEvents, logger)
	return &NotificationConsumer{
		consumer: consumer,
		mailer:   mailer,
		logger:   logger,
	}
}

// Start begins consuming notification events. This blocks until the context
// is cancelled.
func (c *NotificationConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *NotificationConsumer) Close() error {
	return c.consumer.Close()
}

func (c *NotificationConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from notification topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case BookingRequested, BookingStatusSet, BookingCancelled, BookingPaid:
		return c.deliverBooking(ctx, cloudEvent)
	case PaymentRefunded:
		return c.deliverPayment(ctx, cloudEvent)
	case EngagementRequested, EngagementStatusSet, EngagementCascaded:
		return c.deliverEngagement(ctx, cloudEvent)
	case PasswordResetIssued:
		return c.deliverPasswordReset(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled notification event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *NotificationConsumer) deliverBooking(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt BookingEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse booking event data", zap.Error(err))
		return nil
	}

	subject := "Booking " + evt.BookingNumber + ": " + evt.Status
	body := "Your booking " + evt.BookingNumber + " is now " + evt.Status + "."
	return c.mailer.Send(ctx, evt.RecipientEmail, subject, body)
}

func (c *NotificationConsumer) deliverPayment(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt PaymentEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse payment event data", zap.Error(err))
		return nil
	}

	subject := "Payment " + evt.TransactionID + " refunded"
	body := "Your payment " + evt.TransactionID + " has been refunded."
	return c.mailer.Send(ctx, evt.RecipientEmail, subject, body)
}

func (c *NotificationConsumer) deliverEngagement(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt EngagementEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse engagement event data", zap.Error(err))
		return nil
	}

	subject := "Engagement update: " + evt.Status
	body := "Your " + evt.ServiceType + " engagement is now " + evt.Status + "."
	return c.mailer.Send(ctx, evt.RecipientEmail, subject, body)
}

func (c *NotificationConsumer) deliverPasswordReset(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt PasswordResetEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse password reset event data", zap.Error(err))
		return nil
	}

	subject := "Your password reset code"
	body := "Use code " + evt.Code + " to reset your password. It expires at " +
		evt.ExpiresAt.Format("15:04 MST") + "."
	return c.mailer.Send(ctx, evt.RecipientEmail, subject, body)
}

package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/petatwork/service-booking/internal/pkg/kafka"
)

// Notifier publishes notification events. Publishing is best-effort: the
// booking flow never fails because a notification could not be sent.
type Notifier interface {
	Notify(ctx context.Context, eventType string, payload any)
}

// KafkaNotifier publishes notification events to the notification topic as
// CloudEvents.
type KafkaNotifier struct {
	producer *kafka.Producer
	logger   *zap.Logger
}

// NewKafkaNotifier creates a new KafkaNotifier.
func NewKafkaNotifier(producer *kafka.Producer, logger *zap.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		logger:   logger,
	}
}

// Notify publishes a notification event. Failures are logged and swallowed.
func (n *KafkaNotifier) Notify(ctx context.Context, eventType string, payload any) {
	event, err := kafka.NewCloudEvent(SourceBookingService, eventType, payload)
	if err != nil {
		n.logger.Error("failed to build notification event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := n.producer.PublishEvent(ctx, TopicNotificationEvents, event); err != nil {
		n.logger.Error("failed to publish notification event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

// NopNotifier discards all notifications. Used in tests and when Kafka is
// not configured.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(ctx context.Context, eventType string, payload any) {}

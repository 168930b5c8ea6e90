package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes CloudEvents to Kafka topics. Writers are created lazily
// per topic and reused.
type Producer struct {
	brokers []string
	logger  *zap.Logger

	mu      sync.Mutex
	writers map[string]*kafkago.Writer
}

// NewProducer creates a Producer for the given broker list.
func NewProducer(brokers []string, logger *zap.Logger) *Producer {
	return &Producer{
		brokers: brokers,
		logger:  logger,
		writers: make(map[string]*kafkago.Writer),
	}
}

// PublishEvent writes a CloudEvent to the given topic, keyed by the event ID.
func (p *Producer) PublishEvent(ctx context.Context, topic string, event CloudEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal cloud event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.ID),
		Value: payload,
	}

	if err := p.writer(topic).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write to topic %s: %w", topic, err)
	}

	p.logger.Debug("event published",
		zap.String("topic", topic),
		zap.String("type", event.Type),
	)
	return nil
}

// Close closes all topic writers.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for _, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.writers = make(map[string]*kafkago.Writer)
	return firstErr
}

func (p *Producer) writer(topic string) *kafkago.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafkago.RequireOne,
	}
	p.writers[topic] = w
	return w
}

package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/segmentio/kafka-go"

	"github.com/fedexist/empatica-challenge/internal/config"
	"github.com/fedexist/empatica-challenge/internal/domain/health"
)

// messageWriter is the slice of the kafka-go writer API the sink needs.
// Abstracting it keeps the sink unit-testable without a broker.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSink publishes alerts to a Kafka topic as JSON messages keyed by
// device, so one device's alerts stay on one partition in order.
type KafkaSink struct {
	// writer delivers messages to the brokers.
	writer messageWriter
}

// NewKafkaSink creates a sink over the configured brokers and topic.
func NewKafkaSink(cfg *config.KafkaAlerts) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

// Publish sends the alert to the topic.
func (s *KafkaSink) Publish(ctx context.Context, alert health.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(alert.Device),
		Value: data,
	}

	if err := s.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("publish alert for %s: %w", alert.Device, err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (s *KafkaSink) Close() error {
	if closer, ok := s.writer.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

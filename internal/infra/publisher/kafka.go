// Package publisher delivers story change events to Kafka.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"djnml-feed/internal/resilience/circuitbreaker"
	"djnml-feed/internal/resilience/retry"
	"djnml-feed/internal/usecase/ingest"
	"djnml-feed/pkg/config"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures the Kafka writer.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	// BatchSize caps messages per request. 0 keeps the writer default.
	BatchSize int
}

// LoadKafkaConfigFromEnv reads KAFKA_BROKERS (comma-separated), KAFKA_TOPIC,
// KAFKA_BATCH_TIMEOUT and KAFKA_BATCH_SIZE.
func LoadKafkaConfigFromEnv() KafkaConfig {
	return KafkaConfig{
		Brokers:      config.GetEnvStringList("KAFKA_BROKERS", nil),
		Topic:        config.GetEnvString("KAFKA_TOPIC", ""),
		BatchTimeout: config.GetEnvDuration("KAFKA_BATCH_TIMEOUT", 50*time.Millisecond),
		BatchSize:    config.GetEnvInt("KAFKA_BATCH_SIZE", 0),
	}
}

// Enabled reports whether both brokers and a topic are configured.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0 && c.Topic != ""
}

// Validate checks an enabled configuration.
func (c KafkaConfig) Validate() error {
	var errs []error
	if len(c.Brokers) == 0 {
		errs = append(errs, errors.New("brokers: at least one broker is required"))
	}
	if c.Topic == "" {
		errs = append(errs, errors.New("topic: must not be empty"))
	}
	if err := config.ValidateDurationRange(c.BatchTimeout, time.Millisecond, 10*time.Second); err != nil {
		errs = append(errs, fmt.Errorf("batch timeout: %w", err))
	}
	if c.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("batch size: must not be negative, got %d", c.BatchSize))
	}
	return errors.Join(errs...)
}

// KafkaPublisher writes one message per event, keyed by story key so all
// changes to a story land on the same partition in order.
type KafkaPublisher struct {
	writer  MessageWriter
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config
}

// Option configures a KafkaPublisher.
type Option func(*KafkaPublisher)

// WithRetry replaces retry.PublishConfig.
func WithRetry(cfg retry.Config) Option {
	return func(p *KafkaPublisher) { p.retry = cfg }
}

// NewKafkaPublisher creates a publisher writing to cfg.Topic.
func NewKafkaPublisher(cfg KafkaConfig, opts ...Option) *KafkaPublisher {
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: cfg.BatchTimeout,
		BatchSize:    cfg.BatchSize,
		// retries are handled by WithBackoff
		MaxAttempts: 1,
	}
	return NewKafkaPublisherWithWriter(w, opts...)
}

// NewKafkaPublisherWithWriter wraps an existing writer.
func NewKafkaPublisherWithWriter(w MessageWriter, opts ...Option) *KafkaPublisher {
	p := &KafkaPublisher{
		writer:  w,
		breaker: circuitbreaker.New(circuitbreaker.PublishConfig()),
		retry:   retry.PublishConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish writes events as one batch.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...ingest.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		value, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", ev.Key, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(ev.Key),
			Value: value,
			Time:  ev.OccurredAt,
			Headers: []kafka.Header{
				{Key: "action", Value: []byte(ev.Action)},
				{Key: "run_id", Value: []byte(ev.RunID)},
			},
		})
	}

	err := p.breaker.Do(func() error {
		return retry.WithBackoff(ctx, p.retry, func() error {
			return p.writer.WriteMessages(ctx, msgs...)
		})
	})
	if err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	return nil
}

// BreakerOpen reports whether publishing is currently short-circuited.
func (p *KafkaPublisher) BreakerOpen() bool {
	return p.breaker.IsOpen()
}

// Close flushes pending writes.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

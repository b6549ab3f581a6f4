package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/finvault-backend/internal/config"
)

// EmailJobProducer publishes email ingestion jobs to the email topic.
// Messages are keyed by email id so re-deliveries of the same message land
// on the same partition.
type EmailJobProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewEmailJobProducer creates the producer and ensures the topic exists
func NewEmailJobProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*EmailJobProducer, error) {
	if cfg.EmailTopic == "" {
		return nil, fmt.Errorf("kafka email topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for email job producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.EmailTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure email topic %s exists: %w", cfg.EmailTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.EmailTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Using async for high throughput
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages asynchronously", "topic", cfg.EmailTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages asynchronously", "topic", cfg.EmailTopic, "count", len(messages))
			}
		},
	}

	return &EmailJobProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.EmailTopic,
	}, nil
}

// Publish marshals the value and writes it keyed by the given string.
func (p *EmailJobProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message value for email job producer: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish email job",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish email job to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published email job",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *EmailJobProducer) Close() error {
	p.logger.Info("Closing email job Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close email job kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}

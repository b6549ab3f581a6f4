package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finvault-backend/internal/domain/outbox"
	"github.com/finvault-backend/internal/domain/shared"
)

// KafkaPublisher is the slice of the notification producer the relay needs.
type KafkaPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// NotificationPublisher publishes outbox messages to the notification topic
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, message *outbox.Message) error
}

// NotificationPublisherImpl implements NotificationPublisher
type NotificationPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   KafkaPublisher
	logger     *slog.Logger
}

// NewNotificationPublisher creates a new publisher
func NewNotificationPublisher(
	outboxRepo outbox.Repository,
	producer KafkaPublisher,
	logger *slog.Logger,
) NotificationPublisher {
	return &NotificationPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishNotification pushes one outbox message to Kafka, keyed by the
// target user so one user's notifications stay ordered, and marks the row
// processed. Payloads that cannot be decoded are terminal failures, not
// retries.
func (p *NotificationPublisherImpl) PublishNotification(ctx context.Context, message *outbox.Message) error {
	event, err := message.GetNotificationEvent()
	if err != nil {
		p.logger.Error("Failed to unmarshal notification event from outbox payload",
			"outbox_id", message.ID, "event_id", message.EventID.String(), "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	if err := p.producer.Publish(ctx, event.UserID.String(), event); err != nil {
		return fmt.Errorf("failed to publish notification for outbox %d: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "event_id", message.EventID.String(), "error", err,
		)
		return fmt.Errorf("notification for outbox %d published but status update failed: %w", message.ID, err)
	}

	logger.Info("Outbox message successfully processed and marked as PROCESSED",
		"outbox_id", message.ID, "event_id", message.EventID.String())
	return nil
}

// Package consumer handles email job messages arriving from Kafka.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/finvault-backend/internal/domain/shared"
	"github.com/finvault-backend/internal/email_processor/service"
	"github.com/finvault-backend/internal/pipeline"
	"github.com/finvault-backend/internal/platform/messaging/producers"
)

// EmailEventHandler handles incoming email job messages from Kafka
type EmailEventHandler struct {
	processingService pipeline.ProcessingService
	attachments       *service.AttachmentProcessor
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewEmailEventHandler creates a new handler
func NewEmailEventHandler(
	logger *slog.Logger,
	processingService pipeline.ProcessingService,
	attachments *service.AttachmentProcessor,
	producer producers.DeadLetterPublisher,
) *EmailEventHandler {
	return &EmailEventHandler{
		processingService: processingService,
		attachments:       attachments,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes one Kafka message. Unprocessable messages go to
// the DLQ; pipeline failures are returned so Kafka redelivers.
func (h *EmailEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var job shared.EmailJob
	if err := json.Unmarshal(value, &job); err != nil {
		return h.sendToDLQ(ctx, key, value, "Failed to unmarshal email job from Kafka message", err)
	}
	if err := job.Validate(); err != nil {
		return h.sendToDLQ(ctx, key, value, "Email job failed validation", err)
	}

	logger := h.logger
	if job.CorrelationID != "" {
		logger = h.logger.With("correlation_id", job.CorrelationID)
	}

	logger.Info("Received email job for processing",
		"email_id", job.EmailID,
		"user_id", job.UserID.String(),
		"attachments", len(job.Attachments),
	)

	payload := h.attachments.BuildPayload(ctx, &job)

	result := h.processingService.ProcessFinancialEmail(ctx, job.UserID, payload)
	if result.Failed() {
		logger.Error("Failed to process email",
			"email_id", job.EmailID,
			"error", result.Error,
		)
		return fmt.Errorf("processing email %s failed: %s", job.EmailID, result.Error)
	}

	if !result.Processed {
		logger.Info("Email skipped",
			"email_id", job.EmailID,
			"reason", result.Reason,
			"classification", result.Classification,
		)
		return nil
	}

	logger.Info("Successfully processed email",
		"email_id", job.EmailID,
		"assets_created", len(result.AssetIDs),
	)
	return nil
}

// sendToDLQ parks an unprocessable message on the dead letter topic. When no
// DLQ is configured the original error is returned so Kafka retries.
func (h *EmailEventHandler) sendToDLQ(ctx context.Context, key, value []byte, msg string, cause error) error {
	h.logger.Error(msg, "error", cause, "message_key", string(key))

	if h.producer == nil {
		return fmt.Errorf("%s: %w", msg, cause)
	}

	reason := fmt.Sprintf("%s: %s", msg, cause.Error())
	if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, reason); dlqErr != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", dlqErr,
			"original_error", cause,
			"message_key", string(key),
		)
		return fmt.Errorf("%s: %w", msg, cause)
	}

	h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", reason)
	return nil
}

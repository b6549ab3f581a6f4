package shared

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType defines the event kinds pushed to connected clients
type NotificationType string

const (
	NotificationAssetCreated   NotificationType = "asset_created"
	NotificationAssetUpdated   NotificationType = "asset_updated"
	NotificationEmailProcessed NotificationType = "email_processed"
	NotificationEmailFailed    NotificationType = "email_failed"
)

// NotificationEvent defines the payload written to the outbox and relayed
// over Kafka to websocket subscribers
type NotificationEvent struct {
	EventID       uuid.UUID        `json:"event_id"`
	UserID        uuid.UUID        `json:"user_id"`
	Type          NotificationType `json:"type"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	AssetIDs      []uuid.UUID      `json:"asset_ids,omitempty"`
	TransactionID *uuid.UUID       `json:"transaction_id,omitempty"`
	CorrelationID string           `json:"correlation_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

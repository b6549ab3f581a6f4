package outbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finvault-backend/internal/domain/shared"
)

func TestNewMessage(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		event := &shared.NotificationEvent{
			EventID:   uuid.New(),
			UserID:    uuid.New(),
			Type:      shared.NotificationAssetCreated,
			Title:     "New assets extracted",
			Message:   "2 assets were extracted from HDFC statement",
			AssetIDs:  []uuid.UUID{uuid.New(), uuid.New()},
			CreatedAt: time.Now().Add(-time.Minute),
		}

		beforeCreation := time.Now()
		msg, err := NewMessage(event)
		afterCreation := time.Now()

		require.NoError(t, err)
		require.NotNil(t, msg)

		assert.Equal(t, event.EventID, msg.EventID)
		assert.Equal(t, event.UserID, msg.UserID)
		assert.Equal(t, shared.OutboxStatusPending, msg.Status)
		assert.Equal(t, 0, msg.Attempts)
		assert.Nil(t, msg.LastAttemptAt)
		assert.WithinDuration(t, beforeCreation, msg.CreatedAt, afterCreation.Sub(beforeCreation)+time.Millisecond)

		// Check payload
		var decodedEvent shared.NotificationEvent
		err = json.Unmarshal(msg.Payload, &decodedEvent)
		require.NoError(t, err)
		assert.Equal(t, event.EventID, decodedEvent.EventID)
		assert.Equal(t, event.AssetIDs, decodedEvent.AssetIDs)
	})
}

func TestMessage_IncrementAttempts(t *testing.T) {
	t.Run("SuccessfulIncrement", func(t *testing.T) {
		initialTime := time.Now().Add(-time.Hour)
		msg := &Message{
			Attempts:      1,
			LastAttemptAt: &initialTime,
		}
		initialAttempts := msg.Attempts

		time.Sleep(10 * time.Millisecond) // Ensure time changes
		beforeUpdate := time.Now()
		msg.IncrementAttempts()
		afterUpdate := time.Now()

		assert.Equal(t, initialAttempts+1, msg.Attempts)
		require.NotNil(t, msg.LastAttemptAt)
		assert.True(t, msg.LastAttemptAt.After(initialTime))
		assert.WithinDuration(t, beforeUpdate, *msg.LastAttemptAt, afterUpdate.Sub(beforeUpdate)+time.Millisecond)
	})
}

func TestMessage_MarkAsProcessed(t *testing.T) {
	t.Run("SuccessfulMarkAsProcessed", func(t *testing.T) {
		initialTime := time.Now().Add(-time.Hour)
		msg := &Message{
			Status:        shared.OutboxStatusPending,
			LastAttemptAt: &initialTime,
		}
		time.Sleep(10 * time.Millisecond) // Ensure time changes
		beforeUpdate := time.Now()
		msg.MarkAsProcessed()
		afterUpdate := time.Now()

		assert.Equal(t, shared.OutboxStatusProcessed, msg.Status)
		require.NotNil(t, msg.LastAttemptAt)
		assert.True(t, msg.LastAttemptAt.After(initialTime))
		assert.WithinDuration(t, beforeUpdate, *msg.LastAttemptAt, afterUpdate.Sub(beforeUpdate)+time.Millisecond)
	})
}

func TestMessage_MarkAsFailed(t *testing.T) {
	t.Run("SuccessfulMarkAsFailed", func(t *testing.T) {
		initialTime := time.Now().Add(-time.Hour)
		msg := &Message{
			Status:        shared.OutboxStatusPending,
			LastAttemptAt: &initialTime,
		}
		time.Sleep(10 * time.Millisecond) // Ensure time changes
		beforeUpdate := time.Now()
		msg.MarkAsFailed()
		afterUpdate := time.Now()

		assert.Equal(t, shared.OutboxStatusFailedToPublish, msg.Status)
		require.NotNil(t, msg.LastAttemptAt)
		assert.True(t, msg.LastAttemptAt.After(initialTime))
		assert.WithinDuration(t, beforeUpdate, *msg.LastAttemptAt, afterUpdate.Sub(beforeUpdate)+time.Millisecond)
	})
}

func TestMessage_GetNotificationEvent(t *testing.T) {
	t.Run("SuccessfulGetNotificationEvent", func(t *testing.T) {
		transactionID := uuid.New()
		originalEvent := &shared.NotificationEvent{
			EventID:       uuid.New(),
			UserID:        uuid.New(),
			Type:          shared.NotificationAssetUpdated,
			Title:         "Asset updated",
			Message:       "Balance changed by 1500.00",
			AssetIDs:      []uuid.UUID{uuid.New()},
			TransactionID: &transactionID,
			CreatedAt:     time.Now().Truncate(time.Millisecond), // Truncate for consistent comparison
		}
		payload, err := json.Marshal(originalEvent)
		require.NoError(t, err)

		msg := &Message{Payload: payload}
		decodedEvent, err := msg.GetNotificationEvent()

		require.NoError(t, err)
		require.NotNil(t, decodedEvent)
		assert.Equal(t, originalEvent.EventID, decodedEvent.EventID)
		assert.Equal(t, originalEvent.UserID, decodedEvent.UserID)
		assert.Equal(t, originalEvent.Type, decodedEvent.Type)
		assert.Equal(t, originalEvent.AssetIDs, decodedEvent.AssetIDs)
		assert.Equal(t, originalEvent.TransactionID, decodedEvent.TransactionID)
		assert.True(t, originalEvent.CreatedAt.Equal(decodedEvent.CreatedAt), "CreatedAt should match")
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		msg := &Message{Payload: []byte("not-json")}
		event, err := msg.GetNotificationEvent()

		assert.Error(t, err)
		assert.Nil(t, event)
	})
}

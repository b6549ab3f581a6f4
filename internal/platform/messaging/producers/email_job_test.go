package producers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finvault-backend/internal/domain/shared"
)

// MockKafkaWriter mocks KafkaWriter interface
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestEmailJobProducer_Publish(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	topic := "test-email-jobs"
	ctx := context.Background()

	t.Run("SuccessfulPublish", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &EmailJobProducer{
			logger: logger,
			writer: mockWriter,
			topic:  topic,
		}

		key := "gmail-msg-42"
		value := &shared.EmailJob{
			JobID:   uuid.New(),
			UserID:  uuid.New(),
			EmailID: key,
			Subject: "Credit Card Statement",
		}
		expectedJSONValue, _ := json.Marshal(value)

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			msg := msgs[0]
			return string(msg.Key) == key && string(msg.Value) == string(expectedJSONValue)
		})).Return(nil).Once()

		err := producer.Publish(ctx, key, value)
		require.NoError(t, err)
		mockWriter.AssertExpectations(t)
	})

	t.Run("PublishReturnsErrorOnWriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &EmailJobProducer{
			logger: logger,
			writer: mockWriter,
			topic:  topic,
		}

		key := "test-key-fail"
		value := map[string]string{"data": "test-data"}
		writerError := errors.New("kafka write error")

		mockWriter.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).Return(writerError).Once()

		err := producer.Publish(ctx, key, value)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "kafka write error"))
		mockWriter.AssertExpectations(t)
	})

	t.Run("PublishReturnsErrorOnMarshalError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &EmailJobProducer{
			logger: logger,
			writer: mockWriter,
			topic:  topic,
		}

		// Channels cannot be marshaled to JSON
		err := producer.Publish(ctx, "key", make(chan int))
		require.Error(t, err)
		mockWriter.AssertNotCalled(t, "WriteMessages")
	})
}

func TestNotificationProducer_Publish(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	topic := "test-notifications"
	ctx := context.Background()

	t.Run("SuccessfulPublish", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &NotificationProducer{
			logger: logger,
			writer: mockWriter,
			topic:  topic,
		}

		userID := uuid.New()
		value := &shared.NotificationEvent{
			EventID: uuid.New(),
			UserID:  userID,
			Type:    shared.NotificationEmailProcessed,
			Title:   "Email processed",
		}
		expectedJSONValue, _ := json.Marshal(value)

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			msg := msgs[0]
			return string(msg.Key) == userID.String() && string(msg.Value) == string(expectedJSONValue)
		})).Return(nil).Once()

		err := producer.Publish(ctx, userID.String(), value)
		require.NoError(t, err)
		mockWriter.AssertExpectations(t)
	})

	t.Run("PublishReturnsErrorOnWriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &NotificationProducer{
			logger: logger,
			writer: mockWriter,
			topic:  topic,
		}

		writerError := errors.New("broker unavailable")
		mockWriter.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).Return(writerError).Once()

		err := producer.Publish(ctx, "user-1", map[string]string{"ok": "true"})
		require.Error(t, err)
		mockWriter.AssertExpectations(t)
	})
}

func TestEmailJobProducer_Close(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	mockWriter := new(MockKafkaWriter)
	producer := &EmailJobProducer{logger: logger, writer: mockWriter, topic: "t"}

	mockWriter.On("Close").Return(nil).Once()
	require.NoError(t, producer.Close())
	mockWriter.AssertExpectations(t)
}

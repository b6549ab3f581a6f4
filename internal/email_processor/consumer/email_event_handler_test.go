package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/finvault-backend/internal/domain/shared"
	"github.com/finvault-backend/internal/email_processor/service"
)

// Mock implementations of the dependencies

type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessFinancialEmail(ctx context.Context, userID uuid.UUID, payload *shared.EmailPayload) *shared.ProcessResult {
	args := m.Called(ctx, userID, payload)
	return args.Get(0).(*shared.ProcessResult)
}

func (m *MockProcessingService) UpdateFinancialEmail(ctx context.Context, userID, assetID uuid.UUID, payload *shared.EmailPayload) *shared.UpdateResult {
	args := m.Called(ctx, userID, assetID, payload)
	return args.Get(0).(*shared.UpdateResult)
}

type MockDLQ struct {
	mock.Mock
}

func (m *MockDLQ) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	args := m.Called(ctx, key, originalMessageValue, reason)
	return args.Error(0)
}

func (m *MockDLQ) Close() error {
	return nil
}

// Jobs in these tests carry no attachments, so the attachment processor
// never touches its store or extractor.
func bareAttachmentProcessor() *service.AttachmentProcessor {
	return service.NewAttachmentProcessor(nil, nil, nil, slog.Default())
}

func validJob(t *testing.T) []byte {
	t.Helper()
	job := shared.EmailJob{
		JobID:         uuid.New(),
		UserID:        uuid.New(),
		EmailID:       "msg-1",
		Subject:       "Statement",
		Sender:        "bank@example.com",
		Body:          "see attached",
		EmailDate:     time.Now(),
		CorrelationID: "corr-1",
		Timestamp:     time.Now(),
	}
	data, err := json.Marshal(job)
	assert.NoError(t, err)
	return data
}

func TestEmailEventHandler_HandleMessage(t *testing.T) {
	logger := slog.Default()

	t.Run("processes a valid job", func(t *testing.T) {
		svc := &MockProcessingService{}
		handler := NewEmailEventHandler(logger, svc, bareAttachmentProcessor(), nil)

		svc.On("ProcessFinancialEmail", mock.Anything, mock.Anything, mock.Anything).
			Return(&shared.ProcessResult{Processed: true}).Once()

		err := handler.HandleMessage(context.Background(), []byte("msg-1"), validJob(t))

		assert.NoError(t, err)
		svc.AssertExpectations(t)
	})

	t.Run("skipped email commits the offset", func(t *testing.T) {
		svc := &MockProcessingService{}
		handler := NewEmailEventHandler(logger, svc, bareAttachmentProcessor(), nil)

		svc.On("ProcessFinancialEmail", mock.Anything, mock.Anything, mock.Anything).
			Return(&shared.ProcessResult{Reason: "email is not financial"}).Once()

		err := handler.HandleMessage(context.Background(), []byte("msg-1"), validJob(t))

		assert.NoError(t, err)
	})

	t.Run("pipeline failure is returned for redelivery", func(t *testing.T) {
		svc := &MockProcessingService{}
		handler := NewEmailEventHandler(logger, svc, bareAttachmentProcessor(), nil)

		svc.On("ProcessFinancialEmail", mock.Anything, mock.Anything, mock.Anything).
			Return(&shared.ProcessResult{Error: "db down"}).Once()

		err := handler.HandleMessage(context.Background(), []byte("msg-1"), validJob(t))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
	})

	t.Run("unmarshal failure goes to the DLQ", func(t *testing.T) {
		svc := &MockProcessingService{}
		dlq := &MockDLQ{}
		handler := NewEmailEventHandler(logger, svc, bareAttachmentProcessor(), dlq)

		dlq.On("PublishToDLQ", mock.Anything, "bad-key", mock.Anything, mock.Anything).Return(nil).Once()

		err := handler.HandleMessage(context.Background(), []byte("bad-key"), []byte(`{not json`))

		assert.NoError(t, err)
		dlq.AssertExpectations(t)
		svc.AssertNotCalled(t, "ProcessFinancialEmail", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unmarshal failure without DLQ is returned", func(t *testing.T) {
		svc := &MockProcessingService{}
		handler := NewEmailEventHandler(logger, svc, bareAttachmentProcessor(), nil)

		err := handler.HandleMessage(context.Background(), []byte("bad-key"), []byte(`{not json`))

		assert.Error(t, err)
	})

	t.Run("invalid job goes to the DLQ", func(t *testing.T) {
		svc := &MockProcessingService{}
		dlq := &MockDLQ{}
		handler := NewEmailEventHandler(logger, svc, bareAttachmentProcessor(), dlq)

		// Missing user id fails validation.
		job, err := json.Marshal(shared.EmailJob{JobID: uuid.New(), EmailID: "msg-2"})
		assert.NoError(t, err)

		dlq.On("PublishToDLQ", mock.Anything, "msg-2", mock.Anything, mock.Anything).Return(nil).Once()

		handleErr := handler.HandleMessage(context.Background(), []byte("msg-2"), job)

		assert.NoError(t, handleErr)
		dlq.AssertExpectations(t)
	})

	t.Run("DLQ failure falls back to redelivery", func(t *testing.T) {
		svc := &MockProcessingService{}
		dlq := &MockDLQ{}
		handler := NewEmailEventHandler(logger, svc, bareAttachmentProcessor(), dlq)

		dlq.On("PublishToDLQ", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("dlq down")).Once()

		err := handler.HandleMessage(context.Background(), []byte("k"), []byte(`{not json`))

		assert.Error(t, err)
	})
}

package outbox_poller

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/finvault-backend/internal/config"
	"github.com/finvault-backend/internal/domain/outbox"
	"github.com/finvault-backend/internal/domain/shared"
)

type MockNotificationPublisher struct {
	mock.Mock
}

func (m *MockNotificationPublisher) PublishNotification(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func pollerConfig() *config.OutboxConfig {
	return &config.OutboxConfig{
		PollingInterval:  10 * time.Millisecond,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}
}

func TestPoller_ProcessPendingMessages(t *testing.T) {
	logger := slog.Default()

	t.Run("no pending messages is a no-op", func(t *testing.T) {
		repo := &MockOutboxRepo{}
		publisher := &MockNotificationPublisher{}
		poller := NewPoller(pollerConfig(), repo, publisher, logger)

		repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{}, nil).Once()

		err := poller.processPendingMessages(context.Background())

		assert.NoError(t, err)
		publisher.AssertNotCalled(t, "PublishNotification", mock.Anything, mock.Anything)
	})

	t.Run("publishes each pending message", func(t *testing.T) {
		repo := &MockOutboxRepo{}
		publisher := &MockNotificationPublisher{}
		poller := NewPoller(pollerConfig(), repo, publisher, logger)

		first := pendingMessage(t, testEvent())
		second := pendingMessage(t, testEvent())
		second.ID = 43

		repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{first, second}, nil).Once()
		publisher.On("PublishNotification", mock.Anything, first).Return(nil).Once()
		publisher.On("PublishNotification", mock.Anything, second).Return(nil).Once()

		err := poller.processPendingMessages(context.Background())

		assert.NoError(t, err)
		publisher.AssertExpectations(t)
	})

	t.Run("failure increments attempts", func(t *testing.T) {
		repo := &MockOutboxRepo{}
		publisher := &MockNotificationPublisher{}
		poller := NewPoller(pollerConfig(), repo, publisher, logger)

		msg := pendingMessage(t, testEvent())
		msg.Attempts = 0

		repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{msg}, nil).Once()
		publisher.On("PublishNotification", mock.Anything, msg).Return(errors.New("broker down")).Once()
		repo.On("IncrementAttempts", mock.Anything, msg.ID).Return(nil).Once()

		err := poller.processPendingMessages(context.Background())

		assert.NoError(t, err)
		repo.AssertExpectations(t)
		// Well below max attempts, so no terminal status yet.
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, msg.ID, shared.OutboxStatusFailedToPublish)
	})

	t.Run("max attempts marks the message failed", func(t *testing.T) {
		repo := &MockOutboxRepo{}
		publisher := &MockNotificationPublisher{}
		poller := NewPoller(pollerConfig(), repo, publisher, logger)

		msg := pendingMessage(t, testEvent())
		msg.Attempts = 2 // third failure hits the limit

		repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{msg}, nil).Once()
		publisher.On("PublishNotification", mock.Anything, msg).Return(errors.New("broker down")).Once()
		repo.On("IncrementAttempts", mock.Anything, msg.ID).Return(nil).Once()
		repo.On("UpdateStatus", mock.Anything, msg.ID, shared.OutboxStatusFailedToPublish).Return(nil).Once()

		err := poller.processPendingMessages(context.Background())

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("fetch error is surfaced", func(t *testing.T) {
		repo := &MockOutboxRepo{}
		publisher := &MockNotificationPublisher{}
		poller := NewPoller(pollerConfig(), repo, publisher, logger)

		repo.On("GetPending", mock.Anything, 10).Return(nil, errors.New("db down")).Once()

		err := poller.processPendingMessages(context.Background())

		assert.Error(t, err)
	})
}

func TestPoller_StartStopsOnCancel(t *testing.T) {
	repo := &MockOutboxRepo{}
	publisher := &MockNotificationPublisher{}
	poller := NewPoller(pollerConfig(), repo, publisher, slog.Default())

	repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{}, nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}

package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/finvault-backend/internal/domain/outbox"
	"github.com/finvault-backend/internal/domain/shared"
	"github.com/finvault-backend/internal/pipeline"
)

// NotifierImpl writes notification events into the transactional outbox so
// they are published if and only if the pipeline's writes commit.
type NotifierImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewNotifier(outboxRepo outbox.Repository, logger *slog.Logger) pipeline.Notifier {
	return &NotifierImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// NotifyInTx stores the event in the outbox within the given transaction.
func (n *NotifierImpl) NotifyInTx(ctx context.Context, tx pgx.Tx, event *shared.NotificationEvent) error {
	message, err := outbox.NewMessage(event)
	if err != nil {
		return fmt.Errorf("failed to build outbox message: %w", err)
	}

	if err := n.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
		return fmt.Errorf("failed to create outbox entry: %w", err)
	}

	n.logger.Debug("Notification queued in outbox",
		"event_id", event.EventID.String(),
		"type", string(event.Type),
	)
	return nil
}

package components

import (
	"log/slog"

	"github.com/finvault-backend/internal/ai"
	"github.com/finvault-backend/internal/domain/asset"
	"github.com/finvault-backend/internal/domain/document"
	"github.com/finvault-backend/internal/domain/outbox"
	"github.com/finvault-backend/internal/domain/transaction"
	"github.com/finvault-backend/internal/pipeline"
)

// CreateProcessingService wires a ProcessingService with its components.
// Both binaries use this: the API runs it synchronously for direct uploads,
// the email processor wraps it in a worker pool.
func CreateProcessingService(
	pgDB pipeline.TxRunner,
	gateway ai.Gateway,
	assetRepo asset.Repository,
	transactionRepo transaction.Repository,
	documentRepo document.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
) pipeline.ProcessingService {
	builder := NewAssetBuilder(logger)
	merger := NewAssetMerger(logger)
	composer := NewTransactionComposer(logger)
	notifier := NewNotifier(outboxRepo, logger)

	return pipeline.NewProcessingService(
		pgDB,
		gateway,
		assetRepo,
		transactionRepo,
		documentRepo,
		builder,
		merger,
		composer,
		notifier,
		logger,
	)
}

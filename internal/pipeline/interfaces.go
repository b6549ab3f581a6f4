// Package pipeline is the ingestion core: it classifies an email, runs AI
// analysis over its body and attachments, and persists the outcome as Asset
// and Transaction rows plus best-effort document records. Its public methods
// never return errors; every failure is folded into the result struct.
package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/finvault-backend/internal/ai"
	"github.com/finvault-backend/internal/domain/asset"
	"github.com/finvault-backend/internal/domain/shared"
	"github.com/finvault-backend/internal/domain/transaction"
)

// ProcessingService defines the interface for running the ingestion pipeline.
type ProcessingService interface {
	// ProcessFinancialEmail ingests one email: classification, analysis,
	// asset and transaction creation. Never returns an error; inspect the
	// result's Processed/Error fields.
	ProcessFinancialEmail(ctx context.Context, userID uuid.UUID, payload *shared.EmailPayload) *shared.ProcessResult

	// UpdateFinancialEmail re-runs analysis against an existing asset and
	// merges the outcome non-destructively.
	UpdateFinancialEmail(ctx context.Context, userID, assetID uuid.UUID, payload *shared.EmailPayload) *shared.UpdateResult
}

// TxRunner executes a function inside a single database transaction,
// rolling back when the function returns an error.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// AssetBuilder constructs new assets from analysis output on the create path
type AssetBuilder interface {
	Build(userID uuid.UUID, payload *shared.EmailPayload, att *shared.AttachmentContent,
		emailAnalysis *ai.EmailAnalysis, docAnalysis *ai.DocumentAnalysis) (*asset.Asset, error)
}

// AssetMerger derives an update patch from fresh analysis output, keeping
// stored values wherever the new analysis produced nothing
type AssetMerger interface {
	BuildPatch(existing *asset.Asset, emailAnalysis *ai.EmailAnalysis, docAnalysis *ai.DocumentAnalysis) *asset.Patch
}

// TransactionComposer builds and refreshes the per-email transaction record
type TransactionComposer interface {
	Compose(userID uuid.UUID, payload *shared.EmailPayload, analysis *ai.EmailAnalysis,
		assetIDs []uuid.UUID) (*transaction.Transaction, error)
	Refresh(existing *transaction.Transaction, payload *shared.EmailPayload,
		analysis *ai.EmailAnalysis, assetIDs []uuid.UUID)
}

// Notifier writes notification events to the transactional outbox
type Notifier interface {
	NotifyInTx(ctx context.Context, tx pgx.Tx, event *shared.NotificationEvent) error
}

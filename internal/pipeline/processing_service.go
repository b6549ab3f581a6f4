package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/finvault-backend/internal/ai"
	"github.com/finvault-backend/internal/classifier"
	"github.com/finvault-backend/internal/domain/asset"
	"github.com/finvault-backend/internal/domain/document"
	"github.com/finvault-backend/internal/domain/shared"
	"github.com/finvault-backend/internal/domain/transaction"
)

// lowConfidenceThreshold marks analyses worth flagging in the logs. It is
// deliberately not enforced: low-confidence data is stored and surfaced for
// manual correction instead of being dropped.
const lowConfidenceThreshold = 0.40

// contentPreviewLimit caps the extracted-text preview stored on document
// records.
const contentPreviewLimit = 500

type ProcessingServiceImpl struct {
	pgDB            TxRunner
	gateway         ai.Gateway
	assetRepo       asset.Repository
	transactionRepo transaction.Repository
	documentRepo    document.Repository
	builder         AssetBuilder
	merger          AssetMerger
	composer        TransactionComposer
	notifier        Notifier
	logger          *slog.Logger
}

func NewProcessingService(
	pgDB TxRunner,
	gateway ai.Gateway,
	assetRepo asset.Repository,
	transactionRepo transaction.Repository,
	documentRepo document.Repository,
	builder AssetBuilder,
	merger AssetMerger,
	composer TransactionComposer,
	notifier Notifier,
	logger *slog.Logger,
) ProcessingService {
	return &ProcessingServiceImpl{
		pgDB:            pgDB,
		gateway:         gateway,
		assetRepo:       assetRepo,
		transactionRepo: transactionRepo,
		documentRepo:    documentRepo,
		builder:         builder,
		merger:          merger,
		composer:        composer,
		notifier:        notifier,
		logger:          logger,
	}
}

// ProcessFinancialEmail runs the create path: classify, analyze, build one
// asset per attachment, create the transaction, back-link the assets, all
// inside one database transaction. Nothing is written when classification
// says the email is not financial.
func (s *ProcessingServiceImpl) ProcessFinancialEmail(ctx context.Context, userID uuid.UUID, payload *shared.EmailPayload) (result *shared.ProcessResult) {
	logger := s.requestLogger(payload.CorrelationID)

	defer func() {
		if p := recover(); p != nil {
			logger.Error("Panic recovered in email processing", "panic", p, "email_id", payload.EmailID)
			result = &shared.ProcessResult{Error: fmt.Sprintf("internal error: %v", p)}
		}
	}()

	logger.Info("Processing financial email", "email_id", payload.EmailID, "attachments", len(payload.Attachments))

	// 1. Classification gate. A negative verdict means zero writes.
	classification, err := s.gateway.ClassifyEmailContent(ctx, payload.Body)
	if err != nil {
		logger.Error("Email classification failed", "email_id", payload.EmailID, "error", err)
		return &shared.ProcessResult{Error: fmt.Sprintf("classification failed: %v", err)}
	}
	if !classification.IsFinancial {
		logger.Info("Email classified as non-financial, skipping",
			"email_id", payload.EmailID,
			"confidence", classification.Confidence,
		)
		return &shared.ProcessResult{
			Reason:         "email is not financial",
			Classification: classification.Category,
			Confidence:     classification.Confidence,
		}
	}

	// 2. Full email analysis. A gateway failure here degrades to an empty
	// analysis carrying an issue flag; ingestion continues with whatever
	// the attachments yield.
	emailAnalysis := s.analyzeEmail(ctx, logger, payload)

	// 3. Per-attachment document analysis and asset construction.
	assets, issues := s.buildAssets(ctx, logger, userID, payload, emailAnalysis)

	assetIDs := make([]uuid.UUID, 0, len(assets))
	for _, a := range assets {
		assetIDs = append(assetIDs, a.ID)
	}

	// 4. Transaction record for the email itself.
	txn, err := s.composer.Compose(userID, payload, emailAnalysis, assetIDs)
	if err != nil {
		logger.Error("Failed to compose transaction", "email_id", payload.EmailID, "error", err)
		return &shared.ProcessResult{Error: fmt.Sprintf("failed to compose transaction: %v", err)}
	}

	// 5. Atomic persistence: assets, transaction, back-links, notification.
	err = s.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		assetRepo := s.assetRepo.WithTx(tx)
		for _, a := range assets {
			if err := assetRepo.Create(ctx, a); err != nil {
				return err
			}
		}
		if err := s.transactionRepo.WithTx(tx).Create(ctx, txn); err != nil {
			return err
		}
		if err := assetRepo.LinkTransaction(ctx, assetIDs, txn.ID); err != nil {
			return err
		}
		return s.notifier.NotifyInTx(ctx, tx, &shared.NotificationEvent{
			EventID:       uuid.New(),
			UserID:        userID,
			Type:          shared.NotificationEmailProcessed,
			Title:         "Email processed",
			Message:       fmt.Sprintf("Processed %q: %d asset(s) extracted", payload.Subject, len(assets)),
			AssetIDs:      assetIDs,
			TransactionID: &txn.ID,
			CorrelationID: payload.CorrelationID,
			CreatedAt:     time.Now(),
		})
	})
	if err != nil {
		logger.Error("Failed to persist email processing results", "email_id", payload.EmailID, "error", err)
		return &shared.ProcessResult{Error: fmt.Sprintf("failed to persist results: %v", err)}
	}

	// 6. Document records are best-effort bookkeeping after the commit.
	s.recordDocuments(ctx, logger, userID, payload, assets, txn.ID)

	logger.Info("Email processed",
		"email_id", payload.EmailID,
		"transaction_id", txn.ID.String(),
		"assets_created", len(assets),
		"issues", len(issues),
	)

	return &shared.ProcessResult{
		Processed:      true,
		TransactionID:  &txn.ID,
		AssetIDs:       assetIDs,
		Summary:        emailAnalysis.Summary,
		KeyPoints:      emailAnalysis.KeyPoints,
		Confidence:     emailAnalysis.Confidence,
		Classification: classification.Category,
	}
}

// UpdateFinancialEmail runs the update path: re-analyze the email against an
// existing asset, append a history snapshot, merge non-destructively, and
// refresh the linked transaction in place. No asset or transaction rows are
// ever created here; an asset without a linked transaction keeps none.
func (s *ProcessingServiceImpl) UpdateFinancialEmail(ctx context.Context, userID, assetID uuid.UUID, payload *shared.EmailPayload) (result *shared.UpdateResult) {
	logger := s.requestLogger(payload.CorrelationID)

	defer func() {
		if p := recover(); p != nil {
			logger.Error("Panic recovered in email update", "panic", p, "asset_id", assetID.String())
			result = &shared.UpdateResult{Error: fmt.Sprintf("internal error: %v", p)}
		}
	}()

	logger.Info("Updating asset from email", "asset_id", assetID.String(), "email_id", payload.EmailID)

	existing, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		var notFound asset.ErrAssetNotFound
		if errors.As(err, &notFound) {
			return &shared.UpdateResult{Error: "asset not found"}
		}
		logger.Error("Failed to load asset", "asset_id", assetID.String(), "error", err)
		return &shared.UpdateResult{Error: fmt.Sprintf("failed to load asset: %v", err)}
	}
	if existing.UserID != userID {
		logger.Warn("Asset ownership mismatch on update",
			"asset_id", assetID.String(), "owner", existing.UserID.String(), "caller", userID.String())
		return &shared.UpdateResult{Error: "asset does not belong to user"}
	}

	emailAnalysis := s.analyzeEmail(ctx, logger, payload)

	var docAnalysis *ai.DocumentAnalysis
	if len(payload.Attachments) > 0 {
		docAnalysis = s.analyzeDocument(ctx, logger, &payload.Attachments[0])
	} else {
		docAnalysis = &ai.DocumentAnalysis{}
	}

	// History first: snapshot the values about to be overwritten. The list
	// is append-only across the asset's lifetime.
	existing.RecordUpdate(payload.EmailID, payload.Subject)

	patch := s.merger.BuildPatch(existing, emailAnalysis, docAnalysis)
	merged := asset.Merge(existing, patch)
	merged.Metadata.EmailAnalysis = emailAnalysis.Raw
	if docAnalysis.Raw != nil {
		merged.Metadata.DocumentAnalysis = docAnalysis.Raw
	}
	merged.Metadata.ExtractedAt = time.Now().UTC()

	changes := &shared.UpdateChanges{
		BalanceChange: existing.BalanceChange(merged.Balance),
		StatusChange:  merged.Status != existing.Status,
		UpdatedFields: patch.Fields(),
	}

	var linkedTxnID *uuid.UUID
	err = s.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.assetRepo.WithTx(tx).Update(ctx, merged); err != nil {
			return err
		}

		if merged.TransactionID != nil {
			txnRepo := s.transactionRepo.WithTx(tx)
			txn, err := txnRepo.GetByID(ctx, *merged.TransactionID)
			if err != nil {
				return err
			}
			s.composer.Refresh(txn, payload, emailAnalysis, []uuid.UUID{merged.ID})
			if err := txnRepo.Update(ctx, txn); err != nil {
				return err
			}
			linkedTxnID = &txn.ID
		} else {
			// Known asymmetry with the create path: no transaction is
			// created when the asset has none linked.
			s.logger.Warn("Asset has no linked transaction, skipping transaction update",
				"asset_id", merged.ID.String())
		}

		return s.notifier.NotifyInTx(ctx, tx, &shared.NotificationEvent{
			EventID:       uuid.New(),
			UserID:        userID,
			Type:          shared.NotificationAssetUpdated,
			Title:         "Asset updated",
			Message:       fmt.Sprintf("Asset %q refreshed from email %q", merged.Name, payload.Subject),
			AssetIDs:      []uuid.UUID{merged.ID},
			TransactionID: linkedTxnID,
			CorrelationID: payload.CorrelationID,
			CreatedAt:     time.Now(),
		})
	})
	if err != nil {
		logger.Error("Failed to persist asset update", "asset_id", assetID.String(), "error", err)
		return &shared.UpdateResult{Error: fmt.Sprintf("failed to persist update: %v", err)}
	}

	logger.Info("Asset updated",
		"asset_id", merged.ID.String(),
		"balance_change", changes.BalanceChange,
		"fields", len(changes.UpdatedFields),
	)

	return &shared.UpdateResult{
		Updated:       true,
		AssetID:       merged.ID,
		TransactionID: linkedTxnID,
		Changes:       changes,
	}
}

// analyzeEmail runs the email-level analysis, degrading to an empty result
// with an issue flag when the gateway fails. Low confidence is logged but
// never blocks persistence.
func (s *ProcessingServiceImpl) analyzeEmail(ctx context.Context, logger *slog.Logger, payload *shared.EmailPayload) *ai.EmailAnalysis {
	attachments := make([]ai.AttachmentText, 0, len(payload.Attachments))
	documentType := string(shared.DocumentTypeOther)
	for i, att := range payload.Attachments {
		attachments = append(attachments, ai.AttachmentText{Filename: att.Filename, Content: att.Content})
		if i == 0 {
			documentType = guessTypeForPrompt(att.Filename)
		}
	}

	analysis, err := s.gateway.AnalyzeFinancialEmail(ctx, &ai.EmailAnalysisRequest{
		Subject:      payload.Subject,
		Sender:       payload.Sender,
		Body:         payload.Body,
		Attachments:  attachments,
		DocumentType: documentType,
	})
	if err != nil {
		logger.Warn("Email analysis failed, continuing with empty analysis",
			"email_id", payload.EmailID, "error", err)
		return &ai.EmailAnalysis{
			Issues:         []string{"email analysis failed: " + err.Error()},
			RequiredFields: []string{"merchant", "amount", "category"},
		}
	}

	if analysis.Confidence > 0 && analysis.Confidence < lowConfidenceThreshold {
		logger.Warn("Low confidence email analysis, storing anyway",
			"email_id", payload.EmailID,
			"confidence", analysis.Confidence,
		)
	}

	return analysis
}

// analyzeDocument runs the attachment-level analysis, degrading to an empty
// result carrying an issue flag on failure.
func (s *ProcessingServiceImpl) analyzeDocument(ctx context.Context, logger *slog.Logger, att *shared.AttachmentContent) *ai.DocumentAnalysis {
	analysis, err := s.gateway.AnalyzePDFDocument(ctx, &ai.DocumentAnalysisRequest{
		Filename:     att.Filename,
		Text:         att.Content,
		DocumentType: guessTypeForPrompt(att.Filename),
		MimeType:     att.MimeType,
		PDFData:      att.Data,
	})
	if err != nil {
		logger.Warn("Document analysis failed, continuing with empty analysis",
			"filename", att.Filename, "error", err)
		return &ai.DocumentAnalysis{
			Issues: []string{"document analysis failed: " + err.Error()},
		}
	}
	return analysis
}

// buildAssets creates one asset per attachment. A failing attachment is
// logged and skipped; partial success is the norm.
func (s *ProcessingServiceImpl) buildAssets(
	ctx context.Context,
	logger *slog.Logger,
	userID uuid.UUID,
	payload *shared.EmailPayload,
	emailAnalysis *ai.EmailAnalysis,
) ([]*asset.Asset, []string) {
	var assets []*asset.Asset
	var issues []string

	for i := range payload.Attachments {
		att := &payload.Attachments[i]

		docAnalysis := s.analyzeDocument(ctx, logger, att)

		a, err := s.builder.Build(userID, payload, att, emailAnalysis, docAnalysis)
		if err != nil {
			logger.Warn("Skipping attachment, asset construction failed",
				"filename", att.Filename, "error", err)
			issues = append(issues, fmt.Sprintf("attachment %s skipped: %v", att.Filename, err))
			continue
		}
		assets = append(assets, a)
	}

	return assets, issues
}

// recordDocuments writes processed document records to Mongo. Failures are
// logged, never surfaced: the relational rows are already committed.
func (s *ProcessingServiceImpl) recordDocuments(
	ctx context.Context,
	logger *slog.Logger,
	userID uuid.UUID,
	payload *shared.EmailPayload,
	assets []*asset.Asset,
	transactionID uuid.UUID,
) {
	if s.documentRepo == nil {
		return
	}

	for _, a := range assets {
		preview := a.FileContent
		if len(preview) > contentPreviewLimit {
			preview = preview[:contentPreviewLimit]
		}

		assetID := a.ID
		txnID := transactionID
		record := &document.Record{
			DocumentID:       uuid.New(),
			UserID:           userID,
			AssetID:          &assetID,
			TransactionID:    &txnID,
			Kind:             shared.DocumentKindProcessed,
			FileName:         a.FileName,
			MimeType:         a.MimeType,
			SizeBytes:        a.FileSize,
			Source:           documentSource(payload),
			EmailID:          payload.EmailID,
			ExtractionMethod: a.Metadata.ExtractionMethod,
			QualityScore:     a.Metadata.QualityScore,
			QualityStatus:    a.Metadata.QualityStatus,
			ContentPreview:   preview,
			Status:           shared.DocumentStatusProcessed,
			CreatedAt:        time.Now().UTC(),
		}

		if err := s.documentRepo.Create(ctx, record); err != nil {
			logger.Warn("Failed to store document record",
				"file_name", a.FileName, "error", err)
		}
	}
}

func (s *ProcessingServiceImpl) requestLogger(correlationID string) *slog.Logger {
	if correlationID != "" {
		return s.logger.With("correlation_id", correlationID)
	}
	return s.logger
}

func documentSource(payload *shared.EmailPayload) shared.DocumentSource {
	if payload.Sender == "" && payload.Recipient == "" {
		return shared.DocumentSourceUpload
	}
	return shared.DocumentSourceGmail
}

func guessTypeForPrompt(filename string) string {
	return string(classifier.GuessDocumentType(filename))
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finvault-backend/internal/ai"
	"github.com/finvault-backend/internal/domain/shared"
	"github.com/finvault-backend/internal/extraction"
	"github.com/finvault-backend/internal/pipeline"
	"github.com/finvault-backend/internal/platform/storage"
)

// UploadServiceImpl implements the UploadService interface. Direct uploads
// run the same pipeline as ingested emails, wrapped in a synthetic payload
// with an empty sender and recipient.
type UploadServiceImpl struct {
	store     storage.ObjectStore
	extractor *extraction.Service
	resolver  *extraction.PasswordResolver
	processor pipeline.ProcessingService
	logger    *slog.Logger
}

// NewUploadService creates a new upload service
func NewUploadService(
	store storage.ObjectStore,
	extractor *extraction.Service,
	resolver *extraction.PasswordResolver,
	processor pipeline.ProcessingService,
	logger *slog.Logger,
) UploadService {
	return &UploadServiceImpl{
		store:     store,
		extractor: extractor,
		resolver:  resolver,
		processor: processor,
		logger:    logger,
	}
}

// ProcessUpload stores the raw bytes, resolves password protection,
// extracts text and runs the pipeline synchronously. The request blocks
// until the pipeline finishes; the handler owns the timeout.
func (s *UploadServiceImpl) ProcessUpload(ctx context.Context, userID uuid.UUID, upload *Upload) (*shared.ProcessResult, error) {
	req := extraction.Request{
		Data:     upload.Data,
		Filename: upload.Filename,
		MimeType: upload.MimeType,
		Password: upload.Password,
	}

	outcome := s.resolver.Resolve(ctx, req, &ai.PasswordGuessRequest{
		Subject: upload.Filename,
		UserID:  userID,
	})
	if outcome.IsLocked && !outcome.CanOpen {
		return nil, ErrDocumentLocked{Outcome: outcome}
	}

	result := outcome.Result
	if result == nil {
		if outcome.Password != "" {
			req.Password = outcome.Password
		}
		result = s.extractor.ExtractContent(ctx, req)
	}
	quality := extraction.AssessQuality(result.Text, len(upload.Data))

	storageURI := s.uploadRaw(ctx, userID, upload)

	emailID := "upload-" + uuid.New().String()
	payload := &shared.EmailPayload{
		EmailID:       emailID,
		Subject:       upload.Filename,
		EmailDate:     time.Now(),
		CorrelationID: uuid.New().String(),
		Attachments: []shared.AttachmentContent{
			{
				Filename:         upload.Filename,
				MimeType:         upload.MimeType,
				Size:             upload.Size,
				Content:          result.Text,
				StorageURI:       storageURI,
				ExtractionMethod: result.Method,
				QualityScore:     quality.Score,
				QualityStatus:    quality.Status,
				Data:             upload.Data,
			},
		},
	}

	return s.processor.ProcessFinancialEmail(ctx, userID, payload), nil
}

// uploadRaw writes the original file to object storage. A storage failure
// does not block ingestion; the record simply carries no URI.
func (s *UploadServiceImpl) uploadRaw(ctx context.Context, userID uuid.UUID, upload *Upload) string {
	objectName := fmt.Sprintf("uploads/%s/%s/%s", userID.String(), uuid.New().String(), upload.Filename)
	uri, err := s.store.Upload(ctx, objectName, upload.Data, upload.MimeType)
	if err != nil {
		s.logger.Warn("Failed to store uploaded file, continuing without storage URI",
			"filename", upload.Filename, "error", err)
		return ""
	}
	return uri
}

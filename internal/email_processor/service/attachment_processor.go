package service

import (
	"context"
	"log/slog"

	"github.com/finvault-backend/internal/ai"
	"github.com/finvault-backend/internal/domain/shared"
	"github.com/finvault-backend/internal/extraction"
	"github.com/finvault-backend/internal/platform/storage"
)

// AttachmentProcessor turns the storage references on an email job into
// extracted attachment content the pipeline can analyze. Downloads,
// password resolution and extraction all degrade per attachment: one broken
// file never sinks the email.
type AttachmentProcessor struct {
	store     storage.ObjectStore
	extractor *extraction.Service
	resolver  *extraction.PasswordResolver
	logger    *slog.Logger
}

func NewAttachmentProcessor(
	store storage.ObjectStore,
	extractor *extraction.Service,
	resolver *extraction.PasswordResolver,
	logger *slog.Logger,
) *AttachmentProcessor {
	return &AttachmentProcessor{
		store:     store,
		extractor: extractor,
		resolver:  resolver,
		logger:    logger,
	}
}

// BuildPayload downloads and extracts every attachment on the job and
// assembles the pipeline payload.
func (p *AttachmentProcessor) BuildPayload(ctx context.Context, job *shared.EmailJob) *shared.EmailPayload {
	payload := &shared.EmailPayload{
		EmailID:       job.EmailID,
		Subject:       job.Subject,
		Sender:        job.Sender,
		Recipient:     job.Recipient,
		Body:          job.Body,
		EmailDate:     job.EmailDate,
		CorrelationID: job.CorrelationID,
	}

	for _, ref := range job.Attachments {
		content, ok := p.processAttachment(ctx, job, &ref)
		if !ok {
			continue
		}
		payload.Attachments = append(payload.Attachments, *content)
	}

	return payload
}

func (p *AttachmentProcessor) processAttachment(ctx context.Context, job *shared.EmailJob, ref *shared.AttachmentRef) (*shared.AttachmentContent, bool) {
	data, err := p.store.Download(ctx, ref.StorageURI)
	if err != nil {
		p.logger.Warn("Failed to download attachment, skipping",
			"email_id", job.EmailID, "filename", ref.Filename, "uri", ref.StorageURI, "error", err)
		return nil, false
	}

	req := extraction.Request{
		Data:     data,
		Filename: ref.Filename,
		MimeType: ref.MimeType,
	}

	outcome := p.resolver.Resolve(ctx, req, &ai.PasswordGuessRequest{
		Subject: job.Subject,
		Body:    job.Body,
		Sender:  job.Sender,
		UserID:  job.UserID,
	})

	var result *extraction.Result
	switch {
	case outcome.Result != nil:
		// Unlock already produced the text.
		result = outcome.Result
	case outcome.NeedsPassword:
		p.logger.Warn("Attachment stays locked, extraction will degrade to placeholder",
			"email_id", job.EmailID,
			"filename", ref.Filename,
			"ai_passwords_tried", outcome.AIPasswordsTried,
		)
		result = p.extractor.ExtractContent(ctx, req)
	default:
		req.Password = outcome.Password
		result = p.extractor.ExtractContent(ctx, req)
	}

	quality := extraction.AssessQuality(result.Text, len(data))

	p.logger.Info("Attachment extracted",
		"email_id", job.EmailID,
		"filename", ref.Filename,
		"method", result.Method,
		"chars", extraction.TrimmedLength(result.Text),
		"quality", quality.Status,
	)

	return &shared.AttachmentContent{
		Filename:         ref.Filename,
		MimeType:         ref.MimeType,
		Size:             ref.Size,
		Content:          result.Text,
		StorageURI:       ref.StorageURI,
		ExtractionMethod: result.Method,
		QualityScore:     quality.Score,
		QualityStatus:    quality.Status,
		Data:             data,
	}, true
}

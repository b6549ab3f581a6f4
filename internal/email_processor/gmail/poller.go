package gmail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finvault-backend/internal/classifier"
	"github.com/finvault-backend/internal/config"
	"github.com/finvault-backend/internal/domain/shared"
	"github.com/finvault-backend/internal/domain/transaction"
	"github.com/finvault-backend/internal/domain/user"
	"github.com/finvault-backend/internal/platform/storage"
)

// JobPublisher publishes email jobs to the email topic.
type JobPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// Poller periodically lists matching mailbox messages and turns new ones
// into ingestion jobs. Attribution goes by recipient: the message's To
// address is resolved against registered users, and mail for unknown
// addresses is left alone.
type Poller struct {
	client          Client
	userRepo        user.Repository
	transactionRepo transaction.Repository
	store           storage.ObjectStore
	publisher       JobPublisher
	logger          *slog.Logger
	query           string
	pollInterval    time.Duration
	maxResults      int64
}

func NewPoller(
	cfg *config.GmailConfig,
	client Client,
	userRepo user.Repository,
	transactionRepo transaction.Repository,
	store storage.ObjectStore,
	publisher JobPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		client:          client,
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		store:           store,
		publisher:       publisher,
		logger:          logger,
		query:           cfg.Query,
		pollInterval:    cfg.PollInterval,
		maxResults:      cfg.MaxResults,
	}
}

// Start polls until the context is canceled.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting Gmail poller",
		"poll_interval", p.pollInterval.String(),
		"query", p.query,
		"max_results", p.maxResults,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Gmail poller stopping due to context cancellation.")
			return
		case <-ticker.C:
			if err := p.pollOnce(ctx); err != nil {
				p.logger.Error("Gmail poll cycle failed", "error", err)
			}
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) error {
	ids, err := p.client.ListMessageIDs(ctx, p.query, p.maxResults)
	if err != nil {
		return fmt.Errorf("failed to list mailbox messages: %w", err)
	}
	if len(ids) == 0 {
		p.logger.Debug("No mailbox messages matched the query")
		return nil
	}

	for _, id := range ids {
		if err := p.processMessage(ctx, id); err != nil {
			p.logger.Error("Failed to process mailbox message", "email_id", id, "error", err)
		}
	}
	return nil
}

// processMessage turns one mailbox message into an EmailJob. Already-seen
// emails and mail for unrecognized recipients are skipped silently;
// individual attachment failures are logged and skipped.
func (p *Poller) processMessage(ctx context.Context, id string) error {
	msg, err := p.client.FetchMessage(ctx, id)
	if err != nil {
		return err
	}

	owner, err := p.userRepo.GetByEmail(ctx, msg.Recipient)
	if err != nil {
		p.logger.Debug("Skipping mail for unrecognized recipient",
			"email_id", msg.ID, "recipient", msg.Recipient)
		return nil
	}

	seen, err := p.transactionRepo.ExistsByEmailID(ctx, owner.ID, msg.ID)
	if err != nil {
		return fmt.Errorf("dedup check failed for email %s: %w", msg.ID, err)
	}
	if seen {
		p.logger.Debug("Email already ingested, skipping", "email_id", msg.ID)
		return nil
	}

	job := &shared.EmailJob{
		JobID:         uuid.New(),
		UserID:        owner.ID,
		EmailID:       msg.ID,
		Subject:       msg.Subject,
		Sender:        msg.Sender,
		Recipient:     msg.Recipient,
		Body:          msg.Body,
		EmailDate:     msg.Date,
		CorrelationID: uuid.New().String(),
		Timestamp:     time.Now(),
	}

	for _, att := range msg.Attachments {
		if !classifier.IsFinancialDocument(att.Filename, att.MimeType) {
			p.logger.Debug("Skipping non-financial attachment",
				"email_id", msg.ID, "filename", att.Filename)
			continue
		}
		if len(att.Data) == 0 {
			p.logger.Warn("Attachment has no content, skipping",
				"email_id", msg.ID, "filename", att.Filename)
			continue
		}

		objectName := fmt.Sprintf("emails/%s/%s/%s", owner.ID, msg.ID, att.Filename)
		uri, err := p.store.Upload(ctx, objectName, att.Data, att.MimeType)
		if err != nil {
			p.logger.Warn("Failed to upload attachment, skipping",
				"email_id", msg.ID, "filename", att.Filename, "error", err)
			continue
		}

		job.Attachments = append(job.Attachments, shared.AttachmentRef{
			Filename:   att.Filename,
			MimeType:   att.MimeType,
			Size:       att.Size,
			StorageURI: uri,
		})
	}

	if len(job.Attachments) == 0 && len(msg.Attachments) > 0 {
		p.logger.Info("No usable attachments on email, publishing body-only job",
			"email_id", msg.ID, "attachments_seen", len(msg.Attachments))
	}

	if err := p.publisher.Publish(ctx, job.EmailID, job); err != nil {
		return fmt.Errorf("failed to publish email job %s: %w", job.EmailID, err)
	}

	p.logger.Info("Published email job",
		"email_id", job.EmailID,
		"user_id", job.UserID.String(),
		"attachments", len(job.Attachments),
	)
	return nil
}

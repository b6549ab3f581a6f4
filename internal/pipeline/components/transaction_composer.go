package components

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finvault-backend/internal/ai"
	"github.com/finvault-backend/internal/domain/shared"
	"github.com/finvault-backend/internal/domain/transaction"
	"github.com/finvault-backend/internal/pipeline"
)

// rawBodyLimit caps how much of the email body raw_data keeps.
const rawBodyLimit = 2000

// dateLayouts are tried in order when the model hands back a date string.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"01/02/2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"02 Jan 2006 15:04:05",
}

// TransactionComposerImpl builds the per-email transaction record.
type TransactionComposerImpl struct {
	logger *slog.Logger
}

func NewTransactionComposer(logger *slog.Logger) pipeline.TransactionComposer {
	return &TransactionComposerImpl{logger: logger}
}

// rawData is the raw_data JSONB payload: the (truncated) source material and
// the ids it produced.
type rawData struct {
	EmailBody      string      `json:"email_body"`
	Classification string      `json:"classification,omitempty"`
	AssetIDs       []uuid.UUID `json:"asset_ids,omitempty"`
}

// extractedData is the extracted_data JSONB payload: the full analysis plus
// an attachment summary.
type extractedData struct {
	Analysis        json.RawMessage `json:"analysis,omitempty"`
	AssetIDs        []uuid.UUID     `json:"asset_ids,omitempty"`
	AttachmentCount int             `json:"attachment_count"`
	Attachments     []string        `json:"attachments,omitempty"`
}

// Compose creates a processed transaction for the email.
func (c *TransactionComposerImpl) Compose(
	userID uuid.UUID,
	payload *shared.EmailPayload,
	analysis *ai.EmailAnalysis,
	assetIDs []uuid.UUID,
) (*transaction.Transaction, error) {
	txn, err := transaction.New(userID, payload.EmailID)
	if err != nil {
		return nil, err
	}

	txn.Subject = payload.Subject
	txn.Sender = payload.Sender
	txn.Recipient = payload.Recipient
	if !payload.EmailDate.IsZero() {
		emailDate := payload.EmailDate
		txn.EmailDate = &emailDate
	}

	data := &analysis.ExtractedData
	txn.Amount = ParseMoney(data.Amount)
	if data.Currency != "" {
		txn.Currency = data.Currency
	}
	txn.TransactionType = data.TransactionType
	txn.Merchant = data.Merchant
	txn.Description = firstNonEmpty(data.Description, analysis.Summary)
	txn.TransactionDate = ParseTransactionDate(data.TransactionDate)
	txn.MarkProcessed()

	if err := c.attachPayloads(txn, payload, analysis, assetIDs); err != nil {
		return nil, err
	}

	return txn, nil
}

// Refresh updates an existing transaction in place from a re-processing
// pass. Analysis values win when present; stored values survive otherwise.
func (c *TransactionComposerImpl) Refresh(
	existing *transaction.Transaction,
	payload *shared.EmailPayload,
	analysis *ai.EmailAnalysis,
	assetIDs []uuid.UUID,
) {
	data := &analysis.ExtractedData

	if amount := ParseMoney(data.Amount); amount != nil {
		existing.Amount = amount
	}
	if data.Currency != "" {
		existing.Currency = data.Currency
	}
	if data.TransactionType != "" {
		existing.TransactionType = data.TransactionType
	}
	if data.Merchant != "" {
		existing.Merchant = data.Merchant
	}
	if desc := firstNonEmpty(data.Description, analysis.Summary); desc != "" {
		existing.Description = desc
	}
	if data.TransactionDate != nil {
		existing.TransactionDate = ParseTransactionDate(data.TransactionDate)
	}
	existing.Subject = firstNonEmpty(payload.Subject, existing.Subject)
	existing.Sender = firstNonEmpty(payload.Sender, existing.Sender)
	existing.MarkProcessed()

	if err := c.attachPayloads(existing, payload, analysis, assetIDs); err != nil {
		c.logger.Warn("Failed to refresh transaction payloads",
			"transaction_id", existing.ID.String(), "error", err)
	}
}

func (c *TransactionComposerImpl) attachPayloads(
	txn *transaction.Transaction,
	payload *shared.EmailPayload,
	analysis *ai.EmailAnalysis,
	assetIDs []uuid.UUID,
) error {
	body := payload.Body
	if len(body) > rawBodyLimit {
		body = body[:rawBodyLimit]
	}

	raw, err := json.Marshal(rawData{
		EmailBody:      body,
		Classification: analysis.ExtractedData.Category,
		AssetIDs:       assetIDs,
	})
	if err != nil {
		return err
	}

	attachmentNames := make([]string, 0, len(payload.Attachments))
	for _, att := range payload.Attachments {
		attachmentNames = append(attachmentNames, att.Filename)
	}

	extracted, err := json.Marshal(extractedData{
		Analysis:        analysis.Raw,
		AssetIDs:        assetIDs,
		AttachmentCount: len(payload.Attachments),
		Attachments:     attachmentNames,
	})
	if err != nil {
		return err
	}

	txn.RawData = raw
	txn.ExtractedData = extracted
	return nil
}

// ParseTransactionDate turns whatever the model put in the date field into
// a usable time. Absent values, unparseable strings and arbitrary objects
// all fall back to now; it never returns a zero time and never fails.
func ParseTransactionDate(v interface{}) time.Time {
	now := time.Now()

	switch d := v.(type) {
	case nil:
		return now
	case time.Time:
		if d.IsZero() {
			return now
		}
		return d
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, d); err == nil && !parsed.IsZero() {
				return parsed
			}
		}
		return now
	default:
		// Objects, numbers, whatever else: malformed, use now.
		return now
	}
}

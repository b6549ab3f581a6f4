package transaction

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finvault-backend/internal/domain/shared"
)

var ErrEmptyEmailID = errors.New("transaction email id cannot be empty")

// Transaction records one ingested email or upload. Assets reference it;
// deleting it never deletes the assets it produced.
type Transaction struct {
	ID              uuid.UUID                `json:"id"`
	UserID          uuid.UUID                `json:"user_id"`
	EmailID         string                   `json:"email_id"`
	Subject         string                   `json:"subject,omitempty"`
	Sender          string                   `json:"sender,omitempty"`
	Recipient       string                   `json:"recipient,omitempty"`
	Amount          *decimal.Decimal         `json:"amount,omitempty"`
	Currency        string                   `json:"currency"`
	TransactionType string                   `json:"transaction_type,omitempty"`
	Merchant        string                   `json:"merchant,omitempty"`
	Description     string                   `json:"description,omitempty"`
	TransactionDate time.Time                `json:"transaction_date"`
	EmailDate       *time.Time               `json:"email_date,omitempty"`
	Status          shared.TransactionStatus `json:"status"`
	RawData         json.RawMessage          `json:"raw_data,omitempty"`
	ExtractedData   json.RawMessage          `json:"extracted_data,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// New creates a transaction in pending state for the given email.
func New(userID uuid.UUID, emailID string) (*Transaction, error) {
	if emailID == "" {
		return nil, ErrEmptyEmailID
	}

	now := time.Now()
	return &Transaction{
		ID:              uuid.New(),
		UserID:          userID,
		EmailID:         emailID,
		Currency:        "INR",
		TransactionDate: now,
		Status:          shared.TransactionStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// MarkProcessed flags successful ingestion.
func (t *Transaction) MarkProcessed() {
	t.Status = shared.TransactionStatusProcessed
	t.UpdatedAt = time.Now()
}

// MarkFailed flags ingestion failure.
func (t *Transaction) MarkFailed() {
	t.Status = shared.TransactionStatusFailed
	t.UpdatedAt = time.Now()
}

package asset

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finvault-backend/internal/domain/shared"
)

// Common errors
var (
	ErrEmptyName     = errors.New("asset name cannot be empty")
	ErrInvalidType   = errors.New("asset type must be asset, liability or insurance")
	ErrInvalidStatus = errors.New("unknown asset status")
)

// DefaultCurrency is applied when extraction yields no currency.
const DefaultCurrency = "INR"

// UpdateRecord is one append-only entry of an asset's update history. It
// snapshots the values about to be overwritten, never the new ones.
type UpdateRecord struct {
	Timestamp          time.Time          `json:"timestamp"`
	PreviousBalance    *decimal.Decimal   `json:"previous_balance"`
	PreviousTotalValue *decimal.Decimal   `json:"previous_total_value"`
	PreviousStatus     shared.AssetStatus `json:"previous_status"`
	EmailID            string             `json:"email_id,omitempty"`
	Subject            string             `json:"subject,omitempty"`
}

// Metadata is the document_metadata JSONB payload. AI analyses are stored
// verbatim so nothing the model produced is lost to later schema changes.
type Metadata struct {
	EmailAnalysis    json.RawMessage `json:"email_analysis,omitempty"`
	DocumentAnalysis json.RawMessage `json:"document_analysis,omitempty"`
	Classification   string          `json:"classification,omitempty"`
	QualityScore     int             `json:"quality_score,omitempty"`
	QualityStatus    string          `json:"quality_status,omitempty"`
	ExtractionMethod string          `json:"extraction_method,omitempty"`
	ExtractedAt      time.Time       `json:"extracted_at,omitempty"`
	UpdateHistory    []UpdateRecord  `json:"update_history,omitempty"`
}

// Asset represents one financial instrument extracted from a document:
// a bank account, a loan, a policy, a fund holding.
type Asset struct {
	ID             uuid.UUID          `json:"id"`
	UserID         uuid.UUID          `json:"user_id"`
	Type           shared.AssetType   `json:"type"`
	SubType        string             `json:"sub_type,omitempty"`
	Name           string             `json:"name"`
	Balance        *decimal.Decimal   `json:"balance,omitempty"`
	TotalValue     *decimal.Decimal   `json:"total_value,omitempty"`
	Currency       string             `json:"currency"`
	AccountNumber  string             `json:"account_number,omitempty"`
	IFSCCode       string             `json:"ifsc_code,omitempty"`
	BranchName     string             `json:"branch_name,omitempty"`
	BankName       string             `json:"bank_name,omitempty"`
	PolicyNumber   string             `json:"policy_number,omitempty"`
	FundName       string             `json:"fund_name,omitempty"`
	FolioNumber    string             `json:"folio_number,omitempty"`
	CRNNumber      string             `json:"crn_number,omitempty"`
	Nominee        string             `json:"nominee,omitempty"`
	Address        string             `json:"address,omitempty"`
	Status         shared.AssetStatus `json:"status"`
	DocumentType   string             `json:"document_type,omitempty"`
	FileName       string             `json:"file_name,omitempty"`
	FileSize       int64              `json:"file_size,omitempty"`
	MimeType       string             `json:"mime_type,omitempty"`
	FileContent    string             `json:"-"`
	Metadata       Metadata           `json:"document_metadata"`
	EmailID        string             `json:"email_id,omitempty"`
	TransactionID  *uuid.UUID         `json:"transaction_id,omitempty"`
	Issues         []string           `json:"issues,omitempty"`
	RequiredFields []string           `json:"required_fields,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	LastUpdated    time.Time          `json:"last_updated"`
}

// New creates an asset with the defaults every freshly extracted asset
// starts from. Newly extracted assets are always inactive until a user
// approves them, whatever the model suggested.
func New(userID uuid.UUID, assetType shared.AssetType, name string) (*Asset, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	switch assetType {
	case shared.AssetTypeAsset, shared.AssetTypeLiability, shared.AssetTypeInsurance:
	default:
		return nil, ErrInvalidType
	}

	now := time.Now()
	return &Asset{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        assetType,
		Name:        name,
		Currency:    DefaultCurrency,
		Status:      shared.AssetStatusInactive,
		CreatedAt:   now,
		UpdatedAt:   now,
		LastUpdated: now,
	}, nil
}

// Approve marks the asset user-confirmed.
func (a *Asset) Approve() {
	a.Status = shared.AssetStatusApproved
	a.touch()
}

// RecordUpdate appends one history entry snapshotting the current values.
// History is append-only: existing entries are never rewritten.
func (a *Asset) RecordUpdate(emailID, subject string) {
	a.Metadata.UpdateHistory = append(a.Metadata.UpdateHistory, UpdateRecord{
		Timestamp:          time.Now(),
		PreviousBalance:    a.Balance,
		PreviousTotalValue: a.TotalValue,
		PreviousStatus:     a.Status,
		EmailID:            emailID,
		Subject:            subject,
	})
}

// BalanceChange returns newBalance - currentBalance as a decimal string,
// with nil treated as zero on either side.
func (a *Asset) BalanceChange(newBalance *decimal.Decimal) string {
	prev := decimal.Zero
	if a.Balance != nil {
		prev = *a.Balance
	}
	next := decimal.Zero
	if newBalance != nil {
		next = *newBalance
	}
	return next.Sub(prev).String()
}

func (a *Asset) touch() {
	now := time.Now()
	a.UpdatedAt = now
	a.LastUpdated = now
}

// ValidStatus reports whether s is one of the recognized lifecycle states.
func ValidStatus(s shared.AssetStatus) bool {
	switch s {
	case shared.AssetStatusActive, shared.AssetStatusInactive, shared.AssetStatusPending,
		shared.AssetStatusApproved, shared.AssetStatusRejected, shared.AssetStatusExpired,
		shared.AssetStatusClaimed, shared.AssetStatusMatured, shared.AssetStatusClosed,
		shared.AssetStatusProcessing:
		return true
	}
	return false
}

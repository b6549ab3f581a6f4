package ai

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// FlexString decodes a JSON value that models emit inconsistently as either
// a string or a bare number ("45000.50" vs 45000.5). The raw token is kept
// as text; normalization to decimals happens downstream.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	// Bare number (or any other scalar token): keep verbatim.
	*f = FlexString(data)
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// Empty reports whether the model produced no value.
func (f FlexString) Empty() bool {
	return f == ""
}

// Classification is the first-stage verdict on an email body.
type Classification struct {
	IsFinancial bool    `json:"isFinancial"`
	Confidence  float64 `json:"confidence"`
	Category    string  `json:"category,omitempty"`
}

// FinancialMetadata carries the document-level fields models extract from
// statements, policies and fund reports. Every field is optional.
type FinancialMetadata struct {
	CurrentValue       FlexString `json:"currentValue,omitempty"`
	OutstandingBalance FlexString `json:"outstandingBalance,omitempty"`
	TotalValue         FlexString `json:"totalValue,omitempty"`
	CoverageAmount     FlexString `json:"coverageAmount,omitempty"`
	AccountNumber      string     `json:"accountNumber,omitempty"`
	IFSCCode           string     `json:"ifscCode,omitempty"`
	BranchName         string     `json:"branchName,omitempty"`
	BankName           string     `json:"bankName,omitempty"`
	PolicyNumber       string     `json:"policyNumber,omitempty"`
	FundName           string     `json:"fundName,omitempty"`
	FolioNumber        string     `json:"folioNumber,omitempty"`
	CRNNumber          string     `json:"crnNumber,omitempty"`
	Nominee            string     `json:"nominee,omitempty"`
	Address            string     `json:"address,omitempty"`
}

// ExtractedData is the shared shape of email- and document-level extraction
// output. TransactionDate stays untyped: models produce strings, numbers or
// whole objects there, and the defensive date parser sorts it out.
type ExtractedData struct {
	Merchant          string             `json:"merchant,omitempty"`
	Amount            FlexString         `json:"amount,omitempty"`
	Balance           FlexString         `json:"balance,omitempty"`
	TotalValue        FlexString         `json:"total_value,omitempty"`
	Currency          string             `json:"currency,omitempty"`
	Category          string             `json:"category,omitempty"`
	AssetCategory     string             `json:"assetCategory,omitempty"`
	AssetType         string             `json:"assetType,omitempty"`
	TransactionType   string             `json:"transactionType,omitempty"`
	TransactionDate   interface{}        `json:"transactionDate,omitempty"`
	Description       string             `json:"description,omitempty"`
	DocumentType      string             `json:"documentType,omitempty"`
	AssetName         string             `json:"assetName,omitempty"`
	FinancialMetadata *FinancialMetadata `json:"financialMetadata,omitempty"`
}

// EmailAnalysis is the full second-stage analysis of a financial email.
type EmailAnalysis struct {
	ExtractedData  ExtractedData   `json:"extractedData"`
	KeyPoints      []string        `json:"keyPoints,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	Issues         []string        `json:"issues,omitempty"`
	RequiredFields []string        `json:"required_fields,omitempty"`
	Confidence     float64         `json:"confidence,omitempty"`
	Raw            json.RawMessage `json:"-"`
}

// DocumentAnalysis is the per-attachment analysis.
type DocumentAnalysis struct {
	ExtractedData  ExtractedData   `json:"extractedData"`
	Issues         []string        `json:"issues,omitempty"`
	RequiredFields []string        `json:"required_fields,omitempty"`
	Confidence     float64         `json:"confidence,omitempty"`
	Raw            json.RawMessage `json:"-"`
}

// AttachmentText pairs an attachment with its extracted text for prompting.
type AttachmentText struct {
	Filename string
	Content  string
}

// EmailAnalysisRequest carries everything the email-level prompt needs.
type EmailAnalysisRequest struct {
	Subject      string
	Sender       string
	Body         string
	Attachments  []AttachmentText
	DocumentType string
	UserID       uuid.UUID
}

// DocumentAnalysisRequest carries one attachment's content for analysis.
// PDFData, when set, is attached to the prompt as an inline blob so the
// model can read the original bytes (scanned documents, images in PDFs).
type DocumentAnalysisRequest struct {
	Filename     string
	Text         string
	DocumentType string
	MimeType     string
	PDFData      []byte
}

// PasswordGuessRequest gives the model context to derive likely PDF
// passwords from (banks commonly use name/DOB/account fragments).
type PasswordGuessRequest struct {
	Subject      string
	Body         string
	Sender       string
	AssetContext string
	UserID       uuid.UUID
}

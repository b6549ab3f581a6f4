package components

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finvault-backend/internal/ai"
	"github.com/finvault-backend/internal/domain/asset"
	"github.com/finvault-backend/internal/domain/shared"
	"github.com/finvault-backend/internal/pipeline"
)

// AssetBuilderImpl turns analysis output into new asset rows.
type AssetBuilderImpl struct {
	logger *slog.Logger
}

func NewAssetBuilder(logger *slog.Logger) pipeline.AssetBuilder {
	return &AssetBuilderImpl{logger: logger}
}

// Build creates one asset for the attachment. Document-level fields win over
// email-level fields throughout; the monetary values follow fixed priority
// chains. Status is always inactive: ingested assets need a user's approval
// before they count, whatever the model suggested.
func (b *AssetBuilderImpl) Build(
	userID uuid.UUID,
	payload *shared.EmailPayload,
	att *shared.AttachmentContent,
	emailAnalysis *ai.EmailAnalysis,
	docAnalysis *ai.DocumentAnalysis,
) (*asset.Asset, error) {
	docData := &docAnalysis.ExtractedData
	emailData := &emailAnalysis.ExtractedData
	docMeta := metadataOf(docData)
	emailMeta := metadataOf(emailData)

	name := firstNonEmpty(
		docData.AssetName,
		docData.Merchant,
		emailData.AssetName,
		emailData.Merchant,
		att.Filename,
	)

	a, err := asset.New(userID, assetTypeOf(firstNonEmpty(docData.AssetCategory, emailData.AssetCategory)), name)
	if err != nil {
		return nil, err
	}

	a.SubType = firstNonEmpty(docData.AssetType, emailData.AssetType)
	if currency := firstNonEmpty(docData.Currency, emailData.Currency); currency != "" {
		a.Currency = currency
	}

	// Balance: document current value, then outstanding balance, then the
	// document amount, then the email-level balance.
	a.Balance = FirstMoney(
		docMeta.CurrentValue,
		docMeta.OutstandingBalance,
		docData.Amount,
		emailData.Balance,
	)

	// Total value: document total, then coverage amount, then the
	// email-level total, then the document amount.
	a.TotalValue = FirstMoney(
		docMeta.TotalValue,
		docMeta.CoverageAmount,
		emailData.TotalValue,
		docData.Amount,
	)

	a.AccountNumber = firstNonEmpty(docMeta.AccountNumber, emailMeta.AccountNumber)
	a.IFSCCode = firstNonEmpty(docMeta.IFSCCode, emailMeta.IFSCCode)
	a.BranchName = firstNonEmpty(docMeta.BranchName, emailMeta.BranchName)
	a.BankName = firstNonEmpty(docMeta.BankName, emailMeta.BankName)
	a.PolicyNumber = firstNonEmpty(docMeta.PolicyNumber, emailMeta.PolicyNumber)
	a.FundName = firstNonEmpty(docMeta.FundName, emailMeta.FundName)
	a.FolioNumber = firstNonEmpty(docMeta.FolioNumber, emailMeta.FolioNumber)
	a.CRNNumber = firstNonEmpty(docMeta.CRNNumber, emailMeta.CRNNumber)
	a.Nominee = firstNonEmpty(docMeta.Nominee, emailMeta.Nominee)
	a.Address = firstNonEmpty(docMeta.Address, emailMeta.Address)

	a.DocumentType = firstNonEmpty(docData.DocumentType, emailData.DocumentType)
	a.FileName = att.Filename
	a.FileSize = att.Size
	a.MimeType = att.MimeType
	a.FileContent = att.Content
	a.EmailID = payload.EmailID

	a.Issues = append(append([]string{}, emailAnalysis.Issues...), docAnalysis.Issues...)
	a.RequiredFields = append(append([]string{}, emailAnalysis.RequiredFields...), docAnalysis.RequiredFields...)

	// The full model payloads go into document_metadata verbatim; this is
	// the audit record later updates append history entries to.
	a.Metadata = asset.Metadata{
		EmailAnalysis:    emailAnalysis.Raw,
		DocumentAnalysis: docAnalysis.Raw,
		Classification:   firstNonEmpty(docData.Category, emailData.Category),
		QualityScore:     att.QualityScore,
		QualityStatus:    att.QualityStatus,
		ExtractionMethod: att.ExtractionMethod,
		ExtractedAt:      time.Now().UTC(),
	}

	return a, nil
}

// assetTypeOf maps a model-produced category to the asset type enum,
// defaulting to plain asset for anything unrecognized.
func assetTypeOf(category string) shared.AssetType {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "liability", "loan", "debt", "credit_card":
		return shared.AssetTypeLiability
	case "insurance", "policy":
		return shared.AssetTypeInsurance
	default:
		return shared.AssetTypeAsset
	}
}

// metadataOf returns the analysis' financial metadata, never nil.
func metadataOf(data *ai.ExtractedData) *ai.FinancialMetadata {
	if data.FinancialMetadata != nil {
		return data.FinancialMetadata
	}
	return &ai.FinancialMetadata{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

package components

import (
	"log/slog"

	"github.com/finvault-backend/internal/ai"
	"github.com/finvault-backend/internal/domain/asset"
	"github.com/finvault-backend/internal/pipeline"
)

// AssetMergerImpl derives non-destructive patches for re-processed assets.
type AssetMergerImpl struct {
	logger *slog.Logger
}

func NewAssetMerger(logger *slog.Logger) pipeline.AssetMerger {
	return &AssetMergerImpl{logger: logger}
}

// BuildPatch maps fresh analysis output onto an update patch. A field is
// only set when the new analysis produced a value, so re-processing an email
// that yields no new signal leaves the stored asset untouched. The monetary
// fields run the same priority chains as the create path; when the whole
// chain comes up empty the patch leaves them unset and the stored value
// survives.
func (m *AssetMergerImpl) BuildPatch(existing *asset.Asset, emailAnalysis *ai.EmailAnalysis, docAnalysis *ai.DocumentAnalysis) *asset.Patch {
	docData := &docAnalysis.ExtractedData
	emailData := &emailAnalysis.ExtractedData
	docMeta := metadataOf(docData)
	emailMeta := metadataOf(emailData)

	patch := &asset.Patch{}

	if category := firstNonEmpty(docData.AssetCategory, emailData.AssetCategory); category != "" {
		t := assetTypeOf(category)
		patch.Type = &t
	}
	setString(&patch.SubType, firstNonEmpty(docData.AssetType, emailData.AssetType))
	setString(&patch.Name, firstNonEmpty(docData.AssetName, docData.Merchant, emailData.AssetName, emailData.Merchant))
	setString(&patch.Currency, firstNonEmpty(docData.Currency, emailData.Currency))

	patch.Balance = FirstMoney(
		docMeta.CurrentValue,
		docMeta.OutstandingBalance,
		docData.Amount,
		emailData.Balance,
	)
	patch.TotalValue = FirstMoney(
		docMeta.TotalValue,
		docMeta.CoverageAmount,
		emailData.TotalValue,
		docData.Amount,
	)

	setString(&patch.AccountNumber, firstNonEmpty(docMeta.AccountNumber, emailMeta.AccountNumber))
	setString(&patch.IFSCCode, firstNonEmpty(docMeta.IFSCCode, emailMeta.IFSCCode))
	setString(&patch.BranchName, firstNonEmpty(docMeta.BranchName, emailMeta.BranchName))
	setString(&patch.BankName, firstNonEmpty(docMeta.BankName, emailMeta.BankName))
	setString(&patch.PolicyNumber, firstNonEmpty(docMeta.PolicyNumber, emailMeta.PolicyNumber))
	setString(&patch.FundName, firstNonEmpty(docMeta.FundName, emailMeta.FundName))
	setString(&patch.FolioNumber, firstNonEmpty(docMeta.FolioNumber, emailMeta.FolioNumber))
	setString(&patch.CRNNumber, firstNonEmpty(docMeta.CRNNumber, emailMeta.CRNNumber))
	setString(&patch.Nominee, firstNonEmpty(docMeta.Nominee, emailMeta.Nominee))
	setString(&patch.Address, firstNonEmpty(docMeta.Address, emailMeta.Address))
	setString(&patch.DocumentType, firstNonEmpty(docData.DocumentType, emailData.DocumentType))

	// Issues and required fields reflect the latest analysis pass; an empty
	// new list means previously flagged problems are resolved, so these are
	// replaced whenever a fresh analysis ran at all.
	patch.Issues = mergeLists(emailAnalysis.Issues, docAnalysis.Issues)
	patch.RequiredFields = mergeLists(emailAnalysis.RequiredFields, docAnalysis.RequiredFields)

	return patch
}

func setString(dst **string, value string) {
	if value != "" {
		*dst = &value
	}
}

func mergeLists(a, b []string) []string {
	merged := make([]string, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	return merged
}

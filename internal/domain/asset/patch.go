package asset

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finvault-backend/internal/domain/shared"
)

// Patch carries the replacement values for one asset update. A nil field
// means "keep the stored value"; builders must leave empty extraction
// results unset rather than pointing at zero values.
type Patch struct {
	Type           *shared.AssetType
	SubType        *string
	Name           *string
	Balance        *decimal.Decimal
	TotalValue     *decimal.Decimal
	Currency       *string
	AccountNumber  *string
	IFSCCode       *string
	BranchName     *string
	BankName       *string
	PolicyNumber   *string
	FundName       *string
	FolioNumber    *string
	CRNNumber      *string
	Nominee        *string
	Address        *string
	Status         *shared.AssetStatus
	DocumentType   *string
	Issues         []string
	RequiredFields []string
}

// Fields lists the names of the fields this patch sets, in declaration order.
func (p *Patch) Fields() []string {
	var fields []string
	add := func(name string, set bool) {
		if set {
			fields = append(fields, name)
		}
	}
	add("type", p.Type != nil)
	add("sub_type", p.SubType != nil)
	add("name", p.Name != nil)
	add("balance", p.Balance != nil)
	add("total_value", p.TotalValue != nil)
	add("currency", p.Currency != nil)
	add("account_number", p.AccountNumber != nil)
	add("ifsc_code", p.IFSCCode != nil)
	add("branch_name", p.BranchName != nil)
	add("bank_name", p.BankName != nil)
	add("policy_number", p.PolicyNumber != nil)
	add("fund_name", p.FundName != nil)
	add("folio_number", p.FolioNumber != nil)
	add("crn_number", p.CRNNumber != nil)
	add("nominee", p.Nominee != nil)
	add("address", p.Address != nil)
	add("status", p.Status != nil)
	add("document_type", p.DocumentType != nil)
	add("issues", p.Issues != nil)
	add("required_fields", p.RequiredFields != nil)
	return fields
}

// Empty reports whether the patch sets nothing.
func (p *Patch) Empty() bool {
	return len(p.Fields()) == 0
}

// Merge applies p over existing and returns the merged asset. Unset patch
// fields keep the stored value, so an extraction that found nothing new
// never erases data. The input asset is not modified.
func Merge(existing *Asset, p *Patch) *Asset {
	merged := *existing

	if p.Type != nil {
		merged.Type = *p.Type
	}
	if p.SubType != nil {
		merged.SubType = *p.SubType
	}
	if p.Name != nil {
		merged.Name = *p.Name
	}
	if p.Balance != nil {
		merged.Balance = p.Balance
	}
	if p.TotalValue != nil {
		merged.TotalValue = p.TotalValue
	}
	if p.Currency != nil {
		merged.Currency = *p.Currency
	}
	if p.AccountNumber != nil {
		merged.AccountNumber = *p.AccountNumber
	}
	if p.IFSCCode != nil {
		merged.IFSCCode = *p.IFSCCode
	}
	if p.BranchName != nil {
		merged.BranchName = *p.BranchName
	}
	if p.BankName != nil {
		merged.BankName = *p.BankName
	}
	if p.PolicyNumber != nil {
		merged.PolicyNumber = *p.PolicyNumber
	}
	if p.FundName != nil {
		merged.FundName = *p.FundName
	}
	if p.FolioNumber != nil {
		merged.FolioNumber = *p.FolioNumber
	}
	if p.CRNNumber != nil {
		merged.CRNNumber = *p.CRNNumber
	}
	if p.Nominee != nil {
		merged.Nominee = *p.Nominee
	}
	if p.Address != nil {
		merged.Address = *p.Address
	}
	if p.Status != nil {
		merged.Status = *p.Status
	}
	if p.DocumentType != nil {
		merged.DocumentType = *p.DocumentType
	}
	if p.Issues != nil {
		merged.Issues = p.Issues
	}
	if p.RequiredFields != nil {
		merged.RequiredFields = p.RequiredFields
	}

	now := time.Now()
	merged.UpdatedAt = now
	merged.LastUpdated = now
	return &merged
}

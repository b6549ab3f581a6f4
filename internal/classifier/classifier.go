// Package classifier decides, from filename and MIME type alone, whether a
// file is worth running through the extraction pipeline, and guesses the
// document category used to steer AI prompts. Both checks are heuristic;
// the AI analysis downstream makes the real call.
package classifier

import (
	"path/filepath"
	"strings"

	"github.com/finvault-backend/internal/domain/shared"
)

var financialExtensions = map[string]struct{}{
	".pdf":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".csv":  {},
	".xlsx": {},
	".xls":  {},
	".docx": {},
}

var financialKeywords = []string{
	"invoice",
	"receipt",
	"statement",
	"payment",
	"transaction",
	"bill",
	"tax",
	"report",
}

var financialMimePrefixes = []string{
	"application/pdf",
	"image/",
	"text/csv",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml",
}

// IsFinancialDocument reports whether the file looks like a financial
// document: a whitelisted extension combined with either a filename keyword
// or a document-family MIME type.
func IsFinancialDocument(filename, mimeType string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := financialExtensions[ext]; !ok {
		return false
	}

	lower := strings.ToLower(filename)
	for _, keyword := range financialKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	mime := strings.ToLower(mimeType)
	for _, prefix := range financialMimePrefixes {
		if strings.HasPrefix(mime, prefix) {
			return true
		}
	}

	return false
}

// documentTypeRules is evaluated in order; the first matching keyword wins.
var documentTypeRules = []struct {
	keywords []string
	docType  shared.DocumentType
}{
	{[]string{"invoice"}, shared.DocumentTypeInvoice},
	{[]string{"receipt"}, shared.DocumentTypeReceipt},
	{[]string{"statement"}, shared.DocumentTypeStatement},
	{[]string{"tax", "1099"}, shared.DocumentTypeTaxDocument},
	{[]string{"credit card"}, shared.DocumentTypeCreditCardStatement},
	{[]string{"bill"}, shared.DocumentTypeBill},
}

// GuessDocumentType maps a filename to a document category.
func GuessDocumentType(filename string) shared.DocumentType {
	lower := strings.ToLower(filename)
	for _, rule := range documentTypeRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.docType
			}
		}
	}
	return shared.DocumentTypeOther
}

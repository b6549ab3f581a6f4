package ai

import (
	"fmt"
	"strings"
)

// maxPromptContentChars bounds how much extracted text goes into a prompt.
// Statements can run to megabytes of OCR noise; the useful signal is at the
// top.
const maxPromptContentChars = 15000

func truncateForPrompt(s string) string {
	if len(s) <= maxPromptContentChars {
		return s
	}
	return s[:maxPromptContentChars] + "\n[content truncated]"
}

const jsonOnlyRules = "Return ONLY valid raw JSON.\n" +
	"Do NOT wrap the response in code fences.\n" +
	"Do NOT use ```json or any Markdown.\n"

func classifyPrompt(body string) string {
	var b strings.Builder
	b.WriteString("You are a financial email classifier.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Decide whether the email below concerns the reader's personal finances:\n")
	b.WriteString("  bank statements, credit card statements, insurance policies, mutual funds,\n")
	b.WriteString("  loans, invoices, receipts, tax documents.\n")
	b.WriteString("- Marketing mails and newsletters are NOT financial.\n\n")
	b.WriteString("Output a single JSON object with these fields:\n")
	b.WriteString("- \"isFinancial\": boolean\n")
	b.WriteString("- \"confidence\": number between 0 and 1\n")
	b.WriteString("- \"category\": string or null (e.g. \"bank_statement\", \"insurance\", \"invoice\")\n\n")
	b.WriteString(jsonOnlyRules)
	b.WriteString("\nEmail body:\n")
	b.WriteString(truncateForPrompt(body))
	return b.String()
}

func emailAnalysisPrompt(req *EmailAnalysisRequest) string {
	var b strings.Builder
	b.WriteString("You are a financial document analyst extracting structured data from an email.\n\n")
	b.WriteString("Output a single JSON object with these fields:\n")
	b.WriteString("- \"extractedData\": object with optional fields:\n")
	b.WriteString("  \"merchant\" (string), \"amount\" (number or string), \"balance\" (number or string),\n")
	b.WriteString("  \"total_value\" (number or string), \"currency\" (3-letter code),\n")
	b.WriteString("  \"assetCategory\" (one of \"asset\", \"liability\", \"insurance\"),\n")
	b.WriteString("  \"assetType\" (e.g. \"savings_account\", \"credit_card\", \"mutual_fund\", \"life_insurance\"),\n")
	b.WriteString("  \"assetName\" (string), \"transactionType\" (string), \"transactionDate\" (ISO date string),\n")
	b.WriteString("  \"description\" (string), \"documentType\" (string),\n")
	b.WriteString("  \"financialMetadata\": object with optional fields \"currentValue\", \"outstandingBalance\",\n")
	b.WriteString("    \"totalValue\", \"coverageAmount\", \"accountNumber\", \"ifscCode\", \"branchName\",\n")
	b.WriteString("    \"bankName\", \"policyNumber\", \"fundName\", \"folioNumber\", \"crnNumber\",\n")
	b.WriteString("    \"nominee\", \"address\"\n")
	b.WriteString("- \"keyPoints\": array of short strings\n")
	b.WriteString("- \"summary\": one-paragraph string\n")
	b.WriteString("- \"issues\": array of strings describing extraction problems\n")
	b.WriteString("- \"required_fields\": array of field names that could not be determined\n")
	b.WriteString("- \"confidence\": number between 0 and 1\n\n")
	b.WriteString("Set fields you cannot determine to null. Never invent values.\n\n")
	b.WriteString(jsonOnlyRules)
	fmt.Fprintf(&b, "\nSubject: %s\nSender: %s\n", req.Subject, req.Sender)
	if req.DocumentType != "" {
		fmt.Fprintf(&b, "Likely document type: %s\n", req.DocumentType)
	}
	b.WriteString("\nEmail body:\n")
	b.WriteString(truncateForPrompt(req.Body))
	for _, att := range req.Attachments {
		fmt.Fprintf(&b, "\n\nAttachment %q content:\n%s", att.Filename, truncateForPrompt(att.Content))
	}
	return b.String()
}

func documentAnalysisPrompt(req *DocumentAnalysisRequest) string {
	var b strings.Builder
	b.WriteString("You are a financial document analyst extracting structured data from a single document.\n\n")
	b.WriteString("Output a single JSON object with these fields:\n")
	b.WriteString("- \"extractedData\": same shape as for email analysis, including \"financialMetadata\"\n")
	b.WriteString("  with \"currentValue\", \"outstandingBalance\", \"totalValue\", \"coverageAmount\" and\n")
	b.WriteString("  the account/policy identifier fields\n")
	b.WriteString("- \"issues\": array of strings\n")
	b.WriteString("- \"required_fields\": array of strings\n")
	b.WriteString("- \"confidence\": number between 0 and 1\n\n")
	b.WriteString("Set fields you cannot determine to null. Never invent values.\n\n")
	b.WriteString(jsonOnlyRules)
	fmt.Fprintf(&b, "\nFilename: %s\n", req.Filename)
	if req.DocumentType != "" {
		fmt.Fprintf(&b, "Likely document type: %s\n", req.DocumentType)
	}
	if req.Text != "" {
		b.WriteString("\nExtracted document text:\n")
		b.WriteString(truncateForPrompt(req.Text))
	}
	return b.String()
}

func passwordGuessPrompt(req *PasswordGuessRequest) string {
	var b strings.Builder
	b.WriteString("A PDF attached to the email below is password protected.\n")
	b.WriteString("Indian banks and insurers typically derive such passwords from the customer's\n")
	b.WriteString("name, date of birth, PAN, or account/policy number fragments, and often state\n")
	b.WriteString("the scheme in the email body.\n\n")
	b.WriteString("Task: list the most likely passwords, best guess first, using only information\n")
	b.WriteString("present in the email. If the body spells out the scheme, construct exactly that.\n\n")
	b.WriteString("Output a single JSON object: {\"passwords\": [\"...\", ...]} with at most 5 entries.\n")
	b.WriteString("Output an empty array when there is nothing to go on.\n\n")
	b.WriteString(jsonOnlyRules)
	fmt.Fprintf(&b, "\nSubject: %s\nSender: %s\n", req.Subject, req.Sender)
	if req.AssetContext != "" {
		fmt.Fprintf(&b, "Known account context: %s\n", req.AssetContext)
	}
	b.WriteString("\nEmail body:\n")
	b.WriteString(truncateForPrompt(req.Body))
	return b.String()
}

package ai

import "context"

// Gateway is the model-facing contract of the pipeline. Implementations own
// prompt construction and response decoding; callers treat every output
// field as optional and default defensively.
type Gateway interface {
	// ClassifyEmailContent decides whether an email body is financial.
	ClassifyEmailContent(ctx context.Context, body string) (*Classification, error)

	// AnalyzeFinancialEmail runs the full extraction over the email and its
	// attachment texts.
	AnalyzeFinancialEmail(ctx context.Context, req *EmailAnalysisRequest) (*EmailAnalysis, error)

	// AnalyzePDFDocument analyzes a single attachment.
	AnalyzePDFDocument(ctx context.Context, req *DocumentAnalysisRequest) (*DocumentAnalysis, error)

	// GuessPasswords returns candidate passwords for a protected document,
	// most likely first.
	GuessPasswords(ctx context.Context, req *PasswordGuessRequest) ([]string, error)
}

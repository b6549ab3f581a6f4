package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/finvault-backend/internal/config"
)

// ErrEmptyResponse indicates the model returned no text
var ErrEmptyResponse = errors.New("empty response from model")

// GeminiGateway implements Gateway on top of the Gemini API.
type GeminiGateway struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

var _ Gateway = (*GeminiGateway)(nil)

// NewGeminiGateway creates a Gemini-backed gateway.
func NewGeminiGateway(ctx context.Context, logger *slog.Logger, cfg *config.AIConfig) (*GeminiGateway, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.GeminiAPIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiGateway{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.RequestTimeout,
		logger:  logger,
	}, nil
}

// ClassifyEmailContent implements Gateway.
func (g *GeminiGateway) ClassifyEmailContent(ctx context.Context, body string) (*Classification, error) {
	raw, err := g.generate(ctx, []*genai.Part{{Text: classifyPrompt(body)}})
	if err != nil {
		return nil, err
	}

	var classification Classification
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &classification); err != nil {
		return nil, fmt.Errorf("failed to decode classification: %w", err)
	}
	return &classification, nil
}

// AnalyzeFinancialEmail implements Gateway.
func (g *GeminiGateway) AnalyzeFinancialEmail(ctx context.Context, req *EmailAnalysisRequest) (*EmailAnalysis, error) {
	raw, err := g.generate(ctx, []*genai.Part{{Text: emailAnalysisPrompt(req)}})
	if err != nil {
		return nil, err
	}

	clean := cleanModelJSON(raw)
	var analysis EmailAnalysis
	if err := json.Unmarshal([]byte(clean), &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode email analysis: %w", err)
	}
	analysis.Raw = json.RawMessage(clean)
	return &analysis, nil
}

// AnalyzePDFDocument implements Gateway.
func (g *GeminiGateway) AnalyzePDFDocument(ctx context.Context, req *DocumentAnalysisRequest) (*DocumentAnalysis, error) {
	parts := []*genai.Part{{Text: documentAnalysisPrompt(req)}}
	if len(req.PDFData) > 0 {
		mimeType := req.MimeType
		if mimeType == "" {
			mimeType = "application/pdf"
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: mimeType,
				Data:     req.PDFData,
			},
		})
	}

	raw, err := g.generate(ctx, parts)
	if err != nil {
		return nil, err
	}

	clean := cleanModelJSON(raw)
	var analysis DocumentAnalysis
	if err := json.Unmarshal([]byte(clean), &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode document analysis: %w", err)
	}
	analysis.Raw = json.RawMessage(clean)
	return &analysis, nil
}

// GuessPasswords implements Gateway.
func (g *GeminiGateway) GuessPasswords(ctx context.Context, req *PasswordGuessRequest) ([]string, error) {
	raw, err := g.generate(ctx, []*genai.Part{{Text: passwordGuessPrompt(req)}})
	if err != nil {
		return nil, err
	}

	clean := cleanModelJSON(raw)

	// Preferred shape is {"passwords": [...]}, but models sometimes return
	// the bare array.
	var wrapped struct {
		Passwords []string `json:"passwords"`
	}
	if err := json.Unmarshal([]byte(clean), &wrapped); err == nil {
		return dropEmpty(wrapped.Passwords), nil
	}
	var bare []string
	if err := json.Unmarshal([]byte(clean), &bare); err == nil {
		return dropEmpty(bare), nil
	}
	return nil, fmt.Errorf("failed to decode password guesses: %s", firstChars(clean, 120))
}

func (g *GeminiGateway) generate(ctx context.Context, parts []*genai.Part) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// cleanModelJSON strips Markdown fences and surrounding prose the model may
// have added despite instructions, narrowing to the outermost JSON value.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// Keep only the outermost JSON object or array, whichever starts first.
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")
	start, closer := objStart, "}"
	if objStart == -1 || (arrStart != -1 && arrStart < objStart) {
		start, closer = arrStart, "]"
	}
	if start != -1 {
		if end := strings.LastIndex(s, closer); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

func dropEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstChars(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

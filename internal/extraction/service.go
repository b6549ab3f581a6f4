package extraction

import (
	"context"
	"log/slog"

	"github.com/finvault-backend/internal/config"
)

// Service runs the external extractor first and falls back to the builtin
// heuristics when the result is missing or too thin to trust. It never
// returns an error and never returns empty text; a failed extraction
// degrades to a placeholder describing the file.
type Service struct {
	advanced        Backend
	builtin         Backend
	minTrustedChars int
	logger          *slog.Logger
}

// NewService wires the two-tier extraction chain.
func NewService(logger *slog.Logger, advanced, builtin Backend, cfg *config.ExtractorConfig) *Service {
	return &Service{
		advanced:        advanced,
		builtin:         builtin,
		minTrustedChars: cfg.MinTrustedChars,
		logger:          logger,
	}
}

// ExtractContent extracts text from the attachment bytes. The returned
// result always has Success true and non-empty Text.
func (s *Service) ExtractContent(ctx context.Context, req Request) *Result {
	advRes, advErr := s.advanced.Extract(ctx, req)
	if s.trusted(advRes, advErr) {
		return advRes
	}
	if advErr != nil {
		s.logger.Warn("advanced extraction failed, using builtin fallback",
			"filename", req.Filename, "error", advErr)
	} else {
		s.logger.Info("advanced extraction below trust threshold, using builtin fallback",
			"filename", req.Filename, "chars", resultChars(advRes))
	}

	builtinRes, err := s.builtin.Extract(ctx, req)
	if err != nil || builtinRes == nil || TrimmedLength(builtinRes.Text) == 0 {
		if err != nil {
			s.logger.Error("builtin extraction failed", "filename", req.Filename, "error", err)
		}
		builtinRes = &Result{
			Text:    placeholderText(req),
			Method:  "placeholder",
			Success: true,
		}
		builtinRes.CharCount = len(builtinRes.Text)
	}

	// An advanced result that succeeded but fell short of the trust
	// threshold can still beat the heuristics on substance.
	if advErr == nil && advRes != nil && advRes.Success &&
		TrimmedLength(advRes.Text) > TrimmedLength(builtinRes.Text) {
		return advRes
	}
	return builtinRes
}

func (s *Service) trusted(res *Result, err error) bool {
	return err == nil && res != nil && res.Success && TrimmedLength(res.Text) > s.minTrustedChars
}

func resultChars(res *Result) int {
	if res == nil {
		return 0
	}
	return TrimmedLength(res.Text)
}

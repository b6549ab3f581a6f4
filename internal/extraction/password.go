package extraction

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/finvault-backend/internal/ai"
)

// AdvancedExtractor is the slice of the external extractor the resolver
// needs: password-aware extraction plus the protection probe.
type AdvancedExtractor interface {
	Extract(ctx context.Context, req Request) (*Result, error)
	CheckProtected(ctx context.Context, data []byte, filename string) (bool, error)
}

var _ AdvancedExtractor = (*AdvancedBackend)(nil)

// UnlockOutcome reports what happened when a document was probed for
// password protection and, if locked, how the unlock attempts went.
type UnlockOutcome struct {
	IsLocked         bool    `json:"isLocked"`
	NeedsPassword    bool    `json:"needsPassword"`
	CanOpen          bool    `json:"canOpen"`
	AIAttempted      bool    `json:"aiAttempted"`
	AIPasswordsTried int     `json:"aiPasswordsTried"`
	Password         string  `json:"-"`
	Result           *Result `json:"-"`
}

// PasswordResolver opens password-protected PDFs by trying the caller's
// password first and then candidates guessed from the email context.
type PasswordResolver struct {
	advanced AdvancedExtractor
	gateway  ai.Gateway
	logger   *slog.Logger
}

// NewPasswordResolver builds a resolver. The gateway may be nil, in which
// case no candidates beyond the user's password are tried.
func NewPasswordResolver(logger *slog.Logger, advanced AdvancedExtractor, gateway ai.Gateway) *PasswordResolver {
	return &PasswordResolver{advanced: advanced, gateway: gateway, logger: logger}
}

// Resolve probes the document and, when it is locked, works through the
// password candidates. A protection probe failure is treated as
// unprotected so extraction still gets its chance.
func (r *PasswordResolver) Resolve(ctx context.Context, req Request, guessReq *ai.PasswordGuessRequest) *UnlockOutcome {
	if !isPDF(req) {
		return &UnlockOutcome{CanOpen: true}
	}

	locked, err := r.advanced.CheckProtected(ctx, req.Data, req.Filename)
	if err != nil {
		r.logger.Warn("protection check failed, treating document as unprotected",
			"filename", req.Filename, "error", err)
		return &UnlockOutcome{CanOpen: true}
	}
	if !locked {
		return &UnlockOutcome{CanOpen: true}
	}

	r.logger.Info("document is password protected", "filename", req.Filename)
	outcome := &UnlockOutcome{IsLocked: true}

	tried := make(map[string]bool)
	if req.Password != "" {
		tried[req.Password] = true
		if res := r.attempt(ctx, req, req.Password); res != nil {
			outcome.CanOpen = true
			outcome.Password = req.Password
			outcome.Result = res
			return outcome
		}
	}

	for _, candidate := range r.guessCandidates(ctx, req.Filename, guessReq, outcome) {
		if candidate == "" || tried[candidate] {
			continue
		}
		tried[candidate] = true
		outcome.AIPasswordsTried++
		if res := r.attempt(ctx, req, candidate); res != nil {
			r.logger.Info("guessed password unlocked document",
				"filename", req.Filename, "candidates_tried", outcome.AIPasswordsTried)
			outcome.CanOpen = true
			outcome.Password = candidate
			outcome.Result = res
			return outcome
		}
	}

	r.logger.Warn("document could not be unlocked",
		"filename", req.Filename,
		"ai_attempted", outcome.AIAttempted,
		"ai_passwords_tried", outcome.AIPasswordsTried)
	outcome.NeedsPassword = true
	return outcome
}

func (r *PasswordResolver) guessCandidates(ctx context.Context, filename string, guessReq *ai.PasswordGuessRequest, outcome *UnlockOutcome) []string {
	if r.gateway == nil || guessReq == nil {
		return nil
	}
	outcome.AIAttempted = true
	candidates, err := r.gateway.GuessPasswords(ctx, guessReq)
	if err != nil {
		r.logger.Warn("password guessing failed", "filename", filename, "error", err)
		return nil
	}
	return candidates
}

func (r *PasswordResolver) attempt(ctx context.Context, req Request, password string) *Result {
	attemptReq := req
	attemptReq.Password = password
	res, err := r.advanced.Extract(ctx, attemptReq)
	if err != nil || res == nil || !res.Success || TrimmedLength(res.Text) == 0 {
		return nil
	}
	return res
}

func isPDF(req Request) bool {
	return strings.EqualFold(req.MimeType, "application/pdf") ||
		strings.EqualFold(filepath.Ext(req.Filename), ".pdf")
}

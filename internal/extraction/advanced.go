package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/finvault-backend/internal/config"
)

// ErrExtractorTimeout indicates the subprocess exceeded its deadline
var ErrExtractorTimeout = errors.New("extractor subprocess timed out")

// AdvancedBackend shells out to the external extractor script. The buffer
// is handed over through a temp file which is removed on every exit path;
// the subprocess gets a hard deadline so a wedged interpreter can never
// stall a request.
type AdvancedBackend struct {
	pythonBin  string
	scriptPath string
	timeout    time.Duration
	logger     *slog.Logger
}

var _ Backend = (*AdvancedBackend)(nil)

// NewAdvancedBackend creates a subprocess-backed extractor.
func NewAdvancedBackend(logger *slog.Logger, cfg *config.ExtractorConfig) *AdvancedBackend {
	return &AdvancedBackend{
		pythonBin:  cfg.PythonBin,
		scriptPath: cfg.ScriptPath,
		timeout:    cfg.Timeout,
		logger:     logger,
	}
}

// Extract implements Backend.
func (b *AdvancedBackend) Extract(ctx context.Context, req Request) (*Result, error) {
	tmpPath, err := b.writeTempFile(req)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpPath)

	args := []string{b.scriptPath, tmpPath}
	if req.Password != "" {
		args = append(args, "-p", req.Password)
	}

	stdout, err := b.run(ctx, args)
	if err != nil {
		return nil, err
	}

	result := parseExtractorOutput(stdout)
	if result == nil {
		return nil, fmt.Errorf("extractor produced no output for %s", req.Filename)
	}
	return result, nil
}

// CheckProtected asks the extractor whether the file is password protected.
// The script prints a literal "<name> is protected" / "<name> is not
// protected" verdict; anything else is treated as not protected so a broken
// helper can never block ingestion.
func (b *AdvancedBackend) CheckProtected(ctx context.Context, data []byte, filename string) (bool, error) {
	tmpPath, err := b.writeTempFile(Request{Data: data, Filename: filename})
	if err != nil {
		return false, err
	}
	defer os.Remove(tmpPath)

	stdout, err := b.run(ctx, []string{b.scriptPath, tmpPath, "--check-protected"})
	if err != nil {
		return false, err
	}

	protected, ok := parseProtectionOutput(string(stdout))
	if !ok {
		b.logger.Warn("Indeterminate protection check output, assuming not protected",
			"file", filename)
		return false, nil
	}
	return protected, nil
}

func (b *AdvancedBackend) run(ctx context.Context, args []string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.pythonBin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrExtractorTimeout, b.timeout)
		}
		return nil, fmt.Errorf("extractor failed: %w: %s", err, firstLine(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// writeTempFile persists the buffer for the subprocess, preserving the
// extension because the script dispatches on it.
func (b *AdvancedBackend) writeTempFile(req Request) (string, error) {
	ext := filepath.Ext(req.Filename)
	tmpFile, err := os.CreateTemp("", "extract-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(req.Data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return tmpPath, nil
}

// extractorPayload mirrors the JSON the extractor script emits.
type extractorPayload struct {
	Success   bool                   `json:"success"`
	Text      string                 `json:"text"`
	Method    string                 `json:"method"`
	CharCount int                    `json:"char_count"`
	Error     string                 `json:"error"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// parseExtractorOutput accepts either the JSON protocol or bare text on
// stdout. Dependency banners before the JSON object are tolerated.
func parseExtractorOutput(out []byte) *Result {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 {
		return nil
	}

	if start := bytes.IndexByte(trimmed, '{'); start != -1 {
		if end := bytes.LastIndexByte(trimmed, '}'); end > start {
			var payload extractorPayload
			if err := json.Unmarshal(trimmed[start:end+1], &payload); err == nil &&
				(payload.Success || payload.Text != "" || payload.Error != "") {
				charCount := payload.CharCount
				if charCount == 0 {
					charCount = len(payload.Text)
				}
				method := payload.Method
				if method == "" {
					method = "advanced"
				}
				return &Result{
					Text:      payload.Text,
					Method:    method,
					CharCount: charCount,
					Success:   payload.Success,
					Error:     payload.Error,
					Metadata:  payload.Metadata,
				}
			}
		}
	}

	// Raw text protocol: the whole stdout is the extraction.
	text := string(trimmed)
	return &Result{
		Text:      text,
		Method:    "advanced",
		CharCount: len(text),
		Success:   true,
	}
}

// parseProtectionOutput interprets the --check-protected verdict. The
// negative phrase must be checked first: "is protected" is a substring of
// "is not protected".
func parseProtectionOutput(out string) (protected bool, ok bool) {
	switch {
	case strings.Contains(out, "is not protected"):
		return false, true
	case strings.Contains(out, "is protected"):
		return true, true
	default:
		return false, false
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		return s[:idx]
	}
	return s
}

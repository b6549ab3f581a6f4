// Package extraction turns raw document bytes into text. An external
// extractor process does the heavy lifting; pure-Go heuristics cover every
// format well enough that the pipeline always gets something to work with.
package extraction

import "context"

// Request carries one file through an extraction attempt.
type Request struct {
	Data     []byte
	Filename string
	MimeType string
	Password string
}

// Result is the outcome of one extraction pass.
type Result struct {
	Text      string                 `json:"text"`
	Method    string                 `json:"method"`
	CharCount int                    `json:"char_count"`
	Success   bool                   `json:"success"`
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Backend produces text from a raw file buffer.
type Backend interface {
	Extract(ctx context.Context, req Request) (*Result, error)
}

package shared

import "github.com/google/uuid"

// ProcessResult reports the outcome of ingesting one email. The pipeline
// never returns errors; failures are carried in the Error field so callers
// can decide between skip, record and notify.
type ProcessResult struct {
	Processed      bool        `json:"processed"`
	Reason         string      `json:"reason,omitempty"`
	Error          string      `json:"error,omitempty"`
	TransactionID  *uuid.UUID  `json:"transaction_id,omitempty"`
	AssetIDs       []uuid.UUID `json:"asset_ids,omitempty"`
	Summary        string      `json:"summary,omitempty"`
	KeyPoints      []string    `json:"key_points,omitempty"`
	Confidence     float64     `json:"confidence,omitempty"`
	Classification string      `json:"classification,omitempty"`
}

// Failed reports whether processing ended in an error, as opposed to a
// clean skip of a non-financial email.
func (r *ProcessResult) Failed() bool {
	return !r.Processed && r.Error != ""
}

// UpdateChanges summarizes what an update changed on an existing asset.
type UpdateChanges struct {
	BalanceChange string   `json:"balance_change"`
	StatusChange  bool     `json:"status_change"`
	UpdatedFields []string `json:"updated_fields,omitempty"`
}

// UpdateResult reports the outcome of re-processing an email against an
// existing asset.
type UpdateResult struct {
	Updated       bool           `json:"updated"`
	Error         string         `json:"error,omitempty"`
	AssetID       uuid.UUID      `json:"asset_id,omitempty"`
	TransactionID *uuid.UUID     `json:"transaction_id,omitempty"`
	Changes       *UpdateChanges `json:"changes,omitempty"`
}

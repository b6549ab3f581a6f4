package shared

import "time"

// AttachmentContent is an attachment whose text has already been extracted.
// This is the form the processing pipeline consumes; extraction happens
// upstream, either synchronously on upload or in the email processor.
type AttachmentContent struct {
	Filename         string `json:"filename"`
	MimeType         string `json:"mime_type"`
	Size             int64  `json:"size"`
	Content          string `json:"content"`
	StorageURI       string `json:"storage_uri,omitempty"`
	ExtractionMethod string `json:"extraction_method,omitempty"`
	QualityScore     int    `json:"quality_score,omitempty"`
	QualityStatus    string `json:"quality_status,omitempty"`
	Data             []byte `json:"-"`
}

// EmailPayload is the normalized input to the processing pipeline. Direct
// uploads are wrapped into a synthetic payload so both ingestion paths share
// one code path.
type EmailPayload struct {
	EmailID       string              `json:"email_id"`
	Subject       string              `json:"subject"`
	Sender        string              `json:"sender"`
	Recipient     string              `json:"recipient"`
	Body          string              `json:"body"`
	EmailDate     time.Time           `json:"email_date"`
	Attachments   []AttachmentContent `json:"attachments,omitempty"`
	CorrelationID string              `json:"correlation_id,omitempty"`
}

package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingEmailID = errors.New("missing email id")
	ErrMissingUserID  = errors.New("missing user id")
)

// AttachmentRef points at an attachment stored in the object store.
// Kafka messages carry references only; raw bytes stay in the bucket.
type AttachmentRef struct {
	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	StorageURI string `json:"storage_uri"`
}

// EmailJob defines a Kafka message for email ingestion processing
type EmailJob struct {
	JobID         uuid.UUID       `json:"job_id"`
	UserID        uuid.UUID       `json:"user_id"`
	EmailID       string          `json:"email_id"`
	Subject       string          `json:"subject"`
	Sender        string          `json:"sender"`
	Recipient     string          `json:"recipient"`
	Body          string          `json:"body"`
	EmailDate     time.Time       `json:"email_date"`
	Attachments   []AttachmentRef `json:"attachments,omitempty"`
	CorrelationID string          `json:"correlation_id"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Validate checks the fields a job cannot be processed without.
func (j *EmailJob) Validate() error {
	if j.EmailID == "" {
		return ErrMissingEmailID
	}
	if j.UserID == uuid.Nil {
		return ErrMissingUserID
	}
	return nil
}

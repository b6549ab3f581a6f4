package document

import (
	"time"

	"github.com/google/uuid"

	"github.com/finvault-backend/internal/domain/shared"
)

// Record represents one stored document in the document store. Raw PDF
// originals and processed extraction records share the collection,
// discriminated by Kind.
type Record struct {
	DocumentID       uuid.UUID             `json:"document_id" bson:"document_id"`
	UserID           uuid.UUID             `json:"user_id" bson:"user_id"`
	AssetID          *uuid.UUID            `json:"asset_id,omitempty" bson:"asset_id,omitempty"`
	TransactionID    *uuid.UUID            `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	Kind             shared.DocumentKind   `json:"kind" bson:"kind"`
	FileName         string                `json:"file_name" bson:"file_name"`
	MimeType         string                `json:"mime_type" bson:"mime_type"`
	SizeBytes        int64                 `json:"size_bytes" bson:"size_bytes"`
	StorageURI       string                `json:"storage_uri,omitempty" bson:"storage_uri,omitempty"`
	Source           shared.DocumentSource `json:"source" bson:"source"`
	EmailID          string                `json:"email_id,omitempty" bson:"email_id,omitempty"`
	ExtractionMethod string                `json:"extraction_method,omitempty" bson:"extraction_method,omitempty"`
	QualityScore     int                   `json:"quality_score,omitempty" bson:"quality_score,omitempty"`
	QualityStatus    string                `json:"quality_status,omitempty" bson:"quality_status,omitempty"`
	ContentPreview   string                `json:"content_preview,omitempty" bson:"content_preview,omitempty"`
	Status           shared.DocumentStatus `json:"status" bson:"status"`
	CreatedAt        time.Time             `json:"created_at" bson:"created_at"`
	ProcessedAt      *time.Time            `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
}

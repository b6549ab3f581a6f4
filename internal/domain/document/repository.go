package document

import (
	"context"

	"github.com/google/uuid"

	"github.com/finvault-backend/internal/domain/shared"
)

// Repository manages document record persistence with pagination support
type Repository interface {
	Create(ctx context.Context, record *Record) error
	GetByDocumentID(ctx context.Context, documentID uuid.UUID) (*Record, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Record, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	UpdateStatus(ctx context.Context, documentID uuid.UUID, status shared.DocumentStatus) error

	// DeleteByTransactionID removes the raw originals tied to a deleted
	// transaction. Processed records are kept on purpose.
	DeleteByTransactionID(ctx context.Context, transactionID uuid.UUID, kind shared.DocumentKind) (int64, error)
}

// ErrRecordNotFound indicates missing document record
type ErrRecordNotFound struct {
	DocumentID uuid.UUID
}

func (e ErrRecordNotFound) Error() string {
	return "document record not found: " + e.DocumentID.String()
}

// Is implements the errors.Is interface for ErrRecordNotFound
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	// If the target DocumentID is empty, consider it a match for any ErrRecordNotFound
	if t.DocumentID == uuid.Nil {
		return true
	}
	return e.DocumentID == t.DocumentID
}

// ErrDuplicateRecord indicates document uniqueness violation
type ErrDuplicateRecord struct {
	DocumentID uuid.UUID
}

func (e ErrDuplicateRecord) Error() string {
	return "duplicate document record: " + e.DocumentID.String()
}

// Is implements the errors.Is interface for ErrDuplicateRecord
func (e ErrDuplicateRecord) Is(target error) bool {
	t, ok := target.(ErrDuplicateRecord)
	if !ok {
		return false
	}
	if t.DocumentID == uuid.Nil {
		return true
	}
	return e.DocumentID == t.DocumentID
}

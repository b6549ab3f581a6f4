package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Filter narrows transaction listings.
type Filter struct {
	From   *time.Time
	To     *time.Time
	Status string
	Limit  int
	Offset int
}

// Repository defines transaction persistence operations
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	List(ctx context.Context, userID uuid.UUID, filter Filter) ([]*Transaction, int64, error)
	Update(ctx context.Context, txn *Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByEmailID supports ingestion dedup. Email ids are indexed but
	// deliberately not unique at the schema level.
	ExistsByEmailID(ctx context.Context, userID uuid.UUID, emailID string) (bool, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrTransactionNotFound indicates missing transaction
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.TransactionID.String()
}

// ErrNotOwner indicates a transaction belonging to a different user
type ErrNotOwner struct {
	TransactionID uuid.UUID
	UserID        uuid.UUID
}

func (e ErrNotOwner) Error() string {
	return "transaction " + e.TransactionID.String() + " does not belong to user " + e.UserID.String()
}

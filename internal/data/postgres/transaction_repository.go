package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/finvault-backend/internal/domain/transaction"
	"github.com/finvault-backend/internal/platform/persistence"
)

const transactionColumns = `id, user_id, email_id, subject, sender, recipient, amount, currency,
		transaction_type, merchant, description, transaction_date, email_date, status,
		raw_data, extracted_data, created_at, updated_at`

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations.
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new transaction record.
func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.UserID,
		txn.EmailID,
		txn.Subject,
		txn.Sender,
		txn.Recipient,
		nullDecimal(txn.Amount),
		txn.Currency,
		txn.TransactionType,
		txn.Merchant,
		txn.Description,
		txn.TransactionDate,
		txn.EmailDate,
		txn.Status,
		txn.RawData,
		txn.ExtractedData,
		txn.CreatedAt,
		txn.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", "transaction_id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID.
// Returns ErrTransactionNotFound if the transaction doesn't exist.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1
	`

	txn, err := scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// List retrieves a filtered page of a user's transactions with the total
// count matching the filter.
func (r *TransactionRepository) List(ctx context.Context, userID uuid.UUID, filter transaction.Filter) ([]*transaction.Transaction, int64, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, "transaction_date >= $"+strconv.Itoa(len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, "transaction_date <= $"+strconv.Itoa(len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM transactions WHERE " + where
	if err := r.querier.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count transactions", "user_id", userID.String(), "error", err)
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)
	limitIdx := strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetIdx := strconv.Itoa(len(args))

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ` + where + `
		ORDER BY transaction_date DESC
		LIMIT $` + limitIdx + ` OFFSET $` + offsetIdx

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list transactions", "user_id", userID.String(), "error", err)
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return transactions, total, nil
}

// Update persists all mutable fields of a transaction.
// Returns ErrTransactionNotFound if the transaction doesn't exist.
func (r *TransactionRepository) Update(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET subject = $1, sender = $2, recipient = $3, amount = $4, currency = $5,
			transaction_type = $6, merchant = $7, description = $8, transaction_date = $9,
			email_date = $10, status = $11, raw_data = $12, extracted_data = $13,
			updated_at = $14
		WHERE id = $15
	`

	result, err := r.querier.Exec(ctx, query,
		txn.Subject,
		txn.Sender,
		txn.Recipient,
		nullDecimal(txn.Amount),
		txn.Currency,
		txn.TransactionType,
		txn.Merchant,
		txn.Description,
		txn.TransactionDate,
		txn.EmailDate,
		txn.Status,
		txn.RawData,
		txn.ExtractedData,
		txn.UpdatedAt,
		txn.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update transaction", "transaction_id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{TransactionID: txn.ID}
	}

	return nil
}

// Delete permanently removes a transaction. Linked assets are kept; their
// transaction_id column is cleared by the schema's ON DELETE SET NULL.
func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.querier.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete transaction", "transaction_id", id.String(), "error", err)
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{TransactionID: id}
	}

	return nil
}

// ExistsByEmailID reports whether the user already has a transaction for the
// given source email. Used by ingestion to skip already-processed messages.
func (r *TransactionRepository) ExistsByEmailID(ctx context.Context, userID uuid.UUID, emailID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM transactions WHERE user_id = $1 AND email_id = $2)`

	var exists bool
	if err := r.querier.QueryRow(ctx, query, userID, emailID).Scan(&exists); err != nil {
		r.logger.Error("Failed to check transaction existence",
			"user_id", userID.String(),
			"email_id", emailID,
			"error", err,
		)
		return false, fmt.Errorf("failed to check transaction existence: %w", err)
	}

	return exists, nil
}

func scanTransaction(row pgx.Row) (*transaction.Transaction, error) {
	var (
		txn    transaction.Transaction
		amount decimal.NullDecimal
	)

	err := row.Scan(
		&txn.ID,
		&txn.UserID,
		&txn.EmailID,
		&txn.Subject,
		&txn.Sender,
		&txn.Recipient,
		&amount,
		&txn.Currency,
		&txn.TransactionType,
		&txn.Merchant,
		&txn.Description,
		&txn.TransactionDate,
		&txn.EmailDate,
		&txn.Status,
		&txn.RawData,
		&txn.ExtractedData,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if amount.Valid {
		txn.Amount = &amount.Decimal
	}

	return &txn, nil
}

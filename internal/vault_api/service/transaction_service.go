package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/finvault-backend/internal/domain/document"
	"github.com/finvault-backend/internal/domain/shared"
	"github.com/finvault-backend/internal/domain/transaction"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	transactionRepo transaction.Repository
	documentRepo    document.Repository
	logger          *slog.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(transactionRepo transaction.Repository, documentRepo document.Repository, logger *slog.Logger) TransactionService {
	return &TransactionServiceImpl{
		transactionRepo: transactionRepo,
		documentRepo:    documentRepo,
		logger:          logger,
	}
}

// List returns the user's transactions matching the filter plus the total count
func (s *TransactionServiceImpl) List(ctx context.Context, userID uuid.UUID, filter transaction.Filter) ([]*transaction.Transaction, int64, error) {
	return s.transactionRepo.List(ctx, userID, filter)
}

// GetTransaction returns the transaction after verifying ownership
func (s *TransactionServiceImpl) GetTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*transaction.Transaction, error) {
	return s.ownedTransaction(ctx, userID, transactionID)
}

// DeleteTransaction removes the transaction and the raw PDF originals tied
// to it. The assets FK is ON DELETE SET NULL, so assets survive; processed
// document records are kept on purpose.
func (s *TransactionServiceImpl) DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) (int64, error) {
	if _, err := s.ownedTransaction(ctx, userID, transactionID); err != nil {
		return 0, err
	}

	removed, err := s.documentRepo.DeleteByTransactionID(ctx, transactionID, shared.DocumentKindRawPDF)
	if err != nil {
		// The relational delete still proceeds; orphaned raw records are
		// preferable to a transaction the user cannot remove.
		s.logger.Error("Failed to delete raw document records for transaction",
			"transaction_id", transactionID.String(), "error", err)
		removed = 0
	}

	if err := s.transactionRepo.Delete(ctx, transactionID); err != nil {
		return removed, err
	}
	return removed, nil
}

func (s *TransactionServiceImpl) ownedTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*transaction.Transaction, error) {
	txn, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, transaction.ErrNotOwner{TransactionID: transactionID, UserID: userID}
	}
	return txn, nil
}

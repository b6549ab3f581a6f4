package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finvault-backend/internal/domain/transaction"
	"github.com/finvault-backend/internal/vault_api/service"
)

// TransactionHandler handles HTTP requests for transaction operations
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// List returns the user's transactions, filtered and paginated
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var query ListTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := transaction.Filter{
		Status: query.Status,
		Limit:  query.PerPage,
		Offset: (query.Page - 1) * query.PerPage,
	}
	if query.From != "" {
		from, err := time.Parse(time.RFC3339, query.From)
		if err != nil {
			RespondBadRequest(c, "from must be RFC3339")
			return
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := time.Parse(time.RFC3339, query.To)
		if err != nil {
			RespondBadRequest(c, "to must be RFC3339")
			return
		}
		filter.To = &to
	}

	transactions, total, err := h.transactionService.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.logger.Error("Failed to list transactions", "user_id", userID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, 200, transactions, query.Page, query.PerPage, int(total))
}

// GetByID retrieves one transaction, returning 404 if missing and 403 if
// foreign
func (h *TransactionHandler) GetByID(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	transactionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	txn, err := h.transactionService.GetTransaction(c.Request.Context(), userID, transactionID)
	if err != nil {
		h.respondTransactionError(c, transactionID, err)
		return
	}

	RespondOK(c, txn)
}

// Delete removes the transaction and its raw PDF document records. Assets
// keep existing with their transaction reference cleared.
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	transactionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	removed, err := h.transactionService.DeleteTransaction(c.Request.Context(), userID, transactionID)
	if err != nil {
		h.respondTransactionError(c, transactionID, err)
		return
	}

	RespondOK(c, DeleteTransactionResponse{Deleted: true, DocumentsRemoved: removed})
}

func (h *TransactionHandler) respondTransactionError(c *gin.Context, transactionID uuid.UUID, err error) {
	var notFound transaction.ErrTransactionNotFound
	var notOwner transaction.ErrNotOwner
	switch {
	case errors.As(err, &notFound):
		RespondNotFound(c, "Transaction not found")
	case errors.As(err, &notOwner):
		RespondForbidden(c, "Transaction belongs to a different user")
	default:
		h.logger.Error("Transaction operation failed",
			"transaction_id", transactionID.String(), "error", err)
		RespondInternalError(c)
	}
}

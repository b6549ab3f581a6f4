package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/finvault-backend/internal/domain/document"
	"github.com/finvault-backend/internal/vault_api/service"
)

// DocumentHandler handles HTTP requests for document record reads
type DocumentHandler struct {
	documentService service.DocumentService
	logger          *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(logger *slog.Logger, documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// List returns a page of the user's document records
func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	records, total, err := h.documentService.List(c.Request.Context(), userID, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list documents", "user_id", userID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, 200, records, params.Page, params.PerPage, int(total))
}

// GetByID retrieves one document record
func (h *DocumentHandler) GetByID(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	documentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	record, err := h.documentService.GetDocument(c.Request.Context(), userID, documentID)
	if err != nil {
		if errors.Is(err, document.ErrRecordNotFound{}) {
			RespondNotFound(c, "Document not found")
			return
		}
		h.logger.Error("Failed to get document",
			"document_id", documentID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, record)
}

package handler

import (
	"errors"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/finvault-backend/internal/vault_api/service"
)

// UploadHandler handles direct document uploads. The pipeline runs
// synchronously, so a successful response already reflects the created
// asset and transaction.
type UploadHandler struct {
	uploadService  service.UploadService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(logger *slog.Logger, uploadService service.UploadService, maxUploadBytes int64) *UploadHandler {
	return &UploadHandler{
		uploadService:  uploadService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Upload accepts a multipart file plus an optional password for protected
// PDFs. A locked document that cannot be opened maps to 403 with the
// unlock outcome as structured details.
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondBadRequest(c, "file is required")
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		RespondBadRequest(c, "file exceeds the upload size limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", "error", err)
		RespondInternalError(c)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		h.logger.Error("Failed to read uploaded file", "error", err)
		RespondInternalError(c)
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		RespondBadRequest(c, "file exceeds the upload size limit")
		return
	}

	upload := &service.Upload{
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Size:     int64(len(data)),
		Data:     data,
		Password: c.PostForm("password"),
	}

	result, err := h.uploadService.ProcessUpload(c.Request.Context(), userID, upload)
	if err != nil {
		var locked service.ErrDocumentLocked
		if errors.As(err, &locked) {
			RespondWithErrorDetails(c, 403, "DOCUMENT_LOCKED",
				"Document is password protected and could not be opened", locked.Outcome)
			return
		}
		h.logger.Error("Failed to process upload",
			"filename", fileHeader.Filename, "error", err)
		RespondInternalError(c)
		return
	}

	if result.Failed() {
		h.logger.Error("Upload pipeline failed",
			"filename", fileHeader.Filename, "error", result.Error)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, result)
}

package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finvault-backend/internal/domain/asset"
	"github.com/finvault-backend/internal/domain/shared"
	"github.com/finvault-backend/internal/vault_api/middleware"
	"github.com/finvault-backend/internal/vault_api/service"
)

// AssetHandler handles HTTP requests for asset operations
type AssetHandler struct {
	assetService service.AssetService
	logger       *slog.Logger
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(logger *slog.Logger, assetService service.AssetService) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
		logger:       logger,
	}
}

// List returns the authenticated user's assets, filtered and paginated
func (h *AssetHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var query ListAssetsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := asset.Filter{
		Type:   shared.AssetType(query.Type),
		Status: shared.AssetStatus(query.Status),
		Search: query.Search,
		Limit:  query.PerPage,
		Offset: (query.Page - 1) * query.PerPage,
	}

	assets, total, err := h.assetService.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.logger.Error("Failed to list assets", "user_id", userID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, 200, assets, query.Page, query.PerPage, int(total))
}

// Stats returns the aggregated portfolio summary
func (h *AssetHandler) Stats(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.assetService.Stats(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to compute asset stats", "user_id", userID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, stats)
}

// GetByID retrieves one asset, returning 404 if missing and 403 if foreign
func (h *AssetHandler) GetByID(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	assetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.assetService.GetAsset(c.Request.Context(), userID, assetID)
	if err != nil {
		h.respondAssetError(c, assetID, err)
		return
	}

	RespondOK(c, result)
}

// Update applies an allow-listed manual patch to the asset
func (h *AssetHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	assetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	patch, err := buildPatch(&req)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	updated, err := h.assetService.UpdateAsset(c.Request.Context(), userID, assetID, patch)
	if err != nil {
		if errors.Is(err, asset.ErrInvalidStatus) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.respondAssetError(c, assetID, err)
		return
	}

	RespondOK(c, updated)
}

// Approve marks the asset user-confirmed
func (h *AssetHandler) Approve(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	assetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	approved, err := h.assetService.ApproveAsset(c.Request.Context(), userID, assetID)
	if err != nil {
		h.respondAssetError(c, assetID, err)
		return
	}

	RespondOK(c, approved)
}

// Delete removes the asset
func (h *AssetHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	assetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.assetService.DeleteAsset(c.Request.Context(), userID, assetID); err != nil {
		h.respondAssetError(c, assetID, err)
		return
	}

	RespondNoContent(c)
}

// EditAsset re-runs extraction against the asset from pasted email content.
// The pipeline runs synchronously inside the request.
func (h *AssetHandler) EditAsset(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	assetID, ok := parseIDParam(c, "assetId")
	if !ok {
		return
	}

	var req EditAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	payload := &shared.EmailPayload{
		EmailID:       req.EmailID,
		Subject:       req.Subject,
		Sender:        req.Sender,
		Body:          req.Body,
		EmailDate:     time.Now(),
		CorrelationID: middleware.GetCorrelationID(c),
	}
	if req.EmailID == "" {
		payload.EmailID = "edit-" + uuid.New().String()
	}
	if req.EmailDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.EmailDate)
		if err != nil {
			RespondBadRequest(c, "email_date must be RFC3339")
			return
		}
		payload.EmailDate = parsed
	}

	result, err := h.assetService.EditAsset(c.Request.Context(), userID, assetID, payload)
	if err != nil {
		h.respondAssetError(c, assetID, err)
		return
	}
	if !result.Updated {
		h.logger.Error("Asset edit failed in pipeline",
			"asset_id", assetID.String(), "error", result.Error)
		RespondInternalError(c)
		return
	}

	RespondOK(c, result)
}

func (h *AssetHandler) respondAssetError(c *gin.Context, assetID uuid.UUID, err error) {
	var notFound asset.ErrAssetNotFound
	var notOwner asset.ErrNotOwner
	switch {
	case errors.As(err, &notFound):
		RespondNotFound(c, "Asset not found")
	case errors.As(err, &notOwner):
		RespondForbidden(c, "Asset belongs to a different user")
	default:
		h.logger.Error("Asset operation failed", "asset_id", assetID.String(), "error", err)
		RespondInternalError(c)
	}
}

// buildPatch converts the request DTO into a merge patch, parsing monetary
// strings into decimals.
func buildPatch(req *UpdateAssetRequest) (*asset.Patch, error) {
	patch := &asset.Patch{
		Name:         req.Name,
		SubType:      req.SubType,
		Nominee:      req.Nominee,
		Address:      req.Address,
		Currency:     req.Currency,
		DocumentType: req.DocumentType,
	}

	if req.Balance != nil {
		value, err := decimal.NewFromString(*req.Balance)
		if err != nil {
			return nil, errors.New("balance must be a decimal string")
		}
		patch.Balance = &value
	}
	if req.TotalValue != nil {
		value, err := decimal.NewFromString(*req.TotalValue)
		if err != nil {
			return nil, errors.New("total_value must be a decimal string")
		}
		patch.TotalValue = &value
	}
	if req.Status != nil {
		status := shared.AssetStatus(*req.Status)
		patch.Status = &status
	}

	return patch, nil
}

// requireUserID pulls the authenticated user from the context, replying 401
// when the auth middleware did not run.
func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return uuid.Nil, false
	}
	return userID, true
}

// parseIDParam parses a UUID path parameter, replying 400 on garbage.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondBadRequest(c, "Invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}

package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finvault-backend/internal/domain/asset"
	"github.com/finvault-backend/internal/domain/user"
	"github.com/finvault-backend/internal/vault_api/service"
)

// FamilyHandler handles HTTP requests for family and sharing operations
type FamilyHandler struct {
	familyService service.FamilyService
	logger        *slog.Logger
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(logger *slog.Logger, familyService service.FamilyService) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
		logger:        logger,
	}
}

// Create creates a family owned by the caller
func (h *FamilyHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	family, err := h.familyService.CreateFamily(c.Request.Context(), userID, req.Name)
	if err != nil {
		if errors.Is(err, user.ErrEmptyFamilyName) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create family", "user_id", userID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, family)
}

// List returns every family the caller belongs to
func (h *FamilyHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	families, err := h.familyService.ListFamilies(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list families", "user_id", userID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, families)
}

// AddMember adds a registered user to the family by email
func (h *FamilyHandler) AddMember(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	familyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	member, err := h.familyService.AddMember(c.Request.Context(), userID, familyID, req.Email)
	if err != nil {
		var duplicate user.ErrDuplicateMember
		switch {
		case errors.Is(err, user.ErrUserNotFound{}):
			RespondNotFound(c, "No user registered with this email")
		case errors.As(err, &duplicate):
			RespondConflict(c, "User is already a member of this family")
		default:
			h.respondFamilyError(c, familyID, err)
		}
		return
	}

	RespondCreated(c, member)
}

// ListMembers returns the family roster
func (h *FamilyHandler) ListMembers(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	familyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	members, err := h.familyService.ListMembers(c.Request.Context(), userID, familyID)
	if err != nil {
		h.respondFamilyError(c, familyID, err)
		return
	}

	RespondOK(c, members)
}

// ShareAsset exposes one of the caller's assets to a family
func (h *FamilyHandler) ShareAsset(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	assetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ShareAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	familyID, err := uuid.Parse(req.FamilyID)
	if err != nil {
		RespondBadRequest(c, "family_id must be a UUID")
		return
	}

	share, err := h.familyService.ShareAsset(c.Request.Context(), userID, assetID, familyID)
	if err != nil {
		var assetNotFound asset.ErrAssetNotFound
		var notOwner asset.ErrNotOwner
		var duplicate user.ErrDuplicateShare
		switch {
		case errors.As(err, &assetNotFound):
			RespondNotFound(c, "Asset not found")
		case errors.As(err, &notOwner):
			RespondForbidden(c, "Asset belongs to a different user")
		case errors.As(err, &duplicate):
			RespondConflict(c, "Asset is already shared with this family")
		default:
			h.respondFamilyError(c, familyID, err)
		}
		return
	}

	RespondCreated(c, share)
}

// ListAssets returns every asset shared with the family
func (h *FamilyHandler) ListAssets(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	familyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	assets, err := h.familyService.ListFamilyAssets(c.Request.Context(), userID, familyID)
	if err != nil {
		h.respondFamilyError(c, familyID, err)
		return
	}

	RespondOK(c, assets)
}

func (h *FamilyHandler) respondFamilyError(c *gin.Context, familyID uuid.UUID, err error) {
	var notFound user.ErrFamilyNotFound
	var notMember user.ErrNotFamilyMember
	switch {
	case errors.As(err, &notFound):
		RespondNotFound(c, "Family not found")
	case errors.As(err, &notMember):
		RespondForbidden(c, "Not a member of this family")
	default:
		h.logger.Error("Family operation failed", "family_id", familyID.String(), "error", err)
		RespondInternalError(c)
	}
}

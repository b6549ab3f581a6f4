package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/finvault-backend/internal/domain/user"
	"github.com/finvault-backend/internal/vault_api/service"
)

// AuthHandler handles HTTP requests for registration and login
type AuthHandler struct {
	authService service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logger *slog.Logger, authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles creation of a new user account
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	u, token, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		var duplicate user.ErrDuplicateEmail
		switch {
		case errors.As(err, &duplicate):
			RespondConflict(c, "A user with this email already exists")
		case errors.Is(err, user.ErrPasswordTooShort),
			errors.Is(err, user.ErrInvalidEmail),
			errors.Is(err, user.ErrEmptyName):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to register user", "email", req.Email, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, AuthResponse{Token: token, User: mapUserToResponse(u)})
}

// Login handles credential verification and token issuance
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	u, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			RespondUnauthorized(c, "Invalid email or password")
			return
		}
		h.logger.Error("Failed to log user in", "email", req.Email, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, AuthResponse{Token: token, User: mapUserToResponse(u)})
}

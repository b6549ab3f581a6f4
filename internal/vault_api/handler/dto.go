package handler

import (
	"time"

	"github.com/finvault-backend/internal/domain/user"
)

// RegisterRequest represents a request to create a new user account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// AuthResponse carries the signed token plus the user it belongs to
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func mapUserToResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// UpdateAssetRequest is the allow-listed manual patch. Absent fields keep
// the stored value; monetary values travel as decimal strings.
type UpdateAssetRequest struct {
	Name         *string `json:"name,omitempty"`
	SubType      *string `json:"sub_type,omitempty"`
	Nominee      *string `json:"nominee,omitempty"`
	Address      *string `json:"address,omitempty"`
	Currency     *string `json:"currency,omitempty"`
	Balance      *string `json:"balance,omitempty"`
	TotalValue   *string `json:"total_value,omitempty"`
	Status       *string `json:"status,omitempty"`
	DocumentType *string `json:"document_type,omitempty"`
}

// EditAssetRequest re-runs extraction against an existing asset from pasted
// email content
type EditAssetRequest struct {
	Subject   string `json:"subject" binding:"required"`
	Body      string `json:"body" binding:"required"`
	Sender    string `json:"sender,omitempty"`
	EmailID   string `json:"email_id,omitempty"`
	EmailDate string `json:"email_date,omitempty"`
}

// ListAssetsQuery narrows the asset listing
type ListAssetsQuery struct {
	Type   string `form:"type"`
	Status string `form:"status"`
	Search string `form:"search"`
	PaginationParams
}

// ListTransactionsQuery narrows the transaction listing
type ListTransactionsQuery struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Status string `form:"status"`
	PaginationParams
}

// DeleteTransactionResponse reports the cascade outcome of a delete
type DeleteTransactionResponse struct {
	Deleted          bool  `json:"deleted"`
	DocumentsRemoved int64 `json:"documents_removed"`
}

// CreateFamilyRequest represents a request to create a family
type CreateFamilyRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddMemberRequest adds a registered user to a family by email
type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ShareAssetRequest shares an asset with a family
type ShareAssetRequest struct {
	FamilyID string `json:"family_id" binding:"required,uuid"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}

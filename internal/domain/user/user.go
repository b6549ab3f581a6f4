package user

import (
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyName            = errors.New("user name cannot be empty")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmptyFamilyName      = errors.New("family name cannot be empty")
	ErrInvalidTokenClaims   = errors.New("invalid token claims")
	ErrUnexpectedSignMethod = errors.New("unexpected token signing method")
)

// MinPasswordLength is enforced at registration.
const MinPasswordLength = 8

// User represents a registered vault user
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser creates a user with a pre-hashed password.
func NewUser(name, email, passwordHash string) (*User, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines user persistence operations
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	WithTx(tx pgx.Tx) Repository
}

// FamilyRepository defines family and asset-sharing persistence operations
type FamilyRepository interface {
	Create(ctx context.Context, family *Family) error
	GetByID(ctx context.Context, id uuid.UUID) (*Family, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*Family, error)
	AddMember(ctx context.Context, member *Member) error
	ListMembers(ctx context.Context, familyID uuid.UUID) ([]*Member, error)
	IsMember(ctx context.Context, familyID, userID uuid.UUID) (bool, error)
	ShareAsset(ctx context.Context, share *AssetShare) error
	ListSharedAssetIDs(ctx context.Context, familyID uuid.UUID) ([]uuid.UUID, error)
	WithTx(tx pgx.Tx) FamilyRepository
}

// ErrUserNotFound indicates missing user
type ErrUserNotFound struct {
	UserID uuid.UUID
	Email  string
}

func (e ErrUserNotFound) Error() string {
	if e.Email != "" {
		return "user not found: " + e.Email
	}
	return "user not found: " + e.UserID.String()
}

// Is implements the errors.Is interface for ErrUserNotFound
func (e ErrUserNotFound) Is(target error) bool {
	t, ok := target.(ErrUserNotFound)
	if !ok {
		return false
	}
	if t.UserID == uuid.Nil && t.Email == "" {
		return true
	}
	return e.UserID == t.UserID && e.Email == t.Email
}

// ErrDuplicateEmail indicates email uniqueness violation
type ErrDuplicateEmail struct {
	Email string
}

func (e ErrDuplicateEmail) Error() string {
	return "user with email already exists: " + e.Email
}

// ErrFamilyNotFound indicates missing family
type ErrFamilyNotFound struct {
	FamilyID uuid.UUID
}

func (e ErrFamilyNotFound) Error() string {
	return "family not found: " + e.FamilyID.String()
}

// ErrNotFamilyMember indicates a user outside the family
type ErrNotFamilyMember struct {
	FamilyID uuid.UUID
	UserID   uuid.UUID
}

func (e ErrNotFamilyMember) Error() string {
	return "user " + e.UserID.String() + " is not a member of family " + e.FamilyID.String()
}

// ErrDuplicateMember indicates the user already belongs to the family
type ErrDuplicateMember struct {
	FamilyID uuid.UUID
	UserID   uuid.UUID
}

func (e ErrDuplicateMember) Error() string {
	return "user " + e.UserID.String() + " is already a member of family " + e.FamilyID.String()
}

// ErrDuplicateShare indicates the asset is already shared with the family
type ErrDuplicateShare struct {
	AssetID  uuid.UUID
	FamilyID uuid.UUID
}

func (e ErrDuplicateShare) Error() string {
	return "asset " + e.AssetID.String() + " is already shared with family " + e.FamilyID.String()
}

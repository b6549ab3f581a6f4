package user

import (
	"time"

	"github.com/google/uuid"
)

// Family member roles
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Family groups users who share selected assets with each other
type Family struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFamily creates a family owned by the given user.
func NewFamily(name string, ownerID uuid.UUID) (*Family, error) {
	if name == "" {
		return nil, ErrEmptyFamilyName
	}
	return &Family{
		ID:        uuid.New(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}, nil
}

// Member is a user's membership in a family
type Member struct {
	FamilyID uuid.UUID `json:"family_id"`
	UserID   uuid.UUID `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// AssetShare exposes one asset to every member of a family
type AssetShare struct {
	ID        uuid.UUID `json:"id"`
	AssetID   uuid.UUID `json:"asset_id"`
	FamilyID  uuid.UUID `json:"family_id"`
	SharedBy  uuid.UUID `json:"shared_by"`
	CreatedAt time.Time `json:"created_at"`
}

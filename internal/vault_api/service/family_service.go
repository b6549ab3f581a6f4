package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finvault-backend/internal/domain/asset"
	"github.com/finvault-backend/internal/domain/user"
)

// FamilyServiceImpl implements the FamilyService interface
type FamilyServiceImpl struct {
	familyRepo user.FamilyRepository
	userRepo   user.Repository
	assetRepo  asset.Repository
}

// NewFamilyService creates a new family service
func NewFamilyService(familyRepo user.FamilyRepository, userRepo user.Repository, assetRepo asset.Repository) FamilyService {
	return &FamilyServiceImpl{
		familyRepo: familyRepo,
		userRepo:   userRepo,
		assetRepo:  assetRepo,
	}
}

// CreateFamily creates a family and enrolls the owner as its first member
func (s *FamilyServiceImpl) CreateFamily(ctx context.Context, ownerID uuid.UUID, name string) (*user.Family, error) {
	family, err := user.NewFamily(name, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.familyRepo.Create(ctx, family); err != nil {
		return nil, err
	}

	owner := &user.Member{
		FamilyID: family.ID,
		UserID:   ownerID,
		Role:     user.RoleOwner,
		JoinedAt: time.Now(),
	}
	if err := s.familyRepo.AddMember(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to enroll family owner: %w", err)
	}

	return family, nil
}

// ListFamilies returns every family the user belongs to
func (s *FamilyServiceImpl) ListFamilies(ctx context.Context, userID uuid.UUID) ([]*user.Family, error) {
	return s.familyRepo.ListForUser(ctx, userID)
}

// AddMember adds the user with the given email to the family. Only the
// family owner can add members.
func (s *FamilyServiceImpl) AddMember(ctx context.Context, actorID, familyID uuid.UUID, email string) (*user.Member, error) {
	family, err := s.familyRepo.GetByID(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if family.OwnerID != actorID {
		return nil, user.ErrNotFamilyMember{FamilyID: familyID, UserID: actorID}
	}

	candidate, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	exists, err := s.familyRepo.IsMember(ctx, familyID, candidate.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, user.ErrDuplicateMember{FamilyID: familyID, UserID: candidate.ID}
	}

	member := &user.Member{
		FamilyID: familyID,
		UserID:   candidate.ID,
		Role:     user.RoleMember,
		JoinedAt: time.Now(),
	}
	if err := s.familyRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// ListMembers returns the family roster, for members only
func (s *FamilyServiceImpl) ListMembers(ctx context.Context, actorID, familyID uuid.UUID) ([]*user.Member, error) {
	if err := s.requireMember(ctx, familyID, actorID); err != nil {
		return nil, err
	}
	return s.familyRepo.ListMembers(ctx, familyID)
}

// ShareAsset exposes one of the caller's assets to a family the caller
// belongs to
func (s *FamilyServiceImpl) ShareAsset(ctx context.Context, userID, assetID, familyID uuid.UUID) (*user.AssetShare, error) {
	owned, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if owned.UserID != userID {
		return nil, asset.ErrNotOwner{AssetID: assetID, UserID: userID}
	}

	if err := s.requireMember(ctx, familyID, userID); err != nil {
		return nil, err
	}

	share := &user.AssetShare{
		ID:        uuid.New(),
		AssetID:   assetID,
		FamilyID:  familyID,
		SharedBy:  userID,
		CreatedAt: time.Now(),
	}
	if err := s.familyRepo.ShareAsset(ctx, share); err != nil {
		return nil, err
	}
	return share, nil
}

// ListFamilyAssets returns every asset shared with the family, for members
// only
func (s *FamilyServiceImpl) ListFamilyAssets(ctx context.Context, userID, familyID uuid.UUID) ([]*asset.Asset, error) {
	if err := s.requireMember(ctx, familyID, userID); err != nil {
		return nil, err
	}

	ids, err := s.familyRepo.ListSharedAssetIDs(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*asset.Asset{}, nil
	}
	return s.assetRepo.ListByIDs(ctx, ids)
}

func (s *FamilyServiceImpl) requireMember(ctx context.Context, familyID, userID uuid.UUID) error {
	member, err := s.familyRepo.IsMember(ctx, familyID, userID)
	if err != nil {
		return err
	}
	if !member {
		return user.ErrNotFamilyMember{FamilyID: familyID, UserID: userID}
	}
	return nil
}

package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finvault-backend/internal/domain/asset"
	"github.com/finvault-backend/internal/domain/user"
)

type MockFamilyRepo struct {
	mock.Mock
}

func (m *MockFamilyRepo) Create(ctx context.Context, family *user.Family) error {
	args := m.Called(ctx, family)
	return args.Error(0)
}

func (m *MockFamilyRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.Family, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Family), args.Error(1)
}

func (m *MockFamilyRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*user.Family, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.Family), args.Error(1)
}

func (m *MockFamilyRepo) AddMember(ctx context.Context, member *user.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockFamilyRepo) ListMembers(ctx context.Context, familyID uuid.UUID) ([]*user.Member, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.Member), args.Error(1)
}

func (m *MockFamilyRepo) IsMember(ctx context.Context, familyID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, familyID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFamilyRepo) ShareAsset(ctx context.Context, share *user.AssetShare) error {
	args := m.Called(ctx, share)
	return args.Error(0)
}

func (m *MockFamilyRepo) ListSharedAssetIDs(ctx context.Context, familyID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockFamilyRepo) WithTx(tx pgx.Tx) user.FamilyRepository {
	return m
}

var _ user.FamilyRepository = (*MockFamilyRepo)(nil)

func TestFamilyService_CreateFamily(t *testing.T) {
	ownerID := uuid.New()

	t.Run("creates the family and enrolls the owner", func(t *testing.T) {
		familyRepo := &MockFamilyRepo{}
		svc := NewFamilyService(familyRepo, &MockUserRepo{}, &MockAssetRepo{})

		familyRepo.On("Create", mock.Anything, mock.MatchedBy(func(f *user.Family) bool {
			return f.Name == "Rao Family" && f.OwnerID == ownerID
		})).Return(nil).Once()
		familyRepo.On("AddMember", mock.Anything, mock.MatchedBy(func(m *user.Member) bool {
			return m.UserID == ownerID && m.Role == user.RoleOwner
		})).Return(nil).Once()

		family, err := svc.CreateFamily(context.Background(), ownerID, "Rao Family")

		require.NoError(t, err)
		assert.Equal(t, ownerID, family.OwnerID)
		familyRepo.AssertExpectations(t)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		familyRepo := &MockFamilyRepo{}
		svc := NewFamilyService(familyRepo, &MockUserRepo{}, &MockAssetRepo{})

		_, err := svc.CreateFamily(context.Background(), ownerID, "")

		assert.ErrorIs(t, err, user.ErrEmptyFamilyName)
		familyRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestFamilyService_AddMember(t *testing.T) {
	ownerID := uuid.New()
	familyID := uuid.New()
	family := &user.Family{ID: familyID, Name: "Rao Family", OwnerID: ownerID}

	t.Run("owner adds a registered user", func(t *testing.T) {
		familyRepo := &MockFamilyRepo{}
		userRepo := &MockUserRepo{}
		svc := NewFamilyService(familyRepo, userRepo, &MockAssetRepo{})

		candidate, err := user.NewUser("Dev Rao", "dev@example.com", "hash")
		require.NoError(t, err)

		familyRepo.On("GetByID", mock.Anything, familyID).Return(family, nil).Once()
		userRepo.On("GetByEmail", mock.Anything, "dev@example.com").Return(candidate, nil).Once()
		familyRepo.On("IsMember", mock.Anything, familyID, candidate.ID).Return(false, nil).Once()
		familyRepo.On("AddMember", mock.Anything, mock.MatchedBy(func(m *user.Member) bool {
			return m.UserID == candidate.ID && m.Role == user.RoleMember
		})).Return(nil).Once()

		member, err := svc.AddMember(context.Background(), ownerID, familyID, "dev@example.com")

		require.NoError(t, err)
		assert.Equal(t, candidate.ID, member.UserID)
		familyRepo.AssertExpectations(t)
	})

	t.Run("non-owner cannot add members", func(t *testing.T) {
		familyRepo := &MockFamilyRepo{}
		svc := NewFamilyService(familyRepo, &MockUserRepo{}, &MockAssetRepo{})

		familyRepo.On("GetByID", mock.Anything, familyID).Return(family, nil).Once()

		_, err := svc.AddMember(context.Background(), uuid.New(), familyID, "dev@example.com")

		var notMember user.ErrNotFamilyMember
		assert.ErrorAs(t, err, &notMember)
		familyRepo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything)
	})

	t.Run("duplicate member is rejected", func(t *testing.T) {
		familyRepo := &MockFamilyRepo{}
		userRepo := &MockUserRepo{}
		svc := NewFamilyService(familyRepo, userRepo, &MockAssetRepo{})

		candidate, err := user.NewUser("Dev Rao", "dev@example.com", "hash")
		require.NoError(t, err)

		familyRepo.On("GetByID", mock.Anything, familyID).Return(family, nil).Once()
		userRepo.On("GetByEmail", mock.Anything, "dev@example.com").Return(candidate, nil).Once()
		familyRepo.On("IsMember", mock.Anything, familyID, candidate.ID).Return(true, nil).Once()

		_, err = svc.AddMember(context.Background(), ownerID, familyID, "dev@example.com")

		var duplicate user.ErrDuplicateMember
		assert.ErrorAs(t, err, &duplicate)
	})
}

func TestFamilyService_ShareAsset(t *testing.T) {
	userID := uuid.New()
	familyID := uuid.New()

	t.Run("shares an owned asset with a joined family", func(t *testing.T) {
		familyRepo := &MockFamilyRepo{}
		assetRepo := &MockAssetRepo{}
		svc := NewFamilyService(familyRepo, &MockUserRepo{}, assetRepo)

		a := storedAsset(t, userID)
		assetRepo.On("GetByID", mock.Anything, a.ID).Return(a, nil).Once()
		familyRepo.On("IsMember", mock.Anything, familyID, userID).Return(true, nil).Once()
		familyRepo.On("ShareAsset", mock.Anything, mock.MatchedBy(func(s *user.AssetShare) bool {
			return s.AssetID == a.ID && s.FamilyID == familyID && s.SharedBy == userID
		})).Return(nil).Once()

		share, err := svc.ShareAsset(context.Background(), userID, a.ID, familyID)

		require.NoError(t, err)
		assert.Equal(t, a.ID, share.AssetID)
		familyRepo.AssertExpectations(t)
	})

	t.Run("cannot share a foreign asset", func(t *testing.T) {
		familyRepo := &MockFamilyRepo{}
		assetRepo := &MockAssetRepo{}
		svc := NewFamilyService(familyRepo, &MockUserRepo{}, assetRepo)

		a := storedAsset(t, uuid.New())
		assetRepo.On("GetByID", mock.Anything, a.ID).Return(a, nil).Once()

		_, err := svc.ShareAsset(context.Background(), userID, a.ID, familyID)

		var notOwner asset.ErrNotOwner
		assert.ErrorAs(t, err, &notOwner)
		familyRepo.AssertNotCalled(t, "ShareAsset", mock.Anything, mock.Anything)
	})

	t.Run("cannot share into a family the user is outside of", func(t *testing.T) {
		familyRepo := &MockFamilyRepo{}
		assetRepo := &MockAssetRepo{}
		svc := NewFamilyService(familyRepo, &MockUserRepo{}, assetRepo)

		a := storedAsset(t, userID)
		assetRepo.On("GetByID", mock.Anything, a.ID).Return(a, nil).Once()
		familyRepo.On("IsMember", mock.Anything, familyID, userID).Return(false, nil).Once()

		_, err := svc.ShareAsset(context.Background(), userID, a.ID, familyID)

		var notMember user.ErrNotFamilyMember
		assert.ErrorAs(t, err, &notMember)
	})
}

func TestFamilyService_ListFamilyAssets(t *testing.T) {
	userID := uuid.New()
	familyID := uuid.New()

	t.Run("resolves shared asset ids", func(t *testing.T) {
		familyRepo := &MockFamilyRepo{}
		assetRepo := &MockAssetRepo{}
		svc := NewFamilyService(familyRepo, &MockUserRepo{}, assetRepo)

		shared1 := storedAsset(t, uuid.New())
		ids := []uuid.UUID{shared1.ID}

		familyRepo.On("IsMember", mock.Anything, familyID, userID).Return(true, nil).Once()
		familyRepo.On("ListSharedAssetIDs", mock.Anything, familyID).Return(ids, nil).Once()
		assetRepo.On("ListByIDs", mock.Anything, ids).Return([]*asset.Asset{shared1}, nil).Once()

		assets, err := svc.ListFamilyAssets(context.Background(), userID, familyID)

		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, shared1.ID, assets[0].ID)
	})

	t.Run("no shares short-circuits the asset lookup", func(t *testing.T) {
		familyRepo := &MockFamilyRepo{}
		assetRepo := &MockAssetRepo{}
		svc := NewFamilyService(familyRepo, &MockUserRepo{}, assetRepo)

		familyRepo.On("IsMember", mock.Anything, familyID, userID).Return(true, nil).Once()
		familyRepo.On("ListSharedAssetIDs", mock.Anything, familyID).Return([]uuid.UUID{}, nil).Once()

		assets, err := svc.ListFamilyAssets(context.Background(), userID, familyID)

		require.NoError(t, err)
		assert.Empty(t, assets)
		assetRepo.AssertNotCalled(t, "ListByIDs", mock.Anything, mock.Anything)
	})

	t.Run("outsiders are rejected", func(t *testing.T) {
		familyRepo := &MockFamilyRepo{}
		svc := NewFamilyService(familyRepo, &MockUserRepo{}, &MockAssetRepo{})

		familyRepo.On("IsMember", mock.Anything, familyID, userID).Return(false, nil).Once()

		_, err := svc.ListFamilyAssets(context.Background(), userID, familyID)

		var notMember user.ErrNotFamilyMember
		assert.ErrorAs(t, err, &notMember)
	})
}

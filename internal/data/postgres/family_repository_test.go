package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finvault-backend/internal/domain/user"
)

func TestFamilyRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &FamilyRepository{querier: mock, logger: logger}

	family := &user.Family{
		ID:        uuid.New(),
		Name:      "Rao Family",
		OwnerID:   uuid.New(),
		CreatedAt: time.Now(),
	}

	t.Run("creates the family and enrolls the owner", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO families \(id, name, owner_id, created_at\)`).
			WithArgs(family.ID, family.Name, family.OwnerID, family.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(`INSERT INTO family_members \(family_id, user_id, role, joined_at\)`).
			WithArgs(family.ID, family.OwnerID, user.RoleOwner, family.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, family)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFamilyRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &FamilyRepository{querier: mock, logger: logger}
	familyID := uuid.New()

	query := `
		SELECT id, name, owner_id, created_at
		FROM families
		WHERE id = \$1
	`

	t.Run("found", func(t *testing.T) {
		ownerID := uuid.New()
		rows := pgxmock.NewRows([]string{"id", "name", "owner_id", "created_at"}).
			AddRow(familyID, "Rao Family", ownerID, time.Now())

		mock.ExpectQuery(query).WithArgs(familyID).WillReturnRows(rows)

		family, err := repo.GetByID(ctx, familyID)
		require.NoError(t, err)
		assert.Equal(t, ownerID, family.OwnerID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(familyID).WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(ctx, familyID)
		var notFound user.ErrFamilyNotFound
		assert.ErrorAs(t, err, &notFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFamilyRepository_AddMember(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &FamilyRepository{querier: mock, logger: logger}

	member := &user.Member{
		FamilyID: uuid.New(),
		UserID:   uuid.New(),
		Role:     user.RoleMember,
		JoinedAt: time.Now(),
	}

	query := `INSERT INTO family_members \(family_id, user_id, role, joined_at\)`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(member.FamilyID, member.UserID, member.Role, member.JoinedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.AddMember(ctx, member)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate member maps to domain error", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(member.FamilyID, member.UserID, member.Role, member.JoinedAt).
			WillReturnError(&pgconn.PgError{Code: uniqueViolation})

		err := repo.AddMember(ctx, member)
		var duplicate user.ErrDuplicateMember
		require.ErrorAs(t, err, &duplicate)
		assert.Equal(t, member.FamilyID, duplicate.FamilyID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFamilyRepository_IsMember(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &FamilyRepository{querier: mock, logger: logger}
	familyID := uuid.New()
	userID := uuid.New()

	query := `SELECT EXISTS\(SELECT 1 FROM family_members WHERE family_id = \$1 AND user_id = \$2\)`

	t.Run("member", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(familyID, userID).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		isMember, err := repo.IsMember(ctx, familyID, userID)
		require.NoError(t, err)
		assert.True(t, isMember)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("outsider", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(familyID, userID).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		isMember, err := repo.IsMember(ctx, familyID, userID)
		require.NoError(t, err)
		assert.False(t, isMember)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFamilyRepository_ShareAsset(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &FamilyRepository{querier: mock, logger: logger}

	share := &user.AssetShare{
		ID:        uuid.New(),
		AssetID:   uuid.New(),
		FamilyID:  uuid.New(),
		SharedBy:  uuid.New(),
		CreatedAt: time.Now(),
	}

	query := `INSERT INTO asset_shares \(id, asset_id, family_id, shared_by, created_at\)`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(share.ID, share.AssetID, share.FamilyID, share.SharedBy, share.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.ShareAsset(ctx, share)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate share maps to domain error", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(share.ID, share.AssetID, share.FamilyID, share.SharedBy, share.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: uniqueViolation})

		err := repo.ShareAsset(ctx, share)
		var duplicate user.ErrDuplicateShare
		require.ErrorAs(t, err, &duplicate)
		assert.Equal(t, share.AssetID, duplicate.AssetID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFamilyRepository_ListSharedAssetIDs(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &FamilyRepository{querier: mock, logger: logger}
	familyID := uuid.New()

	first := uuid.New()
	second := uuid.New()
	rows := pgxmock.NewRows([]string{"asset_id"}).AddRow(first).AddRow(second)

	mock.ExpectQuery(`(?s)SELECT asset_id.+FROM asset_shares.+WHERE family_id = \$1`).
		WithArgs(familyID).
		WillReturnRows(rows)

	ids, err := repo.ListSharedAssetIDs(ctx, familyID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first, second}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyRepository_ListForUser(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &FamilyRepository{querier: mock, logger: logger}
	userID := uuid.New()

	familyID := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "name", "owner_id", "created_at"}).
		AddRow(familyID, "Rao Family", userID, time.Now())

	mock.ExpectQuery(`(?s)SELECT f\.id, f\.name, f\.owner_id, f\.created_at.+FROM families f.+JOIN family_members fm ON fm\.family_id = f\.id.+WHERE fm\.user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(rows)

	families, err := repo.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, familyID, families[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

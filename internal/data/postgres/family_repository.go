package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/finvault-backend/internal/domain/user"
	"github.com/finvault-backend/internal/platform/persistence"
)

// FamilyRepository implements the user.FamilyRepository interface for PostgreSQL
type FamilyRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewFamilyRepository creates a new PostgreSQL family repository
func NewFamilyRepository(logger *slog.Logger, db *persistence.PostgresDB) user.FamilyRepository {
	return &FamilyRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations.
func (r *FamilyRepository) WithTx(tx pgx.Tx) user.FamilyRepository {
	return &FamilyRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new family and enrolls the owner as its first member.
func (r *FamilyRepository) Create(ctx context.Context, family *user.Family) error {
	query := `
		INSERT INTO families (id, name, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.querier.Exec(ctx, query,
		family.ID,
		family.Name,
		family.OwnerID,
		family.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create family", "family_id", family.ID.String(), "error", err)
		return fmt.Errorf("failed to create family: %w", err)
	}

	memberQuery := `
		INSERT INTO family_members (family_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err = r.querier.Exec(ctx, memberQuery,
		family.ID,
		family.OwnerID,
		user.RoleOwner,
		family.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to enroll family owner", "family_id", family.ID.String(), "error", err)
		return fmt.Errorf("failed to enroll family owner: %w", err)
	}

	return nil
}

// GetByID retrieves a family by its ID.
// Returns ErrFamilyNotFound if the family doesn't exist.
func (r *FamilyRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.Family, error) {
	query := `
		SELECT id, name, owner_id, created_at
		FROM families
		WHERE id = $1
	`

	var family user.Family
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&family.ID,
		&family.Name,
		&family.OwnerID,
		&family.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrFamilyNotFound{FamilyID: id}
		}
		r.logger.Error("Failed to get family", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get family: %w", err)
	}

	return &family, nil
}

// ListForUser retrieves every family the user is a member of.
func (r *FamilyRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*user.Family, error) {
	query := `
		SELECT f.id, f.name, f.owner_id, f.created_at
		FROM families f
		JOIN family_members fm ON fm.family_id = f.id
		WHERE fm.user_id = $1
		ORDER BY f.created_at
	`

	rows, err := r.querier.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list families", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	defer rows.Close()

	var families []*user.Family
	for rows.Next() {
		var family user.Family
		if err := rows.Scan(&family.ID, &family.Name, &family.OwnerID, &family.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, &family)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over families: %w", err)
	}

	return families, nil
}

// AddMember enrolls a user into a family.
// Returns ErrDuplicateMember if the user already belongs to it.
func (r *FamilyRepository) AddMember(ctx context.Context, member *user.Member) error {
	query := `
		INSERT INTO family_members (family_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.querier.Exec(ctx, query,
		member.FamilyID,
		member.UserID,
		member.Role,
		member.JoinedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrDuplicateMember{FamilyID: member.FamilyID, UserID: member.UserID}
		}
		r.logger.Error("Failed to add family member",
			"family_id", member.FamilyID.String(),
			"user_id", member.UserID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to add family member: %w", err)
	}

	return nil
}

// ListMembers retrieves the members of a family.
func (r *FamilyRepository) ListMembers(ctx context.Context, familyID uuid.UUID) ([]*user.Member, error) {
	query := `
		SELECT family_id, user_id, role, joined_at
		FROM family_members
		WHERE family_id = $1
		ORDER BY joined_at
	`

	rows, err := r.querier.Query(ctx, query, familyID)
	if err != nil {
		r.logger.Error("Failed to list family members", "family_id", familyID.String(), "error", err)
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	defer rows.Close()

	var members []*user.Member
	for rows.Next() {
		var member user.Member
		if err := rows.Scan(&member.FamilyID, &member.UserID, &member.Role, &member.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		members = append(members, &member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over family members: %w", err)
	}

	return members, nil
}

// IsMember reports whether the user belongs to the family.
func (r *FamilyRepository) IsMember(ctx context.Context, familyID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM family_members WHERE family_id = $1 AND user_id = $2)`

	var isMember bool
	if err := r.querier.QueryRow(ctx, query, familyID, userID).Scan(&isMember); err != nil {
		r.logger.Error("Failed to check family membership",
			"family_id", familyID.String(),
			"user_id", userID.String(),
			"error", err,
		)
		return false, fmt.Errorf("failed to check family membership: %w", err)
	}

	return isMember, nil
}

// ShareAsset exposes an asset to a family.
// Returns ErrDuplicateShare if the asset is already shared with it.
func (r *FamilyRepository) ShareAsset(ctx context.Context, share *user.AssetShare) error {
	query := `
		INSERT INTO asset_shares (id, asset_id, family_id, shared_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query,
		share.ID,
		share.AssetID,
		share.FamilyID,
		share.SharedBy,
		share.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrDuplicateShare{AssetID: share.AssetID, FamilyID: share.FamilyID}
		}
		r.logger.Error("Failed to share asset",
			"asset_id", share.AssetID.String(),
			"family_id", share.FamilyID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to share asset: %w", err)
	}

	return nil
}

// ListSharedAssetIDs retrieves the ids of every asset shared with a family.
func (r *FamilyRepository) ListSharedAssetIDs(ctx context.Context, familyID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT asset_id
		FROM asset_shares
		WHERE family_id = $1
		ORDER BY created_at
	`

	rows, err := r.querier.Query(ctx, query, familyID)
	if err != nil {
		r.logger.Error("Failed to list shared assets", "family_id", familyID.String(), "error", err)
		return nil, fmt.Errorf("failed to list shared assets: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan shared asset id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over shared assets: %w", err)
	}

	return ids, nil
}

package asset

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/finvault-backend/internal/domain/shared"
)

// Filter narrows asset listings. Zero values mean "no constraint".
type Filter struct {
	Type   shared.AssetType
	Status shared.AssetStatus
	Search string
	Limit  int
	Offset int
}

// TypeStat aggregates assets of one type.
type TypeStat struct {
	Type    shared.AssetType `json:"type"`
	Count   int64            `json:"count"`
	Balance decimal.Decimal  `json:"balance"`
}

// StatusStat aggregates assets in one status.
type StatusStat struct {
	Status shared.AssetStatus `json:"status"`
	Count  int64              `json:"count"`
}

// Stats summarizes a user's portfolio.
type Stats struct {
	Total        int64           `json:"total"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	ByType       []TypeStat      `json:"by_type"`
	ByStatus     []StatusStat    `json:"by_status"`
}

// Repository defines asset persistence operations
type Repository interface {
	Create(ctx context.Context, asset *Asset) error
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)
	List(ctx context.Context, userID uuid.UUID, filter Filter) ([]*Asset, int64, error)
	Update(ctx context.Context, asset *Asset) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status shared.AssetStatus) error

	// LinkTransaction points every listed asset at the transaction in a
	// single batched update.
	LinkTransaction(ctx context.Context, ids []uuid.UUID, transactionID uuid.UUID) error

	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, userID uuid.UUID) (*Stats, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Asset, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrAssetNotFound indicates missing asset
type ErrAssetNotFound struct {
	AssetID uuid.UUID
}

func (e ErrAssetNotFound) Error() string {
	return "asset not found: " + e.AssetID.String()
}

// ErrNotOwner indicates an asset belonging to a different user
type ErrNotOwner struct {
	AssetID uuid.UUID
	UserID  uuid.UUID
}

func (e ErrNotOwner) Error() string {
	return "asset " + e.AssetID.String() + " does not belong to user " + e.UserID.String()
}

// Package postgres provides PostgreSQL implementations of the domain repositories.
// It handles all database operations while maintaining transaction safety and
// proper error handling for the document vault.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/finvault-backend/internal/domain/asset"
	"github.com/finvault-backend/internal/domain/shared"
	"github.com/finvault-backend/internal/platform/persistence"
)

const assetColumns = `id, user_id, type, sub_type, name, balance, total_value, currency,
		account_number, ifsc_code, branch_name, bank_name, policy_number, fund_name,
		folio_number, crn_number, nominee, address, status, document_type, file_name,
		file_size, mime_type, file_content, document_metadata, email_id, transaction_id,
		issues, required_fields, created_at, updated_at, last_updated`

// AssetRepository implements the asset.Repository interface for PostgreSQL
type AssetRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAssetRepository creates a new PostgreSQL asset repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewAssetRepository(logger *slog.Logger, db *persistence.PostgresDB) asset.Repository {
	return &AssetRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls.
func (r *AssetRepository) WithTx(tx pgx.Tx) asset.Repository {
	return &AssetRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new asset in the database.
func (r *AssetRepository) Create(ctx context.Context, a *asset.Asset) error {
	metadata, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal asset metadata: %w", err)
	}

	query := `
		INSERT INTO assets (` + assetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)
	`

	_, err = r.querier.Exec(ctx, query,
		a.ID,
		a.UserID,
		a.Type,
		a.SubType,
		a.Name,
		nullDecimal(a.Balance),
		nullDecimal(a.TotalValue),
		a.Currency,
		a.AccountNumber,
		a.IFSCCode,
		a.BranchName,
		a.BankName,
		a.PolicyNumber,
		a.FundName,
		a.FolioNumber,
		a.CRNNumber,
		a.Nominee,
		a.Address,
		a.Status,
		a.DocumentType,
		a.FileName,
		a.FileSize,
		a.MimeType,
		a.FileContent,
		metadata,
		a.EmailID,
		a.TransactionID,
		a.Issues,
		a.RequiredFields,
		a.CreatedAt,
		a.UpdatedAt,
		a.LastUpdated,
	)
	if err != nil {
		r.logger.Error("Failed to create asset", "asset_id", a.ID.String(), "error", err)
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

// GetByID retrieves an asset by its ID.
// Returns ErrAssetNotFound if the asset doesn't exist.
func (r *AssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*asset.Asset, error) {
	query := `
		SELECT ` + assetColumns + `
		FROM assets
		WHERE id = $1
	`

	a, err := scanAsset(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, asset.ErrAssetNotFound{AssetID: id}
		}
		r.logger.Error("Failed to get asset", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return a, nil
}

// List retrieves a filtered page of a user's assets together with the total
// count matching the filter.
func (r *AssetRepository) List(ctx context.Context, userID uuid.UUID, filter asset.Filter) ([]*asset.Asset, int64, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, "type = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		idx := strconv.Itoa(len(args))
		conditions = append(conditions, "(name ILIKE $"+idx+" OR bank_name ILIKE $"+idx+" OR file_name ILIKE $"+idx+")")
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM assets WHERE " + where
	if err := r.querier.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count assets", "user_id", userID.String(), "error", err)
		return nil, 0, fmt.Errorf("failed to count assets: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)
	limitIdx := strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetIdx := strconv.Itoa(len(args))

	query := `
		SELECT ` + assetColumns + `
		FROM assets
		WHERE ` + where + `
		ORDER BY created_at DESC
		LIMIT $` + limitIdx + ` OFFSET $` + offsetIdx

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list assets", "user_id", userID.String(), "error", err)
		return nil, 0, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	assets, err := collectAssets(rows)
	if err != nil {
		return nil, 0, err
	}

	return assets, total, nil
}

// Update persists all mutable fields of an asset.
// Returns ErrAssetNotFound if the asset doesn't exist.
func (r *AssetRepository) Update(ctx context.Context, a *asset.Asset) error {
	metadata, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal asset metadata: %w", err)
	}

	query := `
		UPDATE assets
		SET type = $1, sub_type = $2, name = $3, balance = $4, total_value = $5,
			currency = $6, account_number = $7, ifsc_code = $8, branch_name = $9,
			bank_name = $10, policy_number = $11, fund_name = $12, folio_number = $13,
			crn_number = $14, nominee = $15, address = $16, status = $17,
			document_type = $18, file_name = $19, file_size = $20, mime_type = $21,
			file_content = $22, document_metadata = $23, email_id = $24,
			transaction_id = $25, issues = $26, required_fields = $27,
			updated_at = $28, last_updated = $29
		WHERE id = $30
	`

	result, err := r.querier.Exec(ctx, query,
		a.Type,
		a.SubType,
		a.Name,
		nullDecimal(a.Balance),
		nullDecimal(a.TotalValue),
		a.Currency,
		a.AccountNumber,
		a.IFSCCode,
		a.BranchName,
		a.BankName,
		a.PolicyNumber,
		a.FundName,
		a.FolioNumber,
		a.CRNNumber,
		a.Nominee,
		a.Address,
		a.Status,
		a.DocumentType,
		a.FileName,
		a.FileSize,
		a.MimeType,
		a.FileContent,
		metadata,
		a.EmailID,
		a.TransactionID,
		a.Issues,
		a.RequiredFields,
		a.UpdatedAt,
		a.LastUpdated,
		a.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update asset", "asset_id", a.ID.String(), "error", err)
		return fmt.Errorf("failed to update asset: %w", err)
	}

	if result.RowsAffected() == 0 {
		return asset.ErrAssetNotFound{AssetID: a.ID}
	}

	return nil
}

// UpdateStatus changes only the asset's lifecycle status.
// Returns ErrAssetNotFound if the asset doesn't exist.
func (r *AssetRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status shared.AssetStatus) error {
	query := `
		UPDATE assets
		SET status = $1, updated_at = NOW(), last_updated = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update asset status", "asset_id", id.String(), "error", err)
		return fmt.Errorf("failed to update asset status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return asset.ErrAssetNotFound{AssetID: id}
	}

	return nil
}

// LinkTransaction back-links every listed asset to the transaction that
// produced it in a single batched update.
func (r *AssetRepository) LinkTransaction(ctx context.Context, ids []uuid.UUID, transactionID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE assets
		SET transaction_id = $1, updated_at = NOW(), last_updated = NOW()
		WHERE id = ANY($2)
	`

	_, err := r.querier.Exec(ctx, query, transactionID, ids)
	if err != nil {
		r.logger.Error("Failed to link assets to transaction",
			"transaction_id", transactionID.String(),
			"asset_count", len(ids),
			"error", err,
		)
		return fmt.Errorf("failed to link assets to transaction: %w", err)
	}

	return nil
}

// Delete permanently removes an asset.
// Returns ErrAssetNotFound if the asset doesn't exist.
func (r *AssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.querier.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete asset", "asset_id", id.String(), "error", err)
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	if result.RowsAffected() == 0 {
		return asset.ErrAssetNotFound{AssetID: id}
	}

	return nil
}

// Stats aggregates a user's portfolio by type and status.
func (r *AssetRepository) Stats(ctx context.Context, userID uuid.UUID) (*asset.Stats, error) {
	stats := &asset.Stats{
		TotalBalance: decimal.Zero,
	}

	typeQuery := `
		SELECT type, COUNT(*), COALESCE(SUM(balance), 0)
		FROM assets
		WHERE user_id = $1
		GROUP BY type
		ORDER BY type
	`

	rows, err := r.querier.Query(ctx, typeQuery, userID)
	if err != nil {
		r.logger.Error("Failed to aggregate assets by type", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to aggregate assets by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stat asset.TypeStat
		if err := rows.Scan(&stat.Type, &stat.Count, &stat.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan type aggregate: %w", err)
		}
		stats.ByType = append(stats.ByType, stat)
		stats.Total += stat.Count
		stats.TotalBalance = stats.TotalBalance.Add(stat.Balance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over type aggregates: %w", err)
	}

	statusQuery := `
		SELECT status, COUNT(*)
		FROM assets
		WHERE user_id = $1
		GROUP BY status
		ORDER BY status
	`

	statusRows, err := r.querier.Query(ctx, statusQuery, userID)
	if err != nil {
		r.logger.Error("Failed to aggregate assets by status", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to aggregate assets by status: %w", err)
	}
	defer statusRows.Close()

	for statusRows.Next() {
		var stat asset.StatusStat
		if err := statusRows.Scan(&stat.Status, &stat.Count); err != nil {
			return nil, fmt.Errorf("failed to scan status aggregate: %w", err)
		}
		stats.ByStatus = append(stats.ByStatus, stat)
	}
	if err := statusRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over status aggregates: %w", err)
	}

	return stats, nil
}

// ListByIDs retrieves assets by id, in no particular order.
func (r *AssetRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*asset.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + assetColumns + `
		FROM assets
		WHERE id = ANY($1)
	`

	rows, err := r.querier.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error("Failed to list assets by ids", "count", len(ids), "error", err)
		return nil, fmt.Errorf("failed to list assets by ids: %w", err)
	}
	defer rows.Close()

	return collectAssets(rows)
}

// scanAsset reads one asset row. The caller owns pgx.ErrNoRows mapping.
func scanAsset(row pgx.Row) (*asset.Asset, error) {
	var (
		a          asset.Asset
		balance    decimal.NullDecimal
		totalValue decimal.NullDecimal
		metadata   []byte
	)

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Type,
		&a.SubType,
		&a.Name,
		&balance,
		&totalValue,
		&a.Currency,
		&a.AccountNumber,
		&a.IFSCCode,
		&a.BranchName,
		&a.BankName,
		&a.PolicyNumber,
		&a.FundName,
		&a.FolioNumber,
		&a.CRNNumber,
		&a.Nominee,
		&a.Address,
		&a.Status,
		&a.DocumentType,
		&a.FileName,
		&a.FileSize,
		&a.MimeType,
		&a.FileContent,
		&metadata,
		&a.EmailID,
		&a.TransactionID,
		&a.Issues,
		&a.RequiredFields,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.LastUpdated,
	)
	if err != nil {
		return nil, err
	}

	if balance.Valid {
		a.Balance = &balance.Decimal
	}
	if totalValue.Valid {
		a.TotalValue = &totalValue.Decimal
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &a.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal asset metadata: %w", err)
		}
	}

	return &a, nil
}

func collectAssets(rows pgx.Rows) ([]*asset.Asset, error) {
	var assets []*asset.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over assets: %w", err)
	}
	return assets, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

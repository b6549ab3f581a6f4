package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/finvault-backend/internal/domain/asset"
	"github.com/finvault-backend/internal/domain/shared"
	"github.com/finvault-backend/internal/pipeline"
)

// AssetServiceImpl implements the AssetService interface
type AssetServiceImpl struct {
	assetRepo asset.Repository
	processor pipeline.ProcessingService
}

// NewAssetService creates a new asset service. The processor runs the
// edit-asset path synchronously.
func NewAssetService(assetRepo asset.Repository, processor pipeline.ProcessingService) AssetService {
	return &AssetServiceImpl{
		assetRepo: assetRepo,
		processor: processor,
	}
}

// List returns the user's assets matching the filter plus the total count
func (s *AssetServiceImpl) List(ctx context.Context, userID uuid.UUID, filter asset.Filter) ([]*asset.Asset, int64, error) {
	return s.assetRepo.List(ctx, userID, filter)
}

// Stats returns the aggregated portfolio summary
func (s *AssetServiceImpl) Stats(ctx context.Context, userID uuid.UUID) (*asset.Stats, error) {
	return s.assetRepo.Stats(ctx, userID)
}

// GetAsset returns the asset after verifying ownership
func (s *AssetServiceImpl) GetAsset(ctx context.Context, userID, assetID uuid.UUID) (*asset.Asset, error) {
	return s.ownedAsset(ctx, userID, assetID)
}

// UpdateAsset applies an allow-listed patch through the shared merge logic,
// recording the overwrite in the asset's update history
func (s *AssetServiceImpl) UpdateAsset(ctx context.Context, userID, assetID uuid.UUID, patch *asset.Patch) (*asset.Asset, error) {
	existing, err := s.ownedAsset(ctx, userID, assetID)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && !asset.ValidStatus(*patch.Status) {
		return nil, asset.ErrInvalidStatus
	}
	if patch.Empty() {
		return existing, nil
	}

	existing.RecordUpdate("", "manual update")
	merged := asset.Merge(existing, patch)

	if err := s.assetRepo.Update(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// ApproveAsset is the status-only user confirmation of an extracted asset
func (s *AssetServiceImpl) ApproveAsset(ctx context.Context, userID, assetID uuid.UUID) (*asset.Asset, error) {
	existing, err := s.ownedAsset(ctx, userID, assetID)
	if err != nil {
		return nil, err
	}

	existing.Approve()
	if err := s.assetRepo.UpdateStatus(ctx, assetID, existing.Status); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteAsset removes the asset after verifying ownership
func (s *AssetServiceImpl) DeleteAsset(ctx context.Context, userID, assetID uuid.UUID) error {
	if _, err := s.ownedAsset(ctx, userID, assetID); err != nil {
		return err
	}
	return s.assetRepo.Delete(ctx, assetID)
}

// EditAsset re-runs the extraction pipeline against the asset. The
// ownership check happens here so the handler can map it to a status code;
// the pipeline repeats it defensively but folds failures into the result.
func (s *AssetServiceImpl) EditAsset(ctx context.Context, userID, assetID uuid.UUID, payload *shared.EmailPayload) (*shared.UpdateResult, error) {
	if _, err := s.ownedAsset(ctx, userID, assetID); err != nil {
		return nil, err
	}
	return s.processor.UpdateFinancialEmail(ctx, userID, assetID, payload), nil
}

func (s *AssetServiceImpl) ownedAsset(ctx context.Context, userID, assetID uuid.UUID) (*asset.Asset, error) {
	existing, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, asset.ErrNotOwner{AssetID: assetID, UserID: userID}
	}
	return existing, nil
}

package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/finvault-backend/internal/domain/asset"
	"github.com/finvault-backend/internal/domain/document"
	"github.com/finvault-backend/internal/domain/shared"
	"github.com/finvault-backend/internal/domain/transaction"
	"github.com/finvault-backend/internal/domain/user"
	"github.com/finvault-backend/internal/extraction"
)

// AuthService defines registration and login operations
type AuthService interface {
	// Register creates a user with a bcrypt password hash and returns a
	// signed token. Returns ErrDuplicateEmail when the email is taken.
	Register(ctx context.Context, name, email, password string) (*user.User, string, error)

	// Login verifies the credentials and returns a signed token.
	// Returns ErrInvalidCredentials on any mismatch.
	Login(ctx context.Context, email, password string) (*user.User, string, error)
}

// AssetService defines the read and mutation operations on a user's assets
type AssetService interface {
	List(ctx context.Context, userID uuid.UUID, filter asset.Filter) ([]*asset.Asset, int64, error)
	Stats(ctx context.Context, userID uuid.UUID) (*asset.Stats, error)

	// GetAsset returns the asset after an ownership check.
	// Returns ErrAssetNotFound or ErrNotOwner.
	GetAsset(ctx context.Context, userID, assetID uuid.UUID) (*asset.Asset, error)

	// UpdateAsset applies an allow-listed patch to the asset.
	UpdateAsset(ctx context.Context, userID, assetID uuid.UUID, patch *asset.Patch) (*asset.Asset, error)

	// ApproveAsset is the status-only user confirmation.
	ApproveAsset(ctx context.Context, userID, assetID uuid.UUID) (*asset.Asset, error)

	DeleteAsset(ctx context.Context, userID, assetID uuid.UUID) error

	// EditAsset re-runs the extraction pipeline against an existing asset
	// synchronously. Ownership is checked before the pipeline runs; the
	// pipeline itself never returns an error.
	EditAsset(ctx context.Context, userID, assetID uuid.UUID, payload *shared.EmailPayload) (*shared.UpdateResult, error)
}

// TransactionService defines read and delete operations on transactions
type TransactionService interface {
	List(ctx context.Context, userID uuid.UUID, filter transaction.Filter) ([]*transaction.Transaction, int64, error)
	GetTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*transaction.Transaction, error)

	// DeleteTransaction removes the transaction and its raw PDF document
	// records. Assets keep existing with transaction_id set to NULL by the
	// schema; processed document records are kept. Returns the number of
	// document records removed.
	DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) (int64, error)
}

// DocumentService defines read operations on document records
type DocumentService interface {
	List(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*document.Record, int64, error)
	GetDocument(ctx context.Context, userID, documentID uuid.UUID) (*document.Record, error)
}

// Upload is one multipart file received on the upload endpoint.
type Upload struct {
	Filename string
	MimeType string
	Size     int64
	Data     []byte
	Password string
}

// ErrDocumentLocked reports a password-protected document that could not be
// opened with the supplied password or any guessed candidate. Handlers map
// it to 403 with the outcome as structured details.
type ErrDocumentLocked struct {
	Outcome *extraction.UnlockOutcome
}

func (e ErrDocumentLocked) Error() string {
	return "document is password protected and could not be opened"
}

// UploadService runs the ingestion pipeline synchronously for direct uploads
type UploadService interface {
	// ProcessUpload stores the raw file, extracts its text and runs the
	// pipeline. Returns ErrDocumentLocked when the file cannot be opened.
	ProcessUpload(ctx context.Context, userID uuid.UUID, upload *Upload) (*shared.ProcessResult, error)
}

// FamilyService defines family and asset-sharing operations
type FamilyService interface {
	CreateFamily(ctx context.Context, ownerID uuid.UUID, name string) (*user.Family, error)
	ListFamilies(ctx context.Context, userID uuid.UUID) ([]*user.Family, error)

	// AddMember adds the user with the given email to the family. Only the
	// family owner can add members.
	AddMember(ctx context.Context, actorID, familyID uuid.UUID, email string) (*user.Member, error)

	ListMembers(ctx context.Context, actorID, familyID uuid.UUID) ([]*user.Member, error)

	// ShareAsset exposes one of the caller's assets to a family the caller
	// belongs to.
	ShareAsset(ctx context.Context, userID, assetID, familyID uuid.UUID) (*user.AssetShare, error)

	// ListFamilyAssets returns every asset shared with the family, for
	// members only.
	ListFamilyAssets(ctx context.Context, userID, familyID uuid.UUID) ([]*asset.Asset, error)
}

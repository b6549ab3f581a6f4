package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/finvault-backend/internal/domain/document"
	"github.com/finvault-backend/internal/domain/shared"
)

const (
	// DocumentCollectionName is the name of the document records collection in MongoDB
	DocumentCollectionName = "documents"
)

// DocumentRepository implements the document.Repository interface for MongoDB
type DocumentRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewDocumentRepository creates a new MongoDB document repository
func NewDocumentRepository(logger *slog.Logger, db *mongo.Database) document.Repository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new document record after checking for duplicates.
// Returns ErrDuplicateRecord if a record with the same document ID exists.
func (r *DocumentRepository) Create(ctx context.Context, record *document.Record) error {
	collection := r.db.Collection(DocumentCollectionName)

	existing, err := r.GetByDocumentID(ctx, record.DocumentID)
	if err != nil && !errors.Is(err, document.ErrRecordNotFound{}) {
		r.logger.Error("Failed to check for existing document record",
			"document_id", record.DocumentID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing document record: %w", err)
	}

	if existing != nil {
		return document.ErrDuplicateRecord{DocumentID: record.DocumentID}
	}

	_, err = collection.InsertOne(ctx, record)
	if err != nil {
		r.logger.Error("Failed to create document record",
			"document_id", record.DocumentID.String(),
			"error", err)
		return fmt.Errorf("failed to create document record: %w", err)
	}

	return nil
}

// GetByDocumentID retrieves a document record by its document ID.
// Returns ErrRecordNotFound if no record exists.
func (r *DocumentRepository) GetByDocumentID(ctx context.Context, documentID uuid.UUID) (*document.Record, error) {
	collection := r.db.Collection(DocumentCollectionName)

	filter := bson.M{"document_id": documentID}
	var record document.Record
	err := collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, document.ErrRecordNotFound{DocumentID: documentID}
		}
		r.logger.Error("Failed to get document record",
			"document_id", documentID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get document record: %w", err)
	}

	return &record, nil
}

// GetByUserID retrieves a page of a user's document records, newest first.
func (r *DocumentRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*document.Record, error) {
	collection := r.db.Collection(DocumentCollectionName)

	filter := bson.M{"user_id": userID}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.logger.Error("Failed to find document records",
			"user_id", userID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to find document records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*document.Record
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode document records",
			"user_id", userID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode document records: %w", err)
	}

	return records, nil
}

// CountByUserID returns the total number of a user's document records.
func (r *DocumentRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	collection := r.db.Collection(DocumentCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		r.logger.Error("Failed to count document records",
			"user_id", userID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count document records: %w", err)
	}

	return count, nil
}

// UpdateStatus updates a record's processing status, stamping processed_at
// on terminal states.
// Returns ErrRecordNotFound if the record doesn't exist.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, documentID uuid.UUID, status shared.DocumentStatus) error {
	collection := r.db.Collection(DocumentCollectionName)

	update := bson.M{"status": status}
	if status == shared.DocumentStatusProcessed || status == shared.DocumentStatusFailed {
		update["processed_at"] = time.Now().UTC()
	}

	result, err := collection.UpdateOne(ctx,
		bson.M{"document_id": documentID},
		bson.M{"$set": update},
	)
	if err != nil {
		r.logger.Error("Failed to update document record status",
			"document_id", documentID.String(),
			"status", string(status),
			"error", err)
		return fmt.Errorf("failed to update document record status: %w", err)
	}

	if result.MatchedCount == 0 {
		return document.ErrRecordNotFound{DocumentID: documentID}
	}

	return nil
}

// DeleteByTransactionID removes the records of the given kind tied to a
// transaction. Processed records are deliberately kept when the caller
// restricts the kind to raw originals.
func (r *DocumentRepository) DeleteByTransactionID(ctx context.Context, transactionID uuid.UUID, kind shared.DocumentKind) (int64, error) {
	collection := r.db.Collection(DocumentCollectionName)

	result, err := collection.DeleteMany(ctx, bson.M{
		"transaction_id": transactionID,
		"kind":           kind,
	})
	if err != nil {
		r.logger.Error("Failed to delete document records by transaction",
			"transaction_id", transactionID.String(),
			"kind", string(kind),
			"error", err)
		return 0, fmt.Errorf("failed to delete document records by transaction: %w", err)
	}

	return result.DeletedCount, nil
}

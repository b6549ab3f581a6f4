package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/finvault-backend/internal/domain/document"
)

// DocumentServiceImpl implements the DocumentService interface
type DocumentServiceImpl struct {
	documentRepo document.Repository
}

// NewDocumentService creates a new document service
func NewDocumentService(documentRepo document.Repository) DocumentService {
	return &DocumentServiceImpl{
		documentRepo: documentRepo,
	}
}

// List returns a page of the user's document records plus the total count
func (s *DocumentServiceImpl) List(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*document.Record, int64, error) {
	offset := (page - 1) * perPage
	records, err := s.documentRepo.GetByUserID(ctx, userID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.documentRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// GetDocument returns the record. Foreign records come back as not-found so
// responses never reveal other users' document IDs.
func (s *DocumentServiceImpl) GetDocument(ctx context.Context, userID, documentID uuid.UUID) (*document.Record, error) {
	record, err := s.documentRepo.GetByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, document.ErrRecordNotFound{DocumentID: documentID}
	}
	return record, nil
}

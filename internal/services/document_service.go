package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"brainbin/internal/logger"
	"brainbin/internal/repositories"
	"brainbin/internal/services/dto"
	"brainbin/internal/storage"
	"brainbin/pkg/apperrors"
)

// DocumentService serves the file listing and deletion operations.
type DocumentService struct {
	documents repositories.DocumentRepository
	chunks    repositories.ChunkRepository
	store     storage.Storage
}

func NewDocumentService(
	documents repositories.DocumentRepository,
	chunks repositories.ChunkRepository,
	store storage.Storage,
) *DocumentService {
	return &DocumentService{
		documents: documents,
		chunks:    chunks,
		store:     store,
	}
}

// List returns the user's active documents with usage totals.
func (s *DocumentService) List(userID uuid.UUID) (*dto.DocumentListResponse, error) {
	docs, err := s.documents.FindActiveByUser(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "files", "Failed to list documents", http.StatusInternalServerError)
	}

	resp := &dto.DocumentListResponse{
		Documents: make([]dto.DocumentResponse, 0, len(docs)),
	}
	for _, doc := range docs {
		resp.TotalBytes += doc.SizeBytes
		resp.Documents = append(resp.Documents, dto.DocumentResponse{
			ID:          doc.ID.String(),
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			SizeBytes:   doc.SizeBytes,
			Version:     doc.Version,
			Status:      string(doc.Status),
			ChunkCount:  doc.ChunkCount,
			CreatedAt:   doc.CreatedAt,
		})
	}
	resp.TotalCount = len(resp.Documents)
	return resp, nil
}

// Delete removes a document, its chunks and its stored blob. Only the
// owner may delete.
func (s *DocumentService) Delete(ctx context.Context, userID, documentID uuid.UUID) error {
	doc, err := s.documents.FindByID(documentID)
	if err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "files", "Failed to load document", http.StatusInternalServerError)
	}
	if doc.UserID != userID {
		return apperrors.NewForbiddenError("You do not own this document")
	}

	if err := s.chunks.DeleteByDocument(doc.ID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "files", "Failed to remove document chunks", http.StatusInternalServerError)
	}

	if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
		// The database row is the source of truth; an orphaned blob is
		// only logged.
		logger.CtxWarn(ctx, "Failed to delete stored file", "key", doc.StorageKey, "error", err)
	}

	if err := s.documents.Delete(doc.ID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "files", "Failed to delete document", http.StatusInternalServerError)
	}

	logger.CtxInfo(ctx, "Document deleted", "document_id", doc.ID, "filename", doc.Filename)
	return nil
}

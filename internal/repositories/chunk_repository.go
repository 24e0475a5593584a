package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"brainbin/internal/models"
)

type ChunkRepository interface {
	CreateBatch(chunks []models.DocumentChunk) error
	FindByUser(userID uuid.UUID) ([]models.DocumentChunk, error)
	DeleteByDocument(documentID uuid.UUID) error
	CountByDocument(documentID uuid.UUID) (int64, error)
}

type ChunkRepositoryImpl struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) ChunkRepository {
	return &ChunkRepositoryImpl{db: db}
}

func (r *ChunkRepositoryImpl) CreateBatch(chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	// Insert in slices of 100 to keep statements bounded.
	return r.db.CreateInBatches(chunks, 100).Error
}

// FindByUser returns chunks belonging to the user's active documents.
func (r *ChunkRepositoryImpl) FindByUser(userID uuid.UUID) ([]models.DocumentChunk, error) {
	var chunks []models.DocumentChunk
	err := r.db.
		Joins("JOIN documents ON documents.id = document_chunks.document_id").
		Where("document_chunks.user_id = ? AND documents.is_active = ? AND documents.deleted_at IS NULL", userID, true).
		Find(&chunks).Error
	return chunks, err
}

func (r *ChunkRepositoryImpl) DeleteByDocument(documentID uuid.UUID) error {
	return r.db.Unscoped().
		Where("document_id = ?", documentID).
		Delete(&models.DocumentChunk{}).Error
}

func (r *ChunkRepositoryImpl) CountByDocument(documentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.DocumentChunk{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	return count, err
}

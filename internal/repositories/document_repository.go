package repositories

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"brainbin/internal/models"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentRepository interface {
	Create(doc *models.Document) error
	Update(doc *models.Document) error
	FindByID(id uuid.UUID) (*models.Document, error)
	FindActiveByUser(userID uuid.UUID) ([]models.Document, error)
	FindActiveByHash(userID uuid.UUID, fileHash string) (*models.Document, error)
	FindActiveByFilename(userID uuid.UUID, filename string) (*models.Document, error)
	CountActiveByUser(userID uuid.UUID) (int64, error)
	SumActiveSizeByUser(userID uuid.UUID) (int64, error)
	Deactivate(id uuid.UUID) error
	Delete(id uuid.UUID) error
}

type DocumentRepositoryImpl struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &DocumentRepositoryImpl{db: db}
}

func (r *DocumentRepositoryImpl) Create(doc *models.Document) error {
	return r.db.Create(doc).Error
}

func (r *DocumentRepositoryImpl) Update(doc *models.Document) error {
	return r.db.Save(doc).Error
}

func (r *DocumentRepositoryImpl) FindByID(id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := r.db.First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepositoryImpl) FindActiveByUser(userID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *DocumentRepositoryImpl) FindActiveByHash(userID uuid.UUID, fileHash string) (*models.Document, error) {
	var doc models.Document
	err := r.db.
		Where("user_id = ? AND file_hash = ? AND is_active = ?", userID, fileHash, true).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepositoryImpl) FindActiveByFilename(userID uuid.UUID, filename string) (*models.Document, error) {
	var doc models.Document
	err := r.db.
		Where("user_id = ? AND filename = ? AND is_active = ?", userID, filename, true).
		Order("version DESC").
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepositoryImpl) CountActiveByUser(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Document{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	return count, err
}

func (r *DocumentRepositoryImpl) SumActiveSizeByUser(userID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.Model(&models.Document{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Select("COALESCE(SUM(size_bytes), 0)").
		Scan(&total).Error
	return total, err
}

func (r *DocumentRepositoryImpl) Deactivate(id uuid.UUID) error {
	return r.db.Model(&models.Document{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *DocumentRepositoryImpl) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Document{}, "id = ?", id).Error
}

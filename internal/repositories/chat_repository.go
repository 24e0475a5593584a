package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"brainbin/internal/models"
)

type ChatRepository interface {
	Create(entry *models.ChatHistory) error
	FindRecentByUser(userID uuid.UUID, limit int) ([]models.ChatHistory, error)
	DeleteByUser(userID uuid.UUID) error
}

type ChatRepositoryImpl struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &ChatRepositoryImpl{db: db}
}

func (r *ChatRepositoryImpl) Create(entry *models.ChatHistory) error {
	return r.db.Create(entry).Error
}

// FindRecentByUser returns the newest entries first.
func (r *ChatRepositoryImpl) FindRecentByUser(userID uuid.UUID, limit int) ([]models.ChatHistory, error) {
	var entries []models.ChatHistory
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *ChatRepositoryImpl) DeleteByUser(userID uuid.UUID) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.ChatHistory{}).Error
}

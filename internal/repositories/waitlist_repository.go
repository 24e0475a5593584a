package repositories

import (
	"errors"

	"gorm.io/gorm"

	"brainbin/internal/models"
)

var ErrWaitlistEntryExists = errors.New("email is already on the waitlist")

type WaitlistRepository interface {
	Create(entry *models.WaitlistEntry) error
	Count() (int64, error)
}

type WaitlistRepositoryImpl struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &WaitlistRepositoryImpl{db: db}
}

func (r *WaitlistRepositoryImpl) Create(entry *models.WaitlistEntry) error {
	var count int64
	if err := r.db.Model(&models.WaitlistEntry{}).Where("email = ?", entry.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrWaitlistEntryExists
	}
	return r.db.Create(entry).Error
}

func (r *WaitlistRepositoryImpl) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.WaitlistEntry{}).Count(&count).Error
	return count, err
}

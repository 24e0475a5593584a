package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// USER
// ============================================================================

type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Name         string     `json:"name"`
	IsVerified   bool       `gorm:"default:false" json:"is_verified"`
	VerifyToken  string     `gorm:"index" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`

	Documents []Document `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// ============================================================================
// REFRESH TOKEN
// ============================================================================

type RefreshToken struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	TokenHash string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (t *RefreshToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

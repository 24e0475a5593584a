package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ============================================================================
// CHAT HISTORY
// ============================================================================

type ChatHistory struct {
	BaseModel
	UserID   uuid.UUID         `gorm:"type:uuid;index;not null" json:"user_id"`
	Question string            `gorm:"type:text;not null" json:"question"`
	Answer   string            `gorm:"type:text;not null" json:"answer"`
	Sources  datatypes.JSON    `gorm:"type:jsonb" json:"sources,omitempty"`
	Metadata datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (ChatHistory) TableName() string {
	return "chat_history"
}

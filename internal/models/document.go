package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ============================================================================
// DOCUMENT
// ============================================================================

type DocumentStatus string

const (
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusReady      DocumentStatus = "ready"
	DocumentStatusFailed     DocumentStatus = "failed"
)

type Document struct {
	BaseModel
	UserID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	Filename    string         `gorm:"not null" json:"filename"`
	ContentType string         `gorm:"not null" json:"content_type"`
	SizeBytes   int64          `gorm:"not null" json:"size_bytes"`
	FileHash    string         `gorm:"index;not null" json:"file_hash"`
	StorageKey  string         `gorm:"not null" json:"-"`
	Version     int            `gorm:"default:1" json:"version"`
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`
	Status      DocumentStatus `gorm:"default:'processing'" json:"status"`
	ChunkCount  int            `gorm:"default:0" json:"chunk_count"`
	Error       string         `json:"error,omitempty"`

	User   User            `gorm:"foreignKey:UserID" json:"-"`
	Chunks []DocumentChunk `gorm:"foreignKey:DocumentID" json:"-"`
}

func (Document) TableName() string {
	return "documents"
}

// ============================================================================
// DOCUMENT CHUNK
// ============================================================================

// DocumentChunk holds one embedded slice of a document. The embedding is
// stored as a JSON array of float32 so any Postgres schema can carry it.
type DocumentChunk struct {
	BaseModel
	DocumentID uuid.UUID         `gorm:"type:uuid;index;not null" json:"document_id"`
	UserID     uuid.UUID         `gorm:"type:uuid;index;not null" json:"user_id"`
	ChunkIndex int               `gorm:"not null" json:"chunk_index"`
	Content    string            `gorm:"type:text;not null" json:"content"`
	Embedding  datatypes.JSON    `gorm:"type:jsonb" json:"-"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`

	Document Document `gorm:"foreignKey:DocumentID" json:"-"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}

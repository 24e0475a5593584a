package dto

import "time"

// ============================================================================
// INGEST
// ============================================================================

type IngestResponse struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Version    int    `json:"version"`
	ChunkCount int    `json:"chunk_count"`
	SizeBytes  int64  `json:"size_bytes"`
	Replaced   bool   `json:"replaced"`
	Duplicate  bool   `json:"duplicate,omitempty"`
}

type AsyncIngestResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ============================================================================
// FILES
// ============================================================================

type DocumentResponse struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Version     int       `json:"version"`
	Status      string    `json:"status"`
	ChunkCount  int       `json:"chunk_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type DocumentListResponse struct {
	Documents  []DocumentResponse `json:"documents"`
	TotalCount int                `json:"total_count"`
	TotalBytes int64              `json:"total_bytes"`
}

// ============================================================================
// QUERY
// ============================================================================

type QueryRequest struct {
	Question string `json:"question" validate:"required,min=3,max=5000"`
}

type QueryResponse struct {
	Success    bool     `json:"success"`
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	ChunksUsed int      `json:"chunks_used"`
}

// ============================================================================
// WAITLIST
// ============================================================================

type WaitlistRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Source string `json:"source" validate:"max=100"`
}

type WaitlistResponse struct {
	Message  string `json:"message"`
	Position int64  `json:"position"`
}

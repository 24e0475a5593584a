package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"brainbin/internal/chunking"
	"brainbin/internal/config"
	"brainbin/internal/extract"
	"brainbin/internal/filesafety"
	"brainbin/internal/logger"
	"brainbin/internal/models"
	"brainbin/internal/repositories"
	"brainbin/internal/sanitize"
	"brainbin/internal/services/dto"
	"brainbin/internal/storage"
	"brainbin/pkg/apperrors"
)

// IngestService runs the document pipeline: screen, store, extract,
// chunk, embed, persist. Re-uploading a filename supersedes the previous
// version; re-uploading identical bytes is a no-op.
type IngestService struct {
	documents repositories.DocumentRepository
	chunks    repositories.ChunkRepository
	checker   *filesafety.Checker
	extractor *extract.Extractor
	chunker   *chunking.Chunker
	inference *Inference
	store     storage.Storage
	cfg       *config.Config
}

func NewIngestService(
	documents repositories.DocumentRepository,
	chunks repositories.ChunkRepository,
	inference *Inference,
	store storage.Storage,
	cfg *config.Config,
) *IngestService {
	return &IngestService{
		documents: documents,
		chunks:    chunks,
		checker:   filesafety.NewChecker(),
		extractor: extract.NewExtractor(),
		chunker:   chunking.NewChunker(),
		inference: inference,
		store:     store,
		cfg:       cfg,
	}
}

// Ingest processes one upload end to end.
func (s *IngestService) Ingest(ctx context.Context, userID uuid.UUID, filename string, data []byte) (*dto.IngestResponse, error) {
	filename = sanitize.Filename(filename)

	if len(data) == 0 {
		return nil, apperrors.ErrEmptyPayload()
	}
	if int64(len(data)) > s.cfg.Ingest.MaxFileSize {
		return nil, apperrors.ErrFileTooLarge(fmt.Sprintf("File exceeds the %dMB upload limit", s.cfg.Ingest.MaxFileSize/1024/1024))
	}

	safety := s.checker.Check(data, filename)
	if !safety.Safe {
		return s.safetyError(safety)
	}

	// Identical bytes already in the knowledge base: nothing to do.
	if existing, err := s.documents.FindActiveByHash(userID, safety.SHA256); err == nil {
		return &dto.IngestResponse{
			DocumentID: existing.ID.String(),
			Filename:   existing.Filename,
			Version:    existing.Version,
			ChunkCount: existing.ChunkCount,
			SizeBytes:  existing.SizeBytes,
			Duplicate:  true,
		}, nil
	} else if !errors.Is(err, repositories.ErrDocumentNotFound) {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "ingest", "Failed to check for duplicates", http.StatusInternalServerError)
	}

	// Same filename means a new version replacing the old one; quota
	// checks skip the document being replaced.
	previous, err := s.documents.FindActiveByFilename(userID, filename)
	if err != nil && !errors.Is(err, repositories.ErrDocumentNotFound) {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "ingest", "Failed to check for previous versions", http.StatusInternalServerError)
	}

	if err := s.checkQuotas(userID, int64(len(data)), previous); err != nil {
		return nil, err
	}

	doc := &models.Document{
		UserID:      userID,
		Filename:    filename,
		ContentType: safety.DetectedMIME,
		SizeBytes:   int64(len(data)),
		FileHash:    safety.SHA256,
		Status:      models.DocumentStatusProcessing,
		Version:     1,
		IsActive:    true,
	}
	if previous != nil {
		doc.Version = previous.Version + 1
	}
	// The key is version-scoped so superseded versions can be deleted
	// without touching the active version's blob.
	doc.StorageKey = fmt.Sprintf("%s/v%d/%s", userID, doc.Version, filename)

	if err := s.store.Save(ctx, doc.StorageKey, bytes.NewReader(data), safety.DetectedMIME); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "ingest", "Failed to store file", http.StatusInternalServerError)
	}

	if err := s.documents.Create(doc); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "ingest", "Failed to register document", http.StatusInternalServerError)
	}

	chunkCount, err := s.process(ctx, doc, data)
	if err != nil {
		doc.Status = models.DocumentStatusFailed
		doc.Error = err.Error()
		if uerr := s.documents.Update(doc); uerr != nil {
			logger.CtxError(ctx, "Failed to record ingest failure", "document_id", doc.ID, "error", uerr)
		}
		return nil, err
	}

	doc.Status = models.DocumentStatusReady
	doc.ChunkCount = chunkCount
	if err := s.documents.Update(doc); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "ingest", "Failed to finalize document", http.StatusInternalServerError)
	}

	// The old version goes inactive only after its replacement is ready,
	// so queries never see an empty knowledge base mid-ingest.
	if previous != nil {
		if err := s.documents.Deactivate(previous.ID); err != nil {
			logger.CtxError(ctx, "Failed to deactivate previous version", "document_id", previous.ID, "error", err)
		}
	}

	logger.CtxInfo(ctx, "Document ingested",
		"document_id", doc.ID, "filename", filename, "version", doc.Version, "chunks", chunkCount)

	return &dto.IngestResponse{
		DocumentID: doc.ID.String(),
		Filename:   filename,
		Version:    doc.Version,
		ChunkCount: chunkCount,
		SizeBytes:  doc.SizeBytes,
		Replaced:   previous != nil,
	}, nil
}

func (s *IngestService) process(ctx context.Context, doc *models.Document, data []byte) (int, error) {
	text, err := s.extractor.Text(data, doc.Filename)
	if err != nil {
		return 0, apperrors.ErrExtractionFailed(err)
	}

	pieces := s.chunker.Split(text, map[string]interface{}{
		"source":   doc.Filename,
		"version":  doc.Version,
		"document": doc.ID.String(),
	})
	if len(pieces) == 0 {
		return 0, apperrors.ErrExtractionFailed(errors.New("document produced no chunks"))
	}

	texts := make([]string, len(pieces))
	for i, p := range pieces {
		texts[i] = p.Text
	}

	vectors, err := s.inference.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, err
	}

	rows := make([]models.DocumentChunk, len(pieces))
	for i, p := range pieces {
		embJSON, err := json.Marshal(vectors[i])
		if err != nil {
			return 0, apperrors.InternalError(err)
		}
		rows[i] = models.DocumentChunk{
			DocumentID: doc.ID,
			UserID:     doc.UserID,
			ChunkIndex: i,
			Content:    p.Text,
			Embedding:  datatypes.JSON(embJSON),
			Metadata:   datatypes.JSONMap(p.Metadata),
		}
	}

	if err := s.chunks.CreateBatch(rows); err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "ingest", "Failed to persist chunks", http.StatusInternalServerError)
	}
	return len(rows), nil
}

func (s *IngestService) checkQuotas(userID uuid.UUID, incoming int64, replacing *models.Document) error {
	count, err := s.documents.CountActiveByUser(userID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "ingest", "Failed to check document count", http.StatusInternalServerError)
	}
	if replacing == nil && count >= int64(s.cfg.Ingest.MaxDocuments) {
		return apperrors.ErrDocumentLimitExceeded(s.cfg.Ingest.MaxDocuments)
	}

	used, err := s.documents.SumActiveSizeByUser(userID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "ingest", "Failed to check storage usage", http.StatusInternalServerError)
	}
	if replacing != nil {
		used -= replacing.SizeBytes
	}
	if used+incoming > s.cfg.Ingest.MaxUserStorage {
		return apperrors.ErrStorageLimitExceeded()
	}
	return nil
}

func (s *IngestService) safetyError(res filesafety.Result) (*dto.IngestResponse, error) {
	switch {
	case res.Reason == "file is empty":
		return nil, apperrors.ErrEmptyPayload()
	case res.DetectedMIME != "" && !res.Safe && containsAny(res.Reason, "not supported", "does not match"):
		return nil, apperrors.ErrUnsupportedMedia(res.DetectedMIME)
	case containsAny(res.Reason, "not supported"):
		return nil, apperrors.ErrUnsupportedMedia("unknown")
	case containsAny(res.Reason, "limit"):
		return nil, apperrors.ErrFileTooLarge(res.Reason)
	default:
		return nil, apperrors.ErrUnsafeFile(res.Reason)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

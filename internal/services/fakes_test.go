package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"brainbin/internal/models"
	"brainbin/internal/repositories"
)

// In-memory repository doubles for the pipeline tests.

type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*models.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[uuid.UUID]*models.Document)}
}

func (r *fakeDocumentRepo) Create(doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = time.Now()
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocumentRepo) Update(doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocumentRepo) FindByID(id uuid.UUID) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc, ok := r.docs[id]; ok {
		cp := *doc
		return &cp, nil
	}
	return nil, repositories.ErrDocumentNotFound
}

func (r *fakeDocumentRepo) FindActiveByUser(userID uuid.UUID) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Document
	for _, doc := range r.docs {
		if doc.UserID == userID && doc.IsActive {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) FindActiveByHash(userID uuid.UUID, fileHash string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.UserID == userID && doc.FileHash == fileHash && doc.IsActive {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, repositories.ErrDocumentNotFound
}

func (r *fakeDocumentRepo) FindActiveByFilename(userID uuid.UUID, filename string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *models.Document
	for _, doc := range r.docs {
		if doc.UserID == userID && doc.Filename == filename && doc.IsActive {
			if best == nil || doc.Version > best.Version {
				best = doc
			}
		}
	}
	if best == nil {
		return nil, repositories.ErrDocumentNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *fakeDocumentRepo) CountActiveByUser(userID uuid.UUID) (int64, error) {
	docs, _ := r.FindActiveByUser(userID)
	return int64(len(docs)), nil
}

func (r *fakeDocumentRepo) SumActiveSizeByUser(userID uuid.UUID) (int64, error) {
	docs, _ := r.FindActiveByUser(userID)
	var total int64
	for _, doc := range docs {
		total += doc.SizeBytes
	}
	return total, nil
}

func (r *fakeDocumentRepo) Deactivate(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc, ok := r.docs[id]; ok {
		doc.IsActive = false
	}
	return nil
}

func (r *fakeDocumentRepo) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

type fakeChunkRepo struct {
	mu     sync.Mutex
	chunks []models.DocumentChunk
	docs   *fakeDocumentRepo
}

func newFakeChunkRepo(docs *fakeDocumentRepo) *fakeChunkRepo {
	return &fakeChunkRepo{docs: docs}
}

func (r *fakeChunkRepo) CreateBatch(chunks []models.DocumentChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range chunks {
		if chunks[i].ID == uuid.Nil {
			chunks[i].ID = uuid.New()
		}
	}
	r.chunks = append(r.chunks, chunks...)
	return nil
}

func (r *fakeChunkRepo) FindByUser(userID uuid.UUID) ([]models.DocumentChunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.DocumentChunk
	for _, ch := range r.chunks {
		if ch.UserID != userID {
			continue
		}
		if doc, err := r.docs.FindByID(ch.DocumentID); err != nil || !doc.IsActive {
			continue
		}
		out = append(out, ch)
	}
	return out, nil
}

func (r *fakeChunkRepo) DeleteByDocument(documentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []models.DocumentChunk
	for _, ch := range r.chunks {
		if ch.DocumentID != documentID {
			kept = append(kept, ch)
		}
	}
	r.chunks = kept
	return nil
}

func (r *fakeChunkRepo) CountByDocument(documentID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, ch := range r.chunks {
		if ch.DocumentID == documentID {
			count++
		}
	}
	return count, nil
}

type fakeChatRepo struct {
	mu      sync.Mutex
	entries []models.ChatHistory
}

func (r *fakeChatRepo) Create(entry *models.ChatHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeChatRepo) FindRecentByUser(userID uuid.UUID, limit int) ([]models.ChatHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ChatHistory
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].UserID == userID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *fakeChatRepo) DeleteByUser(userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []models.ChatHistory
	for _, e := range r.entries {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	return nil
}

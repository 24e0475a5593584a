package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainbin/internal/config"
	"brainbin/internal/embedding"
	"brainbin/internal/storage"
	"brainbin/pkg/apperrors"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Ingest.MaxFileSize = 5 * 1024 * 1024
	cfg.Ingest.MaxUserStorage = 1024 * 1024
	cfg.Ingest.MaxDocuments = 3
	cfg.Model.TimeoutSeconds = 10
	cfg.Model.MaxConcurrent = 2
	return cfg
}

func newTestIngest(t *testing.T) (*IngestService, *fakeDocumentRepo, *fakeChunkRepo) {
	t.Helper()

	model, err := embedding.Load()
	require.NoError(t, err)

	store, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	docs := newFakeDocumentRepo()
	chunks := newFakeChunkRepo(docs)
	cfg := testConfig()

	return NewIngestService(docs, chunks, NewInference(model, cfg), store, cfg), docs, chunks
}

func sampleText() []byte {
	return []byte(strings.Repeat("The quarterly revenue grew in every region we operate. ", 40))
}

func TestIngest(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("text document end to end", func(t *testing.T) {
		svc, docs, chunks := newTestIngest(t)

		resp, err := svc.Ingest(ctx, userID, "report.txt", sampleText())
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Version)
		assert.False(t, resp.Replaced)
		assert.Greater(t, resp.ChunkCount, 0)

		stored, err := docs.FindActiveByUser(userID)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "report.txt", stored[0].Filename)

		count, err := chunks.CountByDocument(stored[0].ID)
		require.NoError(t, err)
		assert.Equal(t, int64(resp.ChunkCount), count)
	})

	t.Run("identical bytes are a duplicate no-op", func(t *testing.T) {
		svc, docs, _ := newTestIngest(t)

		first, err := svc.Ingest(ctx, userID, "report.txt", sampleText())
		require.NoError(t, err)

		again, err := svc.Ingest(ctx, userID, "report.txt", sampleText())
		require.NoError(t, err)
		assert.True(t, again.Duplicate)
		assert.Equal(t, first.DocumentID, again.DocumentID)

		count, err := docs.CountActiveByUser(userID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("same filename new content bumps version", func(t *testing.T) {
		svc, docs, _ := newTestIngest(t)

		_, err := svc.Ingest(ctx, userID, "report.txt", sampleText())
		require.NoError(t, err)

		updated := append(sampleText(), []byte("New paragraph with updated figures for this quarter.")...)
		resp, err := svc.Ingest(ctx, userID, "report.txt", updated)
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Version)
		assert.True(t, resp.Replaced)

		// Only the new version stays active.
		active, err := docs.FindActiveByUser(userID)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, 2, active[0].Version)
	})

	t.Run("empty payload rejected", func(t *testing.T) {
		svc, _, _ := newTestIngest(t)

		_, err := svc.Ingest(ctx, userID, "report.txt", nil)
		requireAppCode(t, err, apperrors.CodeValidationFailed)
	})

	t.Run("unsupported content rejected with its detected type", func(t *testing.T) {
		svc, _, _ := newTestIngest(t)

		png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 64)...)
		_, err := svc.Ingest(ctx, userID, "image.png", png)
		requireAppCode(t, err, apperrors.CodeUnsupportedMedia)
	})

	t.Run("document count quota enforced", func(t *testing.T) {
		svc, _, _ := newTestIngest(t)

		for i, name := range []string{"a.txt", "b.txt", "c.txt"} {
			content := append(sampleText(), []byte(strings.Repeat("x", i+1))...)
			_, err := svc.Ingest(ctx, userID, name, content)
			require.NoError(t, err)
		}

		_, err := svc.Ingest(ctx, userID, "d.txt", append(sampleText(), []byte("dddd")...))
		requireAppCode(t, err, apperrors.CodeDocumentLimitExceeded)
	})

	t.Run("replacement does not count against the document quota", func(t *testing.T) {
		svc, _, _ := newTestIngest(t)

		for i, name := range []string{"a.txt", "b.txt", "c.txt"} {
			content := append(sampleText(), []byte(strings.Repeat("y", i+1))...)
			_, err := svc.Ingest(ctx, userID, name, content)
			require.NoError(t, err)
		}

		resp, err := svc.Ingest(ctx, userID, "a.txt", append(sampleText(), []byte("replacement")...))
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Version)
	})
}

func requireAppCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

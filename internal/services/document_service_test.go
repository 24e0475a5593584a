package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainbin/internal/embedding"
	"brainbin/internal/storage"
)

func TestDeleteSupersededVersion(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	model, err := embedding.Load()
	require.NoError(t, err)

	store, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	docs := newFakeDocumentRepo()
	chunks := newFakeChunkRepo(docs)
	cfg := testConfig()
	ingest := NewIngestService(docs, chunks, NewInference(model, cfg), store, cfg)
	files := NewDocumentService(docs, chunks, store)

	first, err := ingest.Ingest(ctx, userID, "report.txt", sampleText())
	require.NoError(t, err)

	updated := append(sampleText(), []byte("Updated figures for the final quarter. ")...)
	second, err := ingest.Ingest(ctx, userID, "report.txt", updated)
	require.NoError(t, err)
	require.Equal(t, 2, second.Version)
	require.True(t, second.Replaced)

	oldDoc, err := docs.FindByID(uuid.MustParse(first.DocumentID))
	require.NoError(t, err)
	activeDoc, err := docs.FindByID(uuid.MustParse(second.DocumentID))
	require.NoError(t, err)

	// Each version owns its own blob.
	require.NotEqual(t, oldDoc.StorageKey, activeDoc.StorageKey)

	require.NoError(t, files.Delete(ctx, userID, oldDoc.ID))

	exists, err := store.Exists(ctx, activeDoc.StorageKey)
	require.NoError(t, err)
	assert.True(t, exists, "active document's stored object must survive deleting a superseded version")

	exists, err = store.Exists(ctx, oldDoc.StorageKey)
	require.NoError(t, err)
	assert.False(t, exists)
}

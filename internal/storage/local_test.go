package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(Config{BasePath: t.TempDir()})
	require.NoError(t, err)
	return s
}

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("save and get roundtrip", func(t *testing.T) {
		s := newTestStorage(t)

		err := s.Save(ctx, "user-1/doc.txt", strings.NewReader("hello"), "text/plain")
		require.NoError(t, err)

		rc, err := s.Get(ctx, "user-1/doc.txt")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("exists and size", func(t *testing.T) {
		s := newTestStorage(t)

		ok, err := s.Exists(ctx, "missing.txt")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.Save(ctx, "a.txt", strings.NewReader("12345"), "text/plain"))

		ok, err = s.Exists(ctx, "a.txt")
		require.NoError(t, err)
		assert.True(t, ok)

		size, err := s.GetSize(ctx, "a.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(5), size)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newTestStorage(t)

		require.NoError(t, s.Save(ctx, "a.txt", strings.NewReader("x"), "text/plain"))
		require.NoError(t, s.Delete(ctx, "a.txt"))
		require.NoError(t, s.Delete(ctx, "a.txt"))

		ok, err := s.Exists(ctx, "a.txt")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("path escape rejected", func(t *testing.T) {
		s := newTestStorage(t)

		err := s.Save(ctx, "../outside.txt", strings.NewReader("x"), "text/plain")
		// Keys are cleaned against the base path, so this must stay inside.
		if err == nil {
			ok, err := s.Exists(ctx, "outside.txt")
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})
}

func TestNewStorage(t *testing.T) {
	t.Run("local backend", func(t *testing.T) {
		s, err := NewStorage(Config{Type: "local", BasePath: t.TempDir()})
		require.NoError(t, err)
		assert.IsType(t, &LocalStorage{}, s)
	})

	t.Run("unknown backend rejected", func(t *testing.T) {
		_, err := NewStorage(Config{Type: "ftp"})
		assert.Error(t, err)
	})
}

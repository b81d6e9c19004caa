package fs

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()

	store, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	return store.(*Backend)
}

func TestStoreAndOpen(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	key, err := b.Store(ctx, strings.NewReader("png bytes"), "photo.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "artists/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	rc, err := b.Open(ctx, key)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
}

func TestStoreGeneratesUniqueKeys(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	first, err := b.Store(ctx, strings.NewReader("a"), "photo.png")
	require.NoError(t, err)
	second, err := b.Store(ctx, strings.NewReader("b"), "photo.png")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDelete(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	key, err := b.Store(ctx, strings.NewReader("png bytes"), "photo.png")
	require.NoError(t, err)

	require.NoError(t, b.Delete(ctx, key))

	_, err = b.Open(ctx, key)
	assert.Error(t, err)

	// Deleting again is not an error.
	assert.NoError(t, b.Delete(ctx, key))
}

func TestDeleteMissingKey(t *testing.T) {
	b := newTestBackend(t)

	assert.NoError(t, b.Delete(context.Background(), "artists/never-existed.png"))
}

package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soundstage/artistry/pkg/artistry"
)

// Backend is an in-memory implementation of the artistry.BlobStore interface,
// used in tests and development mode.
type Backend struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		blobs: make(map[string][]byte),
	}
}

// Store persists the reader's bytes under a generated key and returns the key.
func (b *Backend) Store(ctx context.Context, r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read blob: %w", err)
	}

	key := fmt.Sprintf("artists/%d-%s%s", time.Now().UnixNano(), uuid.NewString()[:8], filepath.Ext(filename))

	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = data

	return key, nil
}

// Open returns a reader over a stored blob.
func (b *Backend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.blobs[key]
	if !exists {
		return nil, fmt.Errorf("blob not found: %s", key)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes a stored blob. A missing key is not an error.
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.blobs, key)
	return nil
}

// Keys returns the keys currently held, for test assertions.
func (b *Backend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.blobs))
	for k := range b.blobs {
		keys = append(keys, k)
	}
	return keys
}

var _ artistry.BlobStore = (*Backend)(nil)

package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/soundstage/artistry/pkg/artistry"
)

// Backend is a filesystem implementation of the artistry.BlobStore interface.
// It is stateless: keys are generated collision-free under an artist-scoped
// namespace, so concurrent uploads never overwrite each other.
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files
}

// New creates a new filesystem storage backend
func New(config Config) (artistry.BlobStore, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{baseDir: config.BaseDir}, nil
}

const keyNamespace = "artists"

// NewKey builds a unique blob key: unix-nano timestamp plus a random suffix,
// keeping the original file extension.
func NewKey(filename string) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s/%d-%s%s", keyNamespace, time.Now().UnixNano(), suffix, filepath.Ext(filename))
}

// Store persists the reader's bytes under a generated key and returns the key.
func (b *Backend) Store(ctx context.Context, r io.Reader, filename string) (string, error) {
	key := NewKey(filename)
	path := filepath.Join(b.baseDir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return key, nil
}

// Open returns a reader over a stored blob.
func (b *Backend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(b.baseDir, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("blob not found: %s", key)
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes a stored blob. A missing file is not an error.
func (b *Backend) Delete(ctx context.Context, key string) error {
	path := filepath.Join(b.baseDir, filepath.FromSlash(key))

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

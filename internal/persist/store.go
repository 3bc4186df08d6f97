package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// storeFileExtension is the file extension used for stored items.
const storeFileExtension = ".json"

// Store is a string-keyed blob store. GetItem returns ErrItemNotFound for keys
// that were never set.
type Store interface {
	GetItem(ctx context.Context, key string) ([]byte, error)
	SetItem(ctx context.Context, key string, value []byte) error
	RemoveItem(ctx context.Context, key string) error
}

// FileStore keeps one JSON file per key in a directory.
// Safe for concurrent use.
type FileStore struct {
	directory string
	mu        sync.RWMutex
}

// NewFileStore creates the directory if needed and returns a store rooted there.
func NewFileStore(directory string) (*FileStore, error) {
	if directory == "" {
		return nil, fmt.Errorf("%w: store directory cannot be empty", ErrInvalidKey)
	}
	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{directory: directory}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string {
	return s.directory
}

// GetItem reads the value stored under key.
func (s *FileStore) GetItem(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, ErrInvalidKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.keyToFilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	return data, nil
}

// SetItem writes value under key, replacing any previous value atomically.
func (s *FileStore) SetItem(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.keyToFilePath(key)

	// Write to temporary file first, then rename for atomicity
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, value, 0o600); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename store file: %w", err)
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (s *FileStore) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.keyToFilePath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete store file: %w", err)
	}
	return nil
}

// keyToFilePath converts a key to a file path inside the store directory.
func (s *FileStore) keyToFilePath(key string) string {
	safeKey := strings.ReplaceAll(key, "/", "_")
	safeKey = strings.ReplaceAll(safeKey, "\\", "_")
	safeKey = strings.ReplaceAll(safeKey, ":", "_")
	safeKey = strings.ReplaceAll(safeKey, "..", "_")
	return filepath.Join(s.directory, safeKey+storeFileExtension)
}

// MemoryStore is an in-process Store, used in tests and for --no-save runs.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

func (m *MemoryStore) GetItem(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, ErrInvalidKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	if !ok {
		return nil, ErrItemNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) SetItem(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

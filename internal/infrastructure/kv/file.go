package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

const fileMode = 0o644

// FileStore keeps each key in its own file under dir. Writes go to a
// temporary file first, are read back and compared, and only then renamed
// over the canonical file, so a crash mid-write leaves the previous state
// intact. A single mutex serializes the read-modify-write window.
type FileStore struct {
	dir string
	mu  sync.Mutex

	// renameFn is swapped out in tests to simulate a crash between the
	// temporary write and the swap.
	renameFn func(oldPath, newPath string) error
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}

	return &FileStore{
		dir:      dir,
		renameFn: os.Rename,
	}, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read(key)
}

func (s *FileStore) CompareAndSwap(_ context.Context, key string, expected, next []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if !casMatches(current, expected) {
		return ErrConflict
	}

	tmpPath := s.path(key) + ".tmp"

	if err := os.WriteFile(tmpPath, next, fileMode); err != nil {
		return fmt.Errorf("os.WriteFile: %w", err)
	}

	// Reread before the swap: if the bytes on disk do not round-trip, the
	// canonical file must stay untouched.
	written, err := os.ReadFile(tmpPath)
	if err != nil {
		return fmt.Errorf("os.ReadFile(tmp): %w", err)
	}

	if !bytes.Equal(written, next) {
		return fmt.Errorf("kv: temp file verification failed for %q", key)
	}

	if err := s.renameFn(tmpPath, s.path(key)); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

func (s *FileStore) read(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	return data, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

func casMatches(current, expected []byte) bool {
	if expected == nil {
		return current == nil
	}

	return current != nil && bytes.Equal(current, expected)
}

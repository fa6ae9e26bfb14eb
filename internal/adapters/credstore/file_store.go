package credstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/mail-inspector/internal/core"
	"go.uber.org/zap"
)

// FileStore keeps the credential cache in a single file readable only by
// the owner.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a store backed by path
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads the cache file
func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, core.ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to read credential cache %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, core.ErrCredentialsNotFound
	}
	return data, nil
}

// Save writes data to a temporary file and renames it over the cache file
func (s *FileStore) Save(ctx context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credential cache directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credential cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace credential cache: %w", err)
	}

	s.logger.Debug("Saved credential cache", zap.String("path", s.path))
	return nil
}

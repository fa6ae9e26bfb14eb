// Package credstore persists the serialized credential cache.
package credstore

import (
	"context"
	"sync"

	"github.com/mikey/mail-inspector/internal/core"
	"go.uber.org/zap"
)

// MemoryStore keeps the credential cache in process memory. Tokens are
// lost on exit, so each run starts a new device flow.
type MemoryStore struct {
	data   []byte
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{logger: logger}
}

// Load returns the stored cache
func (s *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data) == 0 {
		return nil, core.ErrCredentialsNotFound
	}
	return append([]byte(nil), s.data...), nil
}

// Save replaces the stored cache
func (s *MemoryStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = append([]byte(nil), data...)
	s.logger.Debug("Stored credential cache in memory", zap.Int("bytes", len(data)))
	return nil
}

package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
	"github.com/mikey/mail-inspector/internal/core"
	"go.uber.org/zap"
)

// KeyringStore keeps the credential cache in the operating system keyring,
// falling back to an encrypted file when no native keyring is available.
type KeyringStore struct {
	ring   keyring.Keyring
	key    string
	logger *zap.Logger
}

// KeyringOptions selects the keyring and the encrypted-file fallback
type KeyringOptions struct {
	ServiceName  string
	FileDir      string
	FilePassword string
}

// NewKeyringStore opens the keyring for opts.ServiceName
func NewKeyringStore(opts KeyringOptions, key string, logger *zap.Logger) (*KeyringStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: opts.ServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  opts.FileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(opts.FilePassword),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewKeyringStoreFrom(ring, key, logger), nil
}

// NewKeyringStoreFrom wraps an already opened keyring
func NewKeyringStoreFrom(ring keyring.Keyring, key string, logger *zap.Logger) *KeyringStore {
	return &KeyringStore{ring: ring, key: key, logger: logger}
}

// Load returns the keyring item for the configured key
func (s *KeyringStore) Load(ctx context.Context) ([]byte, error) {
	item, err := s.ring.Get(s.key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, core.ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("getting credential %q: %w", s.key, err)
	}
	if len(item.Data) == 0 {
		return nil, core.ErrCredentialsNotFound
	}
	return item.Data, nil
}

// Save stores data as the keyring item for the configured key
func (s *KeyringStore) Save(ctx context.Context, data []byte) error {
	err := s.ring.Set(keyring.Item{
		Key:         s.key,
		Data:        data,
		Label:       "mail-inspector credential cache",
		Description: "OAuth tokens for Microsoft Graph",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", s.key, err)
	}

	s.logger.Debug("Saved credential cache to keyring", zap.String("key", s.key))
	return nil
}

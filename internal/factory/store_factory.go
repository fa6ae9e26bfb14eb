package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/mail-inspector/internal/adapters/credstore"
	"github.com/mikey/mail-inspector/internal/config"
	"github.com/mikey/mail-inspector/internal/core"
	"go.uber.org/zap"
)

// StoreFactory creates credential stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCredentialStore creates the store selected by token_cache.type
func (f *StoreFactory) CreateCredentialStore() (core.CredentialStore, error) {
	tc := f.cfg.GetTokenCache()
	f.logger.Debug("Creating credential store", zap.String("type", tc.Type))

	switch tc.Type {
	case "file":
		return credstore.NewFileStore(tc.Path, f.logger), nil
	case "memory":
		return credstore.NewMemoryStore(f.logger), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(tc.SQLitePath), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return credstore.NewSQLiteStore(tc.SQLitePath, tc.Key, f.logger)
	case "mysql":
		if tc.MySQLDSN == "" {
			return nil, fmt.Errorf("token_cache.mysql_dsn is required for the mysql store")
		}
		return credstore.NewMySQLStore(tc.MySQLDSN, tc.Key, f.logger)
	case "keyring":
		return credstore.NewKeyringStore(credstore.KeyringOptions{
			ServiceName:  tc.KeyringService,
			FileDir:      tc.KeyringDir,
			FilePassword: tc.KeyringPassword,
		}, tc.Key, f.logger)
	default:
		return nil, fmt.Errorf("unsupported token cache type: %s", tc.Type)
	}
}

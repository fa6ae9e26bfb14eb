package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/mail-inspector/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of core.CredentialStore
type SQLiteStore struct {
	db     *sql.DB
	key    string
	logger *zap.Logger
}

// NewSQLiteStore opens dbPath and creates the credential table if needed
func NewSQLiteStore(dbPath, key string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS credential_cache (
			cache_key TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{db: db, key: key, logger: logger}, nil
}

// Load returns the cache stored under the configured key
func (s *SQLiteStore) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM credential_cache WHERE cache_key = ?
	`, s.key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to query credential cache: %w", err)
	}
	if len(data) == 0 {
		return nil, core.ErrCredentialsNotFound
	}
	return data, nil
}

// Save upserts the cache under the configured key
func (s *SQLiteStore) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credential_cache (cache_key, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, s.key, data, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store credential cache: %w", err)
	}

	s.logger.Debug("Saved credential cache", zap.String("key", s.key))
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/mail-inspector/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of core.CredentialStore, for hosts
// that share one signed-in mailbox
type MySQLStore struct {
	db     *sql.DB
	key    string
	logger *zap.Logger
}

// NewMySQLStore connects to dsn and creates the credential table if needed
func NewMySQLStore(dsn, key string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS credential_cache (
			cache_key VARCHAR(255) PRIMARY KEY,
			data MEDIUMBLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{db: db, key: key, logger: logger}, nil
}

// Load returns the cache stored under the configured key
func (s *MySQLStore) Load(ctx context.Context) ([]byte, error) {
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
func (s *MySQLStore) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credential_cache (cache_key, data, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			data = VALUES(data),
			updated_at = VALUES(updated_at)
	`, s.key, data, time.Now().UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return fmt.Errorf("failed to store credential cache: %w", err)
	}

	s.logger.Debug("Saved credential cache", zap.String("key", s.key))
	return nil
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

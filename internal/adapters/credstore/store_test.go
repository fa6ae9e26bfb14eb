package credstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
	"github.com/mikey/mail-inspector/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// exerciseStore checks the contract every store implements
func exerciseStore(t *testing.T, store core.CredentialStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, core.ErrCredentialsNotFound)

	require.NoError(t, store.Save(ctx, []byte(`{"version":1}`)))
	data, err := store.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1}`, string(data))

	require.NoError(t, store.Save(ctx, []byte(`{"version":1,"accounts":[]}`)))
	data, err = store.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"accounts":[]}`, string(data))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(zap.NewNop()))
}

func TestMemoryStore_CopiesData(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())
	buf := []byte("abc")
	require.NoError(t, store.Save(context.Background(), buf))
	buf[0] = 'x'

	data, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token_cache.json")
	exerciseStore(t, NewFileStore(path, zap.NewNop()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_EmptyFileIsNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token_cache.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := NewFileStore(path, zap.NewNop()).Load(context.Background())
	assert.ErrorIs(t, err, core.ErrCredentialsNotFound)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "creds.db"), "default", zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLiteStore_KeysAreIndependent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.db")
	first, err := NewSQLiteStore(path, "first", zap.NewNop())
	require.NoError(t, err)
	defer first.Close()
	second, err := NewSQLiteStore(path, "second", zap.NewNop())
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, first.Save(context.Background(), []byte("one")))

	_, err = second.Load(context.Background())
	assert.ErrorIs(t, err, core.ErrCredentialsNotFound)
}

func TestKeyringStore(t *testing.T) {
	exerciseStore(t, NewKeyringStoreFrom(keyring.NewArrayKeyring(nil), "default", zap.NewNop()))
}

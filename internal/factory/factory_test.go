package factory

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/mikey/mail-inspector/internal/adapters/credstore"
	"github.com/mikey/mail-inspector/internal/adapters/openai"
	"github.com/mikey/mail-inspector/internal/adapters/report"
	"github.com/mikey/mail-inspector/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(settings map[string]any) *config.Config {
	v := config.NewEmptyViper()
	for k, val := range settings {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func TestStoreFactory(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		settings map[string]any
		check    func(t *testing.T, store any)
		wantErr  bool
	}{
		{
			name:     "file",
			settings: map[string]any{"token_cache.type": "file", "token_cache.path": filepath.Join(dir, "cache.json")},
			check:    func(t *testing.T, s any) { assert.IsType(t, &credstore.FileStore{}, s) },
		},
		{
			name:     "memory",
			settings: map[string]any{"token_cache.type": "memory"},
			check:    func(t *testing.T, s any) { assert.IsType(t, &credstore.MemoryStore{}, s) },
		},
		{
			name: "sqlite",
			settings: map[string]any{
				"token_cache.type":        "sqlite",
				"token_cache.sqlite_path": filepath.Join(dir, "db", "creds.db"),
				"token_cache.key":         "default",
			},
			check: func(t *testing.T, s any) { assert.IsType(t, &credstore.SQLiteStore{}, s) },
		},
		{
			name:     "mysql without dsn",
			settings: map[string]any{"token_cache.type": "mysql"},
			wantErr:  true,
		},
		{
			name:     "unknown",
			settings: map[string]any{"token_cache.type": "etcd"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStoreFactory(testConfig(tt.settings), zap.NewNop()).CreateCredentialStore()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, store)
		})
	}
}

func TestInspectorFactory(t *testing.T) {
	ctx := context.Background()

	inspector, err := NewInspectorFactory(testConfig(map[string]any{"inspection.provider": "none"}), zap.NewNop()).CreateInspector(ctx)
	require.NoError(t, err)
	assert.Nil(t, inspector)

	_, err = NewInspectorFactory(testConfig(map[string]any{"inspection.provider": "openai"}), zap.NewNop()).CreateInspector(ctx)
	assert.ErrorContains(t, err, "API key")

	_, err = NewInspectorFactory(testConfig(map[string]any{"inspection.provider": "gemini"}), zap.NewNop()).CreateInspector(ctx)
	assert.ErrorContains(t, err, "API key")

	inspector, err = NewInspectorFactory(testConfig(map[string]any{
		"inspection.provider": "openai",
		"openai.api_key":      "sk-test",
	}), zap.NewNop()).CreateInspector(ctx)
	require.NoError(t, err)
	assert.IsType(t, &openai.Inspector{}, inspector)

	_, err = NewInspectorFactory(testConfig(map[string]any{"inspection.provider": "llama"}), zap.NewNop()).CreateInspector(ctx)
	assert.Error(t, err)
}

func TestReporterFactory(t *testing.T) {
	var buf bytes.Buffer

	r, err := NewReporterFactory(testConfig(map[string]any{"output.format": "json"}), zap.NewNop()).CreateReporter(&buf)
	require.NoError(t, err)
	assert.IsType(t, &report.JSONReporter{}, r)

	r, err = NewReporterFactory(testConfig(map[string]any{"output.format": "text"}), zap.NewNop()).CreateReporter(&buf)
	require.NoError(t, err)
	assert.IsType(t, &report.ConsoleReporter{}, r)

	_, err = NewReporterFactory(testConfig(map[string]any{"output.format": "yaml"}), zap.NewNop()).CreateReporter(&buf)
	assert.Error(t, err)
}

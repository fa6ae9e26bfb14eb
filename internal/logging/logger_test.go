package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mikey/mail-inspector/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("loud"))
}

func TestInitLogger_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inspector.log")

	v := config.NewEmptyViper()
	v.Set("logging.level", "debug")
	v.Set("logging.file", path)

	logger, err := InitLogger(config.NewFromViper(v))
	require.NoError(t, err)

	logger.Info("file sink check")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file sink check")
}

func TestInitConsoleLogger_Verbose(t *testing.T) {
	logger, err := InitConsoleLogger(true, true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "doit.log")

	log, closeFn, err := New(Config{Level: "debug", Encoding: "json", File: path})
	require.NoError(t, err)
	log.Debug("hello")
	require.NoError(t, log.Sync())
	closeFn()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"hello"`)
	assert.Contains(t, string(b), `"timestamp"`)
}

func TestBadLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doit.log")

	log, closeFn, err := New(Config{Level: "loud", Encoding: "console", File: path})
	require.NoError(t, err)
	defer closeFn()

	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

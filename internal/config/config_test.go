package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DOIT_DATA_DIR", "DOIT_STORAGE", "DOIT_STORAGE_KEY", "DOIT_SAVE_DEBOUNCE", "LOG_LEVEL", "LOG_ENCODING", "LOG_FILE"} {
		t.Setenv(k, "")
	}
	// keep a stray .env in the working directory out of the picture
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	xdg := t.TempDir()
	t.Setenv("XDG_DATA_HOME", xdg)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(xdg, "doit"), cfg.DataDir)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "@todo_projects", cfg.Storage.Key)
	assert.Zero(t, cfg.Storage.SaveDebounce)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Encoding)
	assert.Equal(t, filepath.Join(xdg, "doit", "doit.log"), cfg.Logger.File)
	assert.Equal(t, filepath.Join(xdg, "doit", "doit.db"), cfg.StoragePath())
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("DOIT_DATA_DIR", dir)
	t.Setenv("DOIT_STORAGE", "Bolt")
	t.Setenv("DOIT_STORAGE_KEY", "projects")
	t.Setenv("DOIT_SAVE_DEBOUNCE", "250ms")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_ENCODING", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendBolt, cfg.Storage.Backend)
	assert.Equal(t, "projects", cfg.Storage.Key)
	assert.Equal(t, 250*time.Millisecond, cfg.Storage.SaveDebounce)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Encoding)
	assert.Equal(t, filepath.Join(dir, "doit.bolt"), cfg.StoragePath())
}

func TestBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOIT_DATA_DIR", t.TempDir())
	t.Setenv("DOIT_SAVE_DEBOUNCE", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Storage.SaveDebounce)

	t.Setenv("DOIT_STORAGE", "postgres")
	_, err = Load()
	assert.Error(t, err)
}

func TestMemoryHasNoPath(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Backend: BackendMemory}}
	assert.Empty(t, cfg.StoragePath())
}

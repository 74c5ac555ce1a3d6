package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Config aggregates all runtime settings.
type Config struct {
	DataDir string
	Storage StorageConfig
	Logger  LoggerConfig
}

type StorageConfig struct {
	Backend      string
	Key          string
	SaveDebounce time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
	File     string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	dataDir := os.Getenv("DOIT_DATA_DIR")
	if dataDir == "" {
		var err error
		if dataDir, err = defaultDataDir(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		DataDir: dataDir,
		Storage: StorageConfig{
			Backend:      strings.ToLower(getString("DOIT_STORAGE", BackendSQLite)),
			Key:          getString("DOIT_STORAGE_KEY", "@todo_projects"),
			SaveDebounce: getDuration("DOIT_SAVE_DEBOUNCE", 0),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
			File:     getString("LOG_FILE", filepath.Join(dataDir, "doit.log")),
		},
	}

	switch cfg.Storage.Backend {
	case BackendSQLite, BackendBolt, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return cfg, nil
}

// StoragePath is the file backing the configured backend. Empty for memory.
func (c *Config) StoragePath() string {
	switch c.Storage.Backend {
	case BackendSQLite:
		return filepath.Join(c.DataDir, "doit.db")
	case BackendBolt:
		return filepath.Join(c.DataDir, "doit.bolt")
	}
	return ""
}

// defaultDataDir uses the XDG data directory or falls back to ~/.local/share
func defaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "doit"), nil
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tgienger/doit/internal/boltkv"
	"github.com/tgienger/doit/internal/config"
	"github.com/tgienger/doit/internal/db"
	"github.com/tgienger/doit/internal/logger"
	"github.com/tgienger/doit/internal/store"
)

// closeTimeout bounds how long shutdown waits for pending saves.
const closeTimeout = 5 * time.Second

// backend is a durable key-value store. It holds the collection and the
// UI preferences.
type backend interface {
	store.Storage
	Delete(ctx context.Context, key string) error
}

// session holds everything a command needs, wired from the environment.
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	storage backend
	store   *store.Store

	closers []func()
}

// openSession loads config, then builds the logger, the configured storage
// backend and a store over it. The store is not loaded yet.
func openSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return newSession(cfg)
}

func newSession(cfg *config.Config) (*session, error) {
	log, closeLog, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		File:     cfg.Logger.File,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	s := &session{cfg: cfg, logger: log}
	s.closers = append(s.closers, func() {
		_ = log.Sync()
		closeLog()
	})

	storage, closeStorage, err := openStorage(cfg)
	if err != nil {
		s.close()
		return nil, err
	}
	s.storage = storage
	s.closers = append(s.closers, closeStorage)

	s.store = store.New(storage, store.Options{
		Key:          cfg.Storage.Key,
		SaveDebounce: cfg.Storage.SaveDebounce,
		Logger:       log,
	})
	s.closers = append(s.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := s.store.Close(ctx); err != nil {
			log.Error("flush on shutdown", zap.Error(err))
		}
	})

	log.Info("session started",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("path", cfg.StoragePath()),
	)
	return s, nil
}

func openStorage(cfg *config.Config) (backend, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendBolt:
		kv, err := boltkv.Open(cfg.StoragePath(), boltkv.DefaultBucket)
		if err != nil {
			return nil, nil, fmt.Errorf("open bolt storage: %w", err)
		}
		return kv, func() { _ = kv.Close() }, nil
	case config.BackendMemory:
		return store.NewMemoryStorage(), func() {}, nil
	default:
		database, err := db.Open(cfg.StoragePath())
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return database, func() { _ = database.Close() }, nil
	}
}

// load restores the persisted collection unless that already happened.
func (s *session) load(ctx context.Context) {
	if s.store.Snapshot().Loading {
		s.store.Load(ctx)
	}
}

// close releases resources in reverse order of acquisition
func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

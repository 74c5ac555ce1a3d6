// Package saver writes whole-collection snapshots to durable storage from
// a single goroutine. Only the newest pending snapshot is kept, so bursts of
// mutations collapse into one write and a stale snapshot can never land
// after a newer one.
package saver

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Storage is the write side of a key-value store.
type Storage interface {
	Set(ctx context.Context, key, value string) error
}

type job struct {
	version uint64
	blob    string
}

type waiter struct {
	version uint64
	ch      chan struct{}
}

// Saver serializes snapshot writes for one key.
type Saver struct {
	storage  Storage
	key      string
	logger   *zap.Logger
	debounce time.Duration

	mu        sync.Mutex
	pending   *job
	submitted uint64 // newest version accepted by Save
	settled   uint64 // newest version written or dropped
	waiters   []waiter
	closed    bool

	kick chan struct{}
	stop chan struct{}
	done chan struct{}
}

// New starts a saver. A positive debounce delays each write so that
// saves arriving within the window are coalesced.
func New(storage Storage, key string, logger *zap.Logger, debounce time.Duration) *Saver {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Saver{
		storage:  storage,
		key:      key,
		logger:   logger.With(zap.String("key", key)),
		debounce: debounce,
		kick:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

// Save queues blob as the state at version. It returns immediately.
// Versions at or below the newest accepted one are ignored.
func (s *Saver) Save(version uint64, blob string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("save after close dropped", zap.Uint64("version", version))
		return
	}
	if version <= s.submitted {
		s.mu.Unlock()
		return
	}
	s.submitted = version
	s.pending = &job{version: version, blob: blob}
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Flush blocks until every version accepted so far has settled.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	target := s.submitted
	if s.settled >= target {
		s.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	s.waiters = append(s.waiters, waiter{version: target, ch: ch})
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Written returns the newest settled version.
func (s *Saver) Written() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settled
}

// Close writes anything pending and stops the worker.
func (s *Saver) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Saver) run() {
	defer close(s.done)
	for {
		select {
		case <-s.kick:
		case <-s.stop:
			s.writePending()
			return
		}

		if s.debounce > 0 {
			timer := time.NewTimer(s.debounce)
			select {
			case <-timer.C:
			case <-s.stop:
				timer.Stop()
				s.writePending()
				return
			}
		}
		s.writePending()
	}
}

func (s *Saver) writePending() {
	s.mu.Lock()
	j := s.pending
	s.pending = nil
	s.mu.Unlock()
	if j == nil {
		return
	}

	start := time.Now()
	if err := s.storage.Set(context.Background(), s.key, j.blob); err != nil {
		s.logger.Error("write snapshot failed",
			zap.Uint64("version", j.version),
			zap.Error(err),
		)
	} else {
		s.logger.Debug("snapshot written",
			zap.Uint64("version", j.version),
			zap.Int("bytes", len(j.blob)),
			zap.Duration("took", time.Since(start)),
		)
	}

	s.mu.Lock()
	s.settled = j.version
	kept := s.waiters[:0]
	for _, w := range s.waiters {
		if w.version <= s.settled {
			close(w.ch)
			continue
		}
		kept = append(kept, w)
	}
	s.waiters = kept
	s.mu.Unlock()
}

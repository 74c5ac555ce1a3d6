// Package store owns the in-memory project collection. Every mutation
// re-derives the affected project's status and hands a full snapshot to a
// single-writer saver, so durable storage always trails memory by whole,
// ordered snapshots.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tgienger/doit/internal/models"
	"github.com/tgienger/doit/internal/saver"
)

// DefaultKey is the storage key holding the serialized collection.
const DefaultKey = "@todo_projects"

var (
	ErrNotLoaded       = errors.New("store not loaded")
	ErrEmptyTitle      = errors.New("title is empty")
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidTask     = errors.New("invalid task")
)

// Storage is a durable key-value store.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Options configures a Store. Zero values pick the defaults.
type Options struct {
	Key          string
	SaveDebounce time.Duration
	Logger       *zap.Logger
	NewID        func() string
	Clock        func() time.Time
}

// Snapshot is a read-only copy of the store state.
type Snapshot struct {
	Projects []models.Project
	Loading  bool
}

// Store is the single owner of the project collection.
type Store struct {
	storage Storage
	key     string
	logger  *zap.Logger
	newID   func() string
	clock   func() time.Time
	saver   *saver.Saver

	mu       sync.RWMutex
	projects []models.Project
	loading  bool
	version  uint64

	subMu   sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
}

// New creates a store in the loading state. Call Load before mutating.
func New(storage Storage, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC().Round(0) }
	}
	logger := opts.Logger.Named("store")

	return &Store{
		storage:  storage,
		key:      opts.Key,
		logger:   logger,
		newID:    opts.NewID,
		clock:    opts.Clock,
		saver:    saver.New(storage, opts.Key, logger, opts.SaveDebounce),
		projects: []models.Project{},
		loading:  true,
		subs:     make(map[int]chan struct{}),
	}
}

// Load restores the collection from storage. Read and decode failures are
// logged and leave an empty, usable store. Once loaded, memory is the
// source of truth and later calls return the current state unchanged.
func (s *Store) Load(ctx context.Context) []models.Project {
	s.mu.RLock()
	if !s.loading {
		out := models.CloneProjects(s.projects)
		s.mu.RUnlock()
		return out
	}
	s.mu.RUnlock()

	projects := []models.Project{}

	blob, ok, err := s.storage.Get(ctx, s.key)
	switch {
	case err != nil:
		s.logger.Error("read persisted projects", zap.Error(err))
	case !ok:
		s.logger.Debug("no persisted projects")
	default:
		decoded, err := Decode(blob)
		if err != nil {
			s.logger.Error("discarding unreadable projects", zap.Error(err))
		} else {
			projects = decoded
		}
	}

	s.mu.Lock()
	if !s.loading {
		// a concurrent Load won
		out := models.CloneProjects(s.projects)
		s.mu.Unlock()
		return out
	}
	s.projects = projects
	s.loading = false
	out := models.CloneProjects(s.projects)
	s.mu.Unlock()

	s.logger.Info("projects loaded", zap.Int("count", len(out)))
	s.notify()
	return out
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Projects: models.CloneProjects(s.projects),
		Loading:  s.loading,
	}
}

// Project returns a copy of the project with the given ID.
func (s *Store) Project(id string) (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.projects[i].Clone(), true
	}
	return models.Project{}, false
}

// AddProject appends a new empty project. Priority defaults to medium.
func (s *Store) AddProject(title, description string, priority models.Priority) (models.Project, error) {
	if title == "" {
		return models.Project{}, ErrEmptyTitle
	}
	if priority == models.PriorityNone {
		priority = models.PriorityMedium
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return models.Project{}, ErrNotLoaded
	}
	now := s.clock()
	p := models.Project{
		ID:          s.newID(),
		Title:       title,
		Description: description,
		CreatedAt:   now,
		Status:      models.StatusInProgress,
		Tasks:       []models.Task{},
		Priority:    priority,
		UpdatedAt:   &now,
	}
	s.projects = append(s.projects, p)
	s.commitLocked()
	s.mu.Unlock()

	s.notify()
	return p.Clone(), nil
}

// UpdateProject replaces the stored project with the same ID. CreatedAt is
// kept, tasks are re-parented to the project and status is re-derived.
// Unknown IDs are ignored. Every task needs a title and an ID that is
// unique across the collection, otherwise ErrInvalidTask is returned and
// nothing changes.
func (s *Store) UpdateProject(p models.Project) error {
	if p.Title == "" {
		return ErrEmptyTitle
	}

	var invalid error
	err := s.mutate(func() bool {
		i := s.indexLocked(p.ID)
		if i < 0 {
			return false
		}
		if invalid = s.checkTasksLocked(p); invalid != nil {
			return false
		}
		next := p.Clone()
		if next.Tasks == nil {
			next.Tasks = []models.Task{}
		}
		for j := range next.Tasks {
			next.Tasks[j].ProjectID = next.ID
		}
		next.CreatedAt = s.projects[i].CreatedAt
		s.touchLocked(&next)
		s.projects[i] = next
		return true
	})
	if err != nil {
		return err
	}
	return invalid
}

// checkTasksLocked validates the task list of a replacement for project p.
func (s *Store) checkTasksLocked(p models.Project) error {
	seen := make(map[string]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		switch {
		case t.ID == "":
			return fmt.Errorf("%w: missing id", ErrInvalidTask)
		case t.Title == "":
			return fmt.Errorf("%w: task %s: %w", ErrInvalidTask, t.ID, ErrEmptyTitle)
		case seen[t.ID]:
			return fmt.Errorf("%w: task %s listed twice", ErrInvalidTask, t.ID)
		}
		seen[t.ID] = true
	}
	for _, other := range s.projects {
		if other.ID == p.ID {
			continue
		}
		for _, t := range other.Tasks {
			if seen[t.ID] {
				return fmt.Errorf("%w: task %s belongs to project %s", ErrInvalidTask, t.ID, other.ID)
			}
		}
	}
	return nil
}

// DeleteProject removes a project along with its tasks.
func (s *Store) DeleteProject(projectID string) error {
	return s.mutate(func() bool {
		i := s.indexLocked(projectID)
		if i < 0 {
			return false
		}
		s.projects = append(s.projects[:i], s.projects[i+1:]...)
		return true
	})
}

// AddTask appends a new incomplete task to the project.
func (s *Store) AddTask(projectID, title string) (models.Task, error) {
	if title == "" {
		return models.Task{}, ErrEmptyTitle
	}

	var task models.Task
	found := false
	err := s.mutate(func() bool {
		i := s.indexLocked(projectID)
		if i < 0 {
			return false
		}
		found = true
		task = models.Task{
			ID:        s.newID(),
			Title:     title,
			Completed: false,
			CreatedAt: s.clock(),
			ProjectID: projectID,
		}
		p := &s.projects[i]
		p.Tasks = append(p.Tasks, task)
		s.touchLocked(p)
		return true
	})
	if err != nil {
		return models.Task{}, err
	}
	if !found {
		return models.Task{}, ErrProjectNotFound
	}
	return task.Clone(), nil
}

// UpdateTask replaces the task with the same ID inside the project.
// Unknown projects or tasks are ignored. An empty title is rejected.
func (s *Store) UpdateTask(projectID string, t models.Task) error {
	if t.Title == "" {
		return ErrEmptyTitle
	}
	return s.mutate(func() bool {
		return s.replaceTaskLocked(projectID, t.ID, func(old models.Task) models.Task {
			next := t.Clone()
			next.CreatedAt = old.CreatedAt
			next.ProjectID = old.ProjectID
			return next
		})
	})
}

// ToggleTaskComplete flips a task's completion flag.
func (s *Store) ToggleTaskComplete(projectID, taskID string) error {
	return s.mutate(func() bool {
		return s.replaceTaskLocked(projectID, taskID, func(old models.Task) models.Task {
			next := old.Clone()
			next.Completed = !old.Completed
			return next
		})
	})
}

// DeleteTask removes a task from the project.
func (s *Store) DeleteTask(projectID, taskID string) error {
	return s.mutate(func() bool {
		i := s.indexLocked(projectID)
		if i < 0 {
			return false
		}
		p := &s.projects[i]
		j := p.FindTask(taskID)
		if j < 0 {
			return false
		}
		p.Tasks = append(p.Tasks[:j], p.Tasks[j+1:]...)
		s.touchLocked(p)
		return true
	})
}

// Subscribe returns a channel that receives a value after state changes.
// Notifications coalesce; read Snapshot after each one. The returned func
// unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			close(ch)
			s.subMu.Unlock()
		})
	}
}

// Flush waits until every committed mutation has reached storage.
func (s *Store) Flush(ctx context.Context) error {
	return s.saver.Flush(ctx)
}

// Close flushes pending writes and stops the saver.
func (s *Store) Close(ctx context.Context) error {
	return s.saver.Close(ctx)
}

// mutate runs fn under the write lock. When fn reports a change the
// collection is persisted and subscribers are notified.
func (s *Store) mutate(fn func() bool) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	changed := fn()
	if changed {
		s.commitLocked()
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return nil
}

func (s *Store) replaceTaskLocked(projectID, taskID string, next func(models.Task) models.Task) bool {
	i := s.indexLocked(projectID)
	if i < 0 {
		return false
	}
	p := &s.projects[i]
	j := p.FindTask(taskID)
	if j < 0 {
		return false
	}
	t := next(p.Tasks[j])
	now := s.clock()
	t.UpdatedAt = &now
	p.Tasks[j] = t
	s.touchLocked(p)
	return true
}

// touchLocked stamps UpdatedAt and re-derives status.
func (s *Store) touchLocked(p *models.Project) {
	now := s.clock()
	p.UpdatedAt = &now
	p.RecomputeStatus()
}

func (s *Store) indexLocked(projectID string) int {
	for i := range s.projects {
		if s.projects[i].ID == projectID {
			return i
		}
	}
	return -1
}

func (s *Store) commitLocked() {
	s.version++
	blob, err := Encode(s.projects)
	if err != nil {
		s.logger.Error("snapshot not saved", zap.Uint64("version", s.version), zap.Error(err))
		return
	}
	s.saver.Save(s.version, blob)
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

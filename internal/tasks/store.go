package tasks

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Slot is the durable key-value location the collection is written to.
type Slot interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
}

// Store owns the task collection. Every mutation writes the full collection
// back to the slot before it becomes visible.
type Store struct {
	slot   Slot
	key    string
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
	tasks  []Task
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDFunc(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open loads the collection stored under key. Missing or unreadable data
// yields an empty store.
func Open(slot Slot, key string, opts ...Option) *Store {
	s := &Store{
		slot:   slot,
		key:    key,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tasks = s.load()
	return s
}

func (s *Store) load() []Task {
	data, ok, err := s.slot.Get(s.key)
	if err != nil {
		s.logger.Warn("read task slot failed, starting empty", "key", s.key, "error", err)
		return nil
	}
	if !ok || len(data) == 0 {
		return nil
	}
	list, err := Decode(data)
	if err != nil {
		s.logger.Warn("task slot is corrupt, starting empty", "key", s.key, "error", err)
		return nil
	}
	s.logger.Debug("tasks loaded", "key", s.key, "count", len(list))
	return list
}

// commit persists next and swaps it in. On failure the live collection is untouched.
func (s *Store) commit(next []Task) error {
	data, err := Encode(next)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.slot.Put(s.key, data); err != nil {
		return fmt.Errorf("persist tasks: %w", err)
	}
	s.tasks = next
	return nil
}

func (s *Store) clone() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) Add(text string) (Task, error) {
	text, err := normalizeText(text)
	if err != nil {
		return Task{}, err
	}
	t := Task{
		ID:        s.newID(),
		Text:      text,
		CreatedAt: s.now().UTC().Round(0),
	}
	next := make([]Task, 0, len(s.tasks)+1)
	next = append(next, t)
	next = append(next, s.tasks...)
	if err := s.commit(next); err != nil {
		return Task{}, err
	}
	s.logger.Debug("task added", "id", t.ID)
	return t, nil
}

func (s *Store) Toggle(id string) (Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	next := s.clone()
	next[i].Completed = !next[i].Completed
	if err := s.commit(next); err != nil {
		return Task{}, err
	}
	s.logger.Debug("task toggled", "id", id, "completed", next[i].Completed)
	return next[i], nil
}

func (s *Store) Edit(id, text string) (Task, error) {
	text, err := normalizeText(text)
	if err != nil {
		return Task{}, err
	}
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	next := s.clone()
	next[i].Text = text
	if err := s.commit(next); err != nil {
		return Task{}, err
	}
	s.logger.Debug("task edited", "id", id)
	return next[i], nil
}

func (s *Store) Delete(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	next := make([]Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	if err := s.commit(next); err != nil {
		return err
	}
	s.logger.Debug("task deleted", "id", id)
	return nil
}

// ClearCompleted removes every completed task and reports how many went.
// Nothing is written when there is nothing to remove.
func (s *Store) ClearCompleted() (int, error) {
	next := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.Completed {
			next = append(next, t)
		}
	}
	removed := len(s.tasks) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := s.commit(next); err != nil {
		return 0, err
	}
	s.logger.Debug("completed tasks cleared", "count", removed)
	return removed, nil
}

func (s *Store) CompletedCount() int {
	return CountOf(s.tasks).Completed
}

// List returns a copy of the tasks matching f, newest first.
func (s *Store) List(f Filter) []Task {
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) Get(id string) (Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

func (s *Store) Len() int { return len(s.tasks) }

func (s *Store) Counts() Counts { return CountOf(s.tasks) }

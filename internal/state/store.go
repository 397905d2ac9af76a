// Package state keeps a typed document in memory and writes it through to a key-value store.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"NewsQuiz/internal/domain"
	"NewsQuiz/internal/ports"
)

// Listener observes a committed mutation.
type Listener[S any] func(prev, next S)

// Option configures a Store.
type Option[S any] func(*Store[S])

// WithValidator rejects decoded documents for which validate returns an
// error. A rejected document is handled like a malformed one.
func WithValidator[S any](validate func(S) error) Option[S] {
	return func(s *Store[S]) {
		s.validate = validate
	}
}

// Store is a write-through, JSON-serialized state document.
//
// Every mutation updates the in-memory value first, then attempts to persist
// the whole document, then notifies listeners synchronously and in commit
// order. A failed write is logged and returned but never rolls back the
// in-memory value.
//
// After a failed read the persisted document is unknown, so mutations retry
// the read first and are refused while it keeps failing. Listeners must not
// mutate the store they observe.
type Store[S any] struct {
	kv       ports.KeyValueStore
	key      string
	defaults func() S
	validate func(S) error
	logger   *slog.Logger

	mu      sync.Mutex
	state   S
	readErr error

	// notifyMu is taken before mu is released so listeners see commits in order.
	notifyMu sync.Mutex

	listenersMu sync.Mutex
	listeners   []subscription[S]
	nextID      int
}

type subscription[S any] struct {
	id int
	fn Listener[S]
}

// New builds a store for key. defaults must return a fresh value on every call.
func New[S any](kv ports.KeyValueStore, key string, defaults func() S, logger *slog.Logger, opts ...Option[S]) *Store[S] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store[S]{
		kv:       kv,
		key:      key,
		defaults: defaults,
		logger:   logger.With("key", key),
		state:    defaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the namespaced storage key.
func (s *Store[S]) Key() string {
	return s.key
}

// Load replaces the in-memory value with the persisted document. Absent,
// malformed or invalid documents yield the default; found reports whether
// a valid document was decoded. A read failure is returned as a
// *domain.StorageError, the in-memory value is left untouched and writes
// are refused until a later read succeeds. Listeners are not notified.
func (s *Store[S]) Load(ctx context.Context) (S, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, found, err := s.read(ctx)
	if err != nil {
		s.readErr = err
		return s.state, false, err
	}
	s.readErr = nil
	s.state = next
	return next, found, nil
}

func (s *Store[S]) read(ctx context.Context) (S, bool, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("load state failed", "error", err)
		var zero S
		return zero, false, asStorageError("get", s.key, err)
	}
	if !ok {
		return s.defaults(), false, nil
	}

	next := s.defaults()
	if err := json.Unmarshal([]byte(raw), &next); err != nil {
		s.discard(err)
		return s.defaults(), false, nil
	}
	if s.validate != nil {
		if err := s.validate(next); err != nil {
			s.discard(err)
			return s.defaults(), false, nil
		}
	}
	return next, true, nil
}

func (s *Store[S]) discard(err error) {
	malformed := &domain.MalformedStateError{Key: s.key, Err: err}
	s.logger.Warn("discarding persisted state", "error", malformed)
}

// ensureReadLocked retries a failed read so a write never replaces a
// document that was never seen.
func (s *Store[S]) ensureReadLocked(ctx context.Context) error {
	if s.readErr == nil {
		return nil
	}
	next, _, err := s.read(ctx)
	if err != nil {
		s.readErr = err
		return err
	}
	s.readErr = nil
	s.state = next
	return nil
}

// Get returns the current in-memory value.
func (s *Store[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Set overwrites the whole document.
func (s *Store[S]) Set(ctx context.Context, next S) error {
	return s.Update(ctx, func(S) (S, bool) { return next, true })
}

// Update applies fn atomically. When fn reports no change nothing is
// persisted and listeners are not called.
func (s *Store[S]) Update(ctx context.Context, fn func(S) (S, bool)) error {
	s.mu.Lock()
	if err := s.ensureReadLocked(ctx); err != nil {
		s.mu.Unlock()
		s.logger.Warn("refusing write, persisted state unknown", "error", err)
		return err
	}
	prev := s.state
	next, changed := fn(prev)
	if !changed {
		s.mu.Unlock()
		return nil
	}
	s.state = next
	err := s.persist(ctx, next)
	s.notifyMu.Lock()
	s.mu.Unlock()

	s.notify(prev, next)
	s.notifyMu.Unlock()
	return err
}

// Clear removes the persisted document and resets the in-memory value.
func (s *Store[S]) Clear(ctx context.Context) error {
	s.mu.Lock()
	prev := s.state
	next := s.defaults()
	s.state = next
	err := s.kv.Remove(ctx, s.key)
	if err != nil {
		s.logger.Warn("remove state failed", "error", err)
		err = asStorageError("remove", s.key, err)
	} else {
		s.readErr = nil
	}
	s.notifyMu.Lock()
	s.mu.Unlock()

	s.notify(prev, next)
	s.notifyMu.Unlock()
	return err
}

// Subscribe registers listener and returns a function that removes it.
func (s *Store[S]) Subscribe(listener Listener[S]) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription[S]{id: id, fn: listener})

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		s.listeners = slices.DeleteFunc(s.listeners, func(sub subscription[S]) bool {
			return sub.id == id
		})
	}
}

func (s *Store[S]) persist(ctx context.Context, next S) error {
	raw, err := json.Marshal(next)
	if err != nil {
		s.logger.Error("encode state failed", "error", err)
		return &domain.StorageError{Op: "encode", Key: s.key, Err: err}
	}

	if err := s.kv.Set(ctx, s.key, string(raw)); err != nil {
		s.logger.Warn("persist state failed, keeping in-memory value", "error", err)
		return asStorageError("set", s.key, err)
	}
	return nil
}

func (s *Store[S]) notify(prev, next S) {
	s.listenersMu.Lock()
	subs := slices.Clone(s.listeners)
	s.listenersMu.Unlock()

	for _, sub := range subs {
		sub.fn(prev, next)
	}
}

func asStorageError(op, key string, err error) error {
	var se *domain.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &domain.StorageError{Op: op, Key: key, Err: err}
}

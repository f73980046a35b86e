// Package jsonstore persists named collections as whole JSON arrays.
//
// Every collection has its own RWMutex. View and Update acquire the locks of
// the collections they name in sorted order, so concurrent requests touching
// overlapping collections serialise instead of overwriting each other. Update
// stages writes in memory and hands them to the backend only when the callback
// succeeds.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Backend loads and stores raw collection payloads.
type Backend interface {
	// Load returns the stored payload, or nil when the collection does not exist yet.
	Load(ctx context.Context, name string) ([]byte, error)
	// Commit persists all writes produced by one Update.
	Commit(ctx context.Context, writes []Write) error
}

// Write is one staged collection payload.
type Write struct {
	Name string
	Data []byte
}

// Observer receives timings for store operations.
type Observer func(operation string, duration time.Duration)

// Option customises a Store.
type Option func(*Store)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver attaches a timing hook, typically a metrics recorder.
func WithObserver(observer Observer) Option {
	return func(s *Store) {
		s.observer = observer
	}
}

// Store coordinates access to collections held by a Backend.
type Store struct {
	backend  Backend
	logger   *zap.Logger
	observer Observer

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// New constructs a Store over the given backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  zap.NewNop(),
		locks:   make(map[string]*sync.RWMutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// View runs fn with shared locks on the named collections. Save is rejected.
func (s *Store) View(ctx context.Context, names []string, fn func(tx *Tx) error) error {
	start := time.Now()
	ordered := s.ordered(names)
	for _, name := range ordered {
		s.lockFor(name).RLock()
	}
	defer func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			s.lockFor(ordered[i]).RUnlock()
		}
		s.observe("view", time.Since(start))
	}()

	tx := newTx(ctx, s.backend, ordered, false)
	return fn(tx)
}

// Update runs fn with exclusive locks on the named collections and commits the
// staged writes when fn returns nil. Nothing is persisted when fn fails.
func (s *Store) Update(ctx context.Context, names []string, fn func(tx *Tx) error) error {
	start := time.Now()
	ordered := s.ordered(names)
	for _, name := range ordered {
		s.lockFor(name).Lock()
	}
	defer func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			s.lockFor(ordered[i]).Unlock()
		}
		s.observe("update", time.Since(start))
	}()

	tx := newTx(ctx, s.backend, ordered, true)
	if err := fn(tx); err != nil {
		return err
	}

	writes := tx.writes()
	if len(writes) == 0 {
		return nil
	}
	if err := s.backend.Commit(ctx, writes); err != nil {
		s.logger.Error("collection commit failed", zap.Strings("collections", tx.order), zap.Error(err))
		return fmt.Errorf("commit collections: %w", err)
	}
	return nil
}

func (s *Store) ordered(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	ordered := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)
	return ordered
}

func (s *Store) lockFor(name string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.RWMutex{}
		s.locks[name] = lock
	}
	return lock
}

func (s *Store) observe(op string, d time.Duration) {
	if s.observer != nil {
		s.observer(op, d)
	}
}

// Tx gives typed access to the collections locked by View or Update.
type Tx struct {
	ctx      context.Context
	backend  Backend
	allowed  map[string]struct{}
	writable bool

	loaded map[string][]byte
	staged map[string][]byte
	order  []string
}

func newTx(ctx context.Context, backend Backend, names []string, writable bool) *Tx {
	allowed := make(map[string]struct{}, len(names))
	for _, name := range names {
		allowed[name] = struct{}{}
	}
	return &Tx{
		ctx:      ctx,
		backend:  backend,
		allowed:  allowed,
		writable: writable,
		loaded:   make(map[string][]byte),
		staged:   make(map[string][]byte),
	}
}

// Context returns the context the transaction was opened with.
func (tx *Tx) Context() context.Context {
	return tx.ctx
}

// Load decodes the named collection into dest, which must point to a slice.
// A collection that was never written decodes as empty. Writes staged earlier
// in the same transaction are visible.
func (tx *Tx) Load(name string, dest interface{}) error {
	if _, ok := tx.allowed[name]; !ok {
		return fmt.Errorf("collection %q is not part of this transaction", name)
	}

	raw, ok := tx.staged[name]
	if !ok {
		raw, ok = tx.loaded[name]
	}
	if !ok {
		var err error
		raw, err = tx.backend.Load(tx.ctx, name)
		if err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		tx.loaded[name] = raw
	}

	if len(raw) == 0 {
		raw = []byte("[]")
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// Save stages the full collection value for commit.
func (tx *Tx) Save(name string, value interface{}) error {
	if !tx.writable {
		return fmt.Errorf("collection %q is read-only in this transaction", name)
	}
	if _, ok := tx.allowed[name]; !ok {
		return fmt.Errorf("collection %q is not part of this transaction", name)
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if _, seen := tx.staged[name]; !seen {
		tx.order = append(tx.order, name)
	}
	tx.staged[name] = data
	return nil
}

func (tx *Tx) writes() []Write {
	writes := make([]Write, 0, len(tx.order))
	for _, name := range tx.order {
		writes = append(writes, Write{Name: name, Data: tx.staged[name]})
	}
	return writes
}

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/noah-isme/tutor-booking-api/internal/repository"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
	"github.com/noah-isme/tutor-booking-api/pkg/jsonstore"
)

// recordStore is satisfied by *jsonstore.Store.
type recordStore interface {
	View(ctx context.Context, names []string, fn func(tx *jsonstore.Tx) error) error
	Update(ctx context.Context, names []string, fn func(tx *jsonstore.Tx) error) error
}

// view runs fn against a read-only Records view.
func view(ctx context.Context, store recordStore, names []string, msg string, fn func(r *repository.Records) error) error {
	err := store.View(ctx, names, func(tx *jsonstore.Tx) error {
		return fn(repository.NewRecords(tx))
	})
	return storeError(err, msg)
}

// update runs fn against a writable Records view; nothing is persisted when fn fails.
func update(ctx context.Context, store recordStore, names []string, msg string, fn func(r *repository.Records) error) error {
	err := store.Update(ctx, names, func(tx *jsonstore.Tx) error {
		return fn(repository.NewRecords(tx))
	})
	return storeError(err, msg)
}

// storeError passes domain errors through and wraps everything else as internal.
func storeError(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Internal(err, msg)
}

// Stamper issues strictly increasing UTC instants at millisecond precision.
// Notification createdAt values and poll cursors both come from one Stamper so
// a cursor never equals a later notification's timestamp.
type Stamper struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewStamper builds a Stamper over now (time.Now when nil).
func NewStamper(now func() time.Time) *Stamper {
	if now == nil {
		now = time.Now
	}
	return &Stamper{now: now}
}

// Next returns an instant later than every previously returned one.
func (s *Stamper) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now().UTC().Truncate(time.Millisecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Millisecond)
	}
	s.last = t
	return t
}


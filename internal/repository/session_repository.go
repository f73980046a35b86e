package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/tutor-booking-api/internal/models"
)

// ErrSessionNotFound is returned when a session id is unknown, revoked or expired.
var ErrSessionNotFound = errors.New("session not found")

// MemorySessionRepository keeps sessions in a process-local map. Sessions are
// lost when the process restarts.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
	now      func() time.Time
}

// NewMemorySessionRepository constructs an empty in-memory session table.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]models.Session), now: time.Now}
}

// Create stores the session.
func (r *MemorySessionRepository) Create(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	return nil
}

// Lookup returns a live session, evicting it when expired.
func (r *MemorySessionRepository) Lookup(ctx context.Context, id string) (*models.Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Expired(r.now()) {
		r.mu.Lock()
		delete(r.sessions, id)
		r.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// Revoke deletes the session; unknown ids are ignored.
func (r *MemorySessionRepository) Revoke(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (r *MemorySessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// RedisSessionRepository stores sessions under session:<id> with a TTL matching
// their expiry, so several API replicas share logins.
type RedisSessionRepository struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisSessionRepository wraps a Redis client.
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, now: time.Now}
}

// SessionKey returns the Redis key for a session id.
func SessionKey(id string) string {
	return "session:" + id
}

// Create stores the session with a TTL.
func (r *RedisSessionRepository) Create(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}
	if err := r.client.Set(ctx, SessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Lookup fetches a session.
func (r *RedisSessionRepository) Lookup(ctx context.Context, id string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, SessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if session.Expired(r.now()) {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// Revoke deletes the session key.
func (r *RedisSessionRepository) Revoke(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, SessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

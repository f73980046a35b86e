package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-booking-api/internal/models"
)

func TestMemorySessionRepositoryLifecycle(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	session := &models.Session{
		ID:        "sess-1",
		User:      models.UserProfile{ID: "student1", Role: models.RoleStudent},
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.Lookup(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "student1", got.User.ID)

	require.NoError(t, repo.Revoke(ctx, "sess-1"))
	_, err = repo.Lookup(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionRepositoryExpires(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Create(ctx, &models.Session{ID: "sess-2", ExpiresAt: now.Add(time.Minute)}))
	repo.now = func() time.Time { return now.Add(time.Minute) }

	_, err := repo.Lookup(ctx, "sess-2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, repo.Len())
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "session:abc", SessionKey("abc"))
}

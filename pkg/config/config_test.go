package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, StorageFile, cfg.Storage.Driver)
	assert.Equal(t, SessionMemory, cfg.Session.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.InDelta(t, 0.7, cfg.Slots.AvailabilityRatio, 0.0001)
	assert.Len(t, cfg.CORS.AllowedOrigins, 3)
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SLOT_AVAILABILITY_RATIO", "3")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.InDelta(t, 0.7, cfg.Slots.AvailabilityRatio, 0.0001)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 3*time.Second, parseDuration("3s", time.Minute))
}

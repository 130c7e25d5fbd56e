package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadMemoryDriverSkipsDB(t *testing.T) {
	t.Setenv("STORE_DRIVER", StoreMemory)
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("EVENTS_ENABLED", "yes")
	t.Setenv("TMDB_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_CAPACITY", "0")

	cfg := Load()
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Empty(t, cfg.DBHost)
	assert.True(t, cfg.EventsEnabled)
	assert.Equal(t, 3*time.Second, cfg.TMDBTimeout)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDBBaseURL)
	assert.Equal(t, 1, cfg.RateLimit.Capacity)
	assert.Equal(t, "user_route", cfg.RateLimit.KeyStrategy)
}

func TestEnvHelpersFallBack(t *testing.T) {
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_INT", "ten")
	t.Setenv("X_DUR", "soon")
	assert.True(t, envBool("X_BOOL", true))
	assert.Equal(t, 7, envInt("X_INT", 7))
	assert.Equal(t, time.Minute, envDur("X_DUR", time.Minute))

	t.Setenv("X_BOOL", "off")
	assert.False(t, envBool("X_BOOL", true))
}

func TestRateLimitNormalized(t *testing.T) {
	c := RateLimitConfig{RefillInterval: 2 * time.Second, TTL: time.Second}.normalized()
	assert.Equal(t, 1, c.Capacity)
	assert.Equal(t, 1, c.RefillTokens)
	assert.Equal(t, 10*time.Second, c.TTL)

	c = RateLimitConfig{}.normalized()
	assert.Equal(t, time.Second, c.RefillInterval)
	assert.Equal(t, 5*time.Second, c.TTL)
}

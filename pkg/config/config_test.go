package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "08:00", cfg.Planner.DayStart)
	assert.Equal(t, "22:00", cfg.Planner.DayEnd)
	assert.Equal(t, 80.0, cfg.Planner.PixelsPerHour)
	assert.Equal(t, 60, cfg.Planner.SnapMinutes)
	assert.Equal(t, "es", cfg.Planner.Locale)
	assert.Equal(t, 5*time.Minute, cfg.Planner.CacheTTL)
	assert.False(t, cfg.Persistence.Enabled)
	assert.Equal(t, time.Second, cfg.Persistence.RetryDelay)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ENV", EnvProduction)
	t.Setenv("PORT", "9090")
	t.Setenv("PLANNER_DAY_START", "07:30")
	t.Setenv("PLANNER_PIXELS_PER_HOUR", "0")
	t.Setenv("PLANNER_SNAP_MINUTES", "15")
	t.Setenv("PLANNER_CACHE_TTL", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test ")
	t.Setenv("ENABLE_PERSISTENCE", "true")
	t.Setenv("PERSISTENCE_RETRY_DELAY", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "07:30", cfg.Planner.DayStart)
	assert.Equal(t, 80.0, cfg.Planner.PixelsPerHour)
	assert.Equal(t, 15, cfg.Planner.SnapMinutes)
	assert.Equal(t, 5*time.Minute, cfg.Planner.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Persistence.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Persistence.RetryDelay)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 90*time.Second, parseDuration("1m30s", time.Minute))
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a ,b,, "))
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"HTTP_ADDR", "SHUTDOWN_TIMEOUT", "LOG_LEVEL", "PUBLIC_BASE_URL",
	"DATABASE_URL", "DB_MAX_CONNS", "REDIS_URL", "IDEMPOTENCY_TTL",
	"JWT_SECRET", "JWT_TTL", "ADMIN_NAME", "ADMIN_EMAIL", "ADMIN_PASSWORD",
	"SENDGRID_API_KEY", "SENDGRID_FROM", "CONTACT_NOTIFY_TO",
	"WORKER_MIN", "WORKER_MAX", "WORKER_COUNT", "SCALE_INTERVAL_MS",
	"SCALE_UP_BACKLOG_PER_WORKER", "SCALE_DOWN_IDLE_TICKS", "QUEUE_HIGH_WATERMARK",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	c := Load()
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 15*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "http://localhost:8080", c.PublicBaseURL)
	assert.Empty(t, c.DatabaseURL)
	assert.Empty(t, c.RedisURL)
	assert.Equal(t, 10, c.DBMaxConns)
	assert.Equal(t, 24*time.Hour, c.IdempotencyTTL)
	assert.Equal(t, 24*time.Hour, c.JWTTTL)
	assert.True(t, c.UsesDevSecret())
	assert.Equal(t, 1, c.WorkerMin)
	assert.Equal(t, 4, c.WorkerMax)
	assert.Equal(t, 1, c.InitialWorkerCount)
	assert.Equal(t, 500*time.Millisecond, c.ScaleInterval)
	assert.Equal(t, 20, c.ScaleUpBacklogPerWorker)
	assert.Equal(t, 6, c.ScaleDownIdleTicks)
	assert.Equal(t, 1000, c.QueueHighWatermark)
	require.NoError(t, c.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "2")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("PUBLIC_BASE_URL", "https://shop.example.com/")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/shop")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "60")
	t.Setenv("WORKER_MIN", "2")
	t.Setenv("WORKER_MAX", "3")
	t.Setenv("WORKER_COUNT", "2")
	t.Setenv("SCALE_INTERVAL_MS", "250")
	c := Load()
	assert.Equal(t, ":9090", c.HTTPAddr)
	assert.Equal(t, 2*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "https://shop.example.com", c.PublicBaseURL)
	assert.Equal(t, "postgres://u:p@db:5432/shop", c.DatabaseURL)
	assert.Equal(t, "redis://cache:6379/0", c.RedisURL)
	assert.False(t, c.UsesDevSecret())
	assert.Equal(t, time.Minute, c.JWTTTL)
	assert.Equal(t, 2, c.WorkerMin)
	assert.Equal(t, 3, c.WorkerMax)
	assert.Equal(t, 2, c.InitialWorkerCount)
	assert.Equal(t, 250*time.Millisecond, c.ScaleInterval)
	require.NoError(t, c.Validate())
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_MAX_CONNS", "lots")
	c := Load()
	assert.Equal(t, 10, c.DBMaxConns)
}

func TestValidateRejectsBadWorkerBounds(t *testing.T) {
	clearEnv(t)
	t.Setenv("WORKER_MIN", "5")
	t.Setenv("WORKER_MAX", "2")
	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORKER_MIN must be <= WORKER_MAX")
}

func TestValidateRequiresAdminPair(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_EMAIL", "root@example.com")
	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_EMAIL and ADMIN_PASSWORD")
}

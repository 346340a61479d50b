// Package config provides runtime configuration values for the service.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds configuration knobs for the HTTP server, storage backends,
// authentication and the notification workers.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string
	PublicBaseURL   string

	DatabaseURL    string
	DBMaxConns     int
	RedisURL       string
	IdempotencyTTL time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	AdminName     string
	AdminEmail    string
	AdminPassword string

	SendGridAPIKey  string
	SendGridFrom    string
	ContactNotifyTo string

	InitialWorkerCount      int
	WorkerMin               int
	WorkerMax               int
	ScaleInterval           time.Duration
	ScaleUpBacklogPerWorker int
	ScaleDownIdleTicks      int
	QueueHighWatermark      int
}

const devJWTSecret = "storefront-dev-secret"

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	minWorkers := atoienv("WORKER_MIN", 1)
	maxWorkers := atoienv("WORKER_MAX", 4)
	initialWorkers := atoienv("WORKER_COUNT", minWorkers)
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
		LogLevel:        strings.ToLower(getenv("LOG_LEVEL", "info")),
		PublicBaseURL:   strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		DatabaseURL:    getenv("DATABASE_URL", ""),
		DBMaxConns:     atoienv("DB_MAX_CONNS", 10),
		RedisURL:       getenv("REDIS_URL", ""),
		IdempotencyTTL: durenvs("IDEMPOTENCY_TTL", 86400),

		JWTSecret: getenv("JWT_SECRET", devJWTSecret),
		JWTTTL:    durenvs("JWT_TTL", 86400),

		AdminName:     getenv("ADMIN_NAME", "Administrator"),
		AdminEmail:    getenv("ADMIN_EMAIL", ""),
		AdminPassword: getenv("ADMIN_PASSWORD", ""),

		SendGridAPIKey:  getenv("SENDGRID_API_KEY", ""),
		SendGridFrom:    getenv("SENDGRID_FROM", ""),
		ContactNotifyTo: getenv("CONTACT_NOTIFY_TO", ""),

		InitialWorkerCount:      initialWorkers,
		WorkerMin:               minWorkers,
		WorkerMax:               maxWorkers,
		ScaleInterval:           durenvms("SCALE_INTERVAL_MS", 500),
		ScaleUpBacklogPerWorker: atoienv("SCALE_UP_BACKLOG_PER_WORKER", 20),
		ScaleDownIdleTicks:      atoienv("SCALE_DOWN_IDLE_TICKS", 6),
		QueueHighWatermark:      atoienv("QUEUE_HIGH_WATERMARK", 1000),
	}
}

// UsesDevSecret reports whether tokens are signed with the built-in secret.
func (c Config) UsesDevSecret() bool { return c.JWTSecret == devJWTSecret }

// Validate rejects combinations the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.WorkerMin < 1 {
		errs = append(errs, errors.New("WORKER_MIN must be >= 1"))
	}
	if c.WorkerMin > c.WorkerMax {
		errs = append(errs, errors.New("WORKER_MIN must be <= WORKER_MAX"))
	}
	if c.InitialWorkerCount < c.WorkerMin || c.InitialWorkerCount > c.WorkerMax {
		errs = append(errs, errors.New("WORKER_COUNT must be within [WORKER_MIN, WORKER_MAX]"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.IdempotencyTTL <= 0 {
		errs = append(errs, errors.New("IDEMPOTENCY_TTL must be positive"))
	}
	if c.DBMaxConns < 1 {
		errs = append(errs, errors.New("DB_MAX_CONNS must be >= 1"))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}

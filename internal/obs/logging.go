// Package obs contains observability utilities such as logging and counters.
package obs

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global structured logger used by the service.
//
// It starts as a no-op so packages can log before InitLogger runs (tests).
var Logger = zap.NewNop().Sugar()

// InitLogger installs a JSON production logger at the given level
// ("debug", "info", "warn", "error"). Unknown levels fall back to info.
func InitLogger(level string) {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewExample()
	}
	Logger = l.Sugar()
}

// InitNop silences logging.
func InitNop() { Logger = zap.NewNop().Sugar() }

// Sync flushes buffered log entries.
func Sync() { _ = Logger.Sync() }

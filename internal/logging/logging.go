// Package logging provides a leveled structured logger for the server.
//
// Under stdio transport, stdout is reserved exclusively for the JSON-RPC
// stream (spec §4.1) — every logger returned by this package writes to
// stderr, never stdout.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level mirrors the configured verbosity (spec §6.3 server.log_level).
type Level string

const (
	LevelDebug    Level = "DEBUG"
	LevelInfo     Level = "INFO"
	LevelWarning  Level = "WARNING"
	LevelError    Level = "ERROR"
	LevelCritical Level = "CRITICAL"
)

var (
	mu      sync.Mutex
	base    *zap.SugaredLogger
	current Level = LevelInfo
)

func zapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarning:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelCritical:
		return zapcore.DPanicLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init (re)configures the process-global logger. Safe to call once at
// startup before any transport begins reading stdin.
func Init(level Level) {
	mu.Lock()
	defer mu.Unlock()
	current = level

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(cfg)
	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zapLevel(level))
	base = zap.New(core).Sugar()
}

func logger() *zap.SugaredLogger {
	mu.Lock()
	needsInit := base == nil
	mu.Unlock()
	if needsInit {
		Init(LevelInfo)
	}
	mu.Lock()
	defer mu.Unlock()
	return base
}

// ParseLevel maps a config string onto a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(LevelDebug):
		return LevelDebug
	case string(LevelWarning):
		return LevelWarning
	case string(LevelError):
		return LevelError
	case string(LevelCritical):
		return LevelCritical
	default:
		return LevelInfo
	}
}

// With returns a child logger carrying structured fields, e.g.
// logging.With("namespace", ns, "session_id", sid).
func With(kv ...interface{}) *zap.SugaredLogger {
	return logger().With(kv...)
}

func Debugw(msg string, kv ...interface{}) { logger().Debugw(msg, kv...) }
func Infow(msg string, kv ...interface{})  { logger().Infow(msg, kv...) }
func Warnw(msg string, kv ...interface{})  { logger().Warnw(msg, kv...) }
func Errorw(msg string, kv ...interface{}) { logger().Errorw(msg, kv...) }
func Sync() error                          { return logger().Sync() }

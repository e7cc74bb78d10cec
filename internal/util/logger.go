package util

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger is replaced by InitLogger and read from any goroutine
var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// InitLogger builds the process-wide logger. Production writes JSON,
// anything else colored console lines. An empty level keeps the default of
// the chosen config (info for production, debug otherwise).
func InitLogger(env, level string) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if env == "production" {
		cfg = zap.NewProductionConfig()
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = lvl
	}
	cfg.InitialFields = map[string]interface{}{"app": "dental-shop", "env": env}

	built, err := cfg.Build()
	if err != nil {
		return err
	}

	logger.Store(built)
	zap.ReplaceGlobals(built)
	return nil
}

// GetLogger returns the process-wide logger. Before InitLogger has run it
// is a no-op logger.
func GetLogger() *zap.Logger {
	return logger.Load()
}

// Named returns a child logger tagged with a component name
func Named(component string) *zap.Logger {
	return GetLogger().Named(component)
}

func SyncLogger() {
	_ = logger.Load().Sync()
}

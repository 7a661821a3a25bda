// Package logging builds the zap loggers used across the service and adapts
// them to the logger interfaces of gorm and backlite.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mrlokans/conduit/internal/config"
)

// New builds a sugared zap logger from the log configuration.
func New(cfg config.Log) (*zap.SugaredLogger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.Sugar(), nil
}

// Nop returns a logger that discards everything. Used by tests and CLI commands.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// TaskLogger adapts a sugared logger to the backlite.Logger interface.
// backlite passes key/value pairs after the message.
type TaskLogger struct {
	Log *zap.SugaredLogger
}

func (l TaskLogger) Info(message string, params ...any) {
	l.Log.Infow("[task] "+message, params...)
}

func (l TaskLogger) Error(message string, params ...any) {
	l.Log.Errorw("[task] "+message, params...)
}

// Package logging configures the process-wide structured logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the logger. Production JSON encoding by default; debug
// flips the level and keeps the same encoding so log pipelines do not
// need a second parser.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// Nop returns a logger that discards everything. For tests and for
// callers that have not set logging up yet.
func Nop() *zap.Logger {
	return zap.NewNop()
}

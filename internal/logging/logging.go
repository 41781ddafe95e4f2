// Package logging builds the zap logger used for diagnostics.
//
// User-facing progress goes through the output package; the logger carries
// structured detail (request timings, run ids, errors) to stderr.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logger at the given level.
//
// Format "json" (or "production") selects zap's production encoder; anything
// else, including the empty string, selects the human-readable console
// encoder. An empty level means "warn".
func New(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	if format == "json" || format == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level == "" {
		level = "warn"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build(zap.Fields(zap.String("component", "autograder")))
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

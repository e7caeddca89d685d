// Package logging builds the process logger.
package logging

import (
	"go.uber.org/zap"
)

// New returns a development logger for env "development" and a production
// (JSON) logger otherwise. Both write to stderr so stdout carries only results.
// debug lowers the level to Debug for per-word detail.
func New(env string, debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

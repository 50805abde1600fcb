// Package logging builds the process logger: a single *zap.Logger
// constructed once from config and threaded explicitly through every
// constructor, never reached for as a package-level global.
package logging

import (
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aberic/george/internal/config"
)

// New builds a *zap.Logger from cfg: the production JSON encoder when
// cfg.Production is set, the human-readable development encoder otherwise,
// at the level named by cfg.LogLevel (falling back to info on a bad value).
func New(cfg *config.Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	_ = level.Set(cfg.LogLevel)

	var zc zap.Config
	if cfg.Production {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if cfg.LogDir != "" {
		zc.OutputPaths = append(zc.OutputPaths, filepath.Join(cfg.LogDir, "george.log"))
	}
	return zc.Build()
}

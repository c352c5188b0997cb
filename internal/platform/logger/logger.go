// Package logger builds the process-wide slog logger on top of zap.
package logger

import (
	"fmt"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"stockwatch/internal/platform/config"
)

// New returns a slog.Logger writing through a zap core configured by cfg,
// and a sync function to flush buffered entries on shutdown.
func New(cfg config.LogConfig) (*slog.Logger, func() error, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	zcfg := zap.NewProductionConfig()
	if strings.EqualFold(cfg.Format, "console") {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	zl, err := zcfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build zap logger: %w", err)
	}
	return slog.New(zapslog.NewHandler(zl.Core())), zl.Sync, nil
}

// Setup builds the logger and installs it as slog's default.
func Setup(cfg config.LogConfig) (func() error, error) {
	l, sync, err := New(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(l)
	return sync, nil
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return l, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}

// Package logging wraps zap with the service-scoped conventions used
// throughout this repository, grounded on
// OmishaPatel-DistributedFileStorage/backend/pkg/logging/zap_logger.go:
// one JSON-encoded logger per service name, writable to stdout and an
// optional file sink.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls how a logger is built.
type Config struct {
	ServiceName string
	Level       string // "debug", "info", "warn", "error"
	OutputPaths []string
	Development bool
}

// New builds a zap.Logger tagged with the service name, JSON-encoded,
// with the same encoder field layout used across this project's
// services.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(orDefault(cfg.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("logging: parse level %q: %w", cfg.Level, err)
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Development,
		DisableCaller:     false,
		DisableStacktrace: false,
		Encoding:          "json",
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger for %s: %w", cfg.ServiceName, err)
	}

	return logger.With(zap.String("service", cfg.ServiceName)), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

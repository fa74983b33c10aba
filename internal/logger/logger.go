// Package logger builds the zap loggers used by the CLI, the terminal UI and the gateway.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environments accepted by New.
const (
	EnvProd  = "prod"
	EnvLocal = "local"
	EnvDev   = "dev"
)

// Options adjust the environment preset.
type Options struct {
	// Level overrides the preset level: debug, info, warn, error.
	Level string
	// OutputPath replaces stderr. The terminal UI points this at a file
	// so log lines never land on the screen it draws.
	OutputPath string
}

// New creates a logger for env. prod writes JSON, local and dev write colored console lines.
func New(env string, opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(env) {
	case EnvProd:
		cfg = zap.NewProductionConfig()
	case EnvLocal, EnvDev:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}

	if opts.Level != "" {
		level, err := ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}
	if opts.OutputPath != "" {
		cfg.OutputPaths = []string{opts.OutputPath}
		cfg.ErrorOutputPaths = []string{opts.OutputPath}
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.Named("dirsearch"), nil
}

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

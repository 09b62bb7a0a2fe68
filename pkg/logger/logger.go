package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/config"
)

type Option func(*options)

type options struct {
	fields []zap.Field
}

// WithService stamps every line with the application identity.
func WithService(app config.AppConfig) Option {
	return func(o *options) {
		o.fields = append(o.fields,
			zap.String("service", app.Name),
			zap.String("env", app.Environment),
			zap.String("version", app.Version),
		)
	}
}

// WithSession ties every line to one run of the desk.
func WithSession(id string) Option {
	return func(o *options) {
		o.fields = append(o.fields, zap.String("session_id", id))
	}
}

// New builds the process logger. Output defaults to stderr so log lines never
// interleave with the operator menu on stdout; a file path gets its directory
// created.
func New(cfg config.LogConfig, opts ...Option) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.OutputPath != "stderr" && cfg.OutputPath != "stdout" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{cfg.OutputPath}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build(
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(o.fields...),
	)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	return logger, nil
}

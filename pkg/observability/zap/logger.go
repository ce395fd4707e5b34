package zap

import (
	"errors"
	"os"
	"strings"

	ubzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/theory-cloud/webtheory/pkg/observability"
)

// Config controls the synthesis logger output.
type Config struct {
	Format string // "json" or "console"; empty means json
	Level  string // "debug", "info", "warn", "error"; empty means info
}

type Option func(*options)

type options struct {
	zapLogger *ubzap.Logger
}

// WithZapLogger injects a prebuilt zap logger, mainly for tests.
func WithZapLogger(logger *ubzap.Logger) Option {
	return func(opts *options) {
		opts.zapLogger = logger
	}
}

// Logger adapts go.uber.org/zap to the observability.StructuredLogger surface.
type Logger struct {
	log    *ubzap.Logger
	fields map[string]any
}

var _ observability.StructuredLogger = (*Logger)(nil)

// NewLogger builds a structured logger writing to stdout.
func NewLogger(config Config, opts ...Option) (*Logger, error) {
	o := &options{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(o)
	}

	base := o.zapLogger
	if base == nil {
		level, err := parseLevel(config.Level)
		if err != nil {
			return nil, err
		}

		enc := zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			MessageKey:     "message",
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		}

		var encoder zapcore.Encoder
		switch strings.ToLower(strings.TrimSpace(config.Format)) {
		case "console":
			encoder = zapcore.NewConsoleEncoder(enc)
		case "json", "":
			encoder = zapcore.NewJSONEncoder(enc)
		default:
			return nil, errors.New("observability/zap: unsupported log format")
		}

		base = ubzap.New(zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	}

	return &Logger{log: base}, nil
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, errors.New("observability/zap: unsupported log level")
	}
}

func (l *Logger) zapFields(fields ...map[string]any) []ubzap.Field {
	merged := observability.MergeFields(append([]map[string]any{l.fields}, fields...)...)
	if len(merged) == 0 {
		return nil
	}
	out := make([]ubzap.Field, 0, len(merged))
	for k, v := range merged {
		out = append(out, ubzap.Any(k, v))
	}
	return out
}

func (l *Logger) Debug(message string, fields ...map[string]any) {
	l.log.Debug(message, l.zapFields(fields...)...)
}

func (l *Logger) Info(message string, fields ...map[string]any) {
	l.log.Info(message, l.zapFields(fields...)...)
}

func (l *Logger) Warn(message string, fields ...map[string]any) {
	l.log.Warn(message, l.zapFields(fields...)...)
}

func (l *Logger) Error(message string, fields ...map[string]any) {
	l.log.Error(message, l.zapFields(fields...)...)
}

func (l *Logger) WithField(key string, value any) observability.StructuredLogger {
	return l.WithFields(map[string]any{key: value})
}

func (l *Logger) WithFields(fields map[string]any) observability.StructuredLogger {
	return &Logger{log: l.log, fields: observability.MergeFields(l.fields, fields)}
}

// Sync flushes buffered log entries. Safe to call at process exit.
func (l *Logger) Sync() error {
	return l.log.Sync()
}

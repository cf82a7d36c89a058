// Package logger provides structured logging for the agent without leaking
// the backend (logrus) into the rest of the codebase.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is the logging interface used across the repo.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)

	// With returns a child logger that includes the given fields on every entry.
	With(fields ...Field) Logger
}

// Config controls logger construction.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	Output io.Writer
}

type logrusLogger struct {
	backend *logrus.Logger
	preset  []Field
}

// New builds a Logger from the given config.
func New(cfg Config) (Logger, error) {
	backend := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	backend.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		backend.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	case "json":
		backend.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	if cfg.Output != nil {
		backend.SetOutput(cfg.Output)
	} else {
		backend.SetOutput(os.Stderr)
	}

	return &logrusLogger{backend: backend}, nil
}

// NewDefault returns an info-level text logger on stderr.
func NewDefault() Logger {
	l, _ := New(Config{Level: "info", Format: "text"})
	return l
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() Logger {
	l, _ := New(Config{Level: "error", Format: "text", Output: io.Discard})
	return l
}

func (l *logrusLogger) entry(fields []Field) *logrus.Entry {
	data := make(logrus.Fields, len(l.preset)+len(fields))
	for _, f := range l.preset {
		data[f.Key] = f.Value
	}
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return l.backend.WithFields(data)
}

func (l *logrusLogger) Debug(msg string, fields ...Field) { l.entry(fields).Debug(msg) }
func (l *logrusLogger) Info(msg string, fields ...Field)  { l.entry(fields).Info(msg) }
func (l *logrusLogger) Warn(msg string, fields ...Field)  { l.entry(fields).Warn(msg) }

func (l *logrusLogger) Error(msg string, err error, fields ...Field) {
	if err != nil {
		fields = append(fields, Field{Key: "error", Value: err.Error()})
	}
	l.entry(fields).Error(msg)
}

func (l *logrusLogger) With(fields ...Field) Logger {
	preset := make([]Field, 0, len(l.preset)+len(fields))
	preset = append(preset, l.preset...)
	preset = append(preset, fields...)
	return &logrusLogger{backend: l.backend, preset: preset}
}

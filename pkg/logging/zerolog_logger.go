package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LoggerConfig configures a ZerologLogger.
type LoggerConfig struct {
	// OutputPath is a log file path. Empty means Output (or
	// stdout when Output is nil).
	OutputPath string

	// Output is used when OutputPath is empty.
	Output io.Writer

	// Level is the minimum level written.
	Level LogLevel

	// Console renders human-readable lines instead of JSON.
	Console bool

	// Component is attached to every entry when non-empty.
	Component string
}

// ZerologLogger implements Logger on top of zerolog.
type ZerologLogger struct {
	base   zerolog.Logger
	closer io.Closer
	once   *sync.Once
}

// NewZerologLogger creates a logger from config. When OutputPath
// is set, the parent directory is created and the file opened in
// append mode.
func NewZerologLogger(config LoggerConfig) (*ZerologLogger, error) {
	var (
		w      io.Writer = os.Stdout
		closer io.Closer
	)
	switch {
	case config.OutputPath != "":
		dir := filepath.Dir(config.OutputPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf(
				"failed to create log directory: %w", err,
			)
		}
		file, err := os.OpenFile(
			config.OutputPath,
			os.O_CREATE|os.O_WRONLY|os.O_APPEND,
			0o644,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to open log file: %w", err,
			)
		}
		w, closer = file, file
	case config.Output != nil:
		w = config.Output
	}

	if config.Console {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    config.OutputPath != "",
		}
	}

	ctx := zerolog.New(w).Level(config.Level.zerolog()).
		With().Timestamp()
	if config.Component != "" {
		ctx = ctx.Str("component", config.Component)
	}

	return &ZerologLogger{
		base:   ctx.Logger(),
		closer: closer,
		once:   &sync.Once{},
	}, nil
}

func (l *ZerologLogger) write(
	e *zerolog.Event, msg string, fields []Field,
) {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			e = e.Str(f.Key, v)
		case int:
			e = e.Int(f.Key, v)
		case bool:
			e = e.Bool(f.Key, v)
		case time.Duration:
			e = e.Dur(f.Key, v)
		case error:
			e = e.AnErr(f.Key, v)
		default:
			e = e.Interface(f.Key, v)
		}
	}
	e.Msg(msg)
}

// Info logs an informational message.
func (l *ZerologLogger) Info(msg string, fields ...Field) {
	l.write(l.base.Info(), msg, fields)
}

// Warn logs a warning message.
func (l *ZerologLogger) Warn(msg string, fields ...Field) {
	l.write(l.base.Warn(), msg, fields)
}

// Error logs an error message.
func (l *ZerologLogger) Error(msg string, fields ...Field) {
	l.write(l.base.Error(), msg, fields)
}

// Debug logs a debug message.
func (l *ZerologLogger) Debug(msg string, fields ...Field) {
	l.write(l.base.Debug(), msg, fields)
}

// WithFields returns a child logger sharing the same output.
func (l *ZerologLogger) WithFields(fields ...Field) Logger {
	ctx := l.base.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &ZerologLogger{
		base:   ctx.Logger(),
		closer: l.closer,
		once:   l.once,
	}
}

// Close closes the log file, if any. Safe to call multiple
// times and from child loggers.
func (l *ZerologLogger) Close() error {
	var err error
	l.once.Do(func() {
		if l.closer != nil {
			err = l.closer.Close()
		}
	})
	return err
}

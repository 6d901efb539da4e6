package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Log levels supported by the logger
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// FileName is the name of the log file created inside the state directory.
const FileName = "rebuttal.log"

// Logger provides structured logging with persistent context attributes.
// It is safe for concurrent use; child loggers share the parent's file.
type Logger struct {
	logger *slog.Logger
	file   *fileRef
}

// fileRef is shared by a logger and all of its children so Close on any of
// them closes the file exactly once.
type fileRef struct {
	mu sync.Mutex
	f  *RotatingWriter
}

// NewLogger creates a Logger that appends JSON lines to {stateDir}/rebuttal.log,
// rotating it with DefaultRotationConfig. If stateDir is empty, logs are
// written to stderr.
func NewLogger(stateDir string, level string) (*Logger, error) {
	return NewRotatingLogger(stateDir, level, DefaultRotationConfig())
}

// NewRotatingLogger is NewLogger with explicit rotation settings.
func NewRotatingLogger(stateDir string, level string, rotation RotationConfig) (*Logger, error) {
	var writer io.Writer = os.Stderr
	ref := &fileRef{}

	if stateDir != "" {
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}

		rw, err := NewRotatingWriter(filepath.Join(stateDir, FileName), rotation)
		if err != nil {
			return nil, err
		}
		ref.f = rw
		writer = rw
	}

	return newWithWriter(writer, level, ref), nil
}

// NewWriterLogger creates a Logger writing JSON lines to w. Close is a no-op.
func NewWriterLogger(w io.Writer, level string) *Logger {
	return newWithWriter(w, level, &fileRef{})
}

func newWithWriter(w io.Writer, level string, ref *fileRef) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &Logger{logger: slog.New(handler), file: ref}
}

// parseLevel converts a string log level to slog.Level, defaulting to INFO.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithAssignment returns a child logger tagged with the assignment ID.
func (l *Logger) WithAssignment(assignmentID string) *Logger {
	return l.With("assignment_id", assignmentID)
}

// WithDebate returns a child logger tagged with the debate number (1-3).
func (l *Logger) WithDebate(debate int) *Logger {
	return l.With("debate", debate)
}

// WithAction returns a child logger tagged with the server's nextAction.
func (l *Logger) WithAction(action string) *Logger {
	return l.With("action", action)
}

// With returns a child logger with arbitrary key-value attributes.
// Keys and values are provided as alternating arguments.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}
	return &Logger{logger: l.logger.With(args...), file: l.file}
}

// Debug logs a message at DEBUG level with optional key-value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs a message at INFO level with optional key-value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs a message at WARN level with optional key-value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs a message at ERROR level with optional key-value pairs.
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Log(context.Background(), slog.LevelError, msg, args...)
}

// Close flushes and closes the log file. Loggers writing to stderr or to a
// caller-supplied writer are unaffected.
func (l *Logger) Close() error {
	l.file.mu.Lock()
	defer l.file.mu.Unlock()

	if l.file.f == nil {
		return nil
	}
	if err := l.file.f.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := l.file.f.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	l.file.f = nil
	return nil
}

// NopLogger returns a Logger that discards all log output.
func NopLogger() *Logger {
	return NewWriterLogger(io.Discard, LevelError)
}

// ParseLevel normalizes a user-provided level string.
// Returns LevelInfo if the level string is not recognized.
func ParseLevel(level string) string {
	switch strings.ToUpper(level) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return strings.ToUpper(level)
	default:
		return LevelInfo
	}
}

// ValidLevels returns the list of valid log level strings.
func ValidLevels() []string {
	return []string{LevelDebug, LevelInfo, LevelWarn, LevelError}
}

// Package logging adapts log/slog to the domain Logger interface.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ochairo/tpa-symbols/internal/domain/interfaces"
)

// Supported output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// SlogLogger implements interfaces.Logger on top of *slog.Logger
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps an existing slog logger
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// New builds a logger writing format to w. verbose enables debug entries.
func New(w io.Writer, format string, verbose bool) (*SlogLogger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "", FormatText:
		h = slog.NewTextHandler(w, opts)
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q (want %s or %s)", format, FormatText, FormatJSON)
	}

	return NewSlogLogger(slog.New(h)), nil
}

func attrs(fields []interfaces.Field) []any {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			args = append(args, slog.String(f.Key, err.Error()))
			continue
		}
		args = append(args, slog.Any(f.Key, f.Value))
	}
	return args
}

// Debug logs debug-level messages
func (s *SlogLogger) Debug(msg string, fields ...interfaces.Field) {
	s.l.Debug(msg, attrs(fields)...)
}

// Info logs informational messages
func (s *SlogLogger) Info(msg string, fields ...interfaces.Field) {
	s.l.Info(msg, attrs(fields)...)
}

// Warn logs warning messages
func (s *SlogLogger) Warn(msg string, fields ...interfaces.Field) {
	s.l.Warn(msg, attrs(fields)...)
}

// Error logs error messages
func (s *SlogLogger) Error(msg string, fields ...interfaces.Field) {
	s.l.Error(msg, attrs(fields)...)
}

// With returns a logger that attaches fields to every entry
func (s *SlogLogger) With(fields ...interfaces.Field) interfaces.Logger {
	return &SlogLogger{l: s.l.With(attrs(fields)...)}
}

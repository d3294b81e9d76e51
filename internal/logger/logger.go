// Package logger wraps charm/log for structured logging. The editor
// renders to the terminal, so interactive sessions log to a file and
// tests log to Discard.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/glintnotes/glint/internal/engine/buffer"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// NewFileLogger creates a logger that writes to a file
func NewFileLogger(path string) (*Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	l := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})

	cleanup := func() {
		f.Close()
	}

	return &Logger{Logger: l}, cleanup, nil
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// FileOpened logs a successful buffer load
func (l *Logger) FileOpened(path string, bytes int) {
	l.Info("file opened",
		"path", path,
		"bytes", bytes)
}

// FileSaved logs a successful buffer write
func (l *Logger) FileSaved(path string, bytes int) {
	l.Info("file saved",
		"path", path,
		"bytes", bytes)
}

// FileError logs an error for a specific file
func (l *Logger) FileError(path string, err error) {
	l.Error("file error",
		"path", path,
		"error", err)
}

// DecorationPass logs one decoration recompute
func (l *Logger) DecorationPass(reason string, instructions int, elapsed time.Duration) {
	l.Debug("decorations rebuilt",
		"reason", reason,
		"instructions", instructions,
		"elapsed", elapsed.Round(time.Microsecond))
}

// SearchQuery logs a search scan
func (l *Logger) SearchQuery(query string, matches int) {
	l.Debug("search",
		"query", query,
		"matches", matches)
}

// Navigate logs wiki-link navigation
func (l *Logger) Navigate(title string) {
	l.Info("navigate",
		"title", title)
}

// NavigateError logs a failed wiki-link navigation
func (l *Logger) NavigateError(title string, err error) {
	l.Warn("navigation failed",
		"title", title,
		"error", err)
}

// EditApplied logs a buffer edit
func (l *Logger) EditApplied(at buffer.ByteOffset, delta int, rev buffer.Revision) {
	l.Debug("edit applied",
		"offset", at,
		"delta", delta,
		"revision", rev)
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(path string, theme string) {
	l.Debug("config loaded",
		"path", path,
		"theme", theme)
}

// Package logging builds the slog loggers used by the job handler: a buffered
// primary logger with an explicit flush step, and independently configured
// stream loggers that can be opened on demand for failure escalation.
package logging

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelCritical sits above slog.LevelError and is rendered as "CRITICAL".
const LevelCritical = slog.Level(12)

// Config holds the logger configuration.
type Config struct {
	Level  string
	Format string
	// Output defaults to stdout when nil.
	Output io.Writer
}

// Logger is a slog.Logger whose output is buffered until Flush or Close.
// Records at Warn and above flush the buffer immediately.
type Logger struct {
	*slog.Logger

	out    *syncWriter
	closer io.Closer
}

// New initializes a buffered logger based on the provided configuration.
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}
	return newLogger(output, nil, ParseLevel(cfg.Level), cfg.Format)
}

// OpenStream constructs a second, independent logger that appends JSON records to
// <dir>/<group>/<stream>.log. The caller must Close it.
func OpenStream(dir, group, stream string) (*Logger, error) {
	if strings.TrimSpace(group) == "" || strings.TrimSpace(stream) == "" {
		return nil, errors.New("log stream requires a group and a stream name")
	}
	groupDir := filepath.Join(dir, filepath.Base(group))
	if err := os.MkdirAll(groupDir, 0o750); err != nil {
		return nil, fmt.Errorf("create log group dir: %w", err)
	}
	path := filepath.Join(groupDir, filepath.Base(stream)+".log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log stream: %w", err)
	}
	return newLogger(f, f, slog.LevelDebug, "json"), nil
}

func newLogger(w io.Writer, closer io.Closer, level slog.Level, format string) *Logger {
	out := &syncWriter{w: bufio.NewWriter(w)}
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevel,
	}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	return &Logger{
		Logger: slog.New(&flushingHandler{Handler: handler, out: out}),
		out:    out,
		closer: closer,
	}
}

// Critical logs at LevelCritical.
func (l *Logger) Critical(ctx context.Context, msg string, args ...any) {
	l.Log(ctx, LevelCritical, msg, args...)
}

// FlushEvery flushes the buffer every interval until ctx is done, so records
// written between jobs still reach the output. It blocks; run it in a goroutine.
func (l *Logger) FlushEvery(ctx context.Context, interval time.Duration) {
	if l == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = l.Flush()
			return
		case <-ticker.C:
			_ = l.Flush()
		}
	}
}

// Flush writes any buffered records to the underlying writer.
func (l *Logger) Flush() error {
	if l == nil || l.out == nil {
		return nil
	}
	return l.out.Flush()
}

// Close flushes buffered records and closes the underlying file, if the logger owns one.
// The logger keeps accepting records after Close when it writes to stdout.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	err := l.Flush()
	if l.closer != nil {
		if cerr := l.closer.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close log stream: %w", cerr))
		}
		l.closer = nil
	}
	return err
}

// Critical logs at LevelCritical on any slog.Logger.
func Critical(ctx context.Context, logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		return
	}
	logger.Log(ctx, LevelCritical, msg, args...)
}

// ParseLevel understands the slog level names plus "critical"; unknown values map to info.
func ParseLevel(s string) slog.Level {
	v := strings.TrimSpace(s)
	if strings.EqualFold(v, "critical") {
		return LevelCritical
	}
	level := new(slog.Level)
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return slog.LevelInfo
	}
	return *level
}

func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
		a.Value = slog.StringValue("CRITICAL")
	}
	return a
}

type syncWriter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *syncWriter) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

// flushingHandler flushes out after every record at Warn or above.
type flushingHandler struct {
	slog.Handler
	out *syncWriter
}

func (h *flushingHandler) Handle(ctx context.Context, r slog.Record) error {
	err := h.Handler.Handle(ctx, r)
	if r.Level >= slog.LevelWarn {
		if ferr := h.out.Flush(); ferr != nil && err == nil {
			err = ferr
		}
	}
	return err
}

func (h *flushingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &flushingHandler{Handler: h.Handler.WithAttrs(attrs), out: h.out}
}

func (h *flushingHandler) WithGroup(name string) slog.Handler {
	return &flushingHandler{Handler: h.Handler.WithGroup(name), out: h.out}
}

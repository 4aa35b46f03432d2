package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerBuffersUntilFlush(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})

	logger.Info("job received")
	assert.Zero(t, buf.Len(), "records stay buffered until Flush")

	require.NoError(t, logger.Flush())
	assert.Contains(t, buf.String(), `"msg":"job received"`)
}

func TestWarningsFlushImmediately(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})

	logger.Info("listening for webhook jobs")
	assert.Zero(t, buf.Len())

	logger.With("worker", 0).Error("dequeue failed", "error", "connection refused")
	out := buf.String()
	assert.Contains(t, out, "listening for webhook jobs", "earlier records go out with the warning")
	assert.Contains(t, out, `"msg":"dequeue failed"`)
	assert.Contains(t, out, `"worker":0`)

	Critical(context.Background(), logger.WithGroup("job"), "prefix invalid")
	assert.Contains(t, buf.String(), "prefix invalid")
}

func TestFlushEvery(t *testing.T) {
	var mu sync.Mutex
	buf := &lockedBuffer{mu: &mu}
	logger := New(Config{Output: buf})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		logger.FlushEvery(ctx, 5*time.Millisecond)
		close(done)
	}()

	logger.Info("idle worker heartbeat")
	assert.Eventually(t, func() bool {
		return bytes.Contains(buf.Bytes(), []byte("idle worker heartbeat"))
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

type lockedBuffer struct {
	mu  *sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

func TestCriticalLevelRendering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Level: "error"})

	logger.Warn("hidden")
	logger.Critical(context.Background(), "nothing to process")
	Critical(context.Background(), logger.Logger, "via helper")
	require.NoError(t, logger.Close())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"level":"CRITICAL","msg":"nothing to process"`)
	assert.Contains(t, out, "via helper")
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Format: "TEXT"})
	logger.Critical(context.Background(), "boom")
	require.NoError(t, logger.Flush())
	assert.Contains(t, buf.String(), "level=CRITICAL")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":    slog.LevelDebug,
		" WARN ":   slog.LevelWarn,
		"critical": LevelCritical,
		"":         slog.LevelInfo,
		"verbose":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestOpenStream(t *testing.T) {
	dir := t.TempDir()
	logger, err := OpenStream(dir, "FAILED_tX", "Door43_catalog_job_handler")
	require.NoError(t, err)

	logger.Debug("debug is enabled on streams")
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close(), "second close is a no-op")

	data, err := os.ReadFile(filepath.Join(dir, "FAILED_tX", "Door43_catalog_job_handler.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug is enabled on streams")

	_, err = OpenStream(dir, " ", "x")
	assert.Error(t, err)
}

func TestNilLoggerLifecycle(t *testing.T) {
	var l *Logger
	assert.NoError(t, l.Flush())
	assert.NoError(t, l.Close())
	Critical(context.Background(), nil, "ignored")
}

// FILE: asynclog/src/internal/backend/stream_test.go
package backend

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"asynclog/src/internal/config"
	"asynclog/src/internal/core"
	"asynclog/src/internal/format"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func newTextFormatter(t *testing.T) format.Formatter {
	t.Helper()
	opts := config.Defaults().Format.Text
	f, err := format.NewTextFormatter(&opts, newTestLogger())
	require.NoError(t, err)
	return f
}

func makeRecord(msg string) core.LogRecord {
	return core.LogRecord{
		Time:    time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Logger:  "test",
		Level:   core.LevelInfo,
		Message: msg,
	}
}

func TestStreamBackendSend(t *testing.T) {
	var buf bytes.Buffer
	b := NewStreamBackend(&buf, newTextFormatter(t), newTestLogger())

	batch := []core.LogRecord{makeRecord("first"), makeRecord("second")}
	outcome, err := b.Send(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Accepted)
	assert.Empty(t, outcome.Rejected)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "first")
	assert.Contains(t, lines[1], "second")
}

func TestStreamBackendWritesExactlyOnce(t *testing.T) {
	var buf bytes.Buffer
	b := NewStreamBackend(&buf, newTextFormatter(t), newTestLogger())

	_, err := b.Send(context.Background(), []core.LogRecord{makeRecord("hello")})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(buf.String(), "hello"))
	assert.Equal(t, "[2026-03-14T09:26:53.000Z] [INFO] test - hello\n", buf.String())
}

func TestStreamBackendCancelledContext(t *testing.T) {
	var buf bytes.Buffer
	b := NewStreamBackend(&buf, newTextFormatter(t), newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := b.Send(ctx, []core.LogRecord{makeRecord("hello")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 0, outcome.Accepted)
	assert.Empty(t, buf.String())
}

type failingWriter struct {
	writes int
	failAt int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes >= w.failAt {
		return 0, assert.AnError
	}
	return len(p), nil
}

func TestStreamBackendPartialWriteFailure(t *testing.T) {
	w := &failingWriter{failAt: 2}
	b := NewStreamBackend(w, newTextFormatter(t), newTestLogger())

	batch := []core.LogRecord{makeRecord("a"), makeRecord("b"), makeRecord("c")}
	outcome, err := b.Send(context.Background(), batch)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, outcome.Accepted)
}

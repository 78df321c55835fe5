// FILE: asynclog/src/internal/deadletter/deadletter_test.go
package deadletter

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"asynclog/src/internal/config"
	"asynclog/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkWrite(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.DeadLetterConfig{
		Enabled:   true,
		Directory: dir,
		Name:      "dead.jsonl",
		MaxSizeMB: 1,
	}

	sink, err := NewFileSink(cfg, log.NewLogger())
	require.NoError(t, err)
	defer sink.Close()

	records := []core.LogRecord{
		{
			Time:    time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
			Logger:  "api",
			Level:   core.LevelError,
			Message: "undeliverable",
			Fields:  core.Fields{"latency": 1500 * time.Millisecond},
		},
	}

	require.NoError(t, sink.Write("batch-1", records))
	require.NoError(t, sink.Write("batch-2", records))
	require.NoError(t, sink.Close())

	f, err := os.Open(filepath.Join(dir, "dead.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var lines []envelope
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var env envelope
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &env))
		lines = append(lines, env)
	}

	require.Len(t, lines, 2)
	assert.Equal(t, "batch-1", lines[0].BatchID)
	assert.Equal(t, "batch-2", lines[1].BatchID)
	assert.Equal(t, 1, lines[0].Count)
	require.Len(t, lines[0].Records, 1)
	assert.Equal(t, "undeliverable", lines[0].Records[0].Message)
	// Durations are normalized to strings for the file
	assert.Equal(t, "1.5s", lines[0].Records[0].Fields["latency"])
}

func TestNewFileSinkRequiresName(t *testing.T) {
	_, err := NewFileSink(&config.DeadLetterConfig{Directory: t.TempDir()}, log.NewLogger())
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

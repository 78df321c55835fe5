// FILE: asynclog/src/asynclog/hub_test.go
package asynclog

import (
	"bytes"
	"strings"
	"testing"

	"asynclog/src/internal/backend"
	"asynclog/src/internal/config"
	"asynclog/src/internal/format"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBackendIsStream(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.HandlerStream, cfg.Handler)

	hub, err := New(cfg, log.NewLogger())
	require.NoError(t, err)
	defer hub.Shutdown()

	assert.Equal(t, "stream", hub.Backend())
}

func TestStreamDeliveryExactlyOnce(t *testing.T) {
	var buf bytes.Buffer

	cfg := DefaultConfig()
	cfg.Batch.MaxDelayMS = 10

	opts := cfg.Format.Text
	formatter, err := format.NewTextFormatter(&opts, log.NewLogger())
	require.NoError(t, err)

	hub, err := New(cfg, log.NewLogger(),
		WithBackend(backend.NewStreamBackend(&buf, formatter, log.NewLogger())))
	require.NoError(t, err)

	hub.GetLogger("api").Info("hello")
	report := hub.Shutdown()

	assert.Equal(t, uint64(1), report.Delivered)
	assert.Equal(t, uint64(0), report.Discarded)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "hello"))

	// Level, timestamp, logger name, message and nothing else
	line := strings.TrimSuffix(out, "\n")
	assert.Regexp(t, `^\[[^\]]+\] \[INFO\] api - hello$`, line)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Handler = "syslog"

	_, err := New(cfg, log.NewLogger())
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestAzureRequiresDCRSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Handler = config.HandlerAzure
	cfg.Azure.Endpoint = "https://dce.example"
	// RuleID and StreamName left unset

	_, err := New(cfg, log.NewLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestAzureDCRFromEnvironment(t *testing.T) {
	t.Setenv("ASYNC_LOGGING_HANDLER", "azure")
	t.Setenv("DATA_COLLECTION_ENDPOINT", "https://dce.example")
	t.Setenv("LOGS_DCR_RULE_ID", "dcr-1")
	t.Setenv("LOGS_DCR_STREAM_NAME", "Custom-App")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.HandlerAzure, cfg.Handler)
	assert.Equal(t, "dcr-1", cfg.Azure.RuleID)
	assert.Equal(t, "Custom-App", cfg.Azure.StreamName)
}

func TestAzureMissingDCRFailsAtStartup(t *testing.T) {
	t.Setenv("ASYNC_LOGGING_HANDLER", "azure")
	t.Setenv("DATA_COLLECTION_ENDPOINT", "https://dce.example")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestShutdownIsIdempotent(t *testing.T) {
	hub, _ := newTestHub(t)

	hub.GetLogger("api").Info("one")
	first := hub.Shutdown()
	second := hub.Shutdown()

	// The second call returns the cached report, not a fabricated one
	assert.Equal(t, first, second)
	assert.Equal(t, uint64(1), second.Delivered)
}

// FILE: asynclog/src/internal/backend/gcp_test.go
package backend

import (
	"encoding/json"
	"testing"

	"asynclog/src/internal/config"
	"asynclog/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGCPBackendValidation(t *testing.T) {
	_, err := NewGCPBackend(&config.GCPConfig{LogName: "app"}, nil, newTestLogger())
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestGCPBuildPayload(t *testing.T) {
	b, err := NewGCPBackend(&config.GCPConfig{
		ProjectID: "proj-1",
		LogName:   "app",
		Endpoint:  "https://logging.googleapis.com",
	}, StaticToken("t"), newTestLogger())
	require.NoError(t, err)

	rec := makeRecord("hello")
	rec.Fields = core.Fields{"request_id": "r-1"}

	body, err := b.buildPayload([]core.LogRecord{rec})
	require.NoError(t, err)

	var payload struct {
		LogName        string `json:"logName"`
		PartialSuccess bool   `json:"partialSuccess"`
		Entries        []struct {
			Timestamp   string         `json:"timestamp"`
			Severity    string         `json:"severity"`
			JSONPayload map[string]any `json:"jsonPayload"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))

	assert.Equal(t, "projects/proj-1/logs/app", payload.LogName)
	assert.True(t, payload.PartialSuccess)
	require.Len(t, payload.Entries, 1)
	assert.Equal(t, "INFO", payload.Entries[0].Severity)
	assert.Equal(t, "hello", payload.Entries[0].JSONPayload["message"])
	assert.Equal(t, "r-1", payload.Entries[0].JSONPayload["request_id"])
}

func TestParseEntryErrors(t *testing.T) {
	body := []byte(`{"logEntryErrors":{"0":{"code":3},"2":{"code":3},"9":{"code":3},"x":{}}}`)

	rejected := parseEntryErrors(body, 3)
	assert.ElementsMatch(t, []int{0, 2}, rejected)

	assert.Nil(t, parseEntryErrors([]byte("not json"), 3))
	assert.Nil(t, parseEntryErrors([]byte(`{}`), 3))
}

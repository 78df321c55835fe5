// FILE: asynclog/src/internal/backend/gcp.go
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"asynclog/src/internal/config"
	"asynclog/src/internal/core"
	"asynclog/src/internal/format"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

// GCPBackend ships batches to Google Cloud Logging through the
// entries:write endpoint with partialSuccess enabled, so individually
// rejected entries are identifiable.
type GCPBackend struct {
	config *config.GCPConfig
	creds  Credentials
	client *fasthttp.Client
	logger *log.Logger
	url    string
}

// NewGCPBackend creates a Google Cloud Logging backend.
func NewGCPBackend(cfg *config.GCPConfig, creds Credentials, logger *log.Logger) (*GCPBackend, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("%w: gcp backend requires project_id", config.ErrConfiguration)
	}

	b := &GCPBackend{
		config: cfg,
		creds:  creds,
		client: newHTTPClient(),
		logger: logger,
		url:    cfg.Endpoint + "/v2/entries:write",
	}

	logger.Info("msg", "GCP backend configured",
		"component", "gcp_backend",
		"project_id", cfg.ProjectID,
		"log_name", cfg.LogName)

	return b, nil
}

// Send transmits the batch in one write call.
func (b *GCPBackend) Send(ctx context.Context, batch []core.LogRecord) (Outcome, error) {
	headers, err := bearerHeader(ctx, b.creds)
	if err != nil {
		return Outcome{}, err
	}

	body, err := b.buildPayload(batch)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: payload encoding: %w", ErrRejected, err)
	}

	status, respBody, err := postJSON(ctx, b.client, b.url, headers, body)
	if err != nil {
		return Outcome{}, err
	}

	if err := classifyStatus(status, respBody); err != nil {
		// Partial failure: some entries rejected, the rest written
		if rejected := parseEntryErrors(respBody, len(batch)); len(rejected) > 0 && len(rejected) < len(batch) {
			return Outcome{Accepted: len(batch) - len(rejected), Rejected: rejected}, nil
		}
		return Outcome{}, err
	}

	return Outcome{Accepted: len(batch)}, nil
}

// buildPayload encodes the batch as an entries:write request body.
func (b *GCPBackend) buildPayload(batch []core.LogRecord) ([]byte, error) {
	type entry struct {
		Timestamp   string         `json:"timestamp"`
		Severity    string         `json:"severity"`
		JSONPayload map[string]any `json:"jsonPayload"`
	}

	entries := make([]entry, 0, len(batch))
	for _, record := range batch {
		payload := make(map[string]any, len(record.Fields)+2)
		for k, v := range record.Fields {
			payload[k] = format.NormalizeValue(v)
		}
		payload["message"] = record.Message
		payload["logger"] = record.Logger

		entries = append(entries, entry{
			Timestamp:   record.Time.Format(time.RFC3339Nano),
			Severity:    record.Level.String(),
			JSONPayload: payload,
		})
	}

	return json.Marshal(map[string]any{
		"logName":        fmt.Sprintf("projects/%s/logs/%s", b.config.ProjectID, b.config.LogName),
		"resource":       map[string]any{"type": "global"},
		"partialSuccess": true,
		"entries":        entries,
	})
}

// parseEntryErrors extracts rejected entry indices from a partial-failure
// response body.
func parseEntryErrors(body []byte, batchLen int) []int {
	var resp struct {
		LogEntryErrors map[string]json.RawMessage `json:"logEntryErrors"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}

	var rejected []int
	for key := range resp.LogEntryErrors {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= batchLen {
			continue
		}
		rejected = append(rejected, idx)
	}
	return rejected
}

// Name returns the backend type name.
func (b *GCPBackend) Name() string {
	return "gcp"
}

// Close releases the HTTP client connections.
func (b *GCPBackend) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

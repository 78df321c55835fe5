// FILE: asynclog/src/internal/backend/aws.go
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"asynclog/src/internal/config"
	"asynclog/src/internal/core"
	"asynclog/src/internal/format"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

const awsTargetPutLogEvents = "Logs_20140328.PutLogEvents"

// AWSBackend ships batches to AWS CloudWatch Logs via PutLogEvents.
// The stream's sequence token is threaded between calls; a stale token
// is refreshed from the service response and the batch retried by the
// dispatcher.
type AWSBackend struct {
	config *config.AWSConfig
	creds  Credentials
	client *fasthttp.Client
	logger *log.Logger
	url    string

	mu            sync.Mutex
	sequenceToken string
}

// NewAWSBackend creates a CloudWatch Logs backend.
func NewAWSBackend(cfg *config.AWSConfig, creds Credentials, logger *log.Logger) (*AWSBackend, error) {
	if cfg.LogGroup == "" || cfg.LogStream == "" {
		return nil, fmt.Errorf("%w: aws backend requires log_group and log_stream",
			config.ErrConfiguration)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		if cfg.Region == "" {
			return nil, fmt.Errorf("%w: aws backend requires region or endpoint",
				config.ErrConfiguration)
		}
		endpoint = fmt.Sprintf("https://logs.%s.amazonaws.com", cfg.Region)
	}

	b := &AWSBackend{
		config: cfg,
		creds:  creds,
		client: newHTTPClient(),
		logger: logger,
		url:    endpoint,
	}

	logger.Info("msg", "AWS backend configured",
		"component", "aws_backend",
		"log_group", cfg.LogGroup,
		"log_stream", cfg.LogStream)

	return b, nil
}

// Send transmits the batch in one PutLogEvents call.
func (b *AWSBackend) Send(ctx context.Context, batch []core.LogRecord) (Outcome, error) {
	headers, err := bearerHeader(ctx, b.creds)
	if err != nil {
		return Outcome{}, err
	}
	headers["X-Amz-Target"] = awsTargetPutLogEvents
	headers["Content-Type"] = "application/x-amz-json-1.1"

	body, err := b.buildPayload(batch)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: payload encoding: %w", ErrRejected, err)
	}

	status, respBody, err := postJSON(ctx, b.client, b.url, headers, body)
	if err != nil {
		return Outcome{}, err
	}

	if err := classifyStatus(status, respBody); err != nil {
		return Outcome{}, b.refineError(err, respBody)
	}

	var resp struct {
		NextSequenceToken     string                 `json:"nextSequenceToken"`
		RejectedLogEventsInfo *rejectedLogEventsInfo `json:"rejectedLogEventsInfo"`
	}
	if err := json.Unmarshal(respBody, &resp); err == nil && resp.NextSequenceToken != "" {
		b.mu.Lock()
		b.sequenceToken = resp.NextSequenceToken
		b.mu.Unlock()
	}

	rejected := rejectedIndices(resp.RejectedLogEventsInfo, len(batch))
	return Outcome{Accepted: len(batch) - len(rejected), Rejected: rejected}, nil
}

// refineError inspects CloudWatch error types the generic status
// classification cannot distinguish.
func (b *AWSBackend) refineError(classified error, respBody []byte) error {
	var awsErr struct {
		Type                  string `json:"__type"`
		ExpectedSequenceToken string `json:"expectedSequenceToken"`
		Message               string `json:"message"`
	}
	if err := json.Unmarshal(respBody, &awsErr); err != nil {
		return classified
	}

	switch awsErr.Type {
	case "InvalidSequenceTokenException":
		// Refresh the token and let the dispatcher retry
		if awsErr.ExpectedSequenceToken != "" {
			b.mu.Lock()
			b.sequenceToken = awsErr.ExpectedSequenceToken
			b.mu.Unlock()
		}
		return fmt.Errorf("%w: stale sequence token", ErrUnavailable)
	case "ThrottlingException":
		return fmt.Errorf("%w: %s", ErrRateLimited, awsErr.Message)
	case "UnrecognizedClientException", "AccessDeniedException", "InvalidSignatureException":
		return fmt.Errorf("%w: %s: %s", ErrAuth, awsErr.Type, awsErr.Message)
	case "ServiceUnavailableException":
		return fmt.Errorf("%w: %s", ErrUnavailable, awsErr.Message)
	default:
		return classified
	}
}

// buildPayload encodes the batch as a PutLogEvents request body. Events
// carry millisecond timestamps and formatted JSON messages; batch order
// already satisfies the chronological ordering the API requires.
func (b *AWSBackend) buildPayload(batch []core.LogRecord) ([]byte, error) {
	type logEvent struct {
		Timestamp int64  `json:"timestamp"`
		Message   string `json:"message"`
	}

	events := make([]logEvent, 0, len(batch))
	for _, record := range batch {
		message := map[string]any{
			"level":   record.Level.String(),
			"logger":  record.Logger,
			"message": record.Message,
		}
		for k, v := range record.Fields {
			if _, exists := message[k]; !exists {
				message[k] = format.NormalizeValue(v)
			}
		}

		encoded, err := json.Marshal(message)
		if err != nil {
			return nil, err
		}

		events = append(events, logEvent{
			Timestamp: record.Time.UnixMilli(),
			Message:   string(encoded),
		})
	}

	payload := map[string]any{
		"logGroupName":  b.config.LogGroup,
		"logStreamName": b.config.LogStream,
		"logEvents":     events,
	}

	b.mu.Lock()
	if b.sequenceToken != "" {
		payload["sequenceToken"] = b.sequenceToken
	}
	b.mu.Unlock()

	return json.Marshal(payload)
}

type rejectedLogEventsInfo struct {
	TooNewLogEventStartIndex *int `json:"tooNewLogEventStartIndex"`
	TooOldLogEventEndIndex   *int `json:"tooOldLogEventEndIndex"`
	ExpiredLogEventEndIndex  *int `json:"expiredLogEventEndIndex"`
}

// rejectedIndices expands CloudWatch's rejected-range markers into the
// explicit index list the outcome contract requires.
func rejectedIndices(info *rejectedLogEventsInfo, batchLen int) []int {
	if info == nil {
		return nil
	}

	rejected := make(map[int]bool)

	// Events at or beyond this index are too far in the future
	if info.TooNewLogEventStartIndex != nil {
		for i := *info.TooNewLogEventStartIndex; i >= 0 && i < batchLen; i++ {
			rejected[i] = true
		}
	}

	// Events up to and including these indices are too old or expired
	for _, end := range []*int{info.TooOldLogEventEndIndex, info.ExpiredLogEventEndIndex} {
		if end == nil {
			continue
		}
		for i := 0; i <= *end && i < batchLen; i++ {
			rejected[i] = true
		}
	}

	if len(rejected) == 0 {
		return nil
	}

	out := make([]int, 0, len(rejected))
	for i := 0; i < batchLen; i++ {
		if rejected[i] {
			out = append(out, i)
		}
	}
	return out
}

// Name returns the backend type name.
func (b *AWSBackend) Name() string {
	return "aws"
}

// Close releases the HTTP client connections.
func (b *AWSBackend) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

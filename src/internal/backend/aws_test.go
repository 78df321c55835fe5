// FILE: asynclog/src/internal/backend/aws_test.go
package backend

import (
	"encoding/json"
	"testing"

	"asynclog/src/internal/config"
	"asynclog/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAWSBackend(t *testing.T) *AWSBackend {
	t.Helper()
	b, err := NewAWSBackend(&config.AWSConfig{
		Region:    "eu-west-1",
		LogGroup:  "app",
		LogStream: "api",
	}, StaticToken("t"), newTestLogger())
	require.NoError(t, err)
	return b
}

func TestNewAWSBackendValidation(t *testing.T) {
	_, err := NewAWSBackend(&config.AWSConfig{Region: "eu-west-1"}, nil, newTestLogger())
	assert.ErrorIs(t, err, config.ErrConfiguration)

	_, err = NewAWSBackend(&config.AWSConfig{LogGroup: "g", LogStream: "s"}, nil, newTestLogger())
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestAWSBuildPayload(t *testing.T) {
	b := newAWSBackend(t)

	rec := makeRecord("hello")
	rec.Fields = core.Fields{"request_id": "r-1"}

	body, err := b.buildPayload([]core.LogRecord{rec})
	require.NoError(t, err)

	var payload struct {
		LogGroupName  string `json:"logGroupName"`
		LogStreamName string `json:"logStreamName"`
		SequenceToken string `json:"sequenceToken"`
		LogEvents     []struct {
			Timestamp int64  `json:"timestamp"`
			Message   string `json:"message"`
		} `json:"logEvents"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))

	assert.Equal(t, "app", payload.LogGroupName)
	assert.Equal(t, "api", payload.LogStreamName)
	assert.Empty(t, payload.SequenceToken)
	require.Len(t, payload.LogEvents, 1)
	assert.Equal(t, rec.Time.UnixMilli(), payload.LogEvents[0].Timestamp)

	var message map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload.LogEvents[0].Message), &message))
	assert.Equal(t, "hello", message["message"])
	assert.Equal(t, "INFO", message["level"])
	assert.Equal(t, "r-1", message["request_id"])
}

func TestAWSBuildPayloadThreadsSequenceToken(t *testing.T) {
	b := newAWSBackend(t)
	b.sequenceToken = "tok-1"

	body, err := b.buildPayload([]core.LogRecord{makeRecord("x")})
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "tok-1", payload["sequenceToken"])
}

func TestAWSRefineError(t *testing.T) {
	b := newAWSBackend(t)

	testCases := []struct {
		name     string
		body     string
		expected error
	}{
		{
			name:     "StaleSequenceToken",
			body:     `{"__type":"InvalidSequenceTokenException","expectedSequenceToken":"tok-9"}`,
			expected: ErrUnavailable,
		},
		{
			name:     "Throttling",
			body:     `{"__type":"ThrottlingException","message":"slow down"}`,
			expected: ErrRateLimited,
		},
		{
			name:     "BadCredentials",
			body:     `{"__type":"UnrecognizedClientException","message":"nope"}`,
			expected: ErrAuth,
		},
		{
			name:     "Unavailable",
			body:     `{"__type":"ServiceUnavailableException","message":"try later"}`,
			expected: ErrUnavailable,
		},
		{
			name:     "UnknownTypeKeepsClassification",
			body:     `{"__type":"SomethingElse"}`,
			expected: ErrRejected,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			classified := classifyStatus(400, []byte(tc.body))
			err := b.refineError(classified, []byte(tc.body))
			assert.ErrorIs(t, err, tc.expected)
		})
	}

	assert.Equal(t, "tok-9", b.sequenceToken)
}

func TestRejectedIndices(t *testing.T) {
	intp := func(i int) *int { return &i }

	testCases := []struct {
		name     string
		info     *rejectedLogEventsInfo
		batchLen int
		expected []int
	}{
		{name: "NoInfo", info: nil, batchLen: 5, expected: nil},
		{
			name:     "TooNewTail",
			info:     &rejectedLogEventsInfo{TooNewLogEventStartIndex: intp(3)},
			batchLen: 5,
			expected: []int{3, 4},
		},
		{
			name:     "TooOldHead",
			info:     &rejectedLogEventsInfo{TooOldLogEventEndIndex: intp(1)},
			batchLen: 5,
			expected: []int{0, 1},
		},
		{
			name: "ExpiredAndTooNew",
			info: &rejectedLogEventsInfo{
				ExpiredLogEventEndIndex:  intp(0),
				TooNewLogEventStartIndex: intp(4),
			},
			batchLen: 5,
			expected: []int{0, 4},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, rejectedIndices(tc.info, tc.batchLen))
		})
	}
}

// FILE: asynclog/src/internal/config/config.go
package config

import "asynclog/src/internal/core"

// Backend handler names accepted by Config.Handler.
const (
	HandlerStream = "stream"
	HandlerGCP    = "gcp"
	HandlerAWS    = "aws"
	HandlerAzure  = "azure"
)

// Queue overflow policies.
const (
	PolicyDropOldest = "drop_oldest"
	PolicyDropNewest = "drop_newest"
	PolicyBlock      = "block"
)

// Config is the complete configuration for one logging pipeline.
type Config struct {
	// Backend handler: "stream", "gcp", "aws" or "azure"
	Handler string `toml:"handler"`

	Queue      QueueConfig      `toml:"queue"`
	Batch      BatchConfig      `toml:"batch"`
	Retry      RetryConfig      `toml:"retry"`
	RateLimit  RateLimitConfig  `toml:"rate_limit"`
	DeadLetter DeadLetterConfig `toml:"dead_letter"`
	Format     FormatConfig     `toml:"format"`

	Stream StreamConfig `toml:"stream"`
	GCP    GCPConfig    `toml:"gcp"`
	AWS    AWSConfig    `toml:"aws"`
	Azure  AzureConfig  `toml:"azure"`
}

// QueueConfig controls the pending-record queue.
type QueueConfig struct {
	Capacity int64 `toml:"capacity"`

	// Overflow policy: "drop_oldest", "drop_newest" or "block"
	OverflowPolicy string `toml:"overflow_policy"`

	// Only used with the "block" policy
	BlockTimeoutMS int64 `toml:"block_timeout_ms"`
}

// BatchConfig controls how records are grouped before delivery.
type BatchConfig struct {
	MaxSize    int64 `toml:"max_size"`
	MaxDelayMS int64 `toml:"max_delay_ms"`
}

// RetryConfig controls delivery retries for retryable backend failures.
type RetryConfig struct {
	MaxRetries    int64   `toml:"max_retries"`
	DelayMS       int64   `toml:"delay_ms"`
	Backoff       float64 `toml:"backoff"`
	SendTimeoutMS int64   `toml:"send_timeout_ms"`
}

// RateLimitConfig throttles outgoing batches. Zero disables limiting.
type RateLimitConfig struct {
	BatchesPerSecond float64 `toml:"batches_per_second"`
	Burst            int64   `toml:"burst"`
}

// DeadLetterConfig controls the fallback sink for undeliverable batches.
type DeadLetterConfig struct {
	Enabled    bool   `toml:"enabled"`
	Directory  string `toml:"directory"`
	Name       string `toml:"name"`
	MaxSizeMB  int64  `toml:"max_size_mb"`
	MaxBackups int64  `toml:"max_backups"`
	MaxAgeDays int64  `toml:"max_age_days"`
}

// FormatConfig selects and configures the record formatter.
type FormatConfig struct {
	// Formatter name: "json" or "text"
	Name string `toml:"name"`

	JSON JSONFormatterOptions `toml:"json"`
	Text TextFormatterOptions `toml:"text"`
}

// JSONFormatterOptions configures the JSON formatter output fields.
type JSONFormatterOptions struct {
	TimestampField string `toml:"timestamp_field"`
	LevelField     string `toml:"level_field"`
	LoggerField    string `toml:"logger_field"`
	MessageField   string `toml:"message_field"`
	Pretty         bool   `toml:"pretty"`
}

// TextFormatterOptions configures the human-readable formatter.
type TextFormatterOptions struct {
	TimestampFormat string `toml:"timestamp_format"`
}

// StreamConfig configures the local stream backend.
type StreamConfig struct {
	// "stdout" or "stderr"
	Target string `toml:"target"`
}

// GCPConfig configures the Google Cloud Logging backend.
type GCPConfig struct {
	ProjectID string `toml:"project_id"`
	LogName   string `toml:"log_name"`
	Endpoint  string `toml:"endpoint"`
}

// AWSConfig configures the AWS CloudWatch Logs backend.
type AWSConfig struct {
	Region    string `toml:"region"`
	LogGroup  string `toml:"log_group"`
	LogStream string `toml:"log_stream"`
	Endpoint  string `toml:"endpoint"`
}

// AzureConfig configures the Azure Monitor ingestion backend.
type AzureConfig struct {
	Endpoint   string `toml:"endpoint"`
	RuleID     string `toml:"rule_id"`
	StreamName string `toml:"stream_name"`
}

// Defaults returns the documented default configuration: local stream
// delivery with drop-oldest overflow handling.
func Defaults() *Config {
	return &Config{
		Handler: HandlerStream,
		Queue: QueueConfig{
			Capacity:       core.DefaultQueueCapacity,
			OverflowPolicy: PolicyDropOldest,
			BlockTimeoutMS: core.DefaultBlockTimeout.Milliseconds(),
		},
		Batch: BatchConfig{
			MaxSize:    core.DefaultBatchSize,
			MaxDelayMS: core.DefaultBatchDelay.Milliseconds(),
		},
		Retry: RetryConfig{
			MaxRetries:    core.DefaultMaxRetries,
			DelayMS:       core.DefaultRetryDelay.Milliseconds(),
			Backoff:       core.DefaultRetryBackoff,
			SendTimeoutMS: core.DefaultSendTimeout.Milliseconds(),
		},
		DeadLetter: DeadLetterConfig{
			Enabled:    false,
			Directory:  "./",
			Name:       "asynclog.deadletter",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Format: FormatConfig{
			Name: "text",
			JSON: JSONFormatterOptions{
				TimestampField: "time",
				LevelField:     "level",
				LoggerField:    "logger",
				MessageField:   "message",
			},
			Text: TextFormatterOptions{
				TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			},
		},
		Stream: StreamConfig{
			Target: "stdout",
		},
		GCP: GCPConfig{
			LogName:  "asynclog",
			Endpoint: "https://logging.googleapis.com",
		},
		AWS: AWSConfig{
			LogStream: "asynclog",
		},
	}
}

// FILE: asynclog/src/internal/config/validation.go
package config

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks fatal configuration problems. These surface at
// startup, never at the first log call.
var ErrConfiguration = errors.New("configuration error")

// Validate checks the whole configuration and fails fast on the first
// problem found.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrConfiguration)
	}

	switch c.Handler {
	case HandlerStream, HandlerGCP, HandlerAWS, HandlerAzure:
	default:
		return fmt.Errorf("%w: unknown handler %q (expected stream, gcp, aws or azure)",
			ErrConfiguration, c.Handler)
	}

	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	if err := c.validateFormat(); err != nil {
		return err
	}

	switch c.Handler {
	case HandlerStream:
		if c.Stream.Target != "stdout" && c.Stream.Target != "stderr" {
			return fmt.Errorf("%w: invalid stream target %q", ErrConfiguration, c.Stream.Target)
		}
	case HandlerGCP:
		if c.GCP.ProjectID == "" {
			return fmt.Errorf("%w: gcp handler requires project_id", ErrConfiguration)
		}
		if c.GCP.LogName == "" {
			return fmt.Errorf("%w: gcp handler requires log_name", ErrConfiguration)
		}
	case HandlerAWS:
		if c.AWS.Region == "" && c.AWS.Endpoint == "" {
			return fmt.Errorf("%w: aws handler requires region or endpoint", ErrConfiguration)
		}
		if c.AWS.LogGroup == "" {
			return fmt.Errorf("%w: aws handler requires log_group", ErrConfiguration)
		}
		if c.AWS.LogStream == "" {
			return fmt.Errorf("%w: aws handler requires log_stream", ErrConfiguration)
		}
	case HandlerAzure:
		if c.Azure.Endpoint == "" {
			return fmt.Errorf("%w: azure handler requires a data collection endpoint", ErrConfiguration)
		}
		if c.Azure.RuleID == "" {
			return fmt.Errorf("%w: azure handler requires LOGS_DCR_RULE_ID", ErrConfiguration)
		}
		if c.Azure.StreamName == "" {
			return fmt.Errorf("%w: azure handler requires LOGS_DCR_STREAM_NAME", ErrConfiguration)
		}
	}

	return nil
}

func (c *Config) validateQueue() error {
	if c.Queue.Capacity < 1 {
		return fmt.Errorf("%w: queue capacity must be positive, got %d",
			ErrConfiguration, c.Queue.Capacity)
	}

	switch c.Queue.OverflowPolicy {
	case PolicyDropOldest, PolicyDropNewest:
	case PolicyBlock:
		if c.Queue.BlockTimeoutMS < 1 {
			return fmt.Errorf("%w: block policy requires a positive block_timeout_ms",
				ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown overflow policy %q", ErrConfiguration, c.Queue.OverflowPolicy)
	}

	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.MaxSize < 1 {
		return fmt.Errorf("%w: batch max_size must be positive, got %d",
			ErrConfiguration, c.Batch.MaxSize)
	}
	if c.Batch.MaxDelayMS < 1 {
		return fmt.Errorf("%w: batch max_delay_ms must be positive, got %d",
			ErrConfiguration, c.Batch.MaxDelayMS)
	}
	if c.Batch.MaxSize > c.Queue.Capacity {
		return fmt.Errorf("%w: batch max_size %d exceeds queue capacity %d",
			ErrConfiguration, c.Batch.MaxSize, c.Queue.Capacity)
	}
	return nil
}

func (c *Config) validateRetry() error {
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries cannot be negative", ErrConfiguration)
	}
	if c.Retry.DelayMS < 1 {
		return fmt.Errorf("%w: retry delay_ms must be positive", ErrConfiguration)
	}
	if c.Retry.Backoff < 1.0 {
		return fmt.Errorf("%w: retry backoff must be >= 1.0, got %g",
			ErrConfiguration, c.Retry.Backoff)
	}
	if c.Retry.SendTimeoutMS < 1 {
		return fmt.Errorf("%w: send_timeout_ms must be positive", ErrConfiguration)
	}
	if c.RateLimit.BatchesPerSecond < 0 {
		return fmt.Errorf("%w: batches_per_second cannot be negative", ErrConfiguration)
	}
	return nil
}

func (c *Config) validateFormat() error {
	switch c.Format.Name {
	case "json", "text", "":
		return nil
	default:
		return fmt.Errorf("%w: unknown formatter %q", ErrConfiguration, c.Format.Name)
	}
}

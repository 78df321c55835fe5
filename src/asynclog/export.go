// FILE: asynclog/src/asynclog/export.go
package asynclog

import (
	"asynclog/src/internal/backend"
	"asynclog/src/internal/config"
	"asynclog/src/internal/core"
	"asynclog/src/internal/dispatch"
)

// Severity levels.
type Level = core.Level

const (
	LevelDebug    = core.LevelDebug
	LevelInfo     = core.LevelInfo
	LevelWarning  = core.LevelWarning
	LevelError    = core.LevelError
	LevelCritical = core.LevelCritical
)

// LogRecord is one immutable log event.
type LogRecord = core.LogRecord

// Config is the full pipeline configuration.
type Config = config.Config

// DefaultConfig returns the documented defaults: stream delivery to
// stdout with drop-oldest overflow handling.
func DefaultConfig() *Config {
	return config.Defaults()
}

// LoadConfig resolves configuration from defaults, the optional config
// file and ASYNC_LOGGING_* environment variables.
func LoadConfig() (*Config, error) {
	return config.Load()
}

// Backend transmits batches of records to one destination. Custom
// implementations can be injected with WithBackend.
type Backend = backend.Backend

// Outcome reports the result of a batch send.
type Outcome = backend.Outcome

// Credentials supplies bearer tokens for the cloud backends.
type Credentials = backend.Credentials

// TokenFunc adapts a function to the Credentials interface.
type TokenFunc = backend.TokenFunc

// StaticToken returns credentials that always yield the given token.
func StaticToken(token string) Credentials {
	return backend.StaticToken(token)
}

// Error taxonomy. Configuration problems surface at startup; queue
// overflow surfaces only under the block policy; backend failures are
// handled inside the dispatcher and never reach callers.
var (
	ErrConfiguration      = config.ErrConfiguration
	ErrQueueFull          = dispatch.ErrQueueFull
	ErrClosed             = dispatch.ErrClosed
	ErrBackendUnavailable = backend.ErrUnavailable
	ErrBackendRateLimited = backend.ErrRateLimited
	ErrBackendAuth        = backend.ErrAuth
	ErrBackendRejected    = backend.ErrRejected
)

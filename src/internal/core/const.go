// FILE: asynclog/src/internal/core/const.go
package core

import "time"

// Pipeline defaults. All are overridable through configuration.
const (
	DefaultQueueCapacity = 1024
	DefaultBatchSize     = 64
	DefaultBatchDelay    = 200 * time.Millisecond
	DefaultMaxRetries    = 3
	DefaultRetryDelay    = 250 * time.Millisecond
	DefaultRetryBackoff  = 2.0
	DefaultSendTimeout   = 10 * time.Second
	DefaultBlockTimeout  = time.Second
	DefaultDrainTimeout  = 5 * time.Second
)

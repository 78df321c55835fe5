// FILE: asynclog/src/internal/backend/errors.go
package backend

import (
	"errors"
	"fmt"
)

// Backend failure taxonomy. The dispatcher keys its retry policy off
// these sentinels.
var (
	// Destination unreachable or failing transiently. Retryable.
	ErrUnavailable = errors.New("backend unavailable")

	// Destination is throttling. Retryable.
	ErrRateLimited = errors.New("backend rate limited")

	// Credentials rejected. Fatal: delivery stops until restart.
	ErrAuth = errors.New("backend authentication failed")

	// Destination refused the batch outright (malformed payload,
	// unknown resource). Not retryable, not fatal to the pipeline.
	ErrRejected = errors.New("backend rejected batch")
)

// Retryable reports whether the dispatcher should retry after err.
func Retryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrRateLimited)
}

// classifyStatus maps an HTTP response status to the failure taxonomy.
// A 2xx status returns nil.
func classifyStatus(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == 401 || status == 403:
		return fmt.Errorf("%w: status %d: %s", ErrAuth, status, truncate(body))
	case status == 429:
		return fmt.Errorf("%w: status %d: %s", ErrRateLimited, status, truncate(body))
	case status >= 400 && status < 500:
		return fmt.Errorf("%w: status %d: %s", ErrRejected, status, truncate(body))
	default:
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, status, truncate(body))
	}
}

func truncate(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

// FILE: asynclog/src/internal/backend/backend.go
package backend

import (
	"context"
	"fmt"
	"os"

	"asynclog/src/internal/config"
	"asynclog/src/internal/core"
	"asynclog/src/internal/format"

	"github.com/lixenwraith/log"
)

// Backend transmits batches of log records to one destination.
// Exactly one backend is active per pipeline; it is selected at startup
// and never swapped afterwards.
type Backend interface {
	// Send transmits a batch. On success the outcome reports how many
	// records were accepted and which indices (into the batch) were
	// rejected. On total failure it returns one of the taxonomy errors
	// so the dispatcher can tell retryable from fatal.
	Send(ctx context.Context, batch []core.LogRecord) (Outcome, error)

	// Name returns the backend type name
	Name() string

	// Close releases any client state held by the backend
	Close() error
}

// Outcome describes the result of a batch send.
type Outcome struct {
	// Number of records confirmed accepted by the destination
	Accepted int

	// Indices into the batch of records the destination rejected
	Rejected []int
}

// New resolves the configured backend. Credential acquisition is the
// caller's concern; creds may be nil for the stream backend.
func New(cfg *config.Config, creds Credentials, logger *log.Logger) (Backend, error) {
	switch cfg.Handler {
	case config.HandlerStream:
		var out *os.File
		switch cfg.Stream.Target {
		case "stderr":
			out = os.Stderr
		default:
			out = os.Stdout
		}

		formatter, err := format.New(&cfg.Format, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create formatter: %w", err)
		}
		return NewStreamBackend(out, formatter, logger), nil

	case config.HandlerGCP:
		return NewGCPBackend(&cfg.GCP, creds, logger)

	case config.HandlerAWS:
		return NewAWSBackend(&cfg.AWS, creds, logger)

	case config.HandlerAzure:
		return NewAzureBackend(&cfg.Azure, creds, logger)

	default:
		return nil, fmt.Errorf("%w: unknown handler %q", config.ErrConfiguration, cfg.Handler)
	}
}

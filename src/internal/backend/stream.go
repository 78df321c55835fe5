// FILE: asynclog/src/internal/backend/stream.go
package backend

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"asynclog/src/internal/core"
	"asynclog/src/internal/format"

	"github.com/lixenwraith/log"
)

// StreamBackend writes log records to a local stream. This is the
// default destination when no handler is configured.
type StreamBackend struct {
	output    io.Writer
	formatter format.Formatter
	logger    *log.Logger

	mu sync.Mutex

	// Statistics
	totalSent atomic.Uint64
}

// NewStreamBackend creates a stream backend writing to out.
func NewStreamBackend(out io.Writer, formatter format.Formatter, logger *log.Logger) *StreamBackend {
	return &StreamBackend{
		output:    out,
		formatter: formatter,
		logger:    logger,
	}
}

// Send writes each record in the batch to the stream exactly once, in
// order. A write failure mid-batch reports the records already written
// as accepted.
func (s *StreamBackend) Send(ctx context.Context, batch []core.LogRecord) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rejected []int
	accepted := 0

	for i, record := range batch {
		if err := ctx.Err(); err != nil {
			return Outcome{Accepted: accepted, Rejected: rejected},
				fmt.Errorf("%w: %w", ErrUnavailable, err)
		}

		formatted, err := s.formatter.Format(record)
		if err != nil {
			// Unformattable record: reject it, keep going
			s.logger.Error("msg", "Failed to format log record",
				"component", "stream_backend",
				"error", err)
			rejected = append(rejected, i)
			continue
		}

		if _, err := s.output.Write(formatted); err != nil {
			return Outcome{Accepted: accepted, Rejected: rejected},
				fmt.Errorf("%w: write failed: %w", ErrUnavailable, err)
		}
		accepted++
		s.totalSent.Add(1)
	}

	return Outcome{Accepted: accepted, Rejected: rejected}, nil
}

// Name returns the backend type name.
func (s *StreamBackend) Name() string {
	return "stream"
}

// Close is a no-op; the stream is owned by the caller.
func (s *StreamBackend) Close() error {
	return nil
}

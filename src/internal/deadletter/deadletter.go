// FILE: asynclog/src/internal/deadletter/deadletter.go
package deadletter

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"asynclog/src/internal/config"
	"asynclog/src/internal/core"
	"asynclog/src/internal/format"

	"github.com/lixenwraith/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Sink receives batches that exhausted their retry budget.
type Sink interface {
	// Write persists the batch under the given correlation id
	Write(batchID string, records []core.LogRecord) error

	// Close flushes and releases the sink
	Close() error
}

// envelope is one JSON line in the dead-letter file.
type envelope struct {
	BatchID string           `json:"batch_id"`
	Time    time.Time        `json:"time"`
	Count   int              `json:"count"`
	Records []core.LogRecord `json:"records"`
}

// FileSink appends dead-lettered batches as JSON lines to a rotating
// file, so undeliverable records survive for later inspection or replay.
type FileSink struct {
	out    *lumberjack.Logger
	logger *log.Logger
	mu     sync.Mutex
}

// NewFileSink creates a rotating dead-letter file sink.
func NewFileSink(cfg *config.DeadLetterConfig, logger *log.Logger) (*FileSink, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: dead letter sink requires a file name", config.ErrConfiguration)
	}

	s := &FileSink{
		out: &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Directory, cfg.Name),
			MaxSize:    int(cfg.MaxSizeMB),
			MaxBackups: int(cfg.MaxBackups),
			MaxAge:     int(cfg.MaxAgeDays),
		},
		logger: logger,
	}

	logger.Info("msg", "Dead letter sink configured",
		"component", "deadletter",
		"file", s.out.Filename,
		"max_size_mb", cfg.MaxSizeMB)

	return s, nil
}

// Write appends the batch as a single JSON line.
func (s *FileSink) Write(batchID string, records []core.LogRecord) error {
	normalized := make([]core.LogRecord, len(records))
	for i, r := range records {
		normalized[i] = r
		normalized[i].Fields = format.NormalizeFields(r.Fields)
	}

	line, err := json.Marshal(envelope{
		BatchID: batchID,
		Time:    time.Now().UTC(),
		Count:   len(records),
		Records: normalized,
	})
	if err != nil {
		return fmt.Errorf("failed to encode dead letter envelope: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.out.Write(line); err != nil {
		return fmt.Errorf("failed to write dead letter: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Close()
}

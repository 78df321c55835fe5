// FILE: asynclog/src/internal/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"asynclog/src/internal/backend"
	"asynclog/src/internal/config"
	"asynclog/src/internal/core"
	"asynclog/src/internal/deadletter"

	"github.com/google/uuid"
	"github.com/lixenwraith/log"
	"golang.org/x/time/rate"
)

// ErrQueueFull is returned by Enqueue under the "block" overflow policy
// when the block timeout expires. The drop policies never surface it.
var ErrQueueFull = errors.New("queue full")

// ErrClosed is returned by Enqueue after Drain or Stop.
var ErrClosed = errors.New("dispatcher closed")

// Dispatcher decouples log-call latency from delivery latency. Records
// are enqueued without blocking the caller; a single delivery goroutine
// drains the queue, groups records into batches and hands them to the
// backend. One delivery loop per dispatcher keeps per-logger enqueue
// order intact all the way to the backend.
type Dispatcher struct {
	// Configuration
	config *config.Config

	// Delivery
	backend backend.Backend
	dead    deadletter.Sink
	limiter *rate.Limiter

	// Application
	logger *log.Logger

	// Runtime
	queue    chan core.LogRecord
	ctx      context.Context
	cancel   context.CancelFunc
	loopDone chan struct{}

	mu     sync.RWMutex
	closed bool

	// Fatal credential failure stops delivery attempts until restart
	authFailed atomic.Bool

	// Statistics
	totalEnqueued       atomic.Uint64
	totalDelivered      atomic.Uint64
	totalBatches        atomic.Uint64
	totalRetries        atomic.Uint64
	droppedOverflow     atomic.Uint64
	droppedRejected     atomic.Uint64
	deadLettered        atomic.Uint64
	droppedDelivery     atomic.Uint64
	discardedOnShutdown atomic.Uint64
	lastSend            atomic.Value // time.Time
}

// Stats is a snapshot of the dispatcher counters.
type Stats struct {
	// Records submitted through Enqueue, including overflow victims
	TotalEnqueued uint64
	// Records confirmed accepted by the backend
	TotalDelivered uint64
	// Batches handed to the backend
	TotalBatches uint64
	// Send re-attempts after retryable failures
	TotalRetries uint64
	// Records lost to queue overflow (evicted or refused)
	DroppedOverflow uint64
	// Records individually rejected by the backend
	DroppedRejected uint64
	// Records persisted to the dead-letter sink
	DeadLettered uint64
	// Records dropped after retry exhaustion with no dead-letter sink
	DroppedDelivery uint64
	// Records unconfirmed at shutdown or drain deadline
	DiscardedOnShutdown uint64
	// Records currently waiting in the queue
	QueueDepth int
	// Whether delivery is latched off after an authentication failure
	AuthFailed bool
	// Time of the last successful send
	LastSend time.Time
}

// DrainReport accounts for every record at shutdown: records were either
// confirmed delivered or are included in the discard count.
type DrainReport struct {
	Delivered uint64
	Discarded uint64
}

// New creates a dispatcher for the given backend. dead may be nil, in
// which case undeliverable batches are only counted.
func New(cfg *config.Config, b backend.Backend, dead deadletter.Sink, logger *log.Logger) *Dispatcher {
	d := &Dispatcher{
		config:   cfg,
		backend:  b,
		dead:     dead,
		logger:   logger,
		queue:    make(chan core.LogRecord, cfg.Queue.Capacity),
		loopDone: make(chan struct{}),
	}
	d.lastSend.Store(time.Time{})

	if cfg.RateLimit.BatchesPerSecond > 0 {
		burst := int(cfg.RateLimit.Burst)
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.BatchesPerSecond), burst)
	}

	return d
}

// Start launches the delivery loop.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.ctx, d.cancel = context.WithCancel(ctx)
	go d.run()

	d.logger.Info("msg", "Dispatcher started",
		"component", "dispatcher",
		"backend", d.backend.Name(),
		"queue_capacity", d.config.Queue.Capacity,
		"overflow_policy", d.config.Queue.OverflowPolicy,
		"batch_size", d.config.Batch.MaxSize,
		"batch_delay_ms", d.config.Batch.MaxDelayMS)
	return nil
}

// Enqueue adds a record to the pending queue without blocking the
// caller. When the queue is full the configured overflow policy decides:
// drop_oldest evicts the head, drop_newest refuses the record, block
// waits up to the block timeout and then fails with ErrQueueFull.
func (d *Dispatcher) Enqueue(record core.LogRecord) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}

	// Every submitted record is counted here; overflow victims (evicted
	// or refused) then move to the overflow counter, keeping the
	// enqueued = delivered + discarded + dropped identity policy-free.
	d.totalEnqueued.Add(1)

	select {
	case d.queue <- record:
		return nil
	default:
	}

	switch d.config.Queue.OverflowPolicy {
	case config.PolicyDropNewest:
		d.droppedOverflow.Add(1)
		return nil

	case config.PolicyBlock:
		timer := time.NewTimer(time.Duration(d.config.Queue.BlockTimeoutMS) * time.Millisecond)
		defer timer.Stop()

		select {
		case d.queue <- record:
			return nil
		case <-timer.C:
			d.droppedOverflow.Add(1)
			return ErrQueueFull
		}

	default: // drop_oldest
		for {
			select {
			case <-d.queue:
				d.droppedOverflow.Add(1)
			default:
			}

			select {
			case d.queue <- record:
				return nil
			default:
				// Another producer won the slot; evict again
			}
		}
	}
}

// run is the delivery loop: one batch at a time, in queue order.
func (d *Dispatcher) run() {
	defer close(d.loopDone)

	for {
		var first core.LogRecord
		var ok bool

		select {
		case first, ok = <-d.queue:
			if !ok {
				return
			}
		case <-d.ctx.Done():
			return
		}

		d.deliver(d.collect(first))
	}
}

// collect grows a batch from the queue until it is full or the batch
// delay elapses.
func (d *Dispatcher) collect(first core.LogRecord) []core.LogRecord {
	maxSize := int(d.config.Batch.MaxSize)
	batch := make([]core.LogRecord, 0, maxSize)
	batch = append(batch, first)

	timer := time.NewTimer(time.Duration(d.config.Batch.MaxDelayMS) * time.Millisecond)
	defer timer.Stop()

	for len(batch) < maxSize {
		select {
		case record, ok := <-d.queue:
			if !ok {
				return batch
			}
			batch = append(batch, record)
		case <-timer.C:
			return batch
		case <-d.ctx.Done():
			return batch
		}
	}

	return batch
}

// deliver sends one batch with bounded retries. Failures never propagate
// to callers; they end in the dead-letter sink or the drop counters.
func (d *Dispatcher) deliver(batch []core.LogRecord) {
	d.totalBatches.Add(1)
	batchID := uuid.NewString()

	if d.authFailed.Load() {
		d.deadLetter(batchID, batch, "authentication latch")
		return
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(d.ctx); err != nil {
			d.discardedOnShutdown.Add(uint64(len(batch)))
			return
		}
	}

	sendTimeout := time.Duration(d.config.Retry.SendTimeoutMS) * time.Millisecond
	retryDelay := time.Duration(d.config.Retry.DelayMS) * time.Millisecond
	maxRetries := d.config.Retry.MaxRetries
	var lastErr error

	for attempt := int64(0); attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			d.totalRetries.Add(1)

			select {
			case <-time.After(retryDelay):
			case <-d.ctx.Done():
				d.discardedOnShutdown.Add(uint64(len(batch)))
				return
			}

			retryDelay = nextDelay(retryDelay, d.config.Retry.Backoff, sendTimeout)
		}

		sendCtx, cancel := context.WithTimeout(d.ctx, sendTimeout)
		outcome, err := d.backend.Send(sendCtx, batch)
		cancel()

		if err == nil {
			d.totalDelivered.Add(uint64(outcome.Accepted))
			d.lastSend.Store(time.Now())

			if n := len(outcome.Rejected); n > 0 {
				d.droppedRejected.Add(uint64(n))
				d.logger.Warn("msg", "Backend rejected records in batch",
					"component", "dispatcher",
					"batch_id", batchID,
					"rejected", n,
					"batch_size", len(batch))
			}

			d.logger.Debug("msg", "Batch delivered",
				"component", "dispatcher",
				"batch_id", batchID,
				"batch_size", len(batch),
				"attempt", attempt+1)
			return
		}
		lastErr = err

		if errors.Is(err, backend.ErrAuth) {
			d.authFailed.Store(true)
			d.logger.Error("msg", "Backend authentication failed, delivery halted",
				"component", "dispatcher",
				"backend", d.backend.Name(),
				"error", err)
			d.deadLetter(batchID, batch, "authentication failure")
			return
		}

		if !backend.Retryable(err) {
			d.logger.Error("msg", "Batch rejected by backend",
				"component", "dispatcher",
				"batch_id", batchID,
				"batch_size", len(batch),
				"error", err)
			d.deadLetter(batchID, batch, "rejected by backend")
			return
		}

		if d.ctx.Err() != nil {
			d.discardedOnShutdown.Add(uint64(len(batch)))
			return
		}

		d.logger.Warn("msg", "Batch send failed",
			"component", "dispatcher",
			"batch_id", batchID,
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"error", err)
	}

	d.logger.Error("msg", "Failed to deliver batch after all retries",
		"component", "dispatcher",
		"batch_id", batchID,
		"batch_size", len(batch),
		"retries", maxRetries,
		"last_error", lastErr)
	d.deadLetter(batchID, batch, "retry budget exhausted")
}

// deadLetter routes an undeliverable batch to the dead-letter sink, or
// counts it as dropped when no sink is configured.
func (d *Dispatcher) deadLetter(batchID string, batch []core.LogRecord, reason string) {
	if d.dead == nil {
		d.droppedDelivery.Add(uint64(len(batch)))
		return
	}

	if err := d.dead.Write(batchID, batch); err != nil {
		d.logger.Error("msg", "Failed to write dead letter",
			"component", "dispatcher",
			"batch_id", batchID,
			"error", err)
		d.droppedDelivery.Add(uint64(len(batch)))
		return
	}

	d.deadLettered.Add(uint64(len(batch)))
	d.logger.Warn("msg", "Batch dead-lettered",
		"component", "dispatcher",
		"batch_id", batchID,
		"records", len(batch),
		"reason", reason)
}

// Drain stops accepting new records and flushes the queue until empty or
// the context deadline expires. On timeout the in-flight send is
// cancelled and every unconfirmed record is counted as discarded.
func (d *Dispatcher) Drain(ctx context.Context) DrainReport {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.loopDone:
	case <-ctx.Done():
		d.cancel()
		<-d.loopDone
	}

	// Whatever is still queued was never handed to the backend
	leftover := 0
	for range d.queue {
		leftover++
	}
	if leftover > 0 {
		d.discardedOnShutdown.Add(uint64(leftover))
	}

	report := DrainReport{
		Delivered: d.totalDelivered.Load(),
		Discarded: d.discardedOnShutdown.Load(),
	}

	if report.Discarded > 0 {
		d.logger.Warn("msg", "Drain finished with undelivered records",
			"component", "dispatcher",
			"delivered", report.Delivered,
			"discarded", report.Discarded)
	} else {
		d.logger.Info("msg", "Drain complete",
			"component", "dispatcher",
			"delivered", report.Delivered)
	}

	return report
}

// Stop cancels the delivery loop immediately. Use Drain first for a
// graceful shutdown.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	d.cancel()
	<-d.loopDone
}

// GetStats returns a snapshot of the dispatcher counters.
func (d *Dispatcher) GetStats() Stats {
	lastSend, _ := d.lastSend.Load().(time.Time)

	return Stats{
		TotalEnqueued:       d.totalEnqueued.Load(),
		TotalDelivered:      d.totalDelivered.Load(),
		TotalBatches:        d.totalBatches.Load(),
		TotalRetries:        d.totalRetries.Load(),
		DroppedOverflow:     d.droppedOverflow.Load(),
		DroppedRejected:     d.droppedRejected.Load(),
		DeadLettered:        d.deadLettered.Load(),
		DroppedDelivery:     d.droppedDelivery.Load(),
		DiscardedOnShutdown: d.discardedOnShutdown.Load(),
		QueueDepth:          len(d.queue),
		AuthFailed:          d.authFailed.Load(),
		LastSend:            lastSend,
	}
}

// nextDelay grows the retry delay by the backoff factor, capped at max
// with overflow protection.
func nextDelay(delay time.Duration, factor float64, max time.Duration) time.Duration {
	next := time.Duration(float64(delay) * factor)
	if next > max || next < delay {
		return max
	}
	return next
}

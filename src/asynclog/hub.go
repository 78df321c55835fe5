// FILE: asynclog/src/asynclog/hub.go

// Package asynclog is an asynchronous logging pipeline. Loggers hand
// records to a background dispatcher which batches them and delivers to
// one configured backend (local stream, Google Cloud Logging, AWS
// CloudWatch Logs or Azure Monitor) without ever blocking the caller.
package asynclog

import (
	"context"
	"fmt"
	"sync"

	"asynclog/src/internal/backend"
	"asynclog/src/internal/config"
	"asynclog/src/internal/core"
	"asynclog/src/internal/deadletter"
	"asynclog/src/internal/dispatch"

	"github.com/lixenwraith/log"
)

// Fields holds bound context attached to a logger.
type Fields = core.Fields

// DrainReport accounts for every record at shutdown.
type DrainReport = dispatch.DrainReport

// Stats is a snapshot of the pipeline counters.
type Stats = dispatch.Stats

// Hub owns one dispatcher and one backend and hands out loggers that
// feed them. Construct it explicitly at application startup and drain
// it at shutdown; there is no hidden process-wide instance.
type Hub struct {
	config     *config.Config
	backend    backend.Backend
	dispatcher *dispatch.Dispatcher
	dead       deadletter.Sink
	logger     *log.Logger

	mu      sync.Mutex
	loggers map[string]*Logger

	// Shutdown state; the first report is cached for repeat calls
	shutdownMu sync.Mutex
	closed     bool
	report     DrainReport
}

// Option customizes hub construction.
type Option func(*options)

type options struct {
	creds   backend.Credentials
	backend backend.Backend
}

// WithCredentials injects the token collaborator used by the cloud
// backends. Without it requests go out unauthenticated.
func WithCredentials(creds backend.Credentials) Option {
	return func(o *options) { o.creds = creds }
}

// WithBackend bypasses backend selection entirely and uses the given
// backend. Intended for tests and embedding.
func WithBackend(b backend.Backend) Option {
	return func(o *options) { o.backend = b }
}

// New constructs a hub from the configuration and starts its delivery
// loop. A nil cfg loads configuration from the environment (the
// ASYNC_LOGGING_HANDLER variable selects the backend; absent means
// stream). Configuration problems fail here, never at the first log
// call.
func New(cfg *config.Config, logger *log.Logger, opts ...Option) (*Hub, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.NewLogger()
	}

	b := o.backend
	if b == nil {
		var err error
		b, err = backend.New(cfg, o.creds, logger)
		if err != nil {
			return nil, err
		}
	}

	var dead deadletter.Sink
	if cfg.DeadLetter.Enabled {
		fileSink, err := deadletter.NewFileSink(&cfg.DeadLetter, logger)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to create dead letter sink: %w", err)
		}
		dead = fileSink
	}

	h := &Hub{
		config:     cfg,
		backend:    b,
		dispatcher: dispatch.New(cfg, b, dead, logger),
		dead:       dead,
		logger:     logger,
		loggers:    make(map[string]*Logger),
	}

	if err := h.dispatcher.Start(context.Background()); err != nil {
		b.Close()
		return nil, err
	}

	logger.Info("msg", "Logging hub started",
		"component", "hub",
		"backend", b.Name())

	return h, nil
}

// GetLogger returns the named logger, creating it on first use. The
// same base logger instance is returned for repeated calls with the
// same name; Bind derives new handles without affecting it.
func (h *Hub) GetLogger(name string) *Logger {
	h.mu.Lock()
	defer h.mu.Unlock()

	if l, ok := h.loggers[name]; ok {
		return l
	}

	l := &Logger{hub: h, name: name}
	h.loggers[name] = l
	return l
}

// Drain flushes queued records until empty or the context deadline
// expires, then reports what was delivered and what was discarded.
func (h *Hub) Drain(ctx context.Context) DrainReport {
	return h.dispatcher.Drain(ctx)
}

// Shutdown drains with the default deadline and releases all resources.
// Repeat calls return the report of the shutdown that already ran.
func (h *Hub) Shutdown() DrainReport {
	h.shutdownMu.Lock()
	defer h.shutdownMu.Unlock()

	if h.closed {
		return h.report
	}
	h.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), core.DefaultDrainTimeout)
	defer cancel()

	report := h.Drain(ctx)
	h.dispatcher.Stop()

	if err := h.backend.Close(); err != nil {
		h.logger.Warn("msg", "Backend close failed",
			"component", "hub",
			"error", err)
	}
	if h.dead != nil {
		if err := h.dead.Close(); err != nil {
			h.logger.Warn("msg", "Dead letter sink close failed",
				"component", "hub",
				"error", err)
		}
	}

	h.logger.Info("msg", "Logging hub stopped",
		"component", "hub",
		"delivered", report.Delivered,
		"discarded", report.Discarded)

	h.report = report
	return report
}

// Stats returns a snapshot of the pipeline counters.
func (h *Hub) Stats() Stats {
	return h.dispatcher.GetStats()
}

// Backend returns the active backend's name.
func (h *Hub) Backend() string {
	return h.backend.Name()
}

func (h *Hub) enqueue(record core.LogRecord) {
	if err := h.dispatcher.Enqueue(record); err != nil {
		// Logging must never crash or stall the host application;
		// enqueue failures only show up in diagnostics.
		h.logger.Debug("msg", "Record not enqueued",
			"component", "hub",
			"logger", record.Logger,
			"error", err)
	}
}

package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Progress is a snapshot of a draining batch, carried by Observer.OnProgress.
type Progress struct {
	// Processed is the number of operations completed so far in the
	// current batch.
	Processed int64

	// Remaining is the queue depth at the time of the event.
	Remaining int

	// Final marks the batch-completion summary emitted after a drain
	// that crossed the progress interval.
	Final bool
}

// Observer receives telemetry events from the engine.
//
// Implementations should be fast and non-blocking; heavy work should be done
// asynchronously so as not to delay the worker loop. Progress events are
// already batched by the engine so large backlogs do not flood the sink.
type Observer interface {
	// OnReplay is called once during construction, after persisted
	// operations have been loaded back into the work queue. pending is
	// the number of replayed operations.
	OnReplay(ctx context.Context, pending int)

	// OnOperationCompleted is called after Process reports Success for an
	// operation and its record has been removed from the durable store.
	// retries is the number of RetryableError results observed for it,
	// and d the time from first attempt to success.
	OnOperationCompleted(ctx context.Context, op Operation, retries int, d time.Duration)

	// OnProgress reports batch progress: once at batch start when the
	// backlog exceeds the progress interval, once every interval
	// processed operations, and once with Final set after a drain that
	// crossed the interval.
	OnProgress(ctx context.Context, p Progress)

	// OnWarning reports a non-fatal anomaly, for example an enqueue
	// observed during shutdown. err may be nil.
	OnWarning(ctx context.Context, msg string, err error)

	// OnFault reports an unrecoverable condition immediately before the
	// engine raises its fatal fault signal. err may be nil.
	OnFault(ctx context.Context, msg string, err error)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnReplay(ctx context.Context, pending int) {}
func (NoopObserver) OnOperationCompleted(ctx context.Context, op Operation, retries int, d time.Duration) {
}
func (NoopObserver) OnProgress(ctx context.Context, p Progress)           {}
func (NoopObserver) OnWarning(ctx context.Context, msg string, err error) {}
func (NoopObserver) OnFault(ctx context.Context, msg string, err error)   {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnReplay(ctx context.Context, pending int) {
	for _, o := range c.observers {
		o.OnReplay(ctx, pending)
	}
}

func (c *CompositeObserver) OnOperationCompleted(ctx context.Context, op Operation, retries int, d time.Duration) {
	for _, o := range c.observers {
		o.OnOperationCompleted(ctx, op, retries, d)
	}
}

func (c *CompositeObserver) OnProgress(ctx context.Context, p Progress) {
	for _, o := range c.observers {
		o.OnProgress(ctx, p)
	}
}

func (c *CompositeObserver) OnWarning(ctx context.Context, msg string, err error) {
	for _, o := range c.observers {
		o.OnWarning(ctx, msg, err)
	}
}

func (c *CompositeObserver) OnFault(ctx context.Context, msg string, err error) {
	for _, o := range c.observers {
		o.OnFault(ctx, msg, err)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs engine lifecycle events
// using the provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnReplay(ctx context.Context, pending int) {
	o.Logger.InfoContext(ctx, "operations_replayed",
		slog.Int("pending", pending),
	)
}

func (o *LoggingObserver) OnOperationCompleted(ctx context.Context, op Operation, retries int, d time.Duration) {
	o.Logger.DebugContext(ctx, "operation_completed",
		slog.Int64("operation_id", op.ID),
		slog.Int("retries", retries),
		slog.Duration("duration", d),
	)
}

func (o *LoggingObserver) OnProgress(ctx context.Context, p Progress) {
	msg := "processing_progress"
	if p.Final {
		msg = "processing_summary"
	}
	o.Logger.InfoContext(ctx, msg,
		slog.Int64("processed", p.Processed),
		slog.Int("remaining", p.Remaining),
	)
}

func (o *LoggingObserver) OnWarning(ctx context.Context, msg string, err error) {
	o.Logger.WarnContext(ctx, "engine_warning",
		slog.String("cause", msg),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnFault(ctx context.Context, msg string, err error) {
	o.Logger.ErrorContext(ctx, "engine_fault",
		slog.String("cause", msg),
		slog.Any("error", err),
	)
}

// BasicMetrics collects simple counters and aggregate operation durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	replayed        atomic.Int64
	completed       atomic.Int64
	retries         atomic.Int64
	warnings        atomic.Int64
	faults          atomic.Int64
	totalOpDuration atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	Replayed  int64
	Completed int64
	Retries   int64
	Warnings  int64
	Faults    int64

	AvgOperationDuration time.Duration
}

func (m *BasicMetrics) OnReplay(ctx context.Context, pending int) {
	m.replayed.Add(int64(pending))
}

func (m *BasicMetrics) OnOperationCompleted(ctx context.Context, op Operation, retries int, d time.Duration) {
	m.completed.Add(1)
	m.retries.Add(int64(retries))
	m.totalOpDuration.Add(d.Nanoseconds())
}

func (m *BasicMetrics) OnWarning(ctx context.Context, msg string, err error) {
	m.warnings.Add(1)
}

func (m *BasicMetrics) OnFault(ctx context.Context, msg string, err error) {
	m.faults.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	completed := m.completed.Load()
	totalNs := m.totalOpDuration.Load()

	var avg time.Duration
	if completed > 0 {
		avg = time.Duration(totalNs / completed)
	}

	return BasicMetricsSnapshot{
		Replayed:             m.replayed.Load(),
		Completed:            completed,
		Retries:              m.retries.Load(),
		Warnings:             m.warnings.Load(),
		Faults:               m.faults.Load(),
		AvgOperationDuration: avg,
	}
}

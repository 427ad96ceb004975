// Package api contains the core building blocks used by the fundo background
// operation engine. It provides the low-level primitives for describing
// operations, supplying processing behavior, and observing engine activity.
//
// Most users interact with the higher-level fundo package, which re-exports
// selected types and helpers from this package. The api package is intended
// for advanced use cases, custom integrations, or contributors extending the
// engine itself.
//
// # Concepts
//
// The api package centers around a small set of concepts:
//
//   - Operations and results
//   - Processors
//   - The exclusive lock contract
//   - Observability and the fatal fault signal
//
// # Operations and Results
//
// An Operation is an identity-tagged unit of deferred work. Identities are
// 64-bit integers assigned exactly once at enqueue time, strictly increasing,
// with zero reserved as the "unassigned" sentinel. Payloads are opaque to the
// engine; they are gob-encoded at rest, so callers register their concrete
// payload types with gob.Register.
//
// Every hook invocation reports a Result: Success, RetryableError, or
// FatalError. Retryable results are retried with a fixed delay, without an
// attempt limit, until success or shutdown. Fatal results (and unrecognized
// values, including the zero Result) raise the engine's fatal fault signal.
//
// # Processors
//
// A Processor supplies the three hooks the worker consults while draining the
// queue: PreProcess once per batch before any operation, Process once per
// operation, and PostProcess once per batch before the lock is released. All
// three run on the worker goroutine with the external exclusive lock held.
// ProcessorFuncs adapts plain functions for callers that do not need a
// dedicated type.
//
// # The Exclusive Lock
//
// ExclusiveLock is the cooperative mutual-exclusion resource shared with
// foreground activity. The engine polls TryAcquire in a fixed-delay retry
// loop and never forces acquisition; implementations live in pkg/lock.
//
// # Observability
//
// The Observer interface receives replay, per-operation completion, batched
// progress, warning, and fault events. Ready-made implementations are
// provided: NoopObserver (the default), LoggingObserver (log/slog),
// CompositeObserver (fan-out), and BasicMetrics (atomic counters with
// snapshots). A Prometheus-backed observer lives in pkg/metrics.
//
// FatalFunc is the engine's fatal fault signal: the hook through which
// unrecoverable conditions leave the library, so the host process controls
// exact shutdown sequencing. The default logs and exits.
//
// Most applications should start from the fundo package and its Config-based
// constructors. See the fundo package documentation and the examples
// directory for end-to-end usage.
package api

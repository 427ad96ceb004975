// Package fundo provides a durable background operation engine for Go.
//
// Fundo is built for clients that sit in front of slow or shared state, such
// as a virtual filesystem, where work must be accepted immediately, survive
// a process crash, and run strictly after the foreground is done with its
// critical section. Operations are persisted before they are acknowledged,
// replayed on restart, and drained by a single worker that coordinates with
// an exclusive lock shared with the foreground component.
//
// # Core Concepts
//
// The fundo programming model is intentionally small:
//
//  1. Engine
//  2. Operation
//  3. Processor
//  4. ExclusiveLock
//  5. Observer
//
// Together they give at-least-once background processing with durable FIFO
// ordering and a clear failure policy.
//
// # Engine
//
// The Engine owns the durable store, the in-memory work queue, and the
// worker. Its public surface is deliberately narrow:
//
//   - Enqueue persists an operation, assigns its identity, and schedules it
//   - Start launches the worker
//   - Shutdown stops the worker and blocks until it has exited
//   - Close tears the engine down and releases the store
//   - Count reports the instantaneous queue depth
//
// Engines can be backed by different stores:
//
//   - SQLite under a root directory (New), the durable default
//   - SQLite through a caller-owned handle (NewSQLiteEngine)
//   - In-memory (NewInMemoryEngine, non-durable, best for tests)
//
// Pending operations found in a durable store are replayed into the queue
// during construction, before the first new Enqueue can be accepted, and
// identity allocation resumes above the highest replayed id.
//
// # Operation
//
// An Operation is an identity-tagged unit of deferred work:
//
//	type Operation struct {
//		ID      int64
//		Payload any
//	}
//
// Identities are assigned exactly once, at Enqueue time, and are strictly
// increasing; the worker drains operations in identity order. Payloads are
// opaque to the engine and are serialized with encoding/gob, so custom
// payload types must be registered with gob before use.
//
// # Processor
//
// A Processor supplies the meaning of operations through three hooks:
//
//	type Processor interface {
//		PreProcess() Result
//		Process(op Operation) Result
//		PostProcess() Result
//	}
//
// PreProcess and PostProcess bracket each processing batch under the lock.
// Every hook reports one of three results: Success, RetryableError (the
// engine waits a fixed delay and retries, indefinitely), or FatalError (the
// engine reports a fault and terminates the process rather than skip work
// whose safety is unknown). ProcessorFuncs adapts plain functions to the
// interface.
//
// # ExclusiveLock
//
// The worker acquires an ExclusiveLock before touching any operation and
// holds it for the whole batch, so background work never interleaves with
// foreground activity that shares the lock. Acquisition is polled and never
// forced. The lock package provides an in-process lock and a file-based
// cross-process lock with stale-owner takeover.
//
// # Observer
//
// Engine telemetry flows through the Observer interface: replay counts,
// per-operation completions, progress during large drains, warnings, and
// faults. The api package ships logging (log/slog), composite, and counting
// observers; the metrics package exports the same events to Prometheus.
//
// # Summary
//
// Fundo's goal is background durability that feels like Go: accept work
// fast, persist it first, process it in order under an explicit lock, retry
// what is transient, and stop loudly rather than guess. Engines own the
// plumbing, Processors own the semantics, and Observers watch it happen.
//
// For examples, see the /examples directory or the project README.
package fundo

package api

import (
	"context"
	"errors"
)

// ErrAlreadyStarted is returned by Start when the worker is already running
// (or has already run) for this engine instance.
var ErrAlreadyStarted = errors.New("engine already started")

// Engine is the durable background operation engine API.
//
// An Engine owns a durable store of pending operations, a single worker
// goroutine that drains them in identity order under an external exclusive
// lock, and the retry/fault policy around the caller's Processor. Pending
// operations persisted by a previous process are replayed into the work
// queue during construction, before the first Enqueue is accepted.
type Engine interface {
	// Start launches the worker loop on a dedicated goroutine. If
	// operations were replayed from the store, the worker is signaled
	// immediately. Returns ErrAlreadyStarted on a second call.
	Start() error

	// Enqueue assigns an identity to the payload, persists the record,
	// flushes the store, and schedules it for processing. The returned
	// id is strictly greater than every previously assigned or replayed
	// id. During shutdown the record is persisted but deliberately not
	// scheduled; it is replayed on the next start.
	//
	// Enqueue is safe for concurrent use. It fails only when persistence
	// itself fails, which also raises the engine's fatal fault signal.
	Enqueue(ctx context.Context, payload any) (int64, error)

	// Shutdown sets the stopping flag, wakes the worker so it observes
	// the flag promptly, and blocks until the worker has fully exited.
	// Operations not yet processed remain durably stored for the next
	// run. Callers should call Shutdown at most once.
	Shutdown()

	// Close shuts the engine down if it is still running and releases
	// the durable store handle. It is safe to call after Shutdown and is
	// idempotent.
	Close() error

	// Count reports the instantaneous work queue depth. It is a
	// non-authoritative snapshot for observability, not a control input.
	Count() int
}

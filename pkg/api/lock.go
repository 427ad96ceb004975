package api

// ExclusiveLock is the cooperative mutual-exclusion resource the worker
// shares with unrelated foreground activity (typically the filesystem
// driver). The engine only ever polls it: acquisition is attempted in a
// retry loop with a fixed delay, never forced and never blocked on.
//
// TryAcquire must not block. It returns false when the lock is held
// elsewhere, and implementations that can fail while acquiring (for
// example, on file I/O) report those failures as false too, leaving the
// engine to retry. Release must only be called by the current holder.
type ExclusiveLock interface {
	TryAcquire() bool
	Release()
}

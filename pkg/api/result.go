package api

import "fmt"

// Result is the tri-state outcome of a Processor hook.
//
// The declared values start at 1 so the zero value is never a valid result:
// a zero (or otherwise unrecognized) Result is treated as a fatal condition.
type Result int

const (
	// Success indicates the hook completed and the engine may proceed.
	// For Process, the operation is removed from the durable store.
	Success Result = iota + 1

	// RetryableError indicates a condition expected to resolve with time.
	// The engine sleeps the configured retry delay and invokes the hook
	// again with the same input, indefinitely, until Success or shutdown.
	RetryableError

	// FatalError indicates a condition the engine cannot safely continue
	// from. The engine reports the fault and raises the fatal fault
	// signal; by default that terminates the process.
	FatalError
)

// String returns a short name for the result, or a marker for values
// outside the declared set.
func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case RetryableError:
		return "retryable"
	case FatalError:
		return "fatal"
	default:
		return fmt.Sprintf("unrecognized(%d)", int(r))
	}
}

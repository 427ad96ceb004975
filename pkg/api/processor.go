package api

// Processor supplies the three hooks the worker loop consults while
// draining the queue under the external lock. It is the pluggable
// processing policy: the engine decides when each hook runs, the
// Processor decides what an operation means.
//
// All three hooks run on the worker goroutine, always with the external
// exclusive lock held, so they may touch the shared filesystem state the
// lock protects. PreProcess runs once per processing batch before the
// first operation; PostProcess runs once per batch after the last, and is
// invoked whenever the lock was acquired, even when the batch was cut
// short by shutdown. Each hook is retried on RetryableError with the
// engine's fixed delay.
type Processor interface {
	// PreProcess performs per-batch setup (for example, validating
	// preconditions) before any operation is attempted.
	PreProcess() Result

	// Process performs one operation. Success removes the record from
	// the durable store; RetryableError leaves it at the head of the
	// queue for another attempt.
	Process(op Operation) Result

	// PostProcess performs per-batch cleanup before the lock is
	// released.
	PostProcess() Result
}

// ProcessorFuncs adapts plain functions to the Processor interface.
// Nil fields report Success, so callers only supply the hooks they need:
//
//	proc := api.ProcessorFuncs{
//	    ProcessFunc: func(op api.Operation) api.Result {
//	        return apply(op.Payload)
//	    },
//	}
type ProcessorFuncs struct {
	PreFunc     func() Result
	ProcessFunc func(op Operation) Result
	PostFunc    func() Result
}

// Ensure ProcessorFuncs implements Processor.
var _ Processor = ProcessorFuncs{}

func (p ProcessorFuncs) PreProcess() Result {
	if p.PreFunc == nil {
		return Success
	}
	return p.PreFunc()
}

func (p ProcessorFuncs) Process(op Operation) Result {
	if p.ProcessFunc == nil {
		return Success
	}
	return p.ProcessFunc(op)
}

func (p ProcessorFuncs) PostProcess() Result {
	if p.PostFunc == nil {
		return Success
	}
	return p.PostFunc()
}

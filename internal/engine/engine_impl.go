// Package engine contains the single-consumer worker that drains durably
// stored operations under an external exclusive lock.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petrijr/fundo/internal/opqueue"
	"github.com/petrijr/fundo/internal/opstore"
	"github.com/petrijr/fundo/pkg/api"
)

const (
	// DefaultRetryDelay is the pause between attempts when a hook or an
	// operation reports a retryable error, and between lock acquisition
	// attempts while the lock is held elsewhere.
	DefaultRetryDelay = 50 * time.Millisecond

	// DefaultProgressInterval is the number of processed operations between
	// progress observations during a large drain.
	DefaultProgressInterval = 25000
)

// Config describes how to construct an engine.
// Only used inside this package; external callers use the root constructors.
type Config struct {
	Store     opstore.Store
	Lock      api.ExclusiveLock
	Processor api.Processor
	Observer  api.Observer

	RetryDelay       time.Duration
	ProgressInterval int64

	// OnFatal is invoked after a fatal fault has been reported to the
	// observer. Leave nil to log and terminate the process.
	OnFatal api.FatalFunc
}

// engineImpl is the single-worker engine implementation.
type engineImpl struct {
	store    opstore.Store
	lock     api.ExclusiveLock
	proc     api.Processor
	observer api.Observer

	retryDelay    time.Duration
	progressEvery int64
	onFatal       api.FatalFunc

	queue  *opqueue.Queue
	lastID atomic.Int64 // identity watermark, advanced by Enqueue

	wake chan struct{} // capacity 1; a pending token coalesces repeated signals

	started  atomic.Bool
	stopping atomic.Bool
	fataled  atomic.Bool

	done      chan struct{} // closed when the worker has exited
	closeOnce sync.Once
	closeErr  error
}

var _ api.Engine = (*engineImpl)(nil)

// New constructs an engine over the given store. It replays every persisted
// operation into the work queue and seeds the identity watermark from the
// highest replayed id, so construction must complete before the first
// Enqueue call is made.
func New(cfg Config) (api.Engine, error) {
	if cfg.Store == nil {
		return nil, errors.New("durable store is required")
	}
	if cfg.Lock == nil {
		return nil, errors.New("exclusive lock is required")
	}
	if cfg.Processor == nil {
		return nil, errors.New("processor is required")
	}

	obs := cfg.Observer
	if obs == nil {
		obs = api.NoopObserver{}
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	progressEvery := cfg.ProgressInterval
	if progressEvery <= 0 {
		progressEvery = DefaultProgressInterval
	}
	onFatal := cfg.OnFatal
	if onFatal == nil {
		onFatal = defaultFatal
	}

	e := &engineImpl{
		store:         cfg.Store,
		lock:          cfg.Lock,
		proc:          cfg.Processor,
		observer:      obs,
		retryDelay:    retryDelay,
		progressEvery: progressEvery,
		onFatal:       onFatal,
		queue:         opqueue.New(),
		wake:          make(chan struct{}, 1),
		done:          make(chan struct{}),
	}

	ops, err := cfg.Store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("replaying pending operations: %w", err)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].ID < ops[j].ID })

	var last int64
	for _, op := range ops {
		e.queue.Push(op)
		if op.ID > last {
			last = op.ID
		}
	}
	e.lastID.Store(last)

	if len(ops) > 0 {
		e.observer.OnReplay(context.Background(), len(ops))
	}
	return e, nil
}

// defaultFatal logs the fault and terminates the process. Hosts that need to
// sequence their own teardown install a FatalFunc via Config.OnFatal.
func defaultFatal(msg string, err error) {
	slog.Error("unrecoverable background engine fault",
		slog.String("fault", msg),
		slog.Any("error", err),
	)
	os.Exit(1)
}

func (e *engineImpl) Start() error {
	if !e.started.CompareAndSwap(false, true) {
		return api.ErrAlreadyStarted
	}
	go e.run()

	// Replayed operations are already queued; wake the worker for them
	// rather than waiting for the next Enqueue.
	if e.queue.Len() > 0 {
		e.signal()
	}
	return nil
}

func (e *engineImpl) Enqueue(ctx context.Context, payload any) (int64, error) {
	op := api.Operation{ID: e.lastID.Add(1), Payload: payload}

	if err := e.store.Insert(op); err != nil {
		e.fatal(ctx, fmt.Sprintf("persisting operation %d", op.ID), err)
		return 0, fmt.Errorf("persisting operation %d: %w", op.ID, err)
	}
	if err := e.store.Flush(); err != nil {
		e.fatal(ctx, fmt.Sprintf("flushing operation %d", op.ID), err)
		return 0, fmt.Errorf("flushing operation %d: %w", op.ID, err)
	}

	// During shutdown the record stays durably stored but is not scheduled;
	// the next run replays it.
	if e.stopping.Load() {
		e.observer.OnWarning(ctx, fmt.Sprintf("operation %d accepted during shutdown; it will run on the next start", op.ID), nil)
		return op.ID, nil
	}

	e.queue.Push(op)
	e.signal()
	return op.ID, nil
}

func (e *engineImpl) Shutdown() {
	e.stopping.Store(true)
	e.signal()
	if e.started.Load() {
		<-e.done
	}
}

func (e *engineImpl) Close() error {
	e.Shutdown()
	e.closeOnce.Do(func() {
		e.closeErr = e.store.Close()
	})
	return e.closeErr
}

func (e *engineImpl) Count() int {
	return e.queue.Len()
}

// signal wakes the worker if it is waiting. The buffered channel keeps at
// most one pending token, so signalling is non-blocking from any goroutine.
func (e *engineImpl) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// fatal records an unrecoverable fault, reports it, and hands control to the
// configured FatalFunc. The default FatalFunc does not return.
func (e *engineImpl) fatal(ctx context.Context, msg string, err error) {
	e.fataled.Store(true)
	e.stopping.Store(true)
	e.observer.OnFault(ctx, msg, err)
	e.onFatal(msg, err)
	e.signal()
}

// run is the worker loop. It waits for a wake token, acquires the external
// lock, and processes a batch. The lock is released between batches only
// when the queue emptied; if more work arrived during post-processing the
// lock is kept across the next iteration.
func (e *engineImpl) run() {
	defer close(e.done)
	ctx := context.Background()

	held := false
	for {
		<-e.wake
		if e.stopping.Load() {
			return
		}

		if !held {
			if !e.acquireLock() {
				return
			}
			held = true
		}

		e.processBatch(ctx)

		if e.fataled.Load() {
			// The lock is deliberately left held; recovering it is the
			// lock implementation's crash-detection problem, not ours.
			return
		}
		if e.queue.Len() == 0 {
			e.lock.Release()
			held = false
		}
		if e.stopping.Load() {
			return
		}
	}
}

// acquireLock attempts the external lock until it succeeds or shutdown is
// requested. The lock may be held by foreground activity for a long time;
// acquisition is never forced.
func (e *engineImpl) acquireLock() bool {
	for {
		if e.lock.TryAcquire() {
			return true
		}
		if e.stopping.Load() {
			return false
		}
		time.Sleep(e.retryDelay)
		if e.stopping.Load() {
			return false
		}
	}
}

// processBatch runs one pre/drain/post cycle while the lock is held. The
// post hook runs whenever the lock was acquired and no fatal fault was
// raised, including when shutdown interrupted the drain, so the processor
// can clean up before the lock is released. A panic anywhere in the cycle
// still gives the post hook one attempt, then raises a fatal fault.
func (e *engineImpl) processBatch(ctx context.Context) {
	postRan := false
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if !postRan {
			func() {
				defer func() { _ = recover() }()
				e.proc.PostProcess()
			}()
		}
		e.fatal(ctx, "panic while processing operations", fmt.Errorf("%v", r))
	}()

	if e.runHook(ctx, "pre-processing", e.proc.PreProcess) {
		e.drainQueue(ctx)
	}
	if !e.fataled.Load() {
		postRan = true
		e.runHook(ctx, "post-processing", e.proc.PostProcess)
	}
}

// runHook invokes a pre- or post-processing hook, retrying on retryable
// errors until it succeeds or shutdown interrupts the retry wait. A fatal
// or unrecognized result raises a fatal fault. Returns true on success.
func (e *engineImpl) runHook(ctx context.Context, name string, hook func() api.Result) bool {
	for {
		switch res := hook(); res {
		case api.Success:
			return true
		case api.RetryableError:
			if e.stopping.Load() {
				return false
			}
			time.Sleep(e.retryDelay)
			if e.stopping.Load() {
				return false
			}
		case api.FatalError:
			e.fatal(ctx, fmt.Sprintf("%s hook reported a fatal error", name), nil)
			return false
		default:
			e.fatal(ctx, fmt.Sprintf("%s hook returned %s", name, res), nil)
			return false
		}
	}
}

// drainQueue processes queued operations in identity order until the queue
// empties or shutdown is requested, then flushes the store so completed
// removals are durable. Unprocessed operations stay in the store for the
// next run.
func (e *engineImpl) drainQueue(ctx context.Context) {
	var processed int64
	if depth := e.queue.Len(); int64(depth) > e.progressEvery {
		e.observer.OnProgress(ctx, api.Progress{Remaining: depth})
	}

	var (
		headID      int64
		headRetries int
		headSince   time.Time
	)

	for {
		if e.stopping.Load() {
			break
		}
		op, ok := e.queue.Peek()
		if !ok {
			break
		}
		if op.ID != headID {
			headID = op.ID
			headRetries = 0
			headSince = time.Now()
		}

		switch res := e.proc.Process(op); res {
		case api.Success:
			// Remove only after the callback succeeded; a crash in between
			// leaves the record stored and it is simply processed again.
			e.queue.Pop()
			if err := e.store.Remove(op.ID); err != nil {
				e.fatal(ctx, fmt.Sprintf("removing completed operation %d", op.ID), err)
				return
			}
			processed++
			e.observer.OnOperationCompleted(ctx, op, headRetries, time.Since(headSince))
			if processed%e.progressEvery == 0 {
				e.observer.OnProgress(ctx, api.Progress{Processed: processed, Remaining: e.queue.Len()})
			}
		case api.RetryableError:
			headRetries++
			if !e.stopping.Load() {
				time.Sleep(e.retryDelay)
			}
		case api.FatalError:
			e.fatal(ctx, fmt.Sprintf("operation %d reported a fatal error", op.ID), nil)
			return
		default:
			e.fatal(ctx, fmt.Sprintf("operation %d returned %s", op.ID, res), nil)
			return
		}
	}

	if err := e.store.Flush(); err != nil {
		e.fatal(ctx, "flushing completed operations", err)
		return
	}
	if processed >= e.progressEvery {
		e.observer.OnProgress(ctx, api.Progress{Processed: processed, Remaining: e.queue.Len(), Final: true})
	}
}

package fundo

import (
	"database/sql"
	"time"

	"github.com/petrijr/fundo/internal/engine"
	"github.com/petrijr/fundo/internal/opstore"
	"github.com/petrijr/fundo/pkg/api"
	"github.com/petrijr/fundo/pkg/lock"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Engine               = api.Engine
	Operation            = api.Operation
	Result               = api.Result
	Processor            = api.Processor
	ProcessorFuncs       = api.ProcessorFuncs
	ExclusiveLock        = api.ExclusiveLock
	FatalFunc            = api.FatalFunc
	Observer             = api.Observer
	Progress             = api.Progress
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver
)

// Re-export common observer helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver

	ErrAlreadyStarted = api.ErrAlreadyStarted
)

// Re-export callback results for convenience.

const (
	Success        = api.Success
	RetryableError = api.RetryableError
	FatalError     = api.FatalError
)

// Config describes how to build an engine.
//
// Processor is required. Lock defaults to an in-process lock when nil; share
// an ExclusiveLock with your foreground component to keep background work
// off its critical sections. The remaining fields tune policy and default
// sensibly when zero.
type Config struct {
	// Root is the directory the operation database lives under. It is
	// created if missing. Only used by New.
	Root string

	// Name identifies the store within Root and becomes the database file
	// name. Defaults to "operations". Only used by New.
	Name string

	Lock      ExclusiveLock
	Processor Processor
	Observer  Observer

	// RetryDelay is the pause between retryable-error attempts and lock
	// acquisition attempts. Defaults to 50ms.
	RetryDelay time.Duration

	// ProgressInterval is the number of processed operations between
	// progress observations on large backlogs. Defaults to 25000.
	ProgressInterval int64

	// OnFatal replaces the default fatal behavior of logging and
	// terminating the process. Install one to sequence your own teardown.
	OnFatal FatalFunc
}

func (c Config) engineConfig(store opstore.Store) engine.Config {
	lk := c.Lock
	if lk == nil {
		lk = &lock.Local{}
	}
	return engine.Config{
		Store:            store,
		Lock:             lk,
		Processor:        c.Processor,
		Observer:         c.Observer,
		RetryDelay:       c.RetryDelay,
		ProgressInterval: c.ProgressInterval,
		OnFatal:          c.OnFatal,
	}
}

// Engine constructors
// These wrap the internal packages so external callers never need to
// import them.

// New returns an Engine whose operations are persisted in a SQLite database
// file under cfg.Root. Pending operations from a previous run are replayed
// into the queue before New returns.
//
// Payload types beyond the basic Go types must be registered with encoding/gob
// before the first Enqueue and before replaying a store that contains them.
func New(cfg Config) (Engine, error) {
	name := cfg.Name
	if name == "" {
		name = "operations"
	}
	store, err := opstore.Open(cfg.Root, name)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(cfg.engineConfig(store))
	if err != nil {
		store.Close()
		return nil, err
	}
	return eng, nil
}

// NewSQLiteEngine returns an Engine that persists operations through an
// existing SQLite handle. The engine takes ownership of db; closing the
// engine closes it. Config.Root and Config.Name are ignored.
func NewSQLiteEngine(db *sql.DB, cfg Config) (Engine, error) {
	store, err := opstore.NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(cfg.engineConfig(store))
	if err != nil {
		store.Close()
		return nil, err
	}
	return eng, nil
}

// NewInMemoryEngine returns an Engine whose store does not survive the
// process. Useful for tests and for work that is safe to lose.
func NewInMemoryEngine(cfg Config) (Engine, error) {
	return engine.New(cfg.engineConfig(opstore.NewMemoryStore()))
}

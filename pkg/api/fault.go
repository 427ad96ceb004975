package api

// FatalFunc receives the engine's fatal fault signal: an unrecoverable
// condition (a FatalError result, an unrecognized result, a panic in the
// processing cycle, or a durable store failure) after it has been reported
// to the Observer.
//
// The default used when none is configured logs the fault with slog and
// calls os.Exit(1). Hosts that need to control shutdown sequencing (flush
// logs, notify a supervisor) install their own; whatever it does, the
// engine stops processing once it has been raised, so a FatalFunc that
// returns leaves the worker stopped rather than resuming work in an
// unknown state. err may be nil when the fault carries no underlying
// error.
type FatalFunc func(msg string, err error)

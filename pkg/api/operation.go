package api

// Operation is an identity-tagged unit of deferred background work.
//
// The zero ID means "unassigned": identities are assigned exactly once, at
// enqueue time, and are never reused. Payloads are opaque to the engine and
// must be gob-encodable; callers register concrete payload types with
// gob.Register so records survive the trip through the durable store.
//
// The at-rest encoding of a payload must stay stable across process versions
// that share a store. If a payload schema evolves, version it explicitly
// (for example with a version field) rather than changing fields in place.
type Operation struct {
	// ID is the operation identity, strictly increasing in assignment
	// order. Zero is the "unassigned" sentinel.
	ID int64

	// Payload describes the work to perform. Its meaning belongs entirely
	// to the Processor supplied by the caller.
	Payload any
}

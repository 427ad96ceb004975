package opstore

import (
	"errors"

	"github.com/petrijr/fundo/pkg/api"
)

// ErrNotFound is returned by Remove when no record with the given id
// exists in the store's current view.
var ErrNotFound = errors.New("operation not found")

// Store is the durable mapping from operation id to operation record.
//
// Mutations accumulate until Flush forces them to stable storage; the key
// set at any flush checkpoint is exactly the set of operations not yet
// successfully processed. LoadAll returns the flushed view only, so a crash
// between a mutation and the next Flush replays the pre-mutation state,
// which is the at-least-once contract the engine relies on.
//
// A Store is owned by a single engine instance. Implementations must be
// safe for the engine's two mutators (producer inserts, worker removals)
// calling concurrently.
type Store interface {
	// Insert stages a record for persistence. The record is durable once
	// a subsequent Flush returns.
	Insert(op api.Operation) error

	// Remove stages the deletion of the record with the given id.
	// Returns ErrNotFound if the store's current view has no such id.
	Remove(id int64) error

	// Flush forces all staged mutations to stable storage.
	Flush() error

	// LoadAll returns every record in the flushed view, in no particular
	// order. It is called once, during engine construction, to seed the
	// identity allocator and the work queue.
	LoadAll() ([]api.Operation, error)

	// Close releases the backing handle. Staged, unflushed mutations are
	// discarded.
	Close() error
}

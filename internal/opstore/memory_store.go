package opstore

import (
	"fmt"
	"sync"

	"github.com/petrijr/fundo/pkg/api"
)

// MemoryStore is a goroutine-safe Store backed by maps, for tests and
// deployments that can afford to lose queued work on a crash.
//
// It mirrors the SQLite store's staging semantics: mutations go into a
// pending overlay that Flush applies to the committed map standing in for
// stable storage, and LoadAll reads the committed map only. Tests simulate
// a crash by discarding an engine and constructing a new one over the same
// MemoryStore.
type MemoryStore struct {
	mu        sync.Mutex
	committed map[int64][]byte
	pending   map[int64][]byte // nil value marks a staged removal
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		committed: make(map[int64][]byte),
		pending:   make(map[int64][]byte),
	}
}

// exists reports whether id is present in the current view, with staged
// mutations overriding committed state. Callers must hold s.mu.
func (s *MemoryStore) exists(id int64) bool {
	if staged, ok := s.pending[id]; ok {
		return staged != nil
	}
	_, ok := s.committed[id]
	return ok
}

func (s *MemoryStore) Insert(op api.Operation) error {
	payload, err := encodePayload(op.Payload)
	if err != nil {
		return fmt.Errorf("encode payload for operation %d: %w", op.ID, err)
	}
	if payload == nil {
		payload = []byte{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exists(op.ID) {
		return fmt.Errorf("opstore: duplicate operation id %d", op.ID)
	}

	s.pending[op.ID] = payload
	return nil
}

func (s *MemoryStore) Remove(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.exists(id) {
		return ErrNotFound
	}

	s.pending[id] = nil
	return nil
}

func (s *MemoryStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, payload := range s.pending {
		if payload == nil {
			delete(s.committed, id)
		} else {
			s.committed[id] = payload
		}
	}
	s.pending = make(map[int64][]byte)
	return nil
}

func (s *MemoryStore) LoadAll() ([]api.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ops []api.Operation
	for id, payload := range s.committed {
		v, err := decodePayload(payload)
		if err != nil {
			return nil, fmt.Errorf("decode payload for operation %d: %w", id, err)
		}
		ops = append(ops, api.Operation{ID: id, Payload: v})
	}
	return ops, nil
}

// Close discards staged mutations. The committed map is kept so tests can
// replay the store through a fresh engine.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = make(map[int64][]byte)
	return nil
}

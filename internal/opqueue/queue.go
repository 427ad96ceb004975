// Package opqueue provides the in-memory FIFO view of pending operations.
//
// The queue is a cache of the durable store's pending set, ordered by
// operation identity. The worker peeks the head without removing it and
// pops only after the operation succeeds, so a crash mid-processing never
// loses the head's position. Any number of producers may push concurrently;
// there is exactly one consumer.
package opqueue

import (
	"sync"

	"github.com/petrijr/fundo/pkg/api"
)

// Queue is an identity-ordered FIFO of operation records.
// It is safe for concurrent use.
type Queue struct {
	mu  sync.Mutex
	ops []api.Operation
}

// New creates an empty Queue.
func New() *Queue {
	return &Queue{}
}

// Push adds an operation, keeping the queue ordered by identity. Producers
// persist before pushing, so an operation can arrive slightly after one
// with a higher id; the ordered insert keeps the drain in identity order
// regardless.
func (q *Queue) Push(op api.Operation) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.ops = append(q.ops, op)
	for i := len(q.ops) - 1; i > 0 && q.ops[i-1].ID > q.ops[i].ID; i-- {
		q.ops[i-1], q.ops[i] = q.ops[i], q.ops[i-1]
	}
}

// Peek returns the head operation without removing it.
// The second return value is false when the queue is empty.
func (q *Queue) Peek() (api.Operation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.ops) == 0 {
		return api.Operation{}, false
	}
	return q.ops[0], true
}

// Pop removes and returns the head operation.
// The second return value is false when the queue is empty.
func (q *Queue) Pop() (api.Operation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.ops) == 0 {
		return api.Operation{}, false
	}
	op := q.ops[0]
	q.ops[0] = api.Operation{}
	q.ops = q.ops[1:]
	return op, true
}

// Len reports the current queue depth.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

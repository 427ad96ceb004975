// Package lock provides ExclusiveLock implementations for coordinating the
// background engine with foreground activity.
//
// Local coordinates goroutines within one process. FileLock coordinates
// processes sharing a filesystem, with takeover of locks left behind by a
// crashed owner.
package lock

import (
	"sync"

	"github.com/petrijr/fundo/pkg/api"
)

// Local is an in-process exclusive lock.
type Local struct {
	mu sync.Mutex
}

var _ api.ExclusiveLock = (*Local)(nil)

// TryAcquire takes the lock if it is free.
func (l *Local) TryAcquire() bool {
	return l.mu.TryLock()
}

// Release frees the lock. Call it only after a successful TryAcquire.
func (l *Local) Release() {
	l.mu.Unlock()
}

package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/petrijr/fundo/pkg/api"
)

// FileLock is a cross-process exclusive lock backed by a lock file. The file
// records the owner's pid and a random token; a file whose pid no longer
// names a live process is considered stale and taken over. Release removes
// the file only while the token still matches, so losing a lock to a
// takeover never deletes the new owner's file.
//
// A FileLock instance is not safe for concurrent use; the engine drives it
// from its single worker.
type FileLock struct {
	path  string
	token string
}

var _ api.ExclusiveLock = (*FileLock)(nil)

// NewFileLock returns a lock backed by the file at path. The file is created
// on acquisition; its directory must already exist.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// TryAcquire attempts to create the lock file. A stale file from a crashed
// owner is removed and the acquisition retried once; if another process wins
// that race the attempt reports failure and the engine retries later.
func (l *FileLock) TryAcquire() bool {
	for attempt := 0; attempt < 2; attempt++ {
		switch err := l.create(); {
		case err == nil:
			return true
		case errors.Is(err, fs.ErrExist):
			if !l.staleOwner() {
				return false
			}
			if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return false
			}
		default:
			return false
		}
	}
	return false
}

// Locked reports whether this instance currently owns the lock.
func (l *FileLock) Locked() bool {
	return l.token != ""
}

// Release removes the lock file if this process still owns it.
func (l *FileLock) Release() {
	if l.token == "" {
		return
	}
	defer func() { l.token = "" }()

	data, err := os.ReadFile(l.path)
	if err != nil {
		return
	}
	if fields := strings.Fields(string(data)); len(fields) == 2 && fields[1] == l.token {
		os.Remove(l.path)
	}
}

func (l *FileLock) create() error {
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	token := uuid.NewString()
	if _, err := fmt.Fprintf(f, "%d %s\n", os.Getpid(), token); err != nil {
		f.Close()
		os.Remove(l.path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(l.path)
		return err
	}
	l.token = token
	return nil
}

// staleOwner reports whether the lock file names a process that no longer
// exists. Unreadable or malformed files count as live so a questionable
// lock is never stolen.
func (l *FileLock) staleOwner() bool {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return false
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return false
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil || pid <= 0 {
		return false
	}
	if pid == os.Getpid() {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return true
	}
	return proc.Signal(syscall.Signal(0)) != nil
}

package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocal_MutualExclusion(t *testing.T) {
	var l Local

	if !l.TryAcquire() {
		t.Fatal("first TryAcquire() failed on a fresh lock")
	}
	if l.TryAcquire() {
		t.Fatal("second TryAcquire() succeeded while the lock was held")
	}
	l.Release()
	if !l.TryAcquire() {
		t.Fatal("TryAcquire() failed after Release()")
	}
	l.Release()
}

func lockPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "engine.lock")
}

func TestFileLock_AcquireWritesOwnerAndReleaseRemoves(t *testing.T) {
	path := lockPath(t)
	l := NewFileLock(path)

	if !l.TryAcquire() {
		t.Fatal("TryAcquire() failed on a fresh path")
	}
	if !l.Locked() {
		t.Fatal("Locked() = false right after a successful TryAcquire()")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading lock file: %v", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) != 2 {
		t.Fatalf("lock file has %d fields, want pid and token", len(fields))
	}
	if want := fmt.Sprintf("%d", os.Getpid()); fields[0] != want {
		t.Fatalf("lock file pid = %s, want %s", fields[0], want)
	}

	l.Release()
	if l.Locked() {
		t.Fatal("Locked() = true after Release()")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("lock file still present after Release(): %v", err)
	}
}

func TestFileLock_HeldLockBlocksOtherAcquirers(t *testing.T) {
	path := lockPath(t)

	first := NewFileLock(path)
	if !first.TryAcquire() {
		t.Fatal("first TryAcquire() failed")
	}
	defer first.Release()

	second := NewFileLock(path)
	if second.TryAcquire() {
		t.Fatal("second TryAcquire() succeeded while the file was owned by a live process")
	}
}

func TestFileLock_StaleLockIsTakenOver(t *testing.T) {
	path := lockPath(t)

	// A pid far above any real pid space stands in for a crashed owner.
	stale := fmt.Sprintf("%d %s\n", int64(1)<<30, "00000000-0000-0000-0000-000000000000")
	if err := os.WriteFile(path, []byte(stale), 0o644); err != nil {
		t.Fatalf("writing stale lock file: %v", err)
	}

	l := NewFileLock(path)
	if !l.TryAcquire() {
		t.Fatal("TryAcquire() failed to take over a stale lock")
	}
	defer l.Release()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading lock file: %v", err)
	}
	if strings.Contains(string(data), "1073741824") {
		t.Fatal("lock file still carries the stale owner")
	}
}

func TestFileLock_MalformedLockFileIsNotStolen(t *testing.T) {
	path := lockPath(t)
	if err := os.WriteFile(path, []byte("not a lock file"), 0o644); err != nil {
		t.Fatalf("writing malformed lock file: %v", err)
	}

	l := NewFileLock(path)
	if l.TryAcquire() {
		t.Fatal("TryAcquire() stole a lock file it could not parse")
	}
}

func TestFileLock_ReleaseLeavesForeignLockAlone(t *testing.T) {
	path := lockPath(t)

	l := NewFileLock(path)
	if !l.TryAcquire() {
		t.Fatal("TryAcquire() failed")
	}

	// Another process took the lock over in the meantime.
	foreign := fmt.Sprintf("%d %s\n", os.Getpid(), "ffffffff-ffff-ffff-ffff-ffffffffffff")
	if err := os.WriteFile(path, []byte(foreign), 0o644); err != nil {
		t.Fatalf("rewriting lock file: %v", err)
	}

	l.Release()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Release() removed a lock file it no longer owned: %v", err)
	}
}

package filelock

import (
	"path/filepath"
	"testing"
)

func TestTryLockContention(t *testing.T) {
	dir := t.TempDir()

	first := ForWorktree(dir)
	acquired, err := first.TryLock()
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if !acquired {
		t.Fatal("first TryLock should succeed")
	}
	defer first.Unlock()

	// flock is per file-descriptor, so a second lock object on the same
	// path models a second process.
	second := ForWorktree(dir)
	acquired, err = second.TryLock()
	if err != nil {
		t.Fatalf("second TryLock: %v", err)
	}
	if acquired {
		t.Error("second TryLock must fail while the first is held")
	}
}

func TestLockReleaseAllowsReacquire(t *testing.T) {
	dir := t.TempDir()

	l := ForWorktree(dir)
	if err := l.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := l.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	other := ForWorktree(dir)
	acquired, err := other.TryLock()
	if err != nil {
		t.Fatalf("TryLock after release: %v", err)
	}
	if !acquired {
		t.Error("lock should be free after Unlock")
	}
	other.Unlock()
}

func TestLockFileLivesInsideWorktree(t *testing.T) {
	dir := t.TempDir()
	l := ForWorktree(dir)
	if got, want := l.Path(), filepath.Join(dir, ".gwm.lock"); got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}

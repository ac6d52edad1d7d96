// Package filelock guards a target worktree against two gwm invocations
// materializing into it at the same time.
//
// The lock is advisory and process-level (flock); the engine itself still
// promises single-invocation consistency only.
package filelock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockFileName is created inside the locked worktree.
const lockFileName = ".gwm.lock"

// WorktreeLock is an advisory lock on one worktree directory.
type WorktreeLock struct {
	flock *flock.Flock
	path  string
}

// ForWorktree returns the lock guarding the worktree at dir. The lock file
// lives inside the worktree so every process contending for the same target
// sees the same file.
func ForWorktree(dir string) *WorktreeLock {
	path := filepath.Join(dir, lockFileName)
	return &WorktreeLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file location.
func (l *WorktreeLock) Path() string {
	return l.path
}

// TryLock attempts to acquire the lock without blocking. It returns false
// when another invocation holds the lock.
func (l *WorktreeLock) TryLock() (bool, error) {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", l.path, err)
	}
	return acquired, nil
}

// Lock acquires the lock, blocking until it is available.
func (l *WorktreeLock) Lock() error {
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}
	return nil
}

// Unlock releases the lock.
func (l *WorktreeLock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}

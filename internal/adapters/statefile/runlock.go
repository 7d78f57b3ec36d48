package statefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrAlreadyLocked indicates another provisioning run holds the lock.
var ErrAlreadyLocked = errors.New("another provisioning run is in progress")

// RunLock guards against two concurrent invocations sharing a journal.
type RunLock struct {
	path string
}

// AcquireRunLock creates the lock file, failing if a live process
// already holds it. A lock left behind by a dead process is reclaimed.
func AcquireRunLock(path string) (*RunLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(file, "%d\n", os.Getpid())
			cerr := file.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("failed to write lock file: %w", errors.Join(werr, cerr))
			}
			return &RunLock{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		if !lockHolderAlive(path) {
			// Stale lock from a crashed run.
			_ = os.Remove(path)
			continue
		}
		return nil, fmt.Errorf("%w: lock held at %s", ErrAlreadyLocked, path)
	}

	return nil, fmt.Errorf("%w: lock held at %s", ErrAlreadyLocked, path)
}

// Release removes the lock file.
func (l *RunLock) Release() error {
	return os.Remove(l.path)
}

// lockHolderAlive reports whether the pid recorded in the lock file
// still refers to a running process. An unreadable lock is treated as
// live to stay on the safe side.
func lockHolderAlive(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return true
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

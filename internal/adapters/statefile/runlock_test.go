package statefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRunLock(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.lock")

	lock, err := AcquireRunLock(path)
	require.NoError(t, err)

	// A second invocation must be refused while the lock is held.
	_, err = AcquireRunLock(path)
	assert.ErrorIs(t, err, ErrAlreadyLocked)

	require.NoError(t, lock.Release())

	// After release the lock is free again.
	lock, err = AcquireRunLock(path)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}

func TestAcquireRunLock_ReclaimsStaleLock(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.lock")
	// A pid far beyond pid_max cannot belong to a live process.
	require.NoError(t, os.WriteFile(path, []byte("999999999\n"), 0o644))

	lock, err := AcquireRunLock(path)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}

func TestAcquireRunLock_KeepsUnreadableLock(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.lock")
	require.NoError(t, os.WriteFile(path, []byte("not a pid\n"), 0o644))

	_, err := AcquireRunLock(path)
	assert.ErrorIs(t, err, ErrAlreadyLocked)
}

func TestAcquireRunLock_CreatesDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "state", "run.lock")

	lock, err := AcquireRunLock(path)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}

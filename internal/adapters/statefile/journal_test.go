package statefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provis-dev/provision/internal/domain/state"
)

func journalPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "journal.yaml")
}

func TestOpenJournal_CreatesFileAndDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", "journal.yaml")
	store, err := OpenJournal(path, "run-1")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Equal(t, "run-1", store.RunID())
	assert.Empty(t, store.StepIDs())
}

func TestJournalStore_AppendAndReplay(t *testing.T) {
	t.Parallel()

	path := journalPath(t)

	store, err := OpenJournal(path, "run-1")
	require.NoError(t, err)

	rec := state.NewChangeRecord("pacman:install:git", state.KindPackageInstalled, map[string]string{"package": "git"})
	require.NoError(t, store.Append(rec))
	require.NoError(t, store.Append(state.NewChangeRecord("files:ini:kwinrc:Windows", state.KindFileModified, map[string]string{"path": "/home/u/.config/kwinrc", "backup": "/home/u/.config/kwinrc.provision-bak.20260101-120000"})))
	require.NoError(t, store.Close())

	// A fresh open must see exactly what was appended.
	reopened, err := OpenJournal(path, "run-2")
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	assert.Equal(t, []string{"pacman:install:git", "files:ini:kwinrc:Windows"}, reopened.StepIDs())

	recs := reopened.RecordsFor("pacman:install:git")
	require.Len(t, recs, 1)
	assert.Equal(t, "git", recs[0].Get("package"))
	assert.Equal(t, "run-1", recs[0].RunID, "records keep the run that made them")
}

func TestJournalStore_ClearAppendsTombstone(t *testing.T) {
	t.Parallel()

	path := journalPath(t)

	store, err := OpenJournal(path, "run-1")
	require.NoError(t, err)
	require.NoError(t, store.Append(state.NewChangeRecord("pacman:install:git", state.KindPackageInstalled, nil)))

	sizeBefore := fileSize(t, path)
	require.NoError(t, store.Clear("pacman:install:git"))
	require.NoError(t, store.Close())

	// Clearing appends; it never rewrites earlier bytes.
	assert.Greater(t, fileSize(t, path), sizeBefore)

	reopened, err := OpenJournal(path, "run-2")
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	assert.False(t, reopened.HasRecords("pacman:install:git"))
}

func TestJournalStore_ClearWithoutRecordsIsNoop(t *testing.T) {
	t.Parallel()

	path := journalPath(t)

	store, err := OpenJournal(path, "run-1")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Clear("never:recorded"))
	assert.Equal(t, int64(0), fileSize(t, path))
}

func TestOpenJournal_CorruptFileIsStateCorruption(t *testing.T) {
	t.Parallel()

	path := journalPath(t)
	require.NoError(t, os.WriteFile(path, []byte("---\nrecord: [not a record\n"), 0o644))

	_, err := OpenJournal(path, "run-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, state.ErrStateCorrupt)
}

func TestJournalStore_AppendStampsRunID(t *testing.T) {
	t.Parallel()

	store, err := OpenJournal(journalPath(t), "run-7")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Append(state.NewChangeRecord("a", state.KindFileModified, nil)))

	recs := store.RecordsFor("a")
	require.Len(t, recs, 1)
	assert.Equal(t, "run-7", recs[0].RunID)
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return info.Size()
}

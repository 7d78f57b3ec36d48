package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provis-dev/provision/internal/domain/step"
	"github.com/provis-dev/provision/internal/testutil/mocks"
)

func TestCopyStep_Check(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "source.rules")
	dest := filepath.Join(dir, "dest.rules")
	require.NoError(t, os.WriteFile(source, []byte("ACTION==\"add\"\n"), 0o644))

	s := NewCopyStep(source, dest, "0644", false, step.PolicyFatal, nil)

	status, err := s.Check(runCtx())
	require.NoError(t, err)
	assert.Equal(t, step.StatusNeedsApply, status, "missing destination needs apply")

	require.NoError(t, os.WriteFile(dest, []byte("ACTION==\"add\"\n"), 0o644))
	status, err = s.Check(runCtx())
	require.NoError(t, err)
	assert.Equal(t, step.StatusSatisfied, status)

	require.NoError(t, os.WriteFile(dest, []byte("stale\n"), 0o644))
	status, err = s.Check(runCtx())
	require.NoError(t, err)
	assert.Equal(t, step.StatusNeedsApply, status, "content drift needs apply")
}

func TestCopyStep_Apply_InstallsNewFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "source")
	dest := filepath.Join(dir, "nested", "dest")
	require.NoError(t, os.WriteFile(source, []byte("content\n"), 0o644))

	s := NewCopyStep(source, dest, "0600", false, step.PolicyFatal, nil)
	records, err := s.Apply(runCtx())

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "true", records[0].Get("created"))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestCopyStep_Apply_BacksUpExistingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "source")
	dest := filepath.Join(dir, "dest")
	require.NoError(t, os.WriteFile(source, []byte("new\n"), 0o644))
	require.NoError(t, os.WriteFile(dest, []byte("old\n"), 0o644))

	s := NewCopyStep(source, dest, "", false, step.PolicyFatal, nil)
	records, err := s.Apply(runCtx())

	require.NoError(t, err)
	require.Len(t, records, 1)

	backup := records[0].Get("backup")
	require.NotEmpty(t, backup)
	old, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(old))
}

func TestCopyStep_Apply_ConfirmDeclinedFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "source")
	dest := filepath.Join(dir, "dest")
	require.NoError(t, os.WriteFile(source, []byte("new\n"), 0o644))
	require.NoError(t, os.WriteFile(dest, []byte("old\n"), 0o644))

	prompter := mocks.NewPrompter() // unscripted confirms answer the default: no

	s := NewCopyStep(source, dest, "", true, step.PolicyFatal, prompter)
	records, err := s.Apply(runCtx())

	require.ErrorIs(t, err, ErrOverwriteDeclined)
	assert.Empty(t, records)

	kept, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(kept), "a declined overwrite leaves the file alone")
}

func TestCopyStep_Apply_ConfirmAccepted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "source")
	dest := filepath.Join(dir, "dest")
	require.NoError(t, os.WriteFile(source, []byte("new\n"), 0o644))
	require.NoError(t, os.WriteFile(dest, []byte("old\n"), 0o644))

	prompter := mocks.NewPrompter()
	prompter.ConfirmDefault = true

	s := NewCopyStep(source, dest, "", true, step.PolicyFatal, prompter)
	records, err := s.Apply(runCtx())

	require.NoError(t, err)
	require.Len(t, records, 1)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(got))
	require.Len(t, prompter.ConfirmCalls, 1)
}

func TestCopyStep_RevertRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "source")
	dest := filepath.Join(dir, "dest")
	require.NoError(t, os.WriteFile(source, []byte("new\n"), 0o644))
	require.NoError(t, os.WriteFile(dest, []byte("old\n"), 0o644))

	s := NewCopyStep(source, dest, "", false, step.PolicyFatal, nil)
	records, err := s.Apply(runCtx())
	require.NoError(t, err)

	require.NoError(t, s.Revert(runCtx(), records))

	restored, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(restored))
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, os.FileMode(0o644), parseMode(""))
	assert.Equal(t, os.FileMode(0o600), parseMode("0600"))
	assert.Equal(t, os.FileMode(0o755), parseMode("755"))
	assert.Equal(t, os.FileMode(0o644), parseMode("not-octal"))
}

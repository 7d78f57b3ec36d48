package mocks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provis-dev/provision/internal/ports"
)

func TestCommandRunner_ReturnsRegisteredResult(t *testing.T) {
	t.Parallel()

	runner := NewCommandRunner()
	runner.AddResult("pacman", []string{"-Qi", "git"}, ports.CommandResult{ExitCode: 0, Stdout: "Name : git"})

	result, err := runner.Run(context.Background(), "pacman", "-Qi", "git")
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, "Name : git", result.Stdout)
}

func TestCommandRunner_ReturnsRegisteredError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("binary not found")
	runner := NewCommandRunner()
	runner.AddError("paru", []string{"-S", "spotify"}, wantErr)

	_, err := runner.Run(context.Background(), "paru", "-S", "spotify")
	assert.ErrorIs(t, err, wantErr)
}

func TestCommandRunner_UnregisteredCommandErrors(t *testing.T) {
	t.Parallel()

	runner := NewCommandRunner()
	_, err := runner.Run(context.Background(), "unexpected")
	assert.Error(t, err)
}

func TestCommandRunner_RecordsCalls(t *testing.T) {
	t.Parallel()

	runner := NewCommandRunner()
	runner.AddResult("getent", []string{"group", "docker"}, ports.CommandResult{ExitCode: 0})

	_, _ = runner.Run(context.Background(), "getent", "group", "docker")

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "getent", calls[0].Command)
	assert.Equal(t, []string{"group", "docker"}, calls[0].Args)

	runner.Reset()
	assert.Empty(t, runner.Calls())
}

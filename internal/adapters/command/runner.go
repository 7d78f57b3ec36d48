// Package command provides command execution adapters.
package command

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/provis-dev/provision/internal/ports"
)

// RealRunner executes actual external commands.
type RealRunner struct{}

// NewRealRunner creates a new RealRunner.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// Run executes a command and returns the result. A non-zero exit is
// reported in the result; the error return is reserved for launch
// failures (binary missing, permission denied, cancelled context).
func (r *RealRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := ports.CommandResult{
		ExitCode: 0,
		Stdout:   strings.TrimRight(stdout.String(), "\n"),
		Stderr:   strings.TrimRight(stderr.String(), "\n"),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}

// TimeoutRunner wraps a runner with a per-invocation deadline.
// Provisioning commands have no timeout by default (a package manager
// download can legitimately take a long time); automation contexts
// opt in through this wrapper.
type TimeoutRunner struct {
	inner   ports.CommandRunner
	timeout time.Duration
}

// NewTimeoutRunner wraps inner so every Run is bounded by timeout.
// A zero timeout returns inner unchanged.
func NewTimeoutRunner(inner ports.CommandRunner, timeout time.Duration) ports.CommandRunner {
	if timeout <= 0 {
		return inner
	}
	return &TimeoutRunner{inner: inner, timeout: timeout}
}

// Run executes the command with a deadline applied to the context.
func (r *TimeoutRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.inner.Run(ctx, command, args...)
}

// Ensure implementations satisfy ports.CommandRunner.
var (
	_ ports.CommandRunner = (*RealRunner)(nil)
	_ ports.CommandRunner = (*TimeoutRunner)(nil)
)

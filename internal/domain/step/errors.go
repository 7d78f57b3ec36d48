package step

import (
	"fmt"

	"github.com/provis-dev/provision/internal/ports"
)

// CommandError reports a command that launched but exited non-zero.
// It preserves the captured output so the engine can surface exit
// codes and stderr in the run summary.
type CommandError struct {
	Command string
	Args    []string
	Result  ports.CommandResult
}

// NewCommandError creates a CommandError for a failed invocation.
func NewCommandError(command string, args []string, result ports.CommandResult) *CommandError {
	return &CommandError{Command: command, Args: args, Result: result}
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.Result.ExitCode)
	if e.Result.Stderr != "" {
		msg += ": " + e.Result.Stderr
	}
	return msg
}

// ExitCode returns the exit code of the failed command.
func (e *CommandError) ExitCode() int {
	return e.Result.ExitCode
}

// Output returns the combined captured output.
func (e *CommandError) Output() string {
	return e.Result.CombinedOutput()
}

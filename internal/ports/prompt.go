package ports

import "context"

// Prompter collects interactive input from the operator.
//
// Steps that need input must go through this interface so that
// non-interactive runs (--yes, preset answers) never block on a
// terminal read.
type Prompter interface {
	// Confirm asks a yes/no question. The default answer is used when
	// the prompter is non-interactive.
	Confirm(ctx context.Context, message string, defaultYes bool) (bool, error)

	// Input asks for a free-text value, offering a default.
	Input(ctx context.Context, message, defaultValue string) (string, error)
}

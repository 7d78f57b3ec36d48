// Package prompt provides ports.Prompter adapters.
package prompt

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/provis-dev/provision/internal/ports"
)

// TerminalPrompter asks questions on the controlling terminal.
type TerminalPrompter struct{}

// NewTerminalPrompter creates an interactive prompter.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{}
}

// Confirm asks a yes/no question.
func (p *TerminalPrompter) Confirm(ctx context.Context, message string, defaultYes bool) (bool, error) {
	answer := defaultYes

	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(message).
			Affirmative("Yes").
			Negative("No").
			Value(&answer),
	))

	if err := form.RunWithContext(ctx); err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return answer, nil
}

// Input asks for a free-text value.
func (p *TerminalPrompter) Input(ctx context.Context, message, defaultValue string) (string, error) {
	value := defaultValue

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(message).
			Placeholder(defaultValue).
			Value(&value),
	))

	if err := form.RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("input prompt failed: %w", err)
	}
	if value == "" {
		value = defaultValue
	}
	return value, nil
}

// Ensure TerminalPrompter implements ports.Prompter.
var _ ports.Prompter = (*TerminalPrompter)(nil)

package main

import (
	"github.com/spf13/cobra"

	"github.com/provis-dev/provision/internal/adapters/prompt"
)

// confirm asks a yes/no question on the terminal, defaulting to no.
func confirm(cmd *cobra.Command, message string) (bool, error) {
	return prompt.NewTerminalPrompter().Confirm(cmd.Context(), message, false)
}

package main

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List journaled changes",
	Long: `Status prints the changes recorded by previous runs: installed
packages, modified files, enabled units, and group memberships that
'provision uninstall' would reverse.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	p, err := newApp(nil)
	if err != nil {
		return err
	}
	return p.Status()
}

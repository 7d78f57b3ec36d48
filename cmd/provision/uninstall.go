package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Reverse recorded changes",
	Long: `Uninstall reverts the changes this tool recorded, in reverse of the
order they were provisioned. Only journaled changes are touched:
packages that were already installed, units that were already enabled,
and files this tool never wrote are left alone.

Reversal is best-effort. A failed revert is reported and the remaining
steps are still attempted.`,
	RunE: runUninstall,
}

var uninstallOnly []string

func init() {
	rootCmd.AddCommand(uninstallCmd)

	uninstallCmd.Flags().StringSliceVar(&uninstallOnly, "only", nil, "restrict to the named step IDs or providers")
}

func runUninstall(cmd *cobra.Command, _ []string) error {
	p, err := newApp(uninstallOnly)
	if err != nil {
		return err
	}

	if !assumeYes {
		ok, err := confirm(cmd, "Revert all recorded changes?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	result, err := p.Uninstall(cmd.Context())
	if err != nil {
		return err
	}
	if result.Failed() {
		return errRunFailed
	}
	return nil
}

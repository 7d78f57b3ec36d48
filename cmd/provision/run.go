package main

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Apply the manifest to this machine",
	Long: `Run checks every step in manifest order and applies the ones the
system does not satisfy yet. Changes are journaled as they succeed.

A step with a fatal policy aborts the run on failure; warn steps are
reported and the run continues. Use --dry-run to see what would change
without touching the system.`,
	RunE: runRun,
}

var (
	runDryRun bool
	runOnly   []string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "show what would be done without making changes")
	runCmd.Flags().StringSliceVar(&runOnly, "only", nil, "restrict to the named step IDs or providers (e.g. pacman:install:git,systemd)")
}

func runRun(cmd *cobra.Command, _ []string) error {
	p, err := newApp(runOnly)
	if err != nil {
		return err
	}

	if runDryRun {
		_, err := p.DryRun(cmd.Context())
		return err
	}

	result, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}
	if result.Failed() {
		return errRunFailed
	}
	return nil
}

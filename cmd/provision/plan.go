package main

import (
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what a run would change",
	Long: `Plan checks every step against the current system state and prints
which ones a run would apply. Nothing is changed.`,
	RunE: runPlan,
}

var planOnly []string

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringSliceVar(&planOnly, "only", nil, "restrict to the named providers")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	p, err := newApp(planOnly)
	if err != nil {
		return err
	}

	_, err = p.Plan(cmd.Context())
	return err
}

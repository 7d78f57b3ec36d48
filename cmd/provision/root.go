package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/provis-dev/provision/internal/app"
	"github.com/provis-dev/provision/internal/domain/state"
)

// Exit codes: 0 on success, 1 when provisioning failed, 2 for usage
// and configuration errors.
const (
	exitOK     = 0
	exitRun    = 1
	exitConfig = 2
)

// errRunFailed marks a run that completed with step failures; the
// details were already printed with the results.
var errRunFailed = errors.New("provisioning failed")

var (
	// Global flags
	manifestPath string
	stateDir     string
	verbose      bool
	logJSON      bool
	assumeYes    bool
)

var rootCmd = &cobra.Command{
	Use:   "provision",
	Short: "An idempotent workstation provisioner",
	Long: `Provision applies a declarative manifest to this machine.

Every step checks the system first and only applies what is missing,
so repeated runs converge instead of piling up changes. Changes made
by a run are journaled and can be reversed with 'provision uninstall'.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errRunFailed) {
		printError(err)
	}
	return exitCode(err)
}

// exitCode maps an error to the process exit code. Corrupt state is a
// run failure, not a usage error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errRunFailed), errors.Is(err, state.ErrStateCorrupt):
		return exitRun
	default:
		return exitConfig
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "provision.yaml", "path to the manifest")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "override the journal and lock directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit JSON logs")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "auto-confirm all prompts")

	rootCmd.AddCommand(versionCmd)
}

// newApp builds the application from the global flags.
func newApp(only []string) (*app.Provision, error) {
	return app.New(os.Stdout, app.Options{
		ManifestPath: manifestPath,
		StateDir:     stateDir,
		Only:         only,
		AssumeYes:    assumeYes,
		Verbose:      verbose,
		LogJSON:      logJSON,
	})
}

// printError prints an error message to stderr.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", err)
}

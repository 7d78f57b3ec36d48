// Package app wires the provisioning engine to its adapters and
// providers and exposes the operations the CLI invokes.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/provis-dev/provision/internal/adapters/command"
	"github.com/provis-dev/provision/internal/adapters/logging"
	"github.com/provis-dev/provision/internal/adapters/prompt"
	"github.com/provis-dev/provision/internal/adapters/statefile"
	"github.com/provis-dev/provision/internal/domain/engine"
	"github.com/provis-dev/provision/internal/domain/manifest"
	"github.com/provis-dev/provision/internal/domain/platform"
	"github.com/provis-dev/provision/internal/domain/settings"
	"github.com/provis-dev/provision/internal/domain/step"
	"github.com/provis-dev/provision/internal/ports"
	"github.com/provis-dev/provision/internal/provider/aur"
	"github.com/provis-dev/provision/internal/provider/files"
	"github.com/provis-dev/provision/internal/provider/groups"
	"github.com/provis-dev/provision/internal/provider/pacman"
	"github.com/provis-dev/provision/internal/provider/require"
	"github.com/provis-dev/provision/internal/provider/systemd"
	"github.com/provis-dev/provision/internal/provider/zypper"
)

// Options configures a Provision application.
type Options struct {
	// ManifestPath is the manifest to provision from.
	ManifestPath string
	// StateDir overrides the journal and lock directory.
	StateDir string
	// Only restricts the run to the named step IDs; a bare provider
	// name selects every step of that provider.
	Only []string
	// AssumeYes answers every confirmation with yes.
	AssumeYes bool
	// Verbose lowers the log level to debug.
	Verbose bool
	// LogJSON switches to JSON logging.
	LogJSON bool
}

// Provision is the main application orchestrator.
type Provision struct {
	platform  *platform.Platform
	settings  settings.Settings
	runner    ports.CommandRunner
	prompter  ports.Prompter
	logger    ports.Logger
	providers []engine.Provider
	opts      Options
	out       io.Writer
}

// New creates a Provision application writing human output to out.
func New(out io.Writer, opts Options) (*Provision, error) {
	cfg, err := settings.Load(platform.DefaultSettingsPath())
	if err != nil {
		return nil, err
	}

	if opts.AssumeYes || cfg.AssumeYes {
		opts.AssumeYes = true
	}
	if cfg.LogJSON {
		opts.LogJSON = true
	}
	if opts.StateDir == "" {
		opts.StateDir = cfg.StateDir
	}

	level := ports.LevelInfo
	if opts.Verbose {
		level = ports.LevelDebug
	}
	var logger ports.Logger
	if opts.LogJSON {
		logger = logging.NewZerologLogger(os.Stderr, level)
	} else {
		logger = logging.NewConsoleLogger(logging.WithLevel(level))
	}

	var prompter ports.Prompter
	if opts.AssumeYes {
		prompter = prompt.NewStaticPrompter(true, nil)
	} else {
		prompter = prompt.NewTerminalPrompter()
	}

	runner := command.NewRealRunner()
	host := platform.Detect()

	p := &Provision{
		platform: host,
		settings: cfg,
		runner:   runner,
		prompter: prompter,
		logger:   logger,
		opts:     opts,
		out:      out,
	}
	p.providers = p.registerProviders()

	return p, nil
}

// registerProviders builds the provider list for the detected host.
// Order matters: preconditions first, then packages so that later unit
// and file steps can rely on installed software.
func (p *Provision) registerProviders() []engine.Provider {
	providers := []engine.Provider{
		require.NewProvider(p.runner),
	}

	switch kind, ok := p.platform.NativePackageManager(); {
	case ok && kind == platform.PkgPacman:
		providers = append(providers, pacman.NewProvider(p.runner))
		helper, err := aur.ParseHelper(p.settings.AURHelper, aur.HelperParu)
		if err != nil {
			helper = aur.HelperParu
		}
		providers = append(providers, aur.NewProvider(p.runner, helper))
	case ok && kind == platform.PkgZypper:
		providers = append(providers, zypper.NewProvider(p.runner))
	}

	providers = append(providers,
		groups.NewProvider(p.runner, p.prompter),
		files.NewProvider(p.prompter),
		systemd.NewProvider(p.runner),
	)
	return providers
}

// CompileSteps loads the manifest, fills the manifest-wide policy from
// settings when unset, and compiles the ordered step list, applying
// any --only filter.
func (p *Provision) CompileSteps() ([]step.Step, error) {
	m, err := manifest.Load(p.opts.ManifestPath)
	if err != nil {
		return nil, err
	}
	if m.Defaults.Policy == "" {
		m.Defaults.Policy = p.settings.DefaultPolicy
	}

	steps, err := engine.CompileAll(m, p.providers)
	if err != nil {
		return nil, fmt.Errorf("failed to compile manifest: %w", err)
	}

	if len(p.opts.Only) > 0 {
		steps = filterSteps(steps, p.opts.Only)
	}
	return steps, nil
}

// filterSteps keeps steps selected by --only: an exact step ID, or a
// provider name selecting every step of that provider.
func filterSteps(steps []step.Step, only []string) []step.Step {
	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		wanted[strings.TrimSpace(name)] = true
	}

	out := make([]step.Step, 0, len(steps))
	for _, s := range steps {
		if wanted[s.ID().String()] || wanted[s.ID().Provider()] {
			out = append(out, s)
		}
	}
	return out
}

// Run provisions the host: every unsatisfied step is applied in
// declared order under the run lock.
func (p *Provision) Run(ctx context.Context) (engine.RunResult, error) {
	steps, err := p.CompileSteps()
	if err != nil {
		return engine.RunResult{}, err
	}

	lock, store, err := p.openState()
	if err != nil {
		return engine.RunResult{}, err
	}
	defer func() {
		_ = store.Close()
		_ = lock.Release()
	}()

	runner := engine.NewRunner(store, p.logger)
	result := runner.Execute(ctx, steps)
	p.PrintResults(result)
	return result, nil
}

// DryRun reports what Run would do without mutating the system or the
// journal.
func (p *Provision) DryRun(ctx context.Context) (engine.RunResult, error) {
	steps, err := p.CompileSteps()
	if err != nil {
		return engine.RunResult{}, err
	}

	runner := engine.NewRunner(nil, p.logger)
	result := runner.DryRun(ctx, steps)
	p.PrintResults(result)
	fmt.Fprintln(p.out, "\nDry run: no changes were made.")
	return result, nil
}

// Plan checks every step and prints what a run would do.
func (p *Provision) Plan(ctx context.Context) (*engine.Plan, error) {
	steps, err := p.CompileSteps()
	if err != nil {
		return nil, err
	}

	plan := engine.NewPlanner().Plan(ctx, steps)
	p.PrintPlan(plan)
	return plan, nil
}

// Uninstall reverts recorded changes in reverse declared order.
func (p *Provision) Uninstall(ctx context.Context) (engine.RunResult, error) {
	steps, err := p.CompileSteps()
	if err != nil {
		return engine.RunResult{}, err
	}

	lock, store, err := p.openState()
	if err != nil {
		return engine.RunResult{}, err
	}
	defer func() {
		_ = store.Close()
		_ = lock.Release()
	}()

	runner := engine.NewRunner(store, p.logger)
	result := runner.Uninstall(ctx, steps)
	p.PrintResults(result)
	return result, nil
}

// Status prints the journal's live records.
func (p *Provision) Status() error {
	store, err := statefile.OpenJournal(p.journalPath(), "")
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	p.PrintStatus(store)
	return nil
}

// openState acquires the run lock and opens the journal. The lock is
// taken first so two invocations never share the journal file.
func (p *Provision) openState() (*statefile.RunLock, *statefile.JournalStore, error) {
	lock, err := statefile.AcquireRunLock(p.lockPath())
	if err != nil {
		return nil, nil, err
	}

	store, err := statefile.OpenJournal(p.journalPath(), uuid.NewString())
	if err != nil {
		_ = lock.Release()
		return nil, nil, err
	}
	return lock, store, nil
}

func (p *Provision) stateDir() string {
	if p.opts.StateDir != "" {
		return p.opts.StateDir
	}
	return platform.StateDir()
}

func (p *Provision) journalPath() string {
	return filepath.Join(p.stateDir(), "journal.yaml")
}

func (p *Provision) lockPath() string {
	return filepath.Join(p.stateDir(), "run.lock")
}

package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/provis-dev/provision/internal/adapters/statefile"
	"github.com/provis-dev/provision/internal/domain/engine"
	"github.com/provis-dev/provision/internal/domain/step"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle = lipgloss.NewStyle().Bold(true)
)

// PrintPlan outputs a human-readable plan summary.
func (p *Provision) PrintPlan(plan *engine.Plan) {
	summary := plan.Summary()

	p.printf("%s\n\n", headerStyle.Render("Provisioning plan"))

	if !plan.HasChanges() {
		p.printf("%s\n", okStyle.Render("Nothing to do. The system matches the manifest."))
		return
	}

	p.printf("Steps: %d total, %d to apply, %d satisfied",
		summary.Total, summary.NeedsApply, summary.Satisfied)
	if summary.Unknown > 0 {
		p.printf(", %d unknown", summary.Unknown)
	}
	p.printf("\n\n")

	for _, entry := range plan.Entries() {
		marker := okStyle.Render("✓")
		switch entry.Status() {
		case step.StatusNeedsApply:
			marker = warnStyle.Render("+")
		case step.StatusUnknown:
			marker = warnStyle.Render("?")
		}
		p.printf("  %s %s\n", marker, entry.Step().Label())
		if entry.CheckErr() != nil {
			p.printf("      %s\n", dimStyle.Render("check: "+entry.CheckErr().Error()))
		}
	}
}

// PrintResults outputs per-step outcomes and a run summary.
func (p *Provision) PrintResults(result engine.RunResult) {
	var applied, satisfied, failed, skipped, reverted int

	p.printf("\n")
	for _, res := range result.Results {
		switch res.Outcome() {
		case engine.OutcomeApplied:
			applied++
			p.printf("  %s %s\n", okStyle.Render("✓ applied"), res.Label())
		case engine.OutcomeAlreadySatisfied:
			satisfied++
			p.printf("  %s %s\n", okStyle.Render("✓ ok"), res.Label())
		case engine.OutcomeWouldApply:
			applied++
			p.printf("  %s %s\n", warnStyle.Render("+ would apply"), res.Label())
		case engine.OutcomeReverted:
			reverted++
			p.printf("  %s %s\n", okStyle.Render("✓ reverted"), res.Label())
		case engine.OutcomeSkipped:
			skipped++
			p.printf("  %s %s\n", dimStyle.Render("- skipped"), res.Label())
		case engine.OutcomeFailed:
			failed++
			p.printf("  %s %s\n", failStyle.Render("✗ failed"), res.Label())
			if res.Error() != nil {
				p.printf("      %s\n", failStyle.Render(res.Error().Error()))
			}
			if res.Output() != "" {
				for _, line := range strings.Split(strings.TrimSpace(res.Output()), "\n") {
					p.printf("      %s\n", dimStyle.Render(line))
				}
			}
		}
	}

	p.printf("\n")
	parts := make([]string, 0, 5)
	if applied > 0 {
		parts = append(parts, fmt.Sprintf("%d applied", applied))
	}
	if satisfied > 0 {
		parts = append(parts, fmt.Sprintf("%d satisfied", satisfied))
	}
	if reverted > 0 {
		parts = append(parts, fmt.Sprintf("%d reverted", reverted))
	}
	if failed > 0 {
		parts = append(parts, failStyle.Render(fmt.Sprintf("%d failed", failed)))
	}
	if skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", skipped))
	}
	if len(parts) == 0 {
		parts = append(parts, "nothing to do")
	}
	p.printf("Summary: %s\n", strings.Join(parts, ", "))

	if result.Err != nil {
		p.printf("%s\n", failStyle.Render("Run aborted: "+result.Err.Error()))
	} else if result.Aborted {
		p.printf("%s\n", failStyle.Render("Run aborted after fatal step failure."))
	}
}

// PrintStatus lists the journal's live records per step.
func (p *Provision) PrintStatus(store *statefile.JournalStore) {
	ids := store.StepIDs()
	if len(ids) == 0 {
		p.printf("No recorded changes.\n")
		return
	}

	p.printf("%s\n\n", headerStyle.Render("Recorded changes"))
	for _, id := range ids {
		records := store.RecordsFor(id)
		p.printf("  %s\n", id)
		for _, rec := range records {
			detail := rec.Kind.String()
			if len(rec.Data) > 0 {
				pairs := make([]string, 0, len(rec.Data))
				for k, v := range rec.Data {
					pairs = append(pairs, k+"="+v)
				}
				sort.Strings(pairs)
				detail += " (" + strings.Join(pairs, " ") + ")"
			}
			p.printf("    %s %s\n", dimStyle.Render(rec.RecordedAt.Format("2006-01-02 15:04")), detail)
		}
	}
}

func (p *Provision) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

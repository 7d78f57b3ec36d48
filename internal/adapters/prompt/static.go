package prompt

import (
	"context"

	"github.com/provis-dev/provision/internal/ports"
)

// StaticPrompter answers without a terminal: confirmations resolve to
// a fixed answer and inputs come from a preset map. It backs --yes and
// any run without a controlling terminal.
type StaticPrompter struct {
	confirmAll bool
	answers    map[string]string
}

// NewStaticPrompter creates a non-interactive prompter. confirmAll
// decides every yes/no question; answers maps prompt messages to
// preset input values.
func NewStaticPrompter(confirmAll bool, answers map[string]string) *StaticPrompter {
	return &StaticPrompter{confirmAll: confirmAll, answers: answers}
}

// Confirm resolves without blocking.
func (p *StaticPrompter) Confirm(_ context.Context, _ string, defaultYes bool) (bool, error) {
	if p.confirmAll {
		return true, nil
	}
	return defaultYes, nil
}

// Input returns the preset answer for the message, or the default.
func (p *StaticPrompter) Input(_ context.Context, message, defaultValue string) (string, error) {
	if answer, ok := p.answers[message]; ok {
		return answer, nil
	}
	return defaultValue, nil
}

// Ensure StaticPrompter implements ports.Prompter.
var _ ports.Prompter = (*StaticPrompter)(nil)

package mocks

import (
	"context"
	"sync"

	"github.com/provis-dev/provision/internal/ports"
)

// Prompter is a test double for ports.Prompter with scripted answers.
type Prompter struct {
	mu       sync.Mutex
	confirms map[string]bool
	inputs   map[string]string
	// ConfirmDefault answers unscripted confirms.
	ConfirmDefault bool
	// Err, when set, is returned by every call.
	Err error

	ConfirmCalls []string
	InputCalls   []string
}

// NewPrompter creates a new Prompter mock.
func NewPrompter() *Prompter {
	return &Prompter{
		confirms: make(map[string]bool),
		inputs:   make(map[string]string),
	}
}

// SetConfirm scripts the answer for a confirm message.
func (m *Prompter) SetConfirm(message string, answer bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirms[message] = answer
}

// SetInput scripts the answer for an input message.
func (m *Prompter) SetInput(message, answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs[message] = answer
}

// Confirm returns the scripted answer, or ConfirmDefault.
func (m *Prompter) Confirm(_ context.Context, message string, defaultYes bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfirmCalls = append(m.ConfirmCalls, message)
	if m.Err != nil {
		return false, m.Err
	}
	if answer, ok := m.confirms[message]; ok {
		return answer, nil
	}
	if m.ConfirmDefault {
		return true, nil
	}
	return defaultYes, nil
}

// Input returns the scripted answer, or the default value.
func (m *Prompter) Input(_ context.Context, message, defaultValue string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InputCalls = append(m.InputCalls, message)
	if m.Err != nil {
		return "", m.Err
	}
	if answer, ok := m.inputs[message]; ok {
		return answer, nil
	}
	return defaultValue, nil
}

// Ensure Prompter implements ports.Prompter.
var _ ports.Prompter = (*Prompter)(nil)

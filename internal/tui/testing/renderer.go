// Package testing provides test utilities for TUI models.
package testing

import (
	tea "github.com/charmbracelet/bubbletea"
)

// TestRenderer captures the output of a Bubble Tea model without requiring a real terminal.
type TestRenderer struct {
	// Output contains the last rendered view
	Output string

	// Commands contains all non-nil commands returned by Update calls
	Commands []tea.Cmd

	// Messages contains all messages sent to the model
	Messages []tea.Msg

	// UpdateCount tracks how many times Update was called
	UpdateCount int
}

// NewTestRenderer creates a new test renderer.
func NewTestRenderer() *TestRenderer {
	return &TestRenderer{
		Commands: make([]tea.Cmd, 0),
		Messages: make([]tea.Msg, 0),
	}
}

// Render renders a model and captures its output.
func (r *TestRenderer) Render(model tea.Model) string {
	r.Output = model.View()
	return r.Output
}

// Update sends a message to the model and captures the result.
func (r *TestRenderer) Update(model tea.Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	r.Messages = append(r.Messages, msg)
	r.UpdateCount++

	newModel, cmd := model.Update(msg)
	if cmd != nil {
		r.Commands = append(r.Commands, cmd)
	}

	r.Output = newModel.View()

	return newModel, cmd
}

// LastCommand returns the most recent command, or nil if no commands were generated.
func (r *TestRenderer) LastCommand() tea.Cmd {
	if len(r.Commands) == 0 {
		return nil
	}
	return r.Commands[len(r.Commands)-1]
}

// PlainOutput returns the last output without styling.
func (r *TestRenderer) PlainOutput() string {
	return PlainView(r.Output)
}

// Reset clears all captured data.
func (r *TestRenderer) Reset() {
	r.Output = ""
	r.Commands = nil
	r.Messages = nil
	r.UpdateCount = 0
}

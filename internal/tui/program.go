package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dillkhalifa/price-sniffer/internal/common"
	"github.com/dillkhalifa/price-sniffer/internal/session"
)

// Program runs the interactive price search UI.
type Program struct {
	program *tea.Program
	model   Model
}

// New creates the UI program. A dispatcher is required.
func New(ctx context.Context, opts ...Option) (*Program, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.Context = ctx

	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("%w: dispatcher is required", common.ErrMissingConfig)
	}

	m := newModel(cfg)
	return &Program{
		model: m,
		program: tea.NewProgram(
			m,
			tea.WithContext(ctx),
			tea.WithAltScreen(),
		),
	}, nil
}

// Start runs the UI until the user quits and returns the final session.
func (p *Program) Start() (*session.Session, error) {
	final, err := p.program.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run TUI: %w", err)
	}
	if m, ok := final.(Model); ok {
		return m.Session(), nil
	}
	return p.model.Session(), nil
}

// Model returns the initial model for testing.
func (p *Program) Model() Model {
	return p.model
}

package tui

import (
	"context"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dillkhalifa/price-sniffer/internal/common"
	"github.com/dillkhalifa/price-sniffer/internal/dispatch"
	"github.com/dillkhalifa/price-sniffer/internal/session"
	"github.com/dillkhalifa/price-sniffer/internal/tui/themes"
	"github.com/dillkhalifa/price-sniffer/internal/tui/viewmodel"
)

// Model holds the main TUI state. It owns one search session and is the
// only code that mutates it.
type Model struct {
	ctx        context.Context
	dispatcher dispatch.Dispatcher
	logger     *slog.Logger
	session    *session.Session
	theme      themes.Theme
	notice     string
	results    viewmodel.ResultsView
	config     Config
	keymap     KeyMap
	help       help.Model
	picker     filepicker.Model
	input      textinput.Model
	spinner    spinner.Model
	width      int
	height     int
	picking    bool
	noticeErr  bool
	showHelp   bool
	quitting   bool
}

// newModel creates a new model with the given configuration.
func newModel(cfg Config) Model {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	input := textinput.New()
	input.Placeholder = "Search for a product, e.g. sony wh-1000xm5"
	input.CharLimit = 200
	input.Prompt = "› "
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(cfg.Theme.Primary)

	picker := filepicker.New()
	picker.AllowedTypes = cfg.ImageTypes
	picker.CurrentDirectory = cfg.BrowseDir
	picker.Styles.Selected = lipgloss.NewStyle().Foreground(cfg.Theme.Primary).Bold(true)
	picker.Styles.Cursor = lipgloss.NewStyle().Foreground(cfg.Theme.Primary)

	h := help.New()
	h.Width = cfg.Width

	return Model{
		ctx:        ctx,
		dispatcher: cfg.Dispatcher,
		logger:     logger,
		session:    session.New(),
		theme:      cfg.Theme,
		config:     cfg,
		keymap:     DefaultKeyMap(),
		help:       h,
		picker:     picker,
		input:      input,
		spinner:    s,
		width:      cfg.Width,
		height:     cfg.Height,
		results:    viewmodel.ResultsView{BestIndex: -1},
		showHelp:   cfg.ShowHelp,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		if m.picking {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}
		return m, nil

	case searchCompletedMsg:
		m.handleSearchCompleted(msg)
		return m, nil

	case imageLoadedMsg:
		cmd := m.handleImageLoaded(msg)
		return m, cmd

	case chartExportedMsg:
		m.handleChartExported(msg)
		return m, nil

	case spinner.TickMsg:
		if m.session.Status() != session.StatusSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Remaining messages belong to the active component.
	var cmd tea.Cmd
	if m.picking {
		m.picker, cmd = m.picker.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.picking {
		return m.wrapWithBorder(m.renderPicker())
	}

	var content string
	switch m.screen() {
	case viewmodel.ScreenSearching:
		content = m.renderSearching()
	case viewmodel.ScreenResults:
		content = m.renderResults()
	case viewmodel.ScreenFailed:
		content = m.renderFailed()
	default:
		content = m.renderSearch()
	}

	return m.wrapWithBorder(content)
}

// Session exposes the session for callers that inspect the final state.
func (m Model) Session() *session.Session {
	return m.session
}

func (m Model) screen() viewmodel.Screen {
	return viewmodel.ScreenFor(m.session.Status())
}

// handleKey routes key presses for the active screen.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.session.Cancel()
		m.quitting = true
		return m, tea.Quit
	}

	if m.picking {
		return m.handlePickerKey(msg)
	}

	switch m.screen() {
	case viewmodel.ScreenSearch:
		return m.handleSearchKey(msg)

	case viewmodel.ScreenSearching:
		if key.Matches(msg, m.keymap.Cancel) && m.session.Cancel() {
			m.logger.Debug("search canceled by user")
		}
		return m, nil

	default:
		return m.handleOutcomeKey(msg)
	}
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Submit):
		cmd := m.submit()
		return m, cmd

	case key.Matches(msg, m.keymap.OpenImage):
		m.picking = true
		m.notice = ""
		m.handleResize()
		return m, m.picker.Init()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.SetText(m.input.Value())
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ClosePicker) {
		m.picking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		return m, tea.Batch(cmd, loadImageCmd(path))
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.setNotice("Not an image: "+path, true)
	}
	return m, cmd
}

// handleOutcomeKey handles keys on the results and failure screens.
func (m Model) handleOutcomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Reset):
		m.reset()
		return m, textinput.Blink

	case key.Matches(msg, m.keymap.Export) && m.screen() == viewmodel.ScreenResults:
		if len(m.results.Chart) == 0 {
			m.setNotice("Nothing to export", true)
			return m, nil
		}
		path := exportPath(m.config.ExportDir, m.results.Query)
		return m, exportChartCmd(m.results.Chart, m.results.Title(), path)

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// submit starts a search for the current query. Empty queries and
// submissions while a search is outstanding are ignored.
func (m *Model) submit() tea.Cmd {
	ticket, ok := m.session.Submit(m.ctx)
	if !ok {
		return nil
	}
	return m.startSearch(ticket)
}

func (m *Model) startSearch(ticket session.Ticket) tea.Cmd {
	m.notice = ""
	m.logger.Debug("search started", "ticket", ticket.ID, "query", ticket.Query.Label())

	if m.dispatcher == nil {
		m.session.Fail(ticket.ID, common.ErrMissingConfig)
		return nil
	}
	return tea.Batch(m.spinner.Tick, searchCmd(m.dispatcher, ticket))
}

func (m *Model) handleSearchCompleted(msg searchCompletedMsg) {
	var applied bool
	if msg.err != nil {
		applied = m.session.Fail(msg.ticketID, msg.err)
	} else {
		applied = m.session.Complete(msg.ticketID, msg.result)
	}

	if !applied {
		m.logger.Debug("dropping stale search response", "ticket", msg.ticketID)
		return
	}

	if msg.err != nil {
		m.logger.Debug("search failed", "ticket", msg.ticketID, "kind", common.Classify(msg.err), "error", msg.err)
		return
	}

	m.results = viewmodel.NewResultsView(m.session.Result(), m.config.ChartSize)
	m.logger.Debug("search completed", "ticket", msg.ticketID, "deals", m.results.DealCount())
}

func (m *Model) handleImageLoaded(msg imageLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Debug("failed to read image", "path", msg.path, "error", msg.err)
		m.setNotice("Could not read image: "+msg.err.Error(), true)
		return nil
	}

	ticket, ok := m.session.SetImage(m.ctx, msg.image)
	if !ok {
		return nil
	}
	return m.startSearch(ticket)
}

func (m *Model) handleChartExported(msg chartExportedMsg) {
	if msg.err != nil {
		m.logger.Debug("chart export failed", "path", msg.path, "error", msg.err)
		m.setNotice("Export failed: "+msg.err.Error(), true)
		return
	}
	m.setNotice("Chart saved to "+msg.path, false)
}

// reset returns to an empty search screen.
func (m *Model) reset() {
	m.session.Reset()
	m.input.Reset()
	m.input.Focus()
	m.results = viewmodel.ResultsView{BestIndex: -1}
	m.notice = ""
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

// handleResize adjusts component sizes when terminal resizes.
func (m *Model) handleResize() {
	usable := max(m.width-8, 20)
	m.input.Width = usable - 4
	m.help.Width = usable
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/dillkhalifa/price-sniffer/internal/common"
	"github.com/dillkhalifa/price-sniffer/internal/tui/viewmodel"
)

const (
	appTitle      = "PriceSniffer"
	appTagline    = "Compare prices across merchants by name or photo"
	labelWidth    = 16
	minBarWidth   = 10
	noDealsText   = "0 deals found"
	bestDealText  = "BEST DEAL"
	canceledText  = "Search canceled."
	maxTitleWidth = 48
)

// renderSearch renders the query input screen.
func (m Model) renderSearch() string {
	sections := []string{
		m.theme.Title.Render(appTitle),
		m.theme.Subtitle.Render(appTagline),
		m.theme.RoundedBox.Width(m.contentWidth()).Render(m.input.View()),
	}

	if q := m.session.Query(); q.HasImage() {
		sections = append(sections, m.theme.StatusPending.Render("Image: "+q.Image.Name))
	}
	if n := m.renderNotice(); n != "" {
		sections = append(sections, "", n)
	}

	sections = append(sections, "", m.renderHelp(m.keymap.Submit, m.keymap.OpenImage, m.keymap.ForceQuit))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderSearching renders progress while a request is outstanding.
func (m Model) renderSearching() string {
	label := m.session.Query().Label()
	line := fmt.Sprintf("%s Searching for %s...", m.spinner.View(), m.theme.Bold.Render(viewmodel.TruncateString(label, maxTitleWidth)))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.Title.Render(appTitle),
		line,
		"",
		m.theme.StatusPending.Render("Checking merchants, this can take a few seconds."),
		"",
		m.renderHelp(m.keymap.Cancel, m.keymap.ForceQuit),
	)
}

// renderResults renders statistics, the comparison chart and the offers.
func (m Model) renderResults() string {
	rv := m.results

	sections := []string{m.theme.Title.Render(rv.Title())}
	if rv.Source != "" {
		sections = append(sections, m.theme.StatusPending.Render("Source: "+rv.Source))
	}
	sections = append(sections, m.renderStats(rv.Stats), "")

	if !rv.HasDeals() {
		sections = append(sections, m.theme.StatusWarning.Render(noDealsText))
	} else {
		sections = append(sections,
			m.theme.Bold.Render(fmt.Sprintf("Top %d Prices", len(rv.Chart))),
			m.renderChart(rv),
			"",
			m.theme.Bold.Render(fmt.Sprintf("%d deals found", rv.DealCount())),
			m.renderDeals(rv),
		)
	}

	if n := m.renderNotice(); n != "" {
		sections = append(sections, "", n)
	}

	if m.showHelp {
		sections = append(sections, "", m.renderHelp(m.keymap.Reset, m.keymap.Export, m.keymap.Quit))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderStats renders the summary statistics on one line.
func (m Model) renderStats(sv viewmodel.StatsView) string {
	parts := make([]string, 0, 3)
	for _, line := range sv.Lines() {
		parts = append(parts, fmt.Sprintf("%s %s",
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render(line.Label+":"),
			m.theme.Price.Render(line.Value)))
	}
	return strings.Join(parts, "   ")
}

// renderChart renders the chart series as horizontal bars.
func (m Model) renderChart(rv viewmodel.ResultsView) string {
	highest := rv.MaxChartPrice()
	barWidth := max(m.contentWidth()-labelWidth-14, minBarWidth)

	lines := make([]string, 0, len(rv.Chart))
	for i, p := range rv.Chart {
		filled := viewmodel.BarLength(p.Price, highest, barWidth)
		style := m.theme.OfferBar
		if rv.IsBestDeal(i) {
			style = m.theme.BestDealBar
		}

		label := fmt.Sprintf("%-*s", labelWidth, viewmodel.TruncateString(p.Merchant, labelWidth))
		bar := style.Render(strings.Repeat("█", filled)) +
			m.theme.BarTrack.Render(strings.Repeat("░", barWidth-filled))
		lines = append(lines, fmt.Sprintf("%s %s %s", label, bar, viewmodel.FormatPrice(p.Price, rv.Stats.Currency)))
	}
	return strings.Join(lines, "\n")
}

// renderDeals renders the offer list with the best deal badge.
func (m Model) renderDeals(rv viewmodel.ResultsView) string {
	lines := make([]string, 0, len(rv.Deals)*2)
	for i, d := range rv.Deals {
		head := fmt.Sprintf("%2d. %s  %s  %s",
			i+1,
			m.theme.Price.Render(d.Price),
			m.theme.Bold.Render(viewmodel.SanitizeForDisplay(d.Merchant)),
			m.theme.Normal.Render(viewmodel.TruncateString(viewmodel.SanitizeForDisplay(d.Title), maxTitleWidth)))
		if rv.IsBestDeal(i) {
			head += "  " + m.theme.BestDealBadge.Render(bestDealText)
		}
		lines = append(lines, head)
		if d.Link != "" {
			lines = append(lines, "    "+m.theme.Link.Render(d.Link))
		}
	}
	return strings.Join(lines, "\n")
}

// renderFailed renders the failure notice.
func (m Model) renderFailed() string {
	text := common.UserMessage(m.session.Err())
	if common.Classify(m.session.Err()) == common.FailureCanceled {
		text = canceledText
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.Title.Render(appTitle),
		m.theme.StatusError.Render(text),
		"",
		m.renderHelp(m.keymap.Reset, m.keymap.Quit),
	)
}

// renderPicker renders the image file picker.
func (m Model) renderPicker() string {
	sections := []string{
		m.theme.Title.Render("Select an image"),
		m.theme.StatusPending.Render(m.picker.CurrentDirectory),
		m.picker.View(),
	}
	if n := m.renderNotice(); n != "" {
		sections = append(sections, n)
	}
	sections = append(sections, "", m.renderHelp(m.keymap.PickerNav, m.keymap.ClosePicker))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderNotice() string {
	if m.notice == "" {
		return ""
	}
	if m.noticeErr {
		return m.theme.StatusWarning.Render(m.notice)
	}
	return m.theme.StatusSuccess.Render(m.notice)
}

func (m Model) renderHelp(bindings ...key.Binding) string {
	return m.help.ShortHelpView(bindings)
}

// contentWidth is the usable width inside the border and padding.
func (m Model) contentWidth() int {
	return max(m.width-8, 20)
}

// wrapWithBorder adds a border around content.
func (m Model) wrapWithBorder(content string) string {
	fullContent := lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		"",
		m.renderStatusBar(),
	)

	return m.theme.BorderedBox.
		Width(m.width - 2).
		Render(fullContent)
}

// renderStatusBar renders the bottom status bar.
func (m Model) renderStatusBar() string {
	left := m.screen().String()
	if m.picking {
		left = "Image"
	}

	var right string
	switch m.screen() {
	case viewmodel.ScreenResults:
		right = fmt.Sprintf("%d deals", m.results.DealCount())
	case viewmodel.ScreenFailed:
		right = string(common.Classify(m.session.Err()))
	}

	totalWidth := m.contentWidth()
	spacing := max(totalWidth-lipgloss.Width(left)-lipgloss.Width(right), 1)

	status := fmt.Sprintf("%s%s%s",
		m.theme.StatusInfo.Render(left),
		strings.Repeat(" ", spacing),
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render(right),
	)

	return lipgloss.NewStyle().
		MaxWidth(totalWidth).
		Render(status)
}

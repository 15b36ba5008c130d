package tui

import (
	"path/filepath"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dillkhalifa/price-sniffer/internal/chart"
	"github.com/dillkhalifa/price-sniffer/internal/dispatch"
	"github.com/dillkhalifa/price-sniffer/internal/model"
	"github.com/dillkhalifa/price-sniffer/internal/session"
)

// searchCmd runs the exchange for ticket off the event loop.
func searchCmd(d dispatch.Dispatcher, ticket session.Ticket) tea.Cmd {
	return func() tea.Msg {
		result, err := d.Dispatch(ticket.Ctx, ticket.Query)
		return searchCompletedMsg{
			ticketID: ticket.ID,
			result:   result,
			err:      err,
		}
	}
}

// loadImageCmd reads the picked file into an image payload.
func loadImageCmd(path string) tea.Cmd {
	return func() tea.Msg {
		image, err := model.ReadImage(path)
		return imageLoadedMsg{path: path, image: image, err: err}
	}
}

// exportChartCmd writes the chart series to a PNG file.
func exportChartCmd(points []model.ChartPoint, title, path string) tea.Cmd {
	return func() tea.Msg {
		err := chart.WriteFile(path, points, title)
		return chartExportedMsg{path: path, err: err}
	}
}

// exportPath builds the chart file name for query inside dir.
func exportPath(dir, query string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(query) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "chart"
	}
	return filepath.Join(dir, "prices-"+slug+".png")
}

package tui

import "github.com/dillkhalifa/price-sniffer/internal/model"

// Async operation messages.
type searchCompletedMsg struct {
	err      error
	result   *model.SearchResult
	ticketID uint64
}

type imageLoadedMsg struct {
	err   error
	image *model.Image
	path  string
}

type chartExportedMsg struct {
	err  error
	path string
}

package viewmodel

import "github.com/dillkhalifa/price-sniffer/internal/session"

// Screen identifies which screen the application shows.
type Screen int

const (
	// ScreenSearch shows the query input.
	ScreenSearch Screen = iota
	// ScreenSearching shows progress while a request is outstanding.
	ScreenSearching
	// ScreenResults shows the offers of a successful search.
	ScreenResults
	// ScreenFailed shows the failure notice.
	ScreenFailed
)

// ScreenFor maps a session status to the screen that displays it.
func ScreenFor(status session.Status) Screen {
	switch status {
	case session.StatusSubmitting:
		return ScreenSearching
	case session.StatusSucceeded:
		return ScreenResults
	case session.StatusFailed:
		return ScreenFailed
	default:
		return ScreenSearch
	}
}

package cli

import (
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// Spinner shows activity while a search is outstanding.
type Spinner struct {
	bar *progressbar.ProgressBar
}

// NewSpinner starts an indeterminate spinner on w with description.
func NewSpinner(w io.Writer, description string) *Spinner {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
	)
	return &Spinner{bar: bar}
}

// Tick advances the spinner animation.
func (s *Spinner) Tick() {
	if err := s.bar.Add(1); err != nil {
		slog.Warn("Failed to update spinner", "error", err)
	}
}

// Stop clears the spinner.
func (s *Spinner) Stop() {
	if err := s.bar.Finish(); err != nil {
		slog.Warn("Failed to finish spinner", "error", err)
	}
}

package tui

import (
	"context"
	"log/slog"

	"github.com/dillkhalifa/price-sniffer/internal/dispatch"
	"github.com/dillkhalifa/price-sniffer/internal/tui/themes"
	"github.com/dillkhalifa/price-sniffer/internal/tui/viewmodel"
)

// Config holds TUI configuration.
type Config struct {
	Context    context.Context
	Dispatcher dispatch.Dispatcher
	Logger     *slog.Logger
	Theme      themes.Theme
	ExportDir  string
	BrowseDir  string
	ImageTypes []string
	ChartSize  int
	Width      int
	Height     int
	ShowHelp   bool
}

// DefaultImageTypes are the extensions offered by the image picker.
var DefaultImageTypes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".heic"}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Context:    context.Background(),
		Theme:      themes.Default,
		ChartSize:  viewmodel.DefaultChartSize,
		ExportDir:  ".",
		BrowseDir:  ".",
		ImageTypes: DefaultImageTypes,
		Width:      80,
		Height:     24,
		ShowHelp:   true,
	}
}

// WithDispatcher sets the client used to run searches.
func WithDispatcher(d dispatch.Dispatcher) Option {
	return func(c *Config) {
		c.Dispatcher = d
	}
}

// WithLogger sets the logger. It must not write to the terminal the TUI owns.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithChartSize sets how many offers are charted.
func WithChartSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.ChartSize = n
		}
	}
}

// WithExportDir sets where exported chart images are written.
func WithExportDir(dir string) Option {
	return func(c *Config) {
		if dir != "" {
			c.ExportDir = dir
		}
	}
}

// WithBrowseDir sets the directory the image picker opens in.
func WithBrowseDir(dir string) Option {
	return func(c *Config) {
		if dir != "" {
			c.BrowseDir = dir
		}
	}
}

// WithHelp toggles the key help footer.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}

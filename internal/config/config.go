// Package config provides configuration utilities for the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dillkhalifa/price-sniffer/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeyBaseURL       = "api.base_url"
	KeyTimeout       = "api.timeout"
	KeyChartTopN     = "chart.top_n"
	KeyLogLevel      = "logging.level"
	KeyLogFormat     = "logging.format"
	KeyLogFile       = "logging.file"
	KeyTheme         = "ui.theme"
	KeyExportDir     = "ui.export_dir"
	KeyLocale        = "ui.locale"
	DefaultBaseURL   = "http://localhost:8000"
	DefaultChartTopN = 5
	DefaultTheme     = "default"
	DefaultLocale    = "en-US"
)

// Client holds the settings needed to talk to the price-search service.
type Client struct {
	BaseURL   string
	Timeout   time.Duration // zero means no deadline
	ChartTopN int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeyChartTopN, DefaultChartTopN)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyTheme, DefaultTheme)
	v.SetDefault(KeyExportDir, ".")
	v.SetDefault(KeyLocale, DefaultLocale)
}

// UI holds presentation settings.
type UI struct {
	Theme     string
	ExportDir string
	Locale    string
}

// LoadUI reads the presentation settings from v. Paths are expanded.
func LoadUI(v *viper.Viper) UI {
	ui := UI{
		Theme:     strings.TrimSpace(v.GetString(KeyTheme)),
		ExportDir: ExpandPath(strings.TrimSpace(v.GetString(KeyExportDir))),
		Locale:    strings.TrimSpace(v.GetString(KeyLocale)),
	}
	if ui.Theme == "" {
		ui.Theme = DefaultTheme
	}
	if ui.ExportDir == "" {
		ui.ExportDir = "."
	}
	if ui.Locale == "" {
		ui.Locale = DefaultLocale
	}
	return ui
}

// LoadDotEnv loads variables from a .env file if one exists.
// A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		p = ExpandPath(p)
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadClient reads the client configuration from v.
func LoadClient(v *viper.Viper) (Client, error) {
	cfg := Client{
		BaseURL:   strings.TrimRight(strings.TrimSpace(v.GetString(KeyBaseURL)), "/"),
		Timeout:   v.GetDuration(KeyTimeout),
		ChartTopN: v.GetInt(KeyChartTopN),
	}

	if cfg.BaseURL == "" {
		return Client{}, fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyBaseURL)
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Client{}, fmt.Errorf("%w: %s must be an http(s) URL, got %q", common.ErrInvalidConfig, KeyBaseURL, cfg.BaseURL)
	}

	if cfg.Timeout < 0 {
		return Client{}, fmt.Errorf("%w: %s cannot be negative", common.ErrInvalidConfig, KeyTimeout)
	}

	if cfg.ChartTopN <= 0 {
		cfg.ChartTopN = DefaultChartTopN
	}

	return cfg, nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

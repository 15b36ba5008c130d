// Package chart renders price comparison charts as PNG images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/dillkhalifa/price-sniffer/internal/model"
)

// ErrNoData is returned when there is nothing to chart.
var ErrNoData = errors.New("no prices to chart")

// Bar colors.
var (
	BestDealColor = drawing.ColorFromHex("10b981")
	OfferColor    = drawing.ColorFromHex("6366f1")
)

// Image dimensions.
const (
	Width      = 1024
	Height     = 512
	barWidth   = 60
	barSpacing = 40
)

// RenderPNG draws points as a bar chart and writes the PNG to w.
// The first bar is the best deal and is drawn in BestDealColor.
func RenderPNG(w io.Writer, points []model.ChartPoint, title string) error {
	if len(points) == 0 {
		return ErrNoData
	}

	bars := make([]gochart.Value, 0, len(points))
	var highest float64
	for i, p := range points {
		color := OfferColor
		if i == 0 {
			color = BestDealColor
		}
		bars = append(bars, gochart.Value{
			Label: p.Merchant,
			Value: p.Price,
			Style: gochart.Style{
				FillColor:   color,
				StrokeColor: color,
				StrokeWidth: 1,
			},
		})
		highest = max(highest, p.Price)
	}

	// A single bar or all-equal prices leave go-chart with an empty range.
	top := highest * 1.1
	if top <= 0 {
		top = 1
	}

	bc := gochart.BarChart{
		Title:      title,
		Width:      Width,
		Height:     Height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: top},
			ValueFormatter: func(v any) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	if err := bc.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// WriteFile renders points to a PNG file at path, creating parent directories.
func WriteFile(path string, points []model.ChartPoint, title string) (err error) {
	if len(points) == 0 {
		return ErrNoData
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // path comes from the user
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close chart file: %w", cerr)
		}
	}()

	return RenderPNG(f, points, title)
}

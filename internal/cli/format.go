package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dillkhalifa/price-sniffer/internal/model"
	"github.com/dillkhalifa/price-sniffer/internal/tui/viewmodel"
)

const (
	chartLabelWidth = 18
	chartBarWidth   = 30
)

// PriceFormatter formats amounts with locale digit grouping.
type PriceFormatter struct {
	printer *message.Printer
}

// NewPriceFormatter creates a formatter for the given BCP 47 tag.
// Unknown tags fall back to English.
func NewPriceFormatter(tag string) PriceFormatter {
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.English
	}
	return PriceFormatter{printer: message.NewPrinter(lang)}
}

// Format renders amount with two decimals and a currency marker.
func (f PriceFormatter) Format(amount float64, currency string) string {
	num := f.printer.Sprintf("%.2f", amount)
	switch strings.ToUpper(currency) {
	case "", "USD":
		return "$" + num
	default:
		return num + " " + strings.ToUpper(currency)
	}
}

// RenderResults writes a styled summary of view to w.
func RenderResults(w io.Writer, view viewmodel.ResultsView, f PriceFormatter) error {
	var b strings.Builder

	b.WriteString(FormatTitle(view.Title()))
	b.WriteString("\n")
	if view.Source != "" {
		b.WriteString(SubtleStyle.Render("Source: " + view.Source))
		b.WriteString("\n")
	}

	stats := []string{
		"Lowest " + PriceStyle.Render(f.Format(view.Stats.Lowest, view.Stats.Currency)),
		"Average " + PriceStyle.Render(f.Format(view.Stats.Average, view.Stats.Currency)),
	}
	if view.Stats.HasHighest() {
		stats = append(stats, "Highest "+PriceStyle.Render(f.Format(view.Stats.Highest, view.Stats.Currency)))
	}
	b.WriteString(strings.Join(stats, "   "))
	b.WriteString("\n\n")

	if !view.HasDeals() {
		b.WriteString(FormatWarning("0 deals found"))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString(BoldStyle.Render(fmt.Sprintf("%s Top %d Prices", ChartIcon, len(view.Chart))))
	b.WriteString("\n")
	highest := view.MaxChartPrice()
	for i, p := range view.Chart {
		filled := viewmodel.BarLength(p.Price, highest, chartBarWidth)
		style := BarStyle
		if view.IsBestDeal(i) {
			style = BestBarStyle
		}
		fmt.Fprintf(&b, "%-*s %s%s %s\n",
			chartLabelWidth,
			viewmodel.TruncateString(p.Merchant, chartLabelWidth),
			style.Render(strings.Repeat("█", filled)),
			strings.Repeat(" ", chartBarWidth-filled),
			f.Format(p.Price, view.Stats.Currency))
	}

	b.WriteString("\n")
	b.WriteString(BoldStyle.Render(fmt.Sprintf("%d deals found", view.DealCount())))
	b.WriteString("\n")
	for i, d := range view.Deals {
		line := fmt.Sprintf("%2d. %s  %s  %s",
			i+1,
			PriceStyle.Render(d.Price),
			BoldStyle.Render(viewmodel.SanitizeForDisplay(d.Merchant)),
			viewmodel.SanitizeForDisplay(d.Title))
		if view.IsBestDeal(i) {
			line += "  " + BadgeStyle.Render("BEST DEAL")
		}
		b.WriteString(line)
		b.WriteString("\n")
		if d.Link != "" {
			b.WriteString("    " + SubtleStyle.Render(d.Link) + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON writes result as indented JSON.
func WriteJSON(w io.Writer, result *model.SearchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

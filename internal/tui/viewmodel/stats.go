package viewmodel

import "github.com/dillkhalifa/price-sniffer/internal/model"

// StatsView represents the summary statistics display data.
// Values are shown as received from the service.
type StatsView struct {
	Currency string
	Lowest   float64
	Average  float64
	Highest  float64
}

// StatLine is one labelled statistic.
type StatLine struct {
	Label string
	Value string
}

// NewStatsView converts service statistics for display.
func NewStatsView(stats model.Stats) StatsView {
	return StatsView{
		Currency: stats.Currency,
		Lowest:   stats.MinPrice,
		Average:  stats.AvgPrice,
		Highest:  stats.MaxPrice,
	}
}

// HasHighest returns true if the service reported a maximum price.
func (sv StatsView) HasHighest() bool {
	return sv.Highest > 0
}

// Lines returns the statistics in display order.
func (sv StatsView) Lines() []StatLine {
	lines := []StatLine{
		{Label: "Lowest Price", Value: FormatPrice(sv.Lowest, sv.Currency)},
		{Label: "Average Price", Value: FormatPrice(sv.Average, sv.Currency)},
	}
	if sv.HasHighest() {
		lines = append(lines, StatLine{Label: "Highest Price", Value: FormatPrice(sv.Highest, sv.Currency)})
	}
	return lines
}

package viewmodel

import "github.com/dillkhalifa/price-sniffer/internal/model"

// DefaultChartSize is the number of offers shown in the comparison chart.
const DefaultChartSize = 5

// TopChartSeries returns the first n offers of result, in service order,
// as chart points. Offers are never re-sorted.
func TopChartSeries(result *model.SearchResult, n int) []model.ChartPoint {
	if result == nil || n <= 0 {
		return []model.ChartPoint{}
	}

	n = min(n, len(result.Items))
	points := make([]model.ChartPoint, 0, n)
	for _, item := range result.Items[:n] {
		points = append(points, model.ChartPoint{
			Merchant: item.Merchant,
			Price:    item.Price,
		})
	}
	return points
}

// BestDealIndex returns the index of the offer to badge as the best deal.
// The service sorts offers cheapest first, so it is always the first one.
func BestDealIndex(result *model.SearchResult) (int, bool) {
	if result.DealCount() == 0 {
		return -1, false
	}
	return 0, true
}

// ResultsView represents the results screen display data.
type ResultsView struct {
	Query     string
	Source    string
	Deals     []DealView
	Chart     []model.ChartPoint
	Stats     StatsView
	BestIndex int
}

// DealView represents a single offer row.
type DealView struct {
	Merchant string
	Title    string
	Price    string
	ImageURL string
	Link     string
	Amount   float64
}

// NewResultsView projects result into display data with a chart of the
// first chartSize offers.
func NewResultsView(result *model.SearchResult, chartSize int) ResultsView {
	view := ResultsView{
		Chart:     TopChartSeries(result, chartSize),
		BestIndex: -1,
	}
	if result == nil {
		return view
	}

	view.Query = result.Query
	view.Source = result.Source
	view.Stats = NewStatsView(result.Stats)
	view.Deals = make([]DealView, 0, len(result.Items))
	for _, item := range result.Items {
		price := item.FormattedPrice
		if price == "" {
			price = FormatPrice(item.Price, result.Stats.Currency)
		}
		view.Deals = append(view.Deals, DealView{
			Merchant: item.Merchant,
			Title:    item.Title,
			Price:    price,
			ImageURL: item.DisplayImageURL(),
			Link:     item.Link,
			Amount:   item.Price,
		})
	}

	if idx, ok := BestDealIndex(result); ok {
		view.BestIndex = idx
	}
	return view
}

// HasDeals returns true if at least one offer was found.
func (rv ResultsView) HasDeals() bool {
	return len(rv.Deals) > 0
}

// DealCount returns the number of offers.
func (rv ResultsView) DealCount() int {
	return len(rv.Deals)
}

// IsBestDeal returns true if the offer at i carries the best deal badge.
func (rv ResultsView) IsBestDeal(i int) bool {
	return rv.BestIndex >= 0 && i == rv.BestIndex
}

// MaxChartPrice returns the highest price in the chart series.
func (rv ResultsView) MaxChartPrice() float64 {
	var highest float64
	for _, p := range rv.Chart {
		highest = max(highest, p.Price)
	}
	return highest
}

// Title returns the results heading.
func (rv ResultsView) Title() string {
	if rv.Query == "" {
		return "Prices"
	}
	return "Prices for " + rv.Query
}

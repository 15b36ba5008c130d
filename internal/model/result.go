package model

// SearchResult is the payload returned by the price-search service.
// Items arrive sorted ascending by price; nothing here re-sorts them.
type SearchResult struct {
	Query  string `json:"query"`
	Source string `json:"source,omitempty"`
	Items  []Item `json:"items"`
	Stats  Stats  `json:"stats"`
}

// Item is a single merchant offer.
type Item struct {
	ImageURL       *string `json:"image_url"`
	Merchant       string  `json:"merchant"`
	Title          string  `json:"title"`
	FormattedPrice string  `json:"formatted_price"`
	Link           string  `json:"link"`
	Price          float64 `json:"price"`
}

// Stats holds the summary statistics computed by the service.
// They are displayed as received and never recomputed.
type Stats struct {
	Currency string  `json:"currency,omitempty"`
	MinPrice float64 `json:"min_price"`
	AvgPrice float64 `json:"avg_price"`
	MaxPrice float64 `json:"max_price,omitempty"`
}

// ChartPoint is one bar of the price comparison chart.
type ChartPoint struct {
	Merchant string  `json:"merchant"`
	Price    float64 `json:"price"`
}

// DisplayImageURL returns the item image or a placeholder when none was sent.
func (i Item) DisplayImageURL() string {
	if i.ImageURL == nil || *i.ImageURL == "" {
		return PlaceholderImageURL
	}
	return *i.ImageURL
}

// PlaceholderImageURL is shown for offers without an image.
const PlaceholderImageURL = "https://placehold.co/200"

// DealCount returns the number of offers in the result.
func (r *SearchResult) DealCount() int {
	if r == nil {
		return 0
	}
	return len(r.Items)
}

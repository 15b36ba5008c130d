// Package fixture serves canned price search results over HTTP so the
// client can run without the real price service.
package fixture

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/dillkhalifa/price-sniffer/internal/common"
	"github.com/dillkhalifa/price-sniffer/internal/model"
)

// SourceFixture is reported as the result source.
const SourceFixture = "Fixture"

// DefaultImageQuery is searched when a request only carries an image.
const DefaultImageQuery = "iPhone 15"

//go:embed default.json
var defaultCatalog []byte

// Catalog holds canned results keyed by normalized query.
type Catalog struct {
	results    map[string]model.SearchResult
	fallback   model.SearchResult
	imageQuery string
}

// catalogFile is the on-disk fixture format.
type catalogFile struct {
	ImageQuery string               `json:"image_query"`
	Results    []model.SearchResult `json:"results"`
}

// LoadCatalog reads a fixture file. An empty path loads the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path) //nolint:gosec // operator supplied fixture path
		if err != nil {
			return nil, fmt.Errorf("failed to read fixture file: %w", err)
		}
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes fixture data. The first result answers unknown queries.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: fixture: %w", common.ErrInvalidConfig, err)
	}
	if len(file.Results) == 0 {
		return nil, fmt.Errorf("%w: fixture has no results", common.ErrInvalidConfig)
	}

	c := &Catalog{
		results:    make(map[string]model.SearchResult, len(file.Results)),
		imageQuery: file.ImageQuery,
	}
	if c.imageQuery == "" {
		c.imageQuery = DefaultImageQuery
	}

	for i, r := range file.Results {
		r = normalize(r)
		if i == 0 {
			c.fallback = r
		}
		c.results[catalogKey(r.Query)] = r
	}
	return c, nil
}

// ImageQuery returns the query used for image-only searches.
func (c *Catalog) ImageQuery() string {
	return c.imageQuery
}

// Len returns the number of canned results.
func (c *Catalog) Len() int {
	return len(c.results)
}

// Lookup returns the result for query, falling back to the first entry
// relabelled with the requested query.
func (c *Catalog) Lookup(query string) model.SearchResult {
	r, ok := c.results[catalogKey(query)]
	if !ok {
		r = c.fallback
		r.Query = strings.TrimSpace(query)
	}

	// Callers may mutate the result; hand out a copy of the items.
	items := make([]model.Item, len(r.Items))
	copy(items, r.Items)
	r.Items = items
	return r
}

func catalogKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// normalize orders items by price, drops unpriced ones and fills in
// statistics the fixture left out.
func normalize(r model.SearchResult) model.SearchResult {
	items := make([]model.Item, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Price > 0 {
			if item.FormattedPrice == "" {
				item.FormattedPrice = fmt.Sprintf("$%.2f", item.Price)
			}
			items = append(items, item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Price < items[j].Price
	})
	r.Items = items

	if r.Stats == (model.Stats{}) {
		r.Stats = ComputeStats(items)
	}
	if r.Source == "" {
		r.Source = SourceFixture
	}
	return r
}

// ComputeStats derives min, max and mean price (rounded to cents) in USD.
func ComputeStats(items []model.Item) model.Stats {
	stats := model.Stats{Currency: "USD"}

	var sum float64
	var n int
	for _, item := range items {
		if item.Price <= 0 {
			continue
		}
		if n == 0 || item.Price < stats.MinPrice {
			stats.MinPrice = item.Price
		}
		stats.MaxPrice = max(stats.MaxPrice, item.Price)
		sum += item.Price
		n++
	}
	if n > 0 {
		stats.AvgPrice = math.Round(sum/float64(n)*100) / 100
	}
	return stats
}

package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dillkhalifa/price-sniffer/internal/model"
	"github.com/dillkhalifa/price-sniffer/internal/tui/viewmodel"
)

func sampleResult() *model.SearchResult {
	return &model.SearchResult{
		Query: "sony wh-1000xm5",
		Items: []model.Item{
			{Merchant: "A", Title: "Sony WH-1000XM5", Price: 279.99, FormattedPrice: "$279.99", Link: "https://a.example/p"},
			{Merchant: "B", Title: "Sony WH-1000XM5", Price: 1299.00, FormattedPrice: "$1,299.00", Link: "https://b.example/p"},
		},
		Stats: model.Stats{MinPrice: 279.99, AvgPrice: 789.495},
	}
}

func TestPriceFormatter_Format(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		currency string
		want     string
		amount   float64
	}{
		{name: "small", tag: "en", amount: 279.99, want: "$279.99"},
		{name: "grouped", tag: "en", amount: 1234.5, want: "$1,234.50"},
		{name: "other currency", tag: "en", amount: 10, currency: "eur", want: "10.00 EUR"},
		{name: "bad tag falls back", tag: "!!", amount: 1234.5, want: "$1,234.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewPriceFormatter(tt.tag)
			assert.Equal(t, tt.want, f.Format(tt.amount, tt.currency))
		})
	}
}

func TestRenderResults(t *testing.T) {
	var buf bytes.Buffer
	view := viewmodel.NewResultsView(sampleResult(), viewmodel.DefaultChartSize)

	require.NoError(t, RenderResults(&buf, view, NewPriceFormatter("en")))

	out := buf.String()
	assert.Contains(t, out, "Prices for sony wh-1000xm5")
	assert.Contains(t, out, "Top 2 Prices")
	assert.Contains(t, out, "2 deals found")
	assert.Contains(t, out, "$1,299.00")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("BEST DEAL")))
}

func TestRenderResults_NoDeals(t *testing.T) {
	var buf bytes.Buffer
	view := viewmodel.NewResultsView(&model.SearchResult{Query: "x", Items: []model.Item{}}, viewmodel.DefaultChartSize)

	require.NoError(t, RenderResults(&buf, view, NewPriceFormatter("en")))

	assert.Contains(t, buf.String(), "0 deals found")
	assert.NotContains(t, buf.String(), "BEST DEAL")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteJSON(&buf, sampleResult()))

	var decoded model.SearchResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.Items, 2)
	assert.Contains(t, buf.String(), `"image_url": null`)
}

func TestSpinner(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Searching")

	s.Tick()
	s.Stop()
}

func TestRenderResults_DealsUseServicePriceText(t *testing.T) {
	var buf bytes.Buffer
	result := &model.SearchResult{
		Query: "kopfhoerer",
		Items: []model.Item{
			{Merchant: "Otto", Title: "Kopfhoerer", Price: 249.99, FormattedPrice: "€249,99"},
		},
		Stats: model.Stats{MinPrice: 249.99, AvgPrice: 249.99},
	}
	view := viewmodel.NewResultsView(result, viewmodel.DefaultChartSize)

	require.NoError(t, RenderResults(&buf, view, NewPriceFormatter("en")))

	out := buf.String()
	assert.Contains(t, out, "1. €249,99")
	assert.Contains(t, out, "Lowest $249.99")
}

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchQuery_IsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		query SearchQuery
		want  bool
	}{
		{name: "zero value", query: SearchQuery{}, want: true},
		{name: "blank text", query: SearchQuery{Text: "   "}, want: true},
		{name: "image without bytes", query: SearchQuery{Image: &Image{Name: "a.png"}}, want: true},
		{name: "text only", query: SearchQuery{Text: "sony wh-1000xm5"}, want: false},
		{name: "image only", query: SearchQuery{Image: &Image{Name: "a.png", Data: []byte{1}}}, want: false},
		{name: "both", query: SearchQuery{Text: "iphone", Image: &Image{Name: "a.png", Data: []byte{1}}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.IsEmpty())
		})
	}
}

func TestSearchQuery_Label(t *testing.T) {
	img := &Image{Name: "shoe.jpg", Data: []byte{0xff}}

	assert.Equal(t, "iphone 15", SearchQuery{Text: " iphone 15 "}.Label())
	assert.Equal(t, "shoe.jpg", SearchQuery{Image: img}.Label())
	assert.Equal(t, "sneaker + shoe.jpg", SearchQuery{Text: "sneaker", Image: img}.Label())
	assert.Empty(t, SearchQuery{}.Label())
}

func TestSearchResult_DecodeNullImage(t *testing.T) {
	payload := `{
		"query": "sony wh-1000xm5",
		"items": [
			{"merchant": "Amazon", "title": "Sony WH-1000XM5", "price": 278,
			 "formatted_price": "$278.00", "image_url": null, "link": "https://a.example"},
			{"merchant": "Best Buy", "title": "Sony WH-1000XM5 Black", "price": 300,
			 "formatted_price": "$300.00", "image_url": "https://img.example/1.jpg", "link": "https://b.example"}
		],
		"stats": {"min_price": 278, "avg_price": 289}
	}`

	var result SearchResult
	require.NoError(t, json.Unmarshal([]byte(payload), &result))

	require.Len(t, result.Items, 2)
	assert.Nil(t, result.Items[0].ImageURL)
	assert.Equal(t, PlaceholderImageURL, result.Items[0].DisplayImageURL())
	assert.Equal(t, "https://img.example/1.jpg", result.Items[1].DisplayImageURL())
	assert.InDelta(t, 278.0, result.Stats.MinPrice, 0.001)
	assert.Zero(t, result.Stats.MaxPrice)
	assert.Equal(t, 2, result.DealCount())
}

func TestSearchResult_DealCountNil(t *testing.T) {
	var result *SearchResult
	assert.Equal(t, 0, result.DealCount())
}

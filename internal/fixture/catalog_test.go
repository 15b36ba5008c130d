package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dillkhalifa/price-sniffer/internal/common"
	"github.com/dillkhalifa/price-sniffer/internal/model"
)

func TestLoadCatalog_BuiltIn(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, DefaultImageQuery, c.ImageQuery())

	r := c.Lookup("Sony WH-1000XM5")
	require.Len(t, r.Items, 6)
	assert.Equal(t, "Best Buy", r.Items[0].Merchant)
	assert.InDelta(t, 279.99, r.Stats.MinPrice, 0.001)
	assert.InDelta(t, 399.99, r.Stats.MaxPrice, 0.001)
	assert.Equal(t, SourceFixture, r.Source)
}

func TestLoadCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	data := `{"results":[{"query":"mug","items":[
		{"merchant":"B","title":"Mug","price":12.5,"link":"https://b"},
		{"merchant":"A","title":"Mug","price":4,"link":"https://a"},
		{"merchant":"C","title":"Mug","price":0,"link":"https://c"}
	]}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)

	r := c.Lookup("MUG ")
	require.Len(t, r.Items, 2)
	assert.Equal(t, "A", r.Items[0].Merchant)
	assert.Equal(t, "$4.00", r.Items[0].FormattedPrice)
	assert.Equal(t, model.Stats{Currency: "USD", MinPrice: 4, AvgPrice: 8.25, MaxPrice: 12.5}, r.Stats)
}

func TestLoadCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "nope"},
		{name: "no results", data: `{"results":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}

	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCatalog_LookupFallback(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)

	r := c.Lookup("  garden hose ")
	assert.Equal(t, "garden hose", r.Query)
	assert.NotEmpty(t, r.Items)

	r.Items[0].Merchant = "changed"
	assert.NotEqual(t, "changed", c.Lookup("garden hose").Items[0].Merchant)
}

func TestCatalog_LookupEmptyResult(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)

	r := c.Lookup("unobtainium")
	assert.Empty(t, r.Items)
	assert.Zero(t, r.Stats.MinPrice)
	assert.Equal(t, "USD", r.Stats.Currency)
}

func TestComputeStats(t *testing.T) {
	items := []model.Item{{Price: 10}, {Price: 20}, {Price: 0}, {Price: 25.555}}

	got := ComputeStats(items)

	assert.InDelta(t, 10, got.MinPrice, 0.001)
	assert.InDelta(t, 25.555, got.MaxPrice, 0.001)
	assert.InDelta(t, 18.52, got.AvgPrice, 0.001)
	assert.Equal(t, model.Stats{Currency: "USD"}, ComputeStats(nil))
}

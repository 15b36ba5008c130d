package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dillkhalifa/price-sniffer/internal/model"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestRenderPNG(t *testing.T) {
	tests := []struct {
		name   string
		points []model.ChartPoint
	}{
		{
			name: "two offers",
			points: []model.ChartPoint{
				{Merchant: "A", Price: 279.99},
				{Merchant: "B", Price: 299.00},
			},
		},
		{
			name:   "single offer",
			points: []model.ChartPoint{{Merchant: "A", Price: 42}},
		},
		{
			name: "five equal prices",
			points: []model.ChartPoint{
				{Merchant: "A", Price: 10},
				{Merchant: "B", Price: 10},
				{Merchant: "C", Price: 10},
				{Merchant: "D", Price: 10},
				{Merchant: "E", Price: 10},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := RenderPNG(&buf, tt.points, "Top 5 Prices")

			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func TestRenderPNG_NoData(t *testing.T) {
	var buf bytes.Buffer

	err := RenderPNG(&buf, nil, "Top 5 Prices")

	assert.ErrorIs(t, err, ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "prices.png")

	err := WriteFile(path, []model.ChartPoint{{Merchant: "A", Price: 10}}, "Prices")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestWriteFile_NoDataCreatesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.png")

	err := WriteFile(path, nil, "Prices")

	assert.ErrorIs(t, err, ErrNoData)
	assert.NoFileExists(t, path)
}

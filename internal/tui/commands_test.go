package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dillkhalifa/price-sniffer/internal/common"
	"github.com/dillkhalifa/price-sniffer/internal/model"
	"github.com/dillkhalifa/price-sniffer/internal/session"
)

func TestSearchCmd(t *testing.T) {
	d := &fakeDispatcher{err: common.ErrDecode}
	ticket := session.Ticket{ID: 7, Query: model.SearchQuery{Text: "tv"}, Ctx: context.Background()}

	msg, ok := searchCmd(d, ticket)().(searchCompletedMsg)

	require.True(t, ok)
	assert.Equal(t, uint64(7), msg.ticketID)
	assert.ErrorIs(t, msg.err, common.ErrDecode)
	require.Len(t, d.got, 1)
	assert.Equal(t, "tv", d.got[0].Text)
}

func TestLoadImageCmd_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	msg, ok := loadImageCmd(path)().(imageLoadedMsg)

	require.True(t, ok)
	assert.Error(t, msg.err)
	assert.Nil(t, msg.image)
}

func TestExportPath(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "simple", query: "laptop", want: "prices-laptop.png"},
		{name: "punctuation", query: "Sony WH-1000XM5!", want: "prices-sony-wh-1000xm5.png"},
		{name: "leading symbols", query: "  --tv", want: "prices-tv.png"},
		{name: "empty", query: "", want: "prices-chart.png"},
		{name: "only symbols", query: "???", want: "prices-chart.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.Join("out", tt.want), exportPath("out", tt.query))
		})
	}
}

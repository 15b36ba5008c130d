package themes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTheme(t *testing.T) {
	tests := []struct {
		name string
		want Theme
	}{
		{name: "catppuccin-mocha", want: CatppuccinMocha},
		{name: "default", want: Default},
		{name: "", want: Default},
		{name: "unknown", want: Default},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetTheme(tt.name)
			assert.Equal(t, tt.want.Primary, got.Primary)
			assert.Equal(t, tt.want.Success, got.Success)
		})
	}
}

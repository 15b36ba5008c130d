package viewmodel

import (
	"fmt"
	"math"
	"strings"
)

// String returns a string representation of the screen.
func (s Screen) String() string {
	switch s {
	case ScreenSearch:
		return "Search"
	case ScreenSearching:
		return "Searching"
	case ScreenResults:
		return "Results"
	case ScreenFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// FormatPrice formats a price for display. An empty currency means dollars.
func FormatPrice(amount float64, currency string) string {
	switch strings.ToUpper(currency) {
	case "", "USD":
		return fmt.Sprintf("$%.2f", amount)
	default:
		return fmt.Sprintf("%.2f %s", amount, strings.ToUpper(currency))
	}
}

// TruncateString shortens s to at most maxLen runes, ending in an ellipsis.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(maxLen, 0)])
	}
	return string(r[:maxLen-3]) + "..."
}

// BarLength scales price to a bar of at most width cells relative to highest.
// Any positive price gets at least one cell.
func BarLength(price, highest float64, width int) int {
	if width <= 0 || highest <= 0 || price <= 0 {
		return 0
	}
	n := int(math.Round(price / highest * float64(width)))
	return min(max(n, 1), width)
}

// Bar returns a text bar for price relative to highest.
func Bar(price, highest float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := BarLength(price, highest, width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// SanitizeForDisplay removes potentially problematic characters for terminal display.
func SanitizeForDisplay(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return ' '
		}
		return r
	}, s)

	return strings.Join(strings.Fields(s), " ")
}

package valuation

import (
	"fmt"
	"math"
	"strings"
)

// FormatUSD renders a dollar amount the way the calculator displays it:
// $1.54M, $62.1M, $1.2B, $850K.
func FormatUSD(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	// Pick the unit from the rounded value so 999,999 reads $1M, not $1000K.
	millions := math.Round(v/1e4) / 100
	thousands := math.Round(v / 1e3)
	switch {
	case millions >= 1000:
		return sign + "$" + trimZeros(fmt.Sprintf("%.2f", v/1e9)) + "B"
	case thousands >= 1000:
		return sign + "$" + trimZeros(fmt.Sprintf("%.2f", millions)) + "M"
	case math.Round(v) >= 1000:
		return sign + "$" + trimZeros(fmt.Sprintf("%.0f", thousands)) + "K"
	default:
		return sign + "$" + fmt.Sprintf("%.0f", math.Round(v))
	}
}

// FormatPercent renders a fraction (0.25) as a percentage ("25%").
func FormatPercent(fraction float64) string {
	return fmt.Sprintf("%.0f%%", fraction*100)
}

func FormatMultiple(m float64) string {
	return trimZeros(fmt.Sprintf("%.1f", m)) + "x"
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

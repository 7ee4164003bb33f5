package normalize

import (
	"math"
	"strconv"
	"strings"
)

// DollarsToCents converts a dollar amount to int64 cents.
// Uses math.Round to avoid truncation bias.
func DollarsToCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// CentsToDollars is the inverse of DollarsToCents.
func CentsToDollars(c int64) float64 {
	return float64(c) / 100
}

// RoundCents rounds v to 2 decimal places, half away from zero.
func RoundCents(v float64) float64 {
	return CentsToDollars(DollarsToCents(v))
}

// FormatAmount renders a dollar amount the way the seed CSVs have always
// carried it: shortest decimal form, with ".0" kept on whole amounts
// (50 -> "50.0", 123.4 -> "123.4").
func FormatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

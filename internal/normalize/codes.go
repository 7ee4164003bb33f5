package normalize

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// NormalizeCode trims whitespace, uppercases, and strips non-alphanumeric
// characters, so "S06.9X9A" becomes "S069X9A".
func NormalizeCode(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return nonAlphanumeric.ReplaceAllString(strings.ToUpper(s), "")
}

// IsNormalizedCode reports whether s is non-empty and contains only
// uppercase letters and digits.
func IsNormalizedCode(s string) bool {
	return s != "" && NormalizeCode(s) == s
}

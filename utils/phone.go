package utils

import "strings"

// NormalizePhone strips every non-digit character from raw.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPhone reports whether the normalized number is a ten digit US number.
func ValidPhone(normalized string) bool {
	return len(normalized) == 10
}

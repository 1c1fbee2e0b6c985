package validators

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString collapses whitespace runs and truncates to maxLen runes.
// maxLen <= 0 disables truncation.
func SanitizeString(input string, maxLen int) string {
	clean := strings.Join(strings.Fields(input), " ")
	if maxLen <= 0 || utf8.RuneCountInString(clean) <= maxLen {
		return clean
	}
	return strings.TrimSpace(string([]rune(clean)[:maxLen]))
}

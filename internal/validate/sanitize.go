package validate

import (
	"strings"
	"unicode"
)

// SanitizeLabel trims a label, drops control characters and collapses runs
// of whitespace to a single space.
func SanitizeLabel(label string) string {
	var sb strings.Builder
	sb.Grow(len(label))

	space := false
	for _, r := range strings.TrimSpace(label) {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsControl(r):
		default:
			if space && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			space = false
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// TruncateString truncates a string to maxLen runes, adding "..." if
// truncated.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

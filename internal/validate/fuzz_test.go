package validate

import (
	"testing"
	"unicode"
	"unicode/utf8"
)

// FuzzSanitizeLabel checks that a sanitized label never carries control
// characters or surrounding whitespace.
// Run with: go test ./internal/validate -fuzz=FuzzSanitizeLabel -fuzztime=30s
func FuzzSanitizeLabel(f *testing.F) {
	seeds := []string{"Focus", "  Deep \t work ", "Fo\x00cus", "\x1b[31mred", "Méditation", ""}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip()
		}
		out := SanitizeLabel(input)
		for _, r := range out {
			if unicode.IsControl(r) {
				t.Fatalf("SanitizeLabel(%q) kept control rune %U", input, r)
			}
		}
		first, _ := utf8.DecodeRuneInString(out)
		last, _ := utf8.DecodeLastRuneInString(out)
		if out != "" && (unicode.IsSpace(first) || unicode.IsSpace(last)) {
			t.Fatalf("SanitizeLabel(%q) = %q is not trimmed", input, out)
		}
	})
}

package parser

import (
	"testing"
	"time"
)

// FuzzParseDuration checks the duration parser never panics and only
// reports positive whole-second results as valid.
// Run with: go test ./internal/parser -fuzz=FuzzParseDuration -fuzztime=30s
func FuzzParseDuration(f *testing.F) {
	seeds := []string{
		"1h",
		"30m",
		"1h30m",
		"1.5h",
		"90s",
		"25",
		"01:30:00",
		"25:00",
		"1 hour 30 minutes",
		"0m",
		"-5m",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		secs, err := TotalSeconds(input)
		if err == nil && secs <= 0 {
			t.Fatalf("TotalSeconds(%q) = %d without error", input, secs)
		}
	})
}

// FuzzParseSince checks the since parser never panics and never returns a
// cutoff after now.
// Run with: go test ./internal/parser -fuzz=FuzzParseSince -fuzztime=30s
func FuzzParseSince(f *testing.F) {
	seeds := []string{
		"today",
		"yesterday",
		"this week",
		"last month",
		"last monday",
		"2026-03-01",
		"3 days ago",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	now := time.Date(2026, 3, 4, 15, 30, 0, 0, time.Local)
	f.Fuzz(func(t *testing.T, input string) {
		_, _ = ParseSince(input, now)
	})
}

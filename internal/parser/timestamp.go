package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// periodRegex matches period expressions like "this week", "last month".
var periodRegex = regexp.MustCompile(`(?i)^(this|current|last|previous)\s+(day|week|month|year)$`)

// ParseSince parses a natural language cutoff such as "yesterday",
// "last monday", "this week" or "2026-03-01", relative to now. Day-like
// results start at local midnight.
func ParseSince(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	switch strings.ToLower(input) {
	case "":
		return time.Time{}, nil
	case "today":
		return startOfDay(now), nil
	case "yesterday":
		return startOfDay(now).AddDate(0, 0, -1), nil
	}

	if match := periodRegex.FindStringSubmatch(input); match != nil {
		return periodStart(now, match[1], match[2]), nil
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}
	result, err := dateparser.Parse(cfg, input)
	if err != nil || result.Time.IsZero() {
		return time.Time{}, NewSinceError(input)
	}

	// Dates without a time of day come back at now's clock time.
	if sameClock(result.Time, now) {
		return startOfDay(result.Time), nil
	}
	return result.Time, nil
}

func sameClock(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Hour() == b.Hour() && a.Minute() == b.Minute() && a.Second() == b.Second()
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// periodStart handles period expressions like "this week", "last month".
func periodStart(now time.Time, modifier, period string) time.Time {
	modifier = strings.ToLower(modifier)
	previous := modifier == "last" || modifier == "previous"

	var t time.Time
	switch strings.ToLower(period) {
	case "day":
		t = startOfDay(now)
		if previous {
			t = t.AddDate(0, 0, -1)
		}

	case "week":
		// Go to start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday
		}
		t = time.Date(now.Year(), now.Month(), now.Day()-weekday+1, 0, 0, 0, 0, now.Location())
		if previous {
			t = t.AddDate(0, 0, -7)
		}

	case "month":
		t = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		if previous {
			t = t.AddDate(0, -1, 0)
		}

	case "year":
		t = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		if previous {
			t = t.AddDate(-1, 0, 0)
		}
	}
	return t
}

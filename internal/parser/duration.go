// Package parser turns user input into timer durations and history cutoffs.
package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/manav03panchal/dailyclocks/internal/errors"
)

// DurationResult represents the result of parsing a duration.
type DurationResult struct {
	Duration time.Duration
	Valid    bool
}

// Seconds returns the duration in whole seconds, rounded to the nearest.
func (r DurationResult) Seconds() int {
	return int(math.Round(r.Duration.Seconds()))
}

// durationPattern matches duration expressions like "2h", "30m", "1h30m", "2.5h", etc.
var durationPattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(h|hr|hrs|hour|hours|m|min|mins|minute|minutes|s|sec|secs|second|seconds)?\s*(?:(\d+(?:\.\d+)?)\s*(m|min|mins|minute|minutes|s|sec|secs|second|seconds))?$`)

// clockPattern matches "HH:MM:SS" and "MM:SS".
var clockPattern = regexp.MustCompile(`^(\d+):([0-5]?\d)(?::([0-5]?\d))?$`)

// ParseDuration parses a human-readable duration string.
// Supports formats like:
//   - "25m" or "25 minutes"
//   - "1h30m" or "1 hour 30 minutes"
//   - "1.5h" (1 hour 30 minutes)
//   - "90s"
//   - "01:30:00" (HH:MM:SS) and "25:00" (MM:SS)
//   - "25" (a bare number is minutes)
func ParseDuration(input string) DurationResult {
	input = strings.TrimSpace(input)
	if input == "" {
		return DurationResult{Valid: false}
	}

	if d, ok := parseClock(input); ok {
		return valid(d)
	}

	// Try standard Go duration format first (e.g., "2h30m")
	if d, err := time.ParseDuration(input); err == nil {
		return valid(d)
	}

	matches := durationPattern.FindStringSubmatch(input)
	if matches == nil {
		return DurationResult{Valid: false}
	}

	var totalDuration time.Duration

	// First number and unit
	if matches[1] != "" {
		value, _ := strconv.ParseFloat(matches[1], 64)
		unit := strings.ToLower(matches[2])
		if unit == "" {
			// Timers are usually set in minutes
			unit = "m"
		}
		totalDuration += unitToDuration(value, unit)
	}

	// Second number and unit (for "1h30m" style)
	if matches[3] != "" {
		value, _ := strconv.ParseFloat(matches[3], 64)
		unit := strings.ToLower(matches[4])
		totalDuration += unitToDuration(value, unit)
	}

	return valid(totalDuration)
}

func valid(d time.Duration) DurationResult {
	if d < time.Second {
		return DurationResult{Valid: false}
	}
	return DurationResult{Duration: d, Valid: true}
}

// parseClock parses "HH:MM:SS" or "MM:SS".
func parseClock(input string) (time.Duration, bool) {
	m := clockPattern.FindStringSubmatch(input)
	if m == nil {
		return 0, false
	}

	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	if m[3] == "" {
		return time.Duration(a)*time.Minute + time.Duration(b)*time.Second, true
	}
	c, _ := strconv.Atoi(m[3])
	return time.Duration(a)*time.Hour + time.Duration(b)*time.Minute + time.Duration(c)*time.Second, true
}

// unitToDuration converts a value and unit to a duration.
func unitToDuration(value float64, unit string) time.Duration {
	switch unit {
	case "h", "hr", "hrs", "hour", "hours":
		return time.Duration(value * float64(time.Hour))
	case "s", "sec", "secs", "second", "seconds":
		return time.Duration(value * float64(time.Second))
	default:
		return time.Duration(value * float64(time.Minute))
	}
}

// FromComponents returns the total seconds of hours, minutes and seconds
// fields. Negative fields and a zero total are rejected.
func FromComponents(hours, minutes, seconds int) (int, error) {
	if hours < 0 || minutes < 0 || seconds < 0 {
		return 0, errors.InvalidInput(errors.ErrInvalidDuration, "duration",
			strconv.Itoa(hours)+"h"+strconv.Itoa(minutes)+"m"+strconv.Itoa(seconds)+"s")
	}
	total := hours*3600 + minutes*60 + seconds
	if total <= 0 {
		return 0, errors.InvalidInput(errors.ErrInvalidDuration, "duration", "0s")
	}
	return total, nil
}

// TotalSeconds parses input into whole seconds, or returns a duration
// error with examples.
func TotalSeconds(input string) (int, error) {
	result := ParseDuration(input)
	if !result.Valid || result.Seconds() <= 0 {
		return 0, NewDurationError(input)
	}
	return result.Seconds(), nil
}

// IsDurationLike checks if a string looks like a duration expression.
func IsDurationLike(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return false
	}
	if clockPattern.MatchString(s) {
		return true
	}
	return durationPattern.MatchString(s)
}

// Package history implements the daily history ledger: completion and
// removal events become dated entries, and events for the same label on the
// same local day are merged by weight.
package history

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/manav03panchal/dailyclocks/internal/model"
)

// Round2 rounds x to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Percentage returns the share of set that was spent, in percent with two
// decimals. Nothing spent is 0 and everything spent is exactly 100.
func Percentage(spent, set int) float64 {
	switch {
	case set <= 0 || spent <= 0:
		return 0
	case spent >= set:
		return 100
	}
	return Round2(float64(spent) * 100 / float64(set))
}

// NewEntry builds an entry for a timer of set seconds of which spent elapsed.
func NewEntry(label string, set, spent int, at time.Time) model.HistoryEntry {
	return model.HistoryEntry{
		Label:               label,
		TimeSet:             set,
		TimeSpent:           spent,
		PercentageCompleted: Percentage(spent, set),
		RecordedAt:          at,
	}
}

// NormalizeLabel returns the form labels are matched on.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// SameLocalDate reports whether a and b fall on the same local calendar day.
func SameLocalDate(a, b time.Time) bool {
	return a.Local().Format(model.DateLayout) == b.Local().Format(model.DateLayout)
}

// Ledger is the ordered list of history entries.
// It is not safe for concurrent use; the registry serializes access.
type Ledger struct {
	entries []model.HistoryEntry
}

// NewLedger creates a ledger holding entries in insertion order.
func NewLedger(entries []model.HistoryEntry) *Ledger {
	l := &Ledger{entries: make([]model.HistoryEntry, 0, len(entries))}
	l.entries = append(l.entries, entries...)
	return l
}

// Record adds e to the ledger as of now and returns the stored entry.
//
// If an entry with the same label was recorded earlier on the same local
// day, the two are merged: times are summed, the percentage is recomputed
// from the sums, and the merged entry replaces the old one at the end of the
// ledger, labeled and timestamped like the newest event.
func (l *Ledger) Record(e model.HistoryEntry, now time.Time) model.HistoryEntry {
	e.RecordedAt = now
	key := NormalizeLabel(e.Label)

	for i, prev := range l.entries {
		if NormalizeLabel(prev.Label) != key || !SameLocalDate(prev.RecordedAt, now) {
			continue
		}

		merged := NewEntry(e.Label, prev.TimeSet+e.TimeSet, prev.TimeSpent+e.TimeSpent, now)
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
		l.entries = append(l.entries, merged)
		return merged
	}

	l.entries = append(l.entries, e)
	return e
}

// Entries returns a copy of every entry in insertion order.
func (l *Ledger) Entries() []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// DayGroup holds the entries recorded on one local date.
type DayGroup struct {
	Date    string
	Entries []model.HistoryEntry
}

// TimeSet returns the seconds set across the group.
func (g DayGroup) TimeSet() int {
	total := 0
	for _, e := range g.Entries {
		total += e.TimeSet
	}
	return total
}

// TimeSpent returns the seconds spent across the group.
func (g DayGroup) TimeSpent() int {
	total := 0
	for _, e := range g.Entries {
		total += e.TimeSpent
	}
	return total
}

// GroupByDate groups entries by local date, most recent date first.
// Within a date the insertion order is kept.
func GroupByDate(entries []model.HistoryEntry) []DayGroup {
	index := make(map[string]int)
	var groups []DayGroup

	for _, e := range entries {
		date := e.Date()
		i, ok := index[date]
		if !ok {
			i = len(groups)
			index[date] = i
			groups = append(groups, DayGroup{Date: date})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}

	// DateLayout sorts lexically.
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Date > groups[j].Date
	})
	return groups
}

// Since returns the entries recorded at or after t, in insertion order.
func Since(entries []model.HistoryEntry, t time.Time) []model.HistoryEntry {
	var out []model.HistoryEntry
	for _, e := range entries {
		if !e.RecordedAt.Before(t) {
			out = append(out, e)
		}
	}
	return out
}

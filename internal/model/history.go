package model

import (
	"fmt"
	"time"
)

// HistoryEntry records a completed or abandoned timer.
// RecordedAt is both the identity and the date bucket of the entry.
type HistoryEntry struct {
	Label               string    `json:"label"`
	TimeSet             int       `json:"time_set"`
	TimeSpent           int       `json:"time_spent"`
	PercentageCompleted float64   `json:"percentage_completed"`
	RecordedAt          time.Time `json:"recorded_at"`
}

// Percent renders the completion percentage with two decimals, e.g. "100.00".
func (e HistoryEntry) Percent() string {
	return fmt.Sprintf("%.2f", e.PercentageCompleted)
}

// Date returns the local calendar date the entry is bucketed under.
func (e HistoryEntry) Date() string {
	return e.RecordedAt.Local().Format(DateLayout)
}

// HistoryLedger is the persisted record holding every history entry.
type HistoryLedger struct {
	Key     string         `json:"key"`
	Version int            `json:"version"`
	Entries []HistoryEntry `json:"entries"`
}

// SetKey sets the database key for this ledger.
func (h *HistoryLedger) SetKey(key string) {
	h.Key = key
}

// GetKey returns the database key for this ledger.
func (h *HistoryLedger) GetKey() string {
	return h.Key
}

// NewHistoryLedger creates a ledger record for the given entries.
func NewHistoryLedger(entries []HistoryEntry) *HistoryLedger {
	if entries == nil {
		entries = []HistoryEntry{}
	}
	return &HistoryLedger{
		Key:     KeyHistory,
		Version: SchemaVersion,
		Entries: entries,
	}
}

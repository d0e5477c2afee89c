// Package model defines the domain models for dailyclocks.
package model

// Model is the interface that all persisted records must implement.
type Model interface {
	// SetKey sets the database key for this record.
	SetKey(key string)
	// GetKey returns the database key for this record.
	GetKey() string
}

// SchemaVersion is the current version of every persisted record.
// Records carrying any other version are treated as absent.
const SchemaVersion = 1

// Key constants for the persisted records.
const (
	KeyTimers        = "timers"
	PrefixTimer      = "timer"
	KeyActiveTimerID = "active_timer_id"
	KeyHistory       = "history"
	KeyLastResetDate = "last_reset_date"
	KeyActiveTab     = "active_tab"
)

// SnapshotKey returns the key of the run snapshot for the given timer id.
func SnapshotKey(timerID string) string {
	return PrefixTimer + ":" + timerID
}

// DateLayout is the layout used for calendar dates (LastResetDate, grouping).
const DateLayout = "2006-01-02"

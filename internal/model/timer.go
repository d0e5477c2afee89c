package model

import (
	"time"
)

// TimerState is the lifecycle state of a countdown timer.
type TimerState string

const (
	StateIdle      TimerState = "idle"
	StateRunning   TimerState = "running"
	StateCompleted TimerState = "completed"
	StateRemoved   TimerState = "removed"
)

// IsValid reports whether s is a known state.
func (s TimerState) IsValid() bool {
	switch s {
	case StateIdle, StateRunning, StateCompleted, StateRemoved:
		return true
	}
	return false
}

// Timer is a labeled countdown.
// Durations are whole seconds; StartTimestamp is only set while running.
type Timer struct {
	ID             string     `json:"id"`
	Label          string     `json:"label"`
	TotalDuration  int        `json:"total_duration"`
	Remaining      int        `json:"remaining"`
	State          TimerState `json:"state"`
	StartTimestamp *time.Time `json:"start_timestamp,omitempty"`
	Started        bool       `json:"started"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewTimer creates an idle timer with its full duration remaining.
func NewTimer(id, label string, totalSeconds int, createdAt time.Time) *Timer {
	return &Timer{
		ID:            id,
		Label:         label,
		TotalDuration: totalSeconds,
		Remaining:     totalSeconds,
		State:         StateIdle,
		CreatedAt:     createdAt,
	}
}

// IsRunning returns true if the timer is counting down.
func (t *Timer) IsRunning() bool {
	return t.State == StateRunning
}

// Consumed returns the seconds already counted down.
func (t *Timer) Consumed() int {
	return t.TotalDuration - t.Remaining
}

// Progress returns the completed fraction in [0, 1].
func (t *Timer) Progress() float64 {
	if t.TotalDuration <= 0 {
		return 0
	}
	return float64(t.Consumed()) / float64(t.TotalDuration)
}

// Clone returns a deep copy safe to hand out as a read-only snapshot.
func (t *Timer) Clone() Timer {
	c := *t
	if t.StartTimestamp != nil {
		ts := *t.StartTimestamp
		c.StartTimestamp = &ts
	}
	return c
}

// RunSnapshot is the per-timer running-state record stored under timer:<id>.
// Remaining is nil when the record does not carry it.
type RunSnapshot struct {
	Key            string     `json:"key"`
	Version        int        `json:"version"`
	IsRunning      bool       `json:"is_running"`
	StartTimestamp *time.Time `json:"start_timestamp,omitempty"`
	Remaining      *int       `json:"remaining,omitempty"`
}

// RemainingOr returns the saved remaining seconds, or def if none was saved.
func (s *RunSnapshot) RemainingOr(def int) int {
	if s.Remaining == nil {
		return def
	}
	return *s.Remaining
}

// SetKey sets the database key for this snapshot.
func (s *RunSnapshot) SetKey(key string) {
	s.Key = key
}

// GetKey returns the database key for this snapshot.
func (s *RunSnapshot) GetKey() string {
	return s.Key
}

// SnapshotOf captures the running state of t.
func SnapshotOf(t *Timer) *RunSnapshot {
	snap := &RunSnapshot{
		Key:       SnapshotKey(t.ID),
		Version:   SchemaVersion,
		IsRunning: t.IsRunning(),
	}
	remaining := t.Remaining
	snap.Remaining = &remaining
	if t.StartTimestamp != nil {
		ts := *t.StartTimestamp
		snap.StartTimestamp = &ts
	}
	return snap
}

// TimerCollection is the record holding every timer, in creation order.
type TimerCollection struct {
	Key     string  `json:"key"`
	Version int     `json:"version"`
	Timers  []Timer `json:"timers"`
}

// SetKey sets the database key for this collection.
func (c *TimerCollection) SetKey(key string) {
	c.Key = key
}

// GetKey returns the database key for this collection.
func (c *TimerCollection) GetKey() string {
	return c.Key
}

// NewTimerCollection creates an empty timer collection record.
func NewTimerCollection() *TimerCollection {
	return &TimerCollection{
		Key:     KeyTimers,
		Version: SchemaVersion,
		Timers:  []Timer{},
	}
}

// Package timer implements the countdown state machine, the single active
// timer slot, and the terminal countdown display.
//
// Remaining time is always derived from the start timestamp and the current
// time, never by decrementing a counter, so ticks that arrive late or not at
// all cannot make a timer drift.
package timer

import (
	"time"

	"github.com/manav03panchal/dailyclocks/internal/history"
	"github.com/manav03panchal/dailyclocks/internal/model"
)

// Elapsed returns the whole seconds between start and now, never negative.
func Elapsed(start, now time.Time) int {
	d := now.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}

// Start moves t into Running as of now. The caller must hold the active
// slot for t. It returns false when t is not Idle.
func Start(t *model.Timer, now time.Time) bool {
	if t.State != model.StateIdle {
		return false
	}
	start := now.Add(-time.Duration(t.Consumed()) * time.Second)
	t.StartTimestamp = &start
	t.State = model.StateRunning
	t.Started = true
	return true
}

// Recompute refreshes the remaining time of a running timer. It returns
// true when this call completed the timer.
func Recompute(t *model.Timer, now time.Time) bool {
	if t.State != model.StateRunning || t.StartTimestamp == nil {
		return false
	}

	remaining := t.TotalDuration - Elapsed(*t.StartTimestamp, now)
	if remaining < 0 {
		remaining = 0
	}
	t.Remaining = remaining
	if remaining > 0 {
		return false
	}

	t.State = model.StateCompleted
	t.StartTimestamp = nil
	return true
}

// Pause stops a running timer and keeps its remaining time. The remaining
// time is recomputed first; if that completes the timer, completion wins and
// Pause returns completed=true. paused is false when t was not running.
func Pause(t *model.Timer, now time.Time) (paused, completed bool) {
	if t.State != model.StateRunning {
		return false, false
	}
	if Recompute(t, now) {
		return false, true
	}
	t.State = model.StateIdle
	t.StartTimestamp = nil
	return true, false
}

// Reset restores the full duration. Completed and removed timers are left
// alone. It returns false when nothing changed state.
func Reset(t *model.Timer) bool {
	if t.State == model.StateCompleted || t.State == model.StateRemoved {
		return false
	}
	t.Remaining = t.TotalDuration
	t.State = model.StateIdle
	t.StartTimestamp = nil
	return true
}

// Clamp repairs persisted values that fall outside the model's ranges.
// It reports whether anything was changed.
func Clamp(t *model.Timer) bool {
	before := t.Clone()

	if t.Remaining < 0 {
		t.Remaining = 0
	}
	if t.Remaining > t.TotalDuration {
		t.Remaining = t.TotalDuration
	}
	if !t.State.IsValid() || t.State == model.StateRemoved {
		t.State = model.StateIdle
	}
	if t.State != model.StateRunning {
		t.StartTimestamp = nil
	}
	if t.Remaining < t.TotalDuration {
		t.Started = true
	}

	return before.Remaining != t.Remaining ||
		before.State != t.State ||
		before.Started != t.Started ||
		(before.StartTimestamp == nil) != (t.StartTimestamp == nil)
}

// CompletionEntry is the history entry of a timer that ran to zero.
func CompletionEntry(t *model.Timer, now time.Time) model.HistoryEntry {
	return history.NewEntry(t.Label, t.TotalDuration, t.TotalDuration, now)
}

// RemovalEntry is the history entry of a timer removed by the user.
func RemovalEntry(t *model.Timer, now time.Time) model.HistoryEntry {
	return history.NewEntry(t.Label, t.TotalDuration, t.Consumed(), now)
}

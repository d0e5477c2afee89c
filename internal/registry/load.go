package registry

import (
	"context"
	"strings"

	"github.com/manav03panchal/dailyclocks/internal/history"
	"github.com/manav03panchal/dailyclocks/internal/logging"
	"github.com/manav03panchal/dailyclocks/internal/model"
	"github.com/manav03panchal/dailyclocks/internal/timer"
)

// Load replaces the registry contents with the persisted state.
//
// Invalid and duplicate timers are skipped. Timers persisted as completed
// are removed without a history entry. Each remaining timer takes its
// running state from its snapshot: running timers resume from their
// persisted start, so time that passed while the process was down counts.
// Snapshots without a timer are deleted. Only I/O failures are returned;
// anything unreadable falls back to its default.
func (r *Registry) Load(ctx context.Context) error {
	log := logging.FromContext(ctx)

	list, err := r.store.Timers.List()
	if err != nil {
		return err
	}
	state, err := r.store.LoadAppState()
	if err != nil {
		return err
	}
	entries, err := r.store.History.List()
	if err != nil {
		return err
	}

	timers := make([]*model.Timer, 0, len(list))
	index := make(map[string]*model.Timer, len(list))
	c := &change{snapshots: make(map[string]bool)}

	for i := range list {
		t := list[i].Clone()
		if reason := invalidReason(&t, index); reason != "" {
			log.Warn("skipping persisted timer", logging.KeyTimerID, t.ID, "reason", reason)
			c.collection = true
			continue
		}

		if t.State == model.StateCompleted {
			log.Debug("finalizing completed timer", logging.KeyTimerID, t.ID)
			c.collection = true
			c.deleteSnapshot(t.ID)
			continue
		}

		if err := r.applySnapshot(ctx, &t); err != nil {
			return err
		}
		if timer.Clamp(&t) {
			c.collection = true
		}

		tp := &t
		timers = append(timers, tp)
		index[t.ID] = tp
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	for id := range r.tasks {
		r.stopTask(id)
	}
	r.timers = timers
	r.index = index
	r.ledger = history.NewLedger(entries)
	r.state = state
	r.slot = timer.NewSlot(state.ActiveTimerID)

	r.settleRunning(ctx, c)
	r.healSlot(ctx, c)
	if r.ticking {
		for _, t := range r.running() {
			r.startTask(t.ID)
		}
	}

	keep := make(map[string]bool, len(index))
	for id := range index {
		keep[id] = true
	}
	pruned, err := r.store.Timers.PruneSnapshots(keep)
	if err != nil {
		log.Warn("pruning orphan snapshots failed", logging.KeyError, err)
	} else if len(pruned) > 0 {
		log.Debug("pruned orphan snapshots", logging.KeyCount, len(pruned))
	}

	r.flush(ctx, c)
	log.Debug("registry loaded",
		logging.KeyCount, len(r.timers), "active", r.slot.Holder(), logging.KeyDate, r.state.LastResetDate)
	return nil
}

func invalidReason(t *model.Timer, seen map[string]*model.Timer) string {
	switch {
	case strings.TrimSpace(t.ID) == "":
		return "empty id"
	case seen[t.ID] != nil:
		return "duplicate id"
	case strings.TrimSpace(t.Label) == "":
		return "empty label"
	case t.TotalDuration <= 0:
		return "non-positive duration"
	}
	return ""
}

// applySnapshot sets the running state of t from its snapshot. A missing
// snapshot, or a running one without a start, leaves an idle timer with its
// full duration. A missing remaining value means the full duration.
func (r *Registry) applySnapshot(ctx context.Context, t *model.Timer) error {
	snap, found, err := r.store.Timers.Snapshot(t.ID)
	if err != nil {
		return err
	}

	t.StartTimestamp = nil
	if !found {
		t.State = model.StateIdle
		t.Remaining = t.TotalDuration
		return nil
	}

	if snap.IsRunning && snap.StartTimestamp == nil {
		logging.FromContext(ctx).Warn("running snapshot without start", logging.KeyTimerID, t.ID)
		t.State = model.StateIdle
		t.Remaining = t.TotalDuration
		return nil
	}

	if snap.IsRunning {
		start := *snap.StartTimestamp
		t.State = model.StateRunning
		t.StartTimestamp = &start
		t.Started = true
		t.Remaining = t.TotalDuration - timer.Elapsed(start, r.clock.Now())
		if t.Remaining < 0 {
			t.Remaining = 0
		}
		return nil
	}

	t.State = model.StateIdle
	t.Remaining = snap.RemainingOr(t.TotalDuration)
	return nil
}

// settleRunning keeps at most one running timer: the slot holder if it is
// running, otherwise the first running timer. Others are paused. The
// caller must hold r.mu.
func (r *Registry) settleRunning(ctx context.Context, c *change) {
	running := r.running()
	if len(running) == 0 {
		return
	}

	keep := running[0]
	if h, ok := r.index[r.slot.Holder()]; ok && h.IsRunning() {
		keep = h
	}

	for _, t := range running {
		if t == keep {
			continue
		}
		t.State = model.StateIdle
		t.StartTimestamp = nil
		c.collection = true
		c.saveSnapshot(t.ID)
		logging.FromContext(ctx).Warn("pausing extra running timer", logging.KeyTimerID, t.ID)
	}

	if r.slot.Holder() != keep.ID {
		r.slot.Clear()
		r.slot.RequestStart(keep.ID)
		c.slot = true
	}
}

// Package registry owns the set of countdown timers. It serializes every
// operation behind one mutex, persists exactly what each operation changed,
// runs the per-timer tick tasks and grace removals, and rebuilds its state
// from the store on startup, catching up on time that passed while the
// process was not running.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	apperrors "github.com/manav03panchal/dailyclocks/internal/errors"
	"github.com/manav03panchal/dailyclocks/internal/history"
	"github.com/manav03panchal/dailyclocks/internal/logging"
	"github.com/manav03panchal/dailyclocks/internal/model"
	"github.com/manav03panchal/dailyclocks/internal/notify"
	"github.com/manav03panchal/dailyclocks/internal/storage"
	"github.com/manav03panchal/dailyclocks/internal/timer"
	"github.com/manav03panchal/dailyclocks/internal/validate"
)

// ErrClosed is returned by operations on a closed registry.
var ErrClosed = errors.New("registry closed")

// IDGenerator returns a new unique timer id.
type IDGenerator func() (string, error)

// UUIDv7 generates time-ordered UUID timer ids.
func UUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Options configures a Registry.
type Options struct {
	Clock        clockwork.Clock
	TickInterval time.Duration
	GraceDelay   time.Duration
	Sink         notify.Sink
	NewID        IDGenerator
}

// DefaultOptions returns options with a real clock, a one second tick,
// a two second grace delay and no notifications.
func DefaultOptions() Options {
	return Options{
		Clock:        clockwork.NewRealClock(),
		TickInterval: time.Second,
		GraceDelay:   2 * time.Second,
		Sink:         notify.NopSink{},
		NewID:        UUIDv7,
	}
}

// tickTask is the cancellable ticker of one running timer.
type tickTask struct {
	token uint64
	stop  chan struct{}
}

// Registry holds every timer together with the active slot, the history
// ledger and the app state. All methods are safe for concurrent use.
type Registry struct {
	mu sync.Mutex

	store        *storage.Store
	clock        clockwork.Clock
	tickInterval time.Duration
	graceDelay   time.Duration
	sink         notify.Sink
	newID        IDGenerator

	timers []*model.Timer // creation order
	index  map[string]*model.Timer
	slot   *timer.Slot
	ledger *history.Ledger
	state  *model.AppState

	ticking   bool
	tickCtx   context.Context
	tasks     map[string]*tickTask
	nextToken uint64
	graces    map[string]clockwork.Timer
	closed    bool

	tasksWG  sync.WaitGroup
	notifyWG sync.WaitGroup
}

// New creates an empty registry persisting through store. Call Load to
// restore the persisted state.
func New(store *storage.Store, opts Options) *Registry {
	defaults := DefaultOptions()
	if opts.Clock == nil {
		opts.Clock = defaults.Clock
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaults.TickInterval
	}
	if opts.GraceDelay < 0 {
		opts.GraceDelay = 0
	}
	if opts.Sink == nil {
		opts.Sink = defaults.Sink
	}
	if opts.NewID == nil {
		opts.NewID = defaults.NewID
	}

	return &Registry{
		store:        store,
		clock:        opts.Clock,
		tickInterval: opts.TickInterval,
		graceDelay:   opts.GraceDelay,
		sink:         opts.Sink,
		newID:        opts.NewID,
		index:        make(map[string]*model.Timer),
		slot:         timer.NewSlot(""),
		ledger:       history.NewLedger(nil),
		state:        model.DefaultAppState(),
		tasks:        make(map[string]*tickTask),
		graces:       make(map[string]clockwork.Timer),
	}
}

// =============================================================================
// Scoped mutation
// =============================================================================

// change records what an operation touched, so flush writes only that.
type change struct {
	collection bool
	snapshots  map[string]bool // id -> save (true) or delete (false)
	slot       bool
	history    bool
	lastReset  bool
	tab        bool
}

func (c *change) saveSnapshot(id string)   { c.snapshots[id] = true }
func (c *change) deleteSnapshot(id string) { c.snapshots[id] = false }

// mutate runs fn under the registry mutex and flushes what it changed.
func (r *Registry) mutate(ctx context.Context, fn func(c *change) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	c := &change{snapshots: make(map[string]bool)}
	err := fn(c)
	r.flush(ctx, c)
	return err
}

// flush writes the dirty pieces. Failures are logged and memory is kept
// as it is; the next successful write of the same key repairs the store.
func (r *Registry) flush(ctx context.Context, c *change) {
	log := logging.FromContext(ctx)
	warn := func(key string, err error) {
		switch {
		case err == nil:
		case apperrors.IsDiskFull(err):
			log.Error("persist failed, disk is full",
				logging.KeyStoreKey, key, logging.KeyError, apperrors.WrapDiskFull(err, "write", key))
		default:
			log.Warn("persist failed", logging.KeyStoreKey, key, logging.KeyError, err)
		}
	}

	if c.collection {
		timers := make([]model.Timer, 0, len(r.timers))
		for _, t := range r.timers {
			timers = append(timers, t.Clone())
		}
		warn(model.KeyTimers, r.store.Timers.SaveAll(timers))
	}

	for id, save := range c.snapshots {
		t, ok := r.index[id]
		if save && ok {
			warn(model.SnapshotKey(id), r.store.Timers.SaveSnapshot(model.SnapshotOf(t)))
		} else {
			warn(model.SnapshotKey(id), r.store.Timers.DeleteSnapshot(id))
		}
	}

	if c.slot {
		r.state.ActiveTimerID = r.slot.Holder()
		warn(model.KeyActiveTimerID, r.store.Active.Set(r.state.ActiveTimerID))
	}
	if c.history {
		warn(model.KeyHistory, r.store.History.SaveAll(r.ledger.Entries()))
	}
	if c.lastReset {
		warn(model.KeyLastResetDate, r.store.State.SetLastResetDate(r.state.LastResetDate))
	}
	if c.tab {
		warn(model.KeyActiveTab, r.store.State.SetActiveTab(r.state.ActiveTab))
	}
}

// =============================================================================
// Operations
// =============================================================================

// AddTimer creates an idle timer with a generated id.
func (r *Registry) AddTimer(ctx context.Context, label string, totalSeconds int) (model.Timer, error) {
	if err := validateTimer(label, totalSeconds); err != nil {
		return model.Timer{}, err
	}
	id, err := r.newID()
	if err != nil {
		return model.Timer{}, apperrors.Wrap(err, "generate timer id")
	}
	return r.AddTimerWithID(ctx, id, label, totalSeconds)
}

// AddTimerWithID creates an idle timer with the given id.
func (r *Registry) AddTimerWithID(ctx context.Context, id, label string, totalSeconds int) (model.Timer, error) {
	if err := validateTimer(label, totalSeconds); err != nil {
		return model.Timer{}, err
	}
	if err := validate.TimerID(id); err != nil {
		return model.Timer{}, err
	}

	var created model.Timer
	err := r.mutate(ctx, func(c *change) error {
		if _, exists := r.index[id]; exists {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateTimerID, id)
		}

		t := model.NewTimer(id, validate.SanitizeLabel(label), totalSeconds, r.clock.Now())
		r.timers = append(r.timers, t)
		r.index[id] = t
		c.collection = true

		created = t.Clone()
		logging.FromContext(ctx).Info("timer added",
			logging.KeyTimerID, id, logging.KeyLabel, t.Label, logging.KeyRemaining, totalSeconds)
		return nil
	})
	return created, err
}

func validateTimer(label string, totalSeconds int) error {
	if err := validate.Label(label); err != nil {
		return err
	}
	if totalSeconds <= 0 {
		return apperrors.InvalidInput(apperrors.ErrInvalidDuration, "duration", fmt.Sprintf("%ds", totalSeconds))
	}
	return nil
}

// lookup returns the timer with id, logging unknown ids at debug level.
func (r *Registry) lookup(ctx context.Context, op, id string) (*model.Timer, bool) {
	t, ok := r.index[id]
	if !ok {
		logging.FromContext(ctx).Debug("unknown timer", logging.KeyOperation, op, logging.KeyTimerID, id)
	}
	return t, ok
}

// healSlot clears a slot holder that is missing or not running.
func (r *Registry) healSlot(ctx context.Context, c *change) {
	healed := r.slot.Heal(func(id string) bool {
		t, ok := r.index[id]
		return ok && t.IsRunning()
	})
	if healed {
		c.slot = true
		logging.FromContext(ctx).Warn("cleared stale active timer")
	}
}

// Start begins or resumes the countdown of id. It is a no-op when id is
// unknown, not idle, or another timer is running.
func (r *Registry) Start(ctx context.Context, id string) error {
	return r.mutate(ctx, func(c *change) error {
		t, ok := r.lookup(ctx, "start", id)
		if !ok || t.State != model.StateIdle {
			return nil
		}

		r.healSlot(ctx, c)
		if !r.slot.RequestStart(id) {
			logging.FromContext(ctx).Debug("start denied, another timer is running",
				logging.KeyTimerID, id, "holder", r.slot.Holder())
			return nil
		}

		timer.Start(t, r.clock.Now())
		c.slot = true
		c.collection = true
		c.saveSnapshot(id)
		r.startTask(id)

		logging.FromContext(ctx).Info("timer started",
			logging.KeyTimerID, id, logging.KeyRemaining, t.Remaining)
		return nil
	})
}

// Pause stops the countdown of a running timer, keeping its remaining time.
// A timer whose time ran out in the meantime completes instead.
func (r *Registry) Pause(ctx context.Context, id string) error {
	return r.mutate(ctx, func(c *change) error {
		t, ok := r.lookup(ctx, "pause", id)
		if !ok {
			return nil
		}

		now := r.clock.Now()
		paused, completed := timer.Pause(t, now)
		switch {
		case completed:
			r.complete(ctx, c, t, now)
		case paused:
			r.stopTask(id)
			if r.slot.Release(id) {
				c.slot = true
			}
			c.collection = true
			c.saveSnapshot(id)
			logging.FromContext(ctx).Info("timer paused",
				logging.KeyTimerID, id, logging.KeyRemaining, t.Remaining)
		}
		return nil
	})
}

// Reset restores the full duration of id. A completed timer waiting for
// removal is left alone.
func (r *Registry) Reset(ctx context.Context, id string) error {
	return r.mutate(ctx, func(c *change) error {
		t, ok := r.lookup(ctx, "reset", id)
		if !ok {
			return nil
		}
		if r.resetTimer(c, t) {
			logging.FromContext(ctx).Info("timer reset", logging.KeyTimerID, id)
		}
		return nil
	})
}

// ResetAll resets every timer that is not waiting for removal and empties
// the active slot. It returns the number of timers reset.
func (r *Registry) ResetAll(ctx context.Context) (int, error) {
	var n int
	err := r.mutate(ctx, func(c *change) error {
		n = r.resetAll(c)
		logging.FromContext(ctx).Info("timers reset", logging.KeyCount, n)
		return nil
	})
	return n, err
}

func (r *Registry) resetTimer(c *change, t *model.Timer) bool {
	if !timer.Reset(t) {
		return false
	}
	r.stopTask(t.ID)
	if r.slot.Release(t.ID) {
		c.slot = true
	}
	c.collection = true
	c.deleteSnapshot(t.ID)
	return true
}

func (r *Registry) resetAll(c *change) int {
	n := 0
	for _, t := range r.timers {
		if r.resetTimer(c, t) {
			n++
		}
	}
	if r.slot.Clear() {
		c.slot = true
	}
	return n
}

// Remove deletes id after recording it in the history. A running timer is
// brought up to date first. A completed timer waiting for removal is
// removed at once without a second history entry.
func (r *Registry) Remove(ctx context.Context, id string) error {
	return r.mutate(ctx, func(c *change) error {
		t, ok := r.lookup(ctx, "remove", id)
		if !ok {
			return nil
		}

		now := r.clock.Now()
		if timer.Recompute(t, now) {
			r.complete(ctx, c, t, now)
		}

		if t.State != model.StateCompleted {
			entry := r.ledger.Record(timer.RemovalEntry(t, now), now)
			c.history = true
			logging.FromContext(ctx).Info("timer removed",
				logging.KeyTimerID, id, logging.KeyLabel, t.Label, "percent", entry.Percent())
		}

		r.drop(c, t)
		return nil
	})
}

// Pass brings every running timer up to date, completing those whose time
// ran out. It returns how many completed.
func (r *Registry) Pass(ctx context.Context) (int, error) {
	var completed int
	err := r.mutate(ctx, func(c *change) error {
		now := r.clock.Now()
		for _, t := range r.running() {
			if timer.Recompute(t, now) {
				r.complete(ctx, c, t, now)
				completed++
			}
		}
		return nil
	})
	return completed, err
}

// Rollover resets every timer for a new day, once per date. It reports
// whether it ran; a date that was already rolled over is ignored.
func (r *Registry) Rollover(ctx context.Context, today string) (bool, error) {
	var ran bool
	err := r.mutate(ctx, func(c *change) error {
		if r.state.LastResetDate == today {
			return nil
		}
		n := r.resetAll(c)
		r.state.LastResetDate = today
		c.lastReset = true
		ran = true

		logging.FromContext(ctx).Info("midnight rollover",
			logging.KeyDate, today, logging.KeyCount, n)
		return nil
	})
	return ran, err
}

// SetActiveTab records the dashboard tab.
func (r *Registry) SetActiveTab(ctx context.Context, tab string) error {
	if !model.IsValidTab(tab) {
		return apperrors.InvalidInput(apperrors.ErrInvalidTab, "tab", tab)
	}
	return r.mutate(ctx, func(c *change) error {
		if r.state.ActiveTab != tab {
			r.state.ActiveTab = tab
			c.tab = true
		}
		return nil
	})
}

// =============================================================================
// Completion and removal
// =============================================================================

// complete handles a timer that has just reached zero: one history entry,
// the slot released, the sink notified, and removal after the grace delay.
func (r *Registry) complete(ctx context.Context, c *change, t *model.Timer, now time.Time) {
	r.stopTask(t.ID)
	if r.slot.Release(t.ID) {
		c.slot = true
	}

	r.ledger.Record(timer.CompletionEntry(t, now), now)
	c.history = true
	c.collection = true
	c.saveSnapshot(t.ID)

	logging.FromContext(ctx).Info("timer completed",
		logging.KeyTimerID, t.ID, logging.KeyLabel, t.Label)

	r.notify(ctx, t.Label)
	r.scheduleRemoval(t.ID)
}

func (r *Registry) notify(ctx context.Context, label string) {
	ctx = context.WithoutCancel(ctx)
	r.notifyWG.Add(1)
	go func() {
		defer r.notifyWG.Done()
		r.sink.NotifyCompletion(ctx, label)
	}()
}

func (r *Registry) scheduleRemoval(id string) {
	if g, ok := r.graces[id]; ok {
		g.Stop()
	}
	r.graces[id] = r.clock.AfterFunc(r.graceDelay, func() {
		r.finalize(id)
	})
}

// finalize removes a completed timer once its grace delay has passed.
func (r *Registry) finalize(id string) {
	ctx := logging.NewRequestContext()
	_ = r.mutate(ctx, func(c *change) error {
		delete(r.graces, id)
		t, ok := r.index[id]
		if !ok || t.State != model.StateCompleted {
			return nil
		}
		r.drop(c, t)
		logging.FromContext(ctx).Debug("completed timer removed", logging.KeyTimerID, id)
		return nil
	})
}

// drop deletes t from the registry and the store.
func (r *Registry) drop(c *change, t *model.Timer) {
	r.stopTask(t.ID)
	if g, ok := r.graces[t.ID]; ok {
		g.Stop()
		delete(r.graces, t.ID)
	}
	if r.slot.Release(t.ID) {
		c.slot = true
	}

	t.State = model.StateRemoved
	t.StartTimestamp = nil
	delete(r.index, t.ID)
	for i, other := range r.timers {
		if other == t {
			r.timers = append(r.timers[:i], r.timers[i+1:]...)
			break
		}
	}
	c.collection = true
	c.deleteSnapshot(t.ID)
}

func (r *Registry) running() []*model.Timer {
	var out []*model.Timer
	for _, t := range r.timers {
		if t.IsRunning() {
			out = append(out, t)
		}
	}
	return out
}

// =============================================================================
// Read-only views
// =============================================================================

// Timers returns copies of every timer in creation order.
func (r *Registry) Timers() []model.Timer {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Timer, 0, len(r.timers))
	for _, t := range r.timers {
		out = append(out, t.Clone())
	}
	return out
}

// Timer returns a copy of the timer with id.
func (r *Registry) Timer(id string) (model.Timer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.index[id]
	if !ok {
		return model.Timer{}, false
	}
	return t.Clone(), true
}

// History returns a copy of the history ledger in insertion order.
func (r *Registry) History() []model.HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ledger.Entries()
}

// ActiveTimerID returns the id of the running timer, or "".
func (r *Registry) ActiveTimerID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slot.Holder()
}

// LastResetDate returns the date of the last midnight rollover.
func (r *Registry) LastResetDate() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.LastResetDate
}

// ActiveTab returns the last selected dashboard tab.
func (r *Registry) ActiveTab() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.ActiveTab
}

// Now returns the registry clock's current time.
func (r *Registry) Now() time.Time {
	return r.clock.Now()
}

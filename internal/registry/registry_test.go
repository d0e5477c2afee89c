package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	apperrors "github.com/manav03panchal/dailyclocks/internal/errors"
	"github.com/manav03panchal/dailyclocks/internal/logging"
	"github.com/manav03panchal/dailyclocks/internal/model"
	"github.com/manav03panchal/dailyclocks/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)

// recordingSink collects notified labels.
type recordingSink struct {
	mu     sync.Mutex
	labels []string
}

func (s *recordingSink) NotifyCompletion(_ context.Context, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels = append(s.labels, label)
}

func (s *recordingSink) Labels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.labels...)
}

// flakyKV fails writes while fail is set, with err or errWrite.
type flakyKV struct {
	storage.KV
	fail atomic.Bool
	err  error
}

var errWrite = errors.New("write failed")

func (f *flakyKV) failure() error {
	if f.err != nil {
		return f.err
	}
	return errWrite
}

func (f *flakyKV) SetBytes(key string, data []byte) error {
	if f.fail.Load() {
		return f.failure()
	}
	return f.KV.SetBytes(key, data)
}

func (f *flakyKV) Delete(key string) error {
	if f.fail.Load() {
		return f.failure()
	}
	return f.KV.Delete(key)
}

type testEnv struct {
	db    *storage.DB
	store *storage.Store
	clock *clockwork.FakeClock
	sink  *recordingSink
	r     *Registry
}

func sequentialIDs() IDGenerator {
	var n atomic.Int64
	return func() (string, error) {
		return fmt.Sprintf("id-%d", n.Add(1)), nil
	}
}

func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	env := &testEnv{
		db:    db,
		store: storage.NewStore(db),
		clock: clockwork.NewFakeClockAt(t0),
		sink:  &recordingSink{},
	}
	env.r = env.open(t)
	return env
}

// open creates and loads a registry over the env's store and clock.
func (e *testEnv) open(t *testing.T) *Registry {
	t.Helper()
	r := New(e.store, Options{
		Clock:        e.clock,
		TickInterval: time.Second,
		GraceDelay:   2 * time.Second,
		Sink:         e.sink,
		NewID:        sequentialIDs(),
	})
	require.NoError(t, r.Load(context.Background()))
	t.Cleanup(func() {
		r.Close()
	})
	return r
}

// reopen closes the current registry and loads a fresh one.
func (e *testEnv) reopen(t *testing.T) *Registry {
	t.Helper()
	require.NoError(t, e.r.Close())
	e.r = e.open(t)
	return e.r
}

func (e *testEnv) add(t *testing.T, label string, secs int) string {
	t.Helper()
	tm, err := e.r.AddTimer(context.Background(), label, secs)
	require.NoError(t, err)
	return tm.ID
}

func (e *testEnv) get(t *testing.T, id string) model.Timer {
	t.Helper()
	tm, ok := e.r.Timer(id)
	require.True(t, ok, "timer %s missing", id)
	return tm
}

func assertInRange(t *testing.T, r *Registry) {
	t.Helper()
	running := 0
	for _, tm := range r.Timers() {
		assert.GreaterOrEqual(t, tm.Remaining, 0, tm.ID)
		assert.LessOrEqual(t, tm.Remaining, tm.TotalDuration, tm.ID)
		if tm.IsRunning() {
			running++
			assert.Equal(t, tm.ID, r.ActiveTimerID())
		}
	}
	assert.LessOrEqual(t, running, 1)
}

// =============================================================================
// Add
// =============================================================================

func TestAddTimer(t *testing.T) {
	ctx := context.Background()

	t.Run("creates idle timer", func(t *testing.T) {
		env := newEnv(t)
		tm, err := env.r.AddTimer(ctx, "  Focus ", 1500)
		require.NoError(t, err)

		assert.Equal(t, "id-1", tm.ID)
		assert.Equal(t, "Focus", tm.Label)
		assert.Equal(t, 1500, tm.Remaining)
		assert.Equal(t, model.StateIdle, tm.State)
		assert.False(t, tm.Started)

		stored, err := env.store.Timers.List()
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "Focus", stored[0].Label)
	})

	t.Run("rejects empty label", func(t *testing.T) {
		env := newEnv(t)
		_, err := env.r.AddTimer(ctx, "   ", 60)
		assert.ErrorIs(t, err, apperrors.ErrEmptyLabel)
		assert.True(t, apperrors.IsUserError(err))
		assert.Empty(t, env.r.Timers())
	})

	t.Run("rejects non-positive duration", func(t *testing.T) {
		env := newEnv(t)
		_, err := env.r.AddTimer(ctx, "Focus", 0)
		assert.ErrorIs(t, err, apperrors.ErrInvalidDuration)
		_, err = env.r.AddTimer(ctx, "Focus", -5)
		assert.ErrorIs(t, err, apperrors.ErrInvalidDuration)
	})

	t.Run("rejects duplicate id", func(t *testing.T) {
		env := newEnv(t)
		_, err := env.r.AddTimerWithID(ctx, "a", "Focus", 60)
		require.NoError(t, err)
		_, err = env.r.AddTimerWithID(ctx, "a", "Other", 60)
		assert.ErrorIs(t, err, apperrors.ErrDuplicateTimerID)
		assert.Len(t, env.r.Timers(), 1)
	})

	t.Run("collapses whitespace in label", func(t *testing.T) {
		env := newEnv(t)
		tm, err := env.r.AddTimer(ctx, "Deep \t  work", 60)
		require.NoError(t, err)
		assert.Equal(t, "Deep work", tm.Label)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		env := newEnv(t)
		_, err := env.r.AddTimerWithID(ctx, "-bad id", "Focus", 60)
		assert.True(t, apperrors.IsUserError(err))
		assert.Empty(t, env.r.Timers())
	})

	t.Run("generator failure", func(t *testing.T) {
		env := newEnv(t)
		r := New(env.store, Options{Clock: env.clock, NewID: func() (string, error) {
			return "", errors.New("entropy")
		}})
		_, err := r.AddTimer(ctx, "Focus", 60)
		assert.Error(t, err)
	})

	t.Run("default ids are unique", func(t *testing.T) {
		a, err := UUIDv7()
		require.NoError(t, err)
		b, err := UUIDv7()
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

// =============================================================================
// Start / Pause / Reset
// =============================================================================

func TestStartAllowsOneRunningTimer(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	a := env.add(t, "A", 60)
	b := env.add(t, "B", 60)

	require.NoError(t, env.r.Start(ctx, a))
	require.NoError(t, env.r.Start(ctx, b))

	assert.Equal(t, model.StateRunning, env.get(t, a).State)
	assert.Equal(t, model.StateIdle, env.get(t, b).State)
	assert.Equal(t, a, env.r.ActiveTimerID())

	require.NoError(t, env.r.Pause(ctx, a))
	require.NoError(t, env.r.Start(ctx, b))
	assert.Equal(t, model.StateRunning, env.get(t, b).State)
	assert.Equal(t, b, env.r.ActiveTimerID())

	active, err := env.store.Active.Get()
	require.NoError(t, err)
	assert.Equal(t, b, active)
	assertInRange(t, env.r)
}

func TestStartUnknownOrRunningIsNoop(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	id := env.add(t, "A", 60)

	assert.NoError(t, env.r.Start(ctx, "missing"))
	assert.NoError(t, env.r.Pause(ctx, "missing"))
	assert.NoError(t, env.r.Reset(ctx, "missing"))
	assert.NoError(t, env.r.Remove(ctx, "missing"))

	require.NoError(t, env.r.Start(ctx, id))
	env.clock.Advance(10 * time.Second)
	require.NoError(t, env.r.Start(ctx, id))

	_, err := env.r.Pass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, env.get(t, id).Remaining)
}

func TestRemainingDerivesFromClock(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	id := env.add(t, "A", 60)
	require.NoError(t, env.r.Start(ctx, id))

	// No ticks are delivered; the remaining time still follows the clock.
	env.clock.Advance(10*time.Second + 500*time.Millisecond)
	_, err := env.r.Pass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, env.get(t, id).Remaining)

	env.clock.Advance(500 * time.Millisecond)
	_, err = env.r.Pass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 49, env.get(t, id).Remaining)
}

func TestPauseAndResume(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	id := env.add(t, "A", 100)

	require.NoError(t, env.r.Start(ctx, id))
	env.clock.Advance(30 * time.Second)
	require.NoError(t, env.r.Pause(ctx, id))

	tm := env.get(t, id)
	assert.Equal(t, model.StateIdle, tm.State)
	assert.Equal(t, 70, tm.Remaining)
	assert.True(t, tm.Started)
	assert.Nil(t, tm.StartTimestamp)
	assert.Empty(t, env.r.ActiveTimerID())

	snap, found, err := env.store.Timers.Snapshot(id)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, snap.IsRunning)
	assert.Equal(t, 70, snap.RemainingOr(-1))

	env.clock.Advance(100 * time.Second)
	assert.Equal(t, 70, env.get(t, id).Remaining)

	require.NoError(t, env.r.Start(ctx, id))
	env.clock.Advance(20 * time.Second)
	_, err = env.r.Pass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, env.get(t, id).Remaining)

	// Pausing an idle timer does nothing.
	require.NoError(t, env.r.Pause(ctx, id))
	require.NoError(t, env.r.Pause(ctx, id))
	assert.Equal(t, 50, env.get(t, id).Remaining)
}

func TestPauseAfterExpiryCompletes(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	id := env.add(t, "A", 10)

	require.NoError(t, env.r.Start(ctx, id))
	env.clock.Advance(15 * time.Second)
	require.NoError(t, env.r.Pause(ctx, id))

	assert.Equal(t, model.StateCompleted, env.get(t, id).State)
	entries := env.r.History()
	require.Len(t, entries, 1)
	assert.Equal(t, "100.00", entries[0].Percent())
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	id := env.add(t, "A", 100)

	require.NoError(t, env.r.Start(ctx, id))
	env.clock.Advance(40 * time.Second)
	require.NoError(t, env.r.Reset(ctx, id))

	tm := env.get(t, id)
	assert.Equal(t, model.StateIdle, tm.State)
	assert.Equal(t, 100, tm.Remaining)
	assert.Empty(t, env.r.ActiveTimerID())

	_, found, err := env.store.Timers.Snapshot(id)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestResetCompletedIsNoop(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	id := env.add(t, "A", 10)

	require.NoError(t, env.r.Start(ctx, id))
	env.clock.Advance(10 * time.Second)
	_, err := env.r.Pass(ctx)
	require.NoError(t, err)

	require.NoError(t, env.r.Reset(ctx, id))
	tm := env.get(t, id)
	assert.Equal(t, model.StateCompleted, tm.State)
	assert.Equal(t, 0, tm.Remaining)
}

func TestResetAll(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	a := env.add(t, "A", 100)
	b := env.add(t, "B", 100)

	require.NoError(t, env.r.Start(ctx, a))
	env.clock.Advance(30 * time.Second)
	require.NoError(t, env.r.Pause(ctx, a))
	require.NoError(t, env.r.Start(ctx, b))
	env.clock.Advance(10 * time.Second)

	n, err := env.r.ResetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	for _, tm := range env.r.Timers() {
		assert.Equal(t, model.StateIdle, tm.State)
		assert.Equal(t, 100, tm.Remaining)
	}
	assert.Empty(t, env.r.ActiveTimerID())
}

// =============================================================================
// Completion / Remove / History
// =============================================================================

func TestNaturalCompletion(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	id := env.add(t, "Focus", 1500)

	require.NoError(t, env.r.Start(ctx, id))
	env.clock.Advance(1500 * time.Second)

	n, err := env.r.Pass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tm := env.get(t, id)
	assert.Equal(t, model.StateCompleted, tm.State)
	assert.Equal(t, 0, tm.Remaining)
	assert.Empty(t, env.r.ActiveTimerID())

	entries := env.r.History()
	require.Len(t, entries, 1)
	assert.Equal(t, "Focus", entries[0].Label)
	assert.Equal(t, 1500, entries[0].TimeSet)
	assert.Equal(t, 1500, entries[0].TimeSpent)
	assert.Equal(t, "100.00", entries[0].Percent())

	require.Eventually(t, func() bool {
		return len(env.sink.Labels()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"Focus"}, env.sink.Labels())

	// A second pass does not complete it again.
	n, err = env.r.Pass(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	env.clock.Advance(2 * time.Second)
	require.Eventually(t, func() bool {
		_, ok := env.r.Timer(id)
		return !ok
	}, time.Second, 5*time.Millisecond)

	stored, err := env.store.Timers.List()
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Len(t, env.r.History(), 1)
}

func TestRemoveNeverStarted(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	id := env.add(t, "Read", 600)

	require.NoError(t, env.r.Remove(ctx, id))

	_, ok := env.r.Timer(id)
	assert.False(t, ok)
	entries := env.r.History()
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].TimeSpent)
	assert.Equal(t, "0.00", entries[0].Percent())

	stored, err := env.store.History.List()
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestRemoveRunningRecordsPartial(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	id := env.add(t, "Write", 100)

	require.NoError(t, env.r.Start(ctx, id))
	env.clock.Advance(40 * time.Second)
	require.NoError(t, env.r.Remove(ctx, id))

	entries := env.r.History()
	require.Len(t, entries, 1)
	assert.Equal(t, 40, entries[0].TimeSpent)
	assert.Equal(t, "40.00", entries[0].Percent())
	assert.Empty(t, env.r.ActiveTimerID())

	_, found, err := env.store.Timers.Snapshot(id)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRemoveExpiredRunningRecordsOnce(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	id := env.add(t, "Write", 10)

	require.NoError(t, env.r.Start(ctx, id))
	env.clock.Advance(25 * time.Second)
	require.NoError(t, env.r.Remove(ctx, id))

	entries := env.r.History()
	require.Len(t, entries, 1)
	assert.Equal(t, "100.00", entries[0].Percent())
	_, ok := env.r.Timer(id)
	assert.False(t, ok)
}

func TestRemoveCompletedAddsNoEntry(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	id := env.add(t, "Focus", 10)

	require.NoError(t, env.r.Start(ctx, id))
	env.clock.Advance(10 * time.Second)
	_, err := env.r.Pass(ctx)
	require.NoError(t, err)

	require.NoError(t, env.r.Remove(ctx, id))
	_, ok := env.r.Timer(id)
	assert.False(t, ok)
	assert.Len(t, env.r.History(), 1)

	// The grace removal finds nothing left to do.
	env.clock.Advance(5 * time.Second)
	assert.Len(t, env.r.History(), 1)
}

func TestHistoryMergesSameLabelSameDay(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)

	first := env.add(t, "Focus", 100)
	require.NoError(t, env.r.Remove(ctx, first))

	env.clock.Advance(time.Hour)
	second := env.add(t, "focus ", 100)
	require.NoError(t, env.r.Start(ctx, second))
	env.clock.Advance(50 * time.Second)
	require.NoError(t, env.r.Remove(ctx, second))

	entries := env.r.History()
	require.Len(t, entries, 1)
	assert.Equal(t, "focus", entries[0].Label)
	assert.Equal(t, 200, entries[0].TimeSet)
	assert.Equal(t, 50, entries[0].TimeSpent)
	assert.Equal(t, "25.00", entries[0].Percent())
	assert.Equal(t, env.clock.Now(), entries[0].RecordedAt)

	// A new day starts a new entry.
	env.clock.Advance(24 * time.Hour)
	third := env.add(t, "Focus", 100)
	require.NoError(t, env.r.Remove(ctx, third))
	assert.Len(t, env.r.History(), 2)
}

// =============================================================================
// Rollover / Tab
// =============================================================================

func TestRollover(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	a := env.add(t, "A", 100)
	b := env.add(t, "B", 10)
	c := env.add(t, "C", 100)

	require.NoError(t, env.r.Start(ctx, b))
	env.clock.Advance(10 * time.Second)
	_, err := env.r.Pass(ctx)
	require.NoError(t, err)
	require.NoError(t, env.r.Start(ctx, a))
	env.clock.Advance(time.Second)

	ran, err := env.r.Rollover(ctx, "2026-03-02")
	require.NoError(t, err)
	assert.True(t, ran)

	assert.Equal(t, model.StateIdle, env.get(t, a).State)
	assert.Equal(t, 100, env.get(t, a).Remaining)
	assert.Equal(t, 100, env.get(t, c).Remaining)
	assert.Equal(t, model.StateCompleted, env.get(t, b).State)
	assert.Empty(t, env.r.ActiveTimerID())
	assert.Equal(t, "2026-03-02", env.r.LastResetDate())

	date, err := env.store.State.LastResetDate()
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", date)

	require.NoError(t, env.r.Start(ctx, a))
	ran, err = env.r.Rollover(ctx, "2026-03-02")
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, model.StateRunning, env.get(t, a).State)
}

func TestSetActiveTab(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	assert.Equal(t, model.TabTimers, env.r.ActiveTab())

	err := env.r.SetActiveTab(ctx, "settings")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTab)

	require.NoError(t, env.r.SetActiveTab(ctx, model.TabHistory))
	assert.Equal(t, model.TabHistory, env.r.ActiveTab())

	r := env.reopen(t)
	assert.Equal(t, model.TabHistory, r.ActiveTab())
}

// =============================================================================
// Load
// =============================================================================

func saveTimers(t *testing.T, env *testEnv, timers ...model.Timer) {
	t.Helper()
	require.NoError(t, env.store.Timers.SaveAll(timers))
}

func runningSnapshot(id string, start time.Time) *model.RunSnapshot {
	tm := model.NewTimer(id, "x", 1, start)
	tm.State = model.StateRunning
	tm.StartTimestamp = &start
	return model.SnapshotOf(tm)
}

func TestLoadResumesRunningTimer(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	id := env.add(t, "A", 100)
	require.NoError(t, env.r.Start(ctx, id))
	env.clock.Advance(30 * time.Second)

	r := env.reopen(t)
	tm, ok := r.Timer(id)
	require.True(t, ok)
	assert.Equal(t, model.StateRunning, tm.State)
	assert.Equal(t, 70, tm.Remaining)
	assert.Equal(t, id, r.ActiveTimerID())
}

func TestLoadCompletesStaleTimerOnPass(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	id := env.add(t, "Tea", 60)
	require.NoError(t, env.r.Start(ctx, id))
	require.NoError(t, env.r.Close())

	env.clock.Advance(90 * time.Second)
	r := env.open(t)
	env.r = r

	tm, ok := r.Timer(id)
	require.True(t, ok)
	assert.Equal(t, model.StateRunning, tm.State)
	assert.Equal(t, 0, tm.Remaining)

	n, err := r.Pass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries := r.History()
	require.Len(t, entries, 1)
	assert.Equal(t, "100.00", entries[0].Percent())
	assert.Equal(t, model.StateCompleted, env.get(t, id).State)
}

func TestLoadIdleStates(t *testing.T) {
	env := newEnv(t)
	paused := *model.NewTimer("paused", "Paused", 100, t0)
	missing := *model.NewTimer("missing", "Missing", 100, t0)
	missing.State = model.StateRunning
	missing.Remaining = 5
	corrupt := *model.NewTimer("corrupt", "Corrupt", 100, t0)
	noStart := *model.NewTimer("nostart", "No start", 100, t0)
	noRemaining := *model.NewTimer("noremaining", "No remaining", 100, t0)
	saveTimers(t, env, paused, missing, corrupt, noStart, noRemaining)

	snap := model.SnapshotOf(&paused)
	forty := 40
	snap.Remaining = &forty
	require.NoError(t, env.store.Timers.SaveSnapshot(snap))
	require.NoError(t, env.db.SetBytes(model.SnapshotKey("corrupt"), []byte("{not json")))
	require.NoError(t, env.db.SetBytes(model.SnapshotKey("nostart"), []byte(`{"version":1,"is_running":true}`)))
	require.NoError(t, env.db.SetBytes(model.SnapshotKey("noremaining"), []byte(`{"version":1,"is_running":false}`)))

	r := env.reopen(t)

	tm, ok := r.Timer("paused")
	require.True(t, ok)
	assert.Equal(t, model.StateIdle, tm.State)
	assert.Equal(t, 40, tm.Remaining)
	assert.True(t, tm.Started)

	for _, id := range []string{"missing", "corrupt", "nostart", "noremaining"} {
		tm, ok := r.Timer(id)
		require.True(t, ok, id)
		assert.Equal(t, model.StateIdle, tm.State, id)
		assert.Equal(t, 100, tm.Remaining, id)
		assert.Nil(t, tm.StartTimestamp, id)
	}
	assert.False(t, mustTimer(t, r, "nostart").Started)
	assert.False(t, mustTimer(t, r, "noremaining").Started)
	assert.Empty(t, r.ActiveTimerID())

	require.NoError(t, r.Remove(context.Background(), "noremaining"))
	entries := r.History()
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].TimeSpent)
	assert.Equal(t, 0.0, entries[0].PercentageCompleted)
}

func mustTimer(t *testing.T, r *Registry, id string) model.Timer {
	t.Helper()
	tm, ok := r.Timer(id)
	require.True(t, ok, id)
	return tm
}

func TestLoadDropsCompletedAndInvalidTimers(t *testing.T) {
	env := newEnv(t)
	done := *model.NewTimer("done", "Done", 10, t0)
	done.State = model.StateCompleted
	done.Remaining = 0
	noLabel := *model.NewTimer("nolabel", "", 10, t0)
	zero := *model.NewTimer("zero", "Zero", 0, t0)
	keep := *model.NewTimer("keep", "Keep", 10, t0)
	dup := *model.NewTimer("keep", "Dup", 20, t0)
	saveTimers(t, env, done, noLabel, zero, keep, dup)
	require.NoError(t, env.store.Timers.SaveSnapshot(model.SnapshotOf(&done)))

	r := env.reopen(t)

	timers := r.Timers()
	require.Len(t, timers, 1)
	assert.Equal(t, "Keep", timers[0].Label)
	assert.Empty(t, r.History())

	stored, err := env.store.Timers.List()
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	_, found, err := env.store.Timers.Snapshot("done")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoadPrunesOrphanSnapshots(t *testing.T) {
	env := newEnv(t)
	require.NoError(t, env.store.Timers.SaveSnapshot(runningSnapshot("ghost", t0)))

	env.reopen(t)

	_, found, err := env.store.Timers.Snapshot("ghost")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoadKeepsOneRunningTimer(t *testing.T) {
	env := newEnv(t)
	a := *model.NewTimer("a", "A", 100, t0)
	b := *model.NewTimer("b", "B", 100, t0)
	saveTimers(t, env, a, b)
	require.NoError(t, env.store.Timers.SaveSnapshot(runningSnapshot("a", t0)))
	require.NoError(t, env.store.Timers.SaveSnapshot(runningSnapshot("b", t0)))
	require.NoError(t, env.store.Active.Set("b"))

	env.clock.Advance(10 * time.Second)
	r := env.reopen(t)

	assert.Equal(t, model.StateIdle, env.get(t, "a").State)
	assert.Equal(t, model.StateRunning, env.get(t, "b").State)
	assert.Equal(t, 90, env.get(t, "b").Remaining)
	assert.Equal(t, "b", r.ActiveTimerID())
	assertInRange(t, r)
}

func TestLoadHealsStaleSlot(t *testing.T) {
	env := newEnv(t)
	saveTimers(t, env, *model.NewTimer("a", "A", 100, t0))
	require.NoError(t, env.store.Active.Set("a"))

	r := env.reopen(t)
	assert.Empty(t, r.ActiveTimerID())

	active, err := env.store.Active.Get()
	require.NoError(t, err)
	assert.Empty(t, active)
}

// =============================================================================
// Ticking
// =============================================================================

func TestTickTasks(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	require.NoError(t, env.r.StartTicking(ctx))
	id := env.add(t, "Tea", 3)
	require.NoError(t, env.r.Start(ctx, id))

	for want := 2; want >= 1; want-- {
		env.clock.Advance(time.Second)
		require.Eventually(t, func() bool {
			return env.get(t, id).Remaining == want
		}, time.Second, 5*time.Millisecond)
	}

	env.clock.Advance(time.Second)
	require.Eventually(t, func() bool {
		return len(env.r.History()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, model.StateCompleted, env.get(t, id).State)
}

func TestStaleTickIsDropped(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	r := New(env.store, Options{Clock: env.clock, TickInterval: time.Hour, NewID: sequentialIDs()})
	t.Cleanup(func() { r.Close() })
	require.NoError(t, r.StartTicking(ctx))

	tm, err := r.AddTimer(ctx, "A", 60)
	require.NoError(t, err)
	require.NoError(t, r.Start(ctx, tm.ID))

	r.mu.Lock()
	oldToken := r.tasks[tm.ID].token
	r.mu.Unlock()

	require.NoError(t, r.Pause(ctx, tm.ID))
	require.NoError(t, r.Start(ctx, tm.ID))
	env.clock.Advance(100 * time.Second)

	r.tick(tm.ID, oldToken)
	got, _ := r.Timer(tm.ID)
	assert.Equal(t, model.StateRunning, got.State)
	assert.Equal(t, 60, got.Remaining)

	r.mu.Lock()
	newToken := r.tasks[tm.ID].token
	r.mu.Unlock()

	r.tick(tm.ID, newToken)
	got, _ = r.Timer(tm.ID)
	assert.Equal(t, model.StateCompleted, got.State)
}

// =============================================================================
// Persistence failures / Close
// =============================================================================

func TestWriteFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	kv := &flakyKV{KV: db}
	clock := clockwork.NewFakeClockAt(t0)
	r := New(storage.NewStore(kv), Options{Clock: clock, NewID: sequentialIDs()})
	require.NoError(t, r.Load(ctx))

	tm, err := r.AddTimer(ctx, "A", 60)
	require.NoError(t, err)

	kv.fail.Store(true)
	require.NoError(t, r.Start(ctx, tm.ID))
	got, _ := r.Timer(tm.ID)
	assert.Equal(t, model.StateRunning, got.State)
	assert.Equal(t, tm.ID, r.ActiveTimerID())
	require.NoError(t, r.Close())

	kv.fail.Store(false)
	reloaded := New(storage.NewStore(db), Options{Clock: clock})
	require.NoError(t, reloaded.Load(ctx))
	t.Cleanup(func() { reloaded.Close() })

	got, ok := reloaded.Timer(tm.ID)
	require.True(t, ok)
	assert.Equal(t, model.StateIdle, got.State)
}

func TestWriteFailureReportsDiskFull(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: slog.LevelWarn, Output: &buf})
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })

	ctx := context.Background()
	kv := &flakyKV{KV: setupTestDB(t), err: fmt.Errorf("sync: %w", syscall.ENOSPC)}
	r := New(storage.NewStore(kv), Options{Clock: clockwork.NewFakeClockAt(t0), NewID: sequentialIDs()})
	require.NoError(t, r.Load(ctx))
	t.Cleanup(func() { r.Close() })

	kv.fail.Store(true)
	tm, err := r.AddTimer(ctx, "A", 60)
	require.NoError(t, err)
	_, ok := r.Timer(tm.ID)
	assert.True(t, ok)

	logs := buf.String()
	assert.Contains(t, logs, "level=ERROR")
	assert.Contains(t, logs, "disk is full")
	assert.Contains(t, logs, "disk full during write on timers")
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	id := env.add(t, "A", 10)
	require.NoError(t, env.r.StartTicking(ctx))
	require.NoError(t, env.r.Start(ctx, id))
	env.clock.Advance(10 * time.Second)
	_, err := env.r.Pass(ctx)
	require.NoError(t, err)

	require.NoError(t, env.r.Close())
	require.NoError(t, env.r.Close())

	assert.Equal(t, []string{"A"}, env.sink.Labels())
	stored, err := env.store.Timers.List()
	require.NoError(t, err)
	assert.Empty(t, stored)

	_, err = env.r.AddTimer(ctx, "B", 10)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, env.r.Start(ctx, id), ErrClosed)
	assert.ErrorIs(t, env.r.StartTicking(ctx), ErrClosed)
	assert.ErrorIs(t, env.r.Load(ctx), ErrClosed)
}

func TestRangeInvariantAcrossOperations(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	ids := []string{env.add(t, "A", 30), env.add(t, "B", 45), env.add(t, "C", 5)}

	for step := 0; step < 40; step++ {
		id := ids[step%len(ids)]
		switch step % 5 {
		case 0:
			_ = env.r.Start(ctx, id)
		case 1:
			_ = env.r.Pause(ctx, id)
		case 2:
			_, _ = env.r.Pass(ctx)
		case 3:
			_ = env.r.Reset(ctx, id)
		case 4:
			_ = env.r.Start(ctx, ids[(step+1)%len(ids)])
		}
		env.clock.Advance(7 * time.Second)
		assertInRange(t, env.r)
	}
}

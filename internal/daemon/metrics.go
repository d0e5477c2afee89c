package daemon

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/manav03panchal/dailyclocks/internal/notify"
	"github.com/manav03panchal/dailyclocks/internal/scheduler"
)

// Metrics tracks runner counters.
type Metrics struct {
	clock clockwork.Clock

	// Counters
	polls       atomic.Int64
	rollovers   atomic.Int64
	completions atomic.Int64
	errorsTotal atomic.Int64

	mu               sync.RWMutex
	lastPollAt       time.Time
	lastRolloverAt   time.Time
	lastCompletionAt time.Time
	lastCompleted    string
	lastError        string
	lastErrorAt      time.Time
	errorsByOp       map[string]int64
}

// NewMetrics creates a metrics tracker timed by clock.
func NewMetrics(clock clockwork.Clock) *Metrics {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Metrics{
		clock:      clock,
		errorsByOp: make(map[string]int64),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	PollsTotal       int64            `json:"polls_total"`
	RolloversTotal   int64            `json:"rollovers_total"`
	CompletionsTotal int64            `json:"completions_total"`
	ErrorsTotal      int64            `json:"errors_total"`
	LastPollAt       *time.Time       `json:"last_poll_at,omitempty"`
	LastRolloverAt   *time.Time       `json:"last_rollover_at,omitempty"`
	LastCompletionAt *time.Time       `json:"last_completion_at,omitempty"`
	LastCompleted    string           `json:"last_completed,omitempty"`
	LastError        string           `json:"last_error,omitempty"`
	LastErrorAt      *time.Time       `json:"last_error_at,omitempty"`
	ErrorsByOp       map[string]int64 `json:"errors_by_op,omitempty"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Snapshot returns a copy of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		PollsTotal:       m.polls.Load(),
		RolloversTotal:   m.rollovers.Load(),
		CompletionsTotal: m.completions.Load(),
		ErrorsTotal:      m.errorsTotal.Load(),
		LastPollAt:       timePtr(m.lastPollAt),
		LastRolloverAt:   timePtr(m.lastRolloverAt),
		LastCompletionAt: timePtr(m.lastCompletionAt),
		LastCompleted:    m.lastCompleted,
		LastError:        m.lastError,
		LastErrorAt:      timePtr(m.lastErrorAt),
		ErrorsByOp:       make(map[string]int64, len(m.errorsByOp)),
	}
	for k, v := range m.errorsByOp {
		snap.ErrorsByOp[k] = v
	}
	return snap
}

// JSON returns metrics as JSON.
func (m *Metrics) JSON() ([]byte, error) {
	return json.MarshalIndent(m.Snapshot(), "", "  ")
}

// RecordPoll records one scheduler poll.
func (m *Metrics) RecordPoll() {
	m.polls.Add(1)
	m.mu.Lock()
	m.lastPollAt = m.clock.Now()
	m.mu.Unlock()
}

// RecordRollover records a midnight rollover.
func (m *Metrics) RecordRollover() {
	m.rollovers.Add(1)
	m.mu.Lock()
	m.lastRolloverAt = m.clock.Now()
	m.mu.Unlock()
}

// RecordCompletion records a timer reaching zero.
func (m *Metrics) RecordCompletion(label string) {
	m.completions.Add(1)
	m.mu.Lock()
	m.lastCompletionAt = m.clock.Now()
	m.lastCompleted = label
	m.mu.Unlock()
}

// RecordError records a failed operation.
func (m *Metrics) RecordError(op string, err error) {
	m.errorsTotal.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastError = err.Error()
	m.lastErrorAt = m.clock.Now()
	if op != "" {
		m.errorsByOp[op]++
	}
}

// Polls returns the total scheduler polls.
func (m *Metrics) Polls() int64 { return m.polls.Load() }

// Rollovers returns the total rollovers.
func (m *Metrics) Rollovers() int64 { return m.rollovers.Load() }

// Completions returns the total completions.
func (m *Metrics) Completions() int64 { return m.completions.Load() }

// ErrorsTotal returns the total errors.
func (m *Metrics) ErrorsTotal() int64 { return m.errorsTotal.Load() }

// Sink wraps next so every completion alert is also counted.
func (m *Metrics) Sink(next notify.Sink) notify.Sink {
	if next == nil {
		next = notify.NopSink{}
	}
	return notify.SinkFunc(func(ctx context.Context, label string) {
		m.RecordCompletion(label)
		next.NotifyCompletion(ctx, label)
	})
}

// Registry wraps reg so scheduler polls, rollovers and failures are counted.
func (m *Metrics) Registry(reg scheduler.Registry) scheduler.Registry {
	return &meteredRegistry{next: reg, metrics: m}
}

type meteredRegistry struct {
	next    scheduler.Registry
	metrics *Metrics
}

func (r *meteredRegistry) Rollover(ctx context.Context, today string) (bool, error) {
	rolled, err := r.next.Rollover(ctx, today)
	if err != nil {
		r.metrics.RecordError("rollover", err)
	}
	if rolled {
		r.metrics.RecordRollover()
	}
	return rolled, err
}

// Pass runs once per poll, after the rollover check.
func (r *meteredRegistry) Pass(ctx context.Context) (int, error) {
	r.metrics.RecordPoll()
	n, err := r.next.Pass(ctx)
	if err != nil {
		r.metrics.RecordError("pass", err)
	}
	return n, err
}

package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	apperrors "github.com/manav03panchal/dailyclocks/internal/errors"
	"github.com/manav03panchal/dailyclocks/internal/logging"
	"github.com/manav03panchal/dailyclocks/internal/model"
	"github.com/manav03panchal/dailyclocks/internal/scheduler"
)

// Registry is the part of the timer registry the runner drives.
type Registry interface {
	scheduler.Registry
	StartTicking(ctx context.Context) error
	ActiveTimerID() string
	Timer(id string) (model.Timer, bool)
}

// Options configures a Runner.
type Options struct {
	Fs             afero.Fs
	PIDPath        string
	StatePath      string
	Clock          clockwork.Clock
	PollSpec       string
	RolloverWindow time.Duration
	KillTimeout    time.Duration
	Version        string

	// Metrics is shared with the completion sink when set.
	Metrics *Metrics
	// Signals replaces the OS signal handler in tests.
	Signals *SignalHandler
}

// Runner keeps timers ticking and the rollover scheduler polling until it
// is told to shut down. Only one runner may be active per state directory.
type Runner struct {
	fs          afero.Fs
	pidFile     *PIDFile
	statePath   string
	registry    Registry
	clock       clockwork.Clock
	pollSpec    string
	window      time.Duration
	killTimeout time.Duration
	metrics     *Metrics
	health      *HealthChecker
	signals     *SignalHandler
	startedAt   time.Time
}

// Status represents the runner status as seen from another process.
type Status struct {
	Running   bool             `json:"running"`
	PID       int              `json:"pid,omitempty"`
	StartedAt time.Time        `json:"started_at,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Health    *HealthStatus    `json:"health,omitempty"`
	Metrics   *MetricsSnapshot `json:"metrics,omitempty"`
}

// State is what a running runner publishes to its state file on every poll.
type State struct {
	PID       int              `json:"pid"`
	StartedAt time.Time        `json:"started_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Health    *HealthStatus    `json:"health,omitempty"`
	Metrics   *MetricsSnapshot `json:"metrics,omitempty"`
}

// NewRunner creates a runner for reg. reg may be nil for a runner that only
// reports status or stops another process.
func NewRunner(reg Registry, opts Options) *Runner {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.StatePath == "" {
		opts.StatePath = GetStateFilePath()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(opts.Clock)
	}
	if opts.Signals == nil {
		opts.Signals = NewSignalHandler()
	}
	if opts.KillTimeout <= 0 {
		opts.KillTimeout = 5 * time.Second
	}

	return &Runner{
		fs:          opts.Fs,
		pidFile:     NewPIDFile(opts.Fs, opts.PIDPath),
		statePath:   opts.StatePath,
		registry:    reg,
		clock:       opts.Clock,
		pollSpec:    opts.PollSpec,
		window:      opts.RolloverWindow,
		killTimeout: opts.KillTimeout,
		metrics:     opts.Metrics,
		health:      NewHealthChecker(opts.Version, opts.Clock),
		signals:     opts.Signals,
	}
}

// Metrics returns the runner's metrics.
func (r *Runner) Metrics() *Metrics {
	return r.metrics
}

// PIDFile returns the runner's PID file.
func (r *Runner) PIDFile() *PIDFile {
	return r.pidFile
}

// IsRunning returns true if a runner process is alive.
func (r *Runner) IsRunning() bool {
	return r.pidFile.RunningPID() > 0
}

// Run blocks until a shutdown signal arrives or ctx is cancelled. Timers
// tick and the scheduler polls for the whole time.
func (r *Runner) Run(ctx context.Context) error {
	if r.registry == nil {
		return errors.New("runner has no registry")
	}
	log := logging.FromContext(ctx)

	if pid := r.pidFile.RunningPID(); pid > 0 {
		return fmt.Errorf("%w (pid %d)", apperrors.ErrAlreadyRunning, pid)
	}
	if r.pidFile.Exists() {
		log.Info("replacing stale PID file", "path", r.pidFile.Path())
	}
	if err := r.pidFile.Write(); err != nil {
		return err
	}
	defer r.cleanup(ctx)

	r.startedAt = r.clock.Now()

	if err := r.registry.StartTicking(ctx); err != nil {
		return err
	}

	sched := scheduler.NewScheduler(r.metrics.Registry(r.registry), r.clock, r.pollSpec, r.window)
	r.health.SetRunningTimer(r.runningLabel)
	r.health.AddCheck("pid_file", func() error {
		if !r.pidFile.Exists() {
			return errors.New("PID file missing")
		}
		return nil
	})
	r.health.AddCheck("scheduler", func() error {
		if sched.NextRun().IsZero() {
			return errors.New("no poll scheduled")
		}
		return nil
	})

	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	if _, err := sched.AddJob(sched.PollSpec(), func() { r.publish(ctx) }); err != nil {
		return fmt.Errorf("failed to add status job: %w", err)
	}
	r.publish(ctx)

	r.signals.Setup()
	defer r.signals.Stop()

	log.Info("runner started", "pid", os.Getpid(), "next_poll", sched.NextRun())

	if sig := r.signals.Wait(ctx); sig != nil {
		log.Info("received signal", "signal", sig.String())
	}
	return nil
}

// Shutdown releases a Run blocked on signals.
func (r *Runner) Shutdown() {
	r.signals.Stop()
}

func (r *Runner) cleanup(ctx context.Context) {
	log := logging.FromContext(ctx)
	if err := r.pidFile.Remove(); err != nil {
		log.Warn("failed to remove PID file", logging.KeyError, err)
	}
	r.removeState(ctx)
}

func (r *Runner) runningLabel() string {
	id := r.registry.ActiveTimerID()
	if id == "" {
		return ""
	}
	if t, ok := r.registry.Timer(id); ok && t.IsRunning() {
		return t.Label
	}
	return ""
}

// publish writes the state file read by Status.
func (r *Runner) publish(ctx context.Context) {
	snap := r.metrics.Snapshot()
	state := &State{
		PID:       os.Getpid(),
		StartedAt: r.startedAt,
		UpdatedAt: r.clock.Now(),
		Health:    r.health.Check(),
		Metrics:   &snap,
	}
	if err := r.writeState(state); err != nil {
		logging.FromContext(ctx).Warn("failed to write runner state", logging.KeyError, err, "path", r.statePath)
	}
}

// Status reports whether a runner is alive and, if so, what it last
// published.
func (r *Runner) Status() *Status {
	status := &Status{}

	pid := r.pidFile.RunningPID()
	if pid == 0 {
		return status
	}
	status.Running = true
	status.PID = pid

	if state, err := r.readState(); err == nil {
		status.StartedAt = state.StartedAt
		status.Uptime = formatUptime(r.clock.Since(state.StartedAt))
		status.Health = state.Health
		status.Metrics = state.Metrics
	}
	return status
}

// Stop interrupts the running runner and waits up to the kill timeout for
// it to exit before killing it.
func (r *Runner) Stop(ctx context.Context) error {
	pid := r.pidFile.RunningPID()
	if pid == 0 {
		return ErrNotRunning
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(os.Interrupt); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to stop runner: %w", err)
		}
	}

	// The runner is not our child, so poll instead of Wait.
	deadline := r.clock.After(r.killTimeout)
	ticker := r.clock.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

wait:
	for IsProcessRunning(pid) {
		select {
		case <-ticker.Chan():
		case <-deadline:
			logging.FromContext(ctx).Warn("runner did not exit in time, killing", "pid", pid)
			process.Kill()
			break wait
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.cleanup(ctx)
	return nil
}

func (r *Runner) writeState(state *State) error {
	if err := r.fs.MkdirAll(filepath.Dir(r.statePath), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return afero.WriteFile(r.fs, r.statePath, data, 0o644)
}

func (r *Runner) readState() (*State, error) {
	data, err := afero.ReadFile(r.fs, r.statePath)
	if err != nil {
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *Runner) removeState(ctx context.Context) {
	if err := r.fs.Remove(r.statePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.FromContext(ctx).Warn("failed to remove runner state file", logging.KeyError, err, "path", r.statePath)
	}
}

// formatUptime formats a duration as uptime.
func formatUptime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % 60
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	if hours > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dd", days)
}

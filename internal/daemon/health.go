package daemon

import (
	"encoding/json"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Health states.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus represents the current health state of the runner.
type HealthStatus struct {
	Status        string        `json:"status"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	MemoryMB      float64       `json:"memory_mb"`
	Goroutines    int           `json:"goroutines"`
	RunningTimer  string        `json:"running_timer,omitempty"`
	LastCheck     time.Time     `json:"last_check"`
	Version       string        `json:"version,omitempty"`
	Checks        []CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// HealthChecker reports the runner's health.
type HealthChecker struct {
	mu           sync.RWMutex
	clock        clockwork.Clock
	startTime    time.Time
	lastCheck    time.Time
	version      string
	runningTimer func() string
	customChecks map[string]func() error
}

// NewHealthChecker creates a health checker whose uptime starts now.
func NewHealthChecker(version string, clock clockwork.Clock) *HealthChecker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HealthChecker{
		clock:        clock,
		startTime:    clock.Now(),
		version:      version,
		customChecks: make(map[string]func() error),
	}
}

// SetRunningTimer installs the lookup reporting the running timer's label.
func (h *HealthChecker) SetRunningTimer(fn func() string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runningTimer = fn
}

// AddCheck adds a named health check.
func (h *HealthChecker) AddCheck(name string, check func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.customChecks[name] = check
}

// RemoveCheck removes a named health check.
func (h *HealthChecker) RemoveCheck(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.customChecks, name)
}

// Check runs every check and returns the status.
func (h *HealthChecker) Check() *HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.mu.Lock()
	h.lastCheck = h.clock.Now()
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()

	status := &HealthStatus{
		Status:        StatusHealthy,
		UptimeSeconds: int64(h.clock.Since(h.startTime).Seconds()),
		MemoryMB:      float64(memStats.Alloc) / 1024 / 1024,
		Goroutines:    runtime.NumGoroutine(),
		LastCheck:     h.lastCheck,
		Version:       h.version,
	}
	if h.runningTimer != nil {
		status.RunningTimer = h.runningTimer()
	}

	names := make([]string, 0, len(h.customChecks))
	for name := range h.customChecks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		result := CheckResult{Name: name, Healthy: true}
		if err := h.customChecks[name](); err != nil {
			result.Healthy = false
			result.Error = err.Error()
			status.Status = StatusUnhealthy
		}
		status.Checks = append(status.Checks, result)
	}
	return status
}

// IsHealthy returns true if every check passes.
func (h *HealthChecker) IsHealthy() bool {
	return h.Check().Status == StatusHealthy
}

// Uptime returns how long the runner has been up.
func (h *HealthChecker) Uptime() time.Duration {
	return h.clock.Since(h.startTime)
}

// JSON returns the health status as JSON.
func (h *HealthChecker) JSON() ([]byte, error) {
	return json.MarshalIndent(h.Check(), "", "  ")
}

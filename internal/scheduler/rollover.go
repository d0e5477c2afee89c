package scheduler

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/manav03panchal/dailyclocks/internal/model"
)

// Registry is the part of the timer registry the scheduler drives.
type Registry interface {
	Rollover(ctx context.Context, today string) (bool, error)
	Pass(ctx context.Context) (int, error)
}

// RolloverChecker resets every timer shortly after local midnight, once per
// calendar day.
type RolloverChecker struct {
	registry Registry
	clock    clockwork.Clock
	window   time.Duration
}

// NewRolloverChecker creates a checker that fires during the first window
// of each local day.
func NewRolloverChecker(registry Registry, clock clockwork.Clock, window time.Duration) *RolloverChecker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RolloverChecker{registry: registry, clock: clock, window: window}
}

// InWindow reports whether now falls in [00:00, 00:00+window) local time.
func (c *RolloverChecker) InWindow(now time.Time) bool {
	now = now.Local()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return now.Sub(midnight) < c.window
}

// Check runs the rollover when inside the window. The registry ignores
// dates it has already rolled over, so repeated polls fire once.
func (c *RolloverChecker) Check(ctx context.Context) (bool, error) {
	now := c.clock.Now()
	if !c.InWindow(now) {
		return false, nil
	}
	return c.registry.Rollover(ctx, now.Local().Format(model.DateLayout))
}

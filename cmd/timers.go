package cmd

import (
	"github.com/manav03panchal/dailyclocks/internal/model"
)

// resolveTimer looks ref up and reports an unmatched reference itself, so
// callers treat !ok as a finished no-op.
func resolveTimer(ref string) (model.Timer, bool, error) {
	t, ok, err := ctx.Resolve(ref)
	if err != nil {
		return model.Timer{}, false, err
	}
	if !ok {
		if ctx.IsJSON() {
			return model.Timer{}, false, ctx.JSONFormatter().PrintNoSuchTimer(ref)
		}
		ctx.CLIFormatter().PrintNoSuchTimer(ref)
		return model.Timer{}, false, nil
	}
	return t, true, nil
}

var actionVerbs = map[string]string{
	"started":         "Started",
	"already_running": "Running",
	"completed":       "Already finished",
	"paused":          "Paused",
	"not_running":     "Not running",
	"reset":           "Reset",
}

// printAction prints the timer id after an operation with the given status.
func printAction(status, id string) error {
	t, ok := ctx.Registry.Timer(id)
	if !ok {
		return nil
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintTimerAction(status, t, ctx.Registry.ActiveTimerID())
	}
	ctx.CLIFormatter().PrintTimerAction(actionVerbs[status], t)
	return nil
}

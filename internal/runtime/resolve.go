package runtime

import (
	"fmt"
	"strings"

	apperrors "github.com/manav03panchal/dailyclocks/internal/errors"
	"github.com/manav03panchal/dailyclocks/internal/model"
)

// MinPrefixLen is the shortest id prefix accepted as a timer reference.
const MinPrefixLen = 4

// ResolveTimer finds the timer a user reference names: a full id, a unique
// id prefix of at least MinPrefixLen characters, or a unique label
// (case-insensitive). ok is false when nothing matches; several matches
// are an ErrAmbiguousTimer error.
func ResolveTimer(timers []model.Timer, ref string) (model.Timer, bool, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Timer{}, false, nil
	}

	for _, t := range timers {
		if t.ID == ref {
			return t, true, nil
		}
	}

	if len(ref) >= MinPrefixLen {
		if t, ok, err := unique(timers, ref, func(t model.Timer) bool {
			return strings.HasPrefix(t.ID, ref)
		}); ok || err != nil {
			return t, ok, err
		}
	}

	return unique(timers, ref, func(t model.Timer) bool {
		return strings.EqualFold(t.Label, ref)
	})
}

func unique(timers []model.Timer, ref string, match func(model.Timer) bool) (model.Timer, bool, error) {
	var found []model.Timer
	for _, t := range timers {
		if match(t) {
			found = append(found, t)
		}
	}

	switch len(found) {
	case 0:
		return model.Timer{}, false, nil
	case 1:
		return found[0], true, nil
	default:
		return model.Timer{}, false, fmt.Errorf("%w: %q matches %d timers", apperrors.ErrAmbiguousTimer, ref, len(found))
	}
}

// Resolve looks ref up among the registry's timers.
func (c *Context) Resolve(ref string) (model.Timer, bool, error) {
	return ResolveTimer(c.Registry.Timers(), ref)
}

// RunningTimer returns the timer holding the active slot.
func (c *Context) RunningTimer() (model.Timer, bool) {
	id := c.Registry.ActiveTimerID()
	if id == "" {
		return model.Timer{}, false
	}
	return c.Registry.Timer(id)
}

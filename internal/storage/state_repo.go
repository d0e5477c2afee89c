package storage

import (
	"time"

	"github.com/manav03panchal/dailyclocks/internal/model"
)

// StateRepo provides operations for the rollover date and the dashboard tab.
type StateRepo struct {
	kv KV
}

// NewStateRepo creates a new state repository.
func NewStateRepo(kv KV) *StateRepo {
	return &StateRepo{kv: kv}
}

// LastResetDate returns the date of the last rollover, or "" if none or
// if the stored value is not a calendar date.
func (r *StateRepo) LastResetDate() (string, error) {
	rec := model.NewResetRecord("")
	found, err := load(r.kv, model.KeyLastResetDate, rec)
	if err != nil || !found {
		return "", err
	}
	if _, perr := time.Parse(model.DateLayout, rec.Date); perr != nil {
		return "", nil
	}
	return rec.Date, nil
}

// SetLastResetDate records the date of the last rollover.
func (r *StateRepo) SetLastResetDate(date string) error {
	return Set(r.kv, model.NewResetRecord(date))
}

// ActiveTab returns the last selected dashboard tab, defaulting to timers.
func (r *StateRepo) ActiveTab() (string, error) {
	rec := model.NewTabRecord(model.TabTimers)
	found, err := load(r.kv, model.KeyActiveTab, rec)
	if err != nil {
		return model.TabTimers, err
	}
	if !found || !model.IsValidTab(rec.Tab) {
		return model.TabTimers, nil
	}
	return rec.Tab, nil
}

// SetActiveTab records the selected dashboard tab.
func (r *StateRepo) SetActiveTab(tab string) error {
	return Set(r.kv, model.NewTabRecord(tab))
}

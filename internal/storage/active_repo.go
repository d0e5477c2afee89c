package storage

import (
	"github.com/manav03panchal/dailyclocks/internal/model"
)

// ActiveSlotRepo provides operations for the active timer singleton.
type ActiveSlotRepo struct {
	kv KV
}

// NewActiveSlotRepo creates a new active slot repository.
func NewActiveSlotRepo(kv KV) *ActiveSlotRepo {
	return &ActiveSlotRepo{kv: kv}
}

// Get returns the id of the timer holding the slot, or "" if none.
func (r *ActiveSlotRepo) Get() (string, error) {
	rec := model.NewActiveSlotRecord("")
	if _, err := load(r.kv, model.KeyActiveTimerID, rec); err != nil {
		return "", err
	}
	return rec.TimerID, nil
}

// Set records timerID as the slot holder. An empty id clears the record.
func (r *ActiveSlotRepo) Set(timerID string) error {
	if timerID == "" {
		return r.Clear()
	}
	return Set(r.kv, model.NewActiveSlotRecord(timerID))
}

// Clear removes the slot record.
func (r *ActiveSlotRepo) Clear() error {
	return r.kv.Delete(model.KeyActiveTimerID)
}

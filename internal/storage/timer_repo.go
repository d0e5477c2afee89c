package storage

import (
	"strings"

	"github.com/manav03panchal/dailyclocks/internal/model"
)

// TimerRepo provides operations for the timer collection and the per-timer
// run snapshots.
type TimerRepo struct {
	kv KV
}

// NewTimerRepo creates a new timer repository.
func NewTimerRepo(kv KV) *TimerRepo {
	return &TimerRepo{kv: kv}
}

// List returns every persisted timer in stored order.
func (r *TimerRepo) List() ([]model.Timer, error) {
	coll := model.NewTimerCollection()
	found, err := load(r.kv, model.KeyTimers, coll)
	if err != nil || !found {
		return []model.Timer{}, err
	}
	return coll.Timers, nil
}

// SaveAll replaces the timer collection.
func (r *TimerRepo) SaveAll(timers []model.Timer) error {
	coll := model.NewTimerCollection()
	coll.Timers = append(coll.Timers, timers...)
	return Set(r.kv, coll)
}

// Snapshot returns the run snapshot of a timer. ok is false when the
// snapshot is missing or unreadable.
func (r *TimerRepo) Snapshot(timerID string) (*model.RunSnapshot, bool, error) {
	snap := &model.RunSnapshot{}
	found, err := load(r.kv, model.SnapshotKey(timerID), snap)
	if err != nil || !found {
		return nil, false, err
	}
	return snap, true, nil
}

// SaveSnapshot stores a run snapshot.
func (r *TimerRepo) SaveSnapshot(snap *model.RunSnapshot) error {
	return Set(r.kv, snap)
}

// DeleteSnapshot removes the run snapshot of a timer.
func (r *TimerRepo) DeleteSnapshot(timerID string) error {
	return r.kv.Delete(model.SnapshotKey(timerID))
}

// keyLister is implemented by stores that can enumerate keys.
type keyLister interface {
	ListByPrefix(prefix string) ([]string, error)
}

// PruneSnapshots deletes snapshots whose timer is not in keep. It returns
// the ids it removed. Stores that cannot list keys are left untouched.
func (r *TimerRepo) PruneSnapshots(keep map[string]bool) ([]string, error) {
	lister, ok := r.kv.(keyLister)
	if !ok {
		return nil, nil
	}

	prefix := model.PrefixTimer + ":"
	keys, err := lister.ListByPrefix(prefix)
	if err != nil {
		return nil, err
	}

	var pruned []string
	for _, key := range keys {
		id := strings.TrimPrefix(key, prefix)
		if keep[id] {
			continue
		}
		if err := r.kv.Delete(key); err != nil {
			return pruned, err
		}
		pruned = append(pruned, id)
	}
	return pruned, nil
}

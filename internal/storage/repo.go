package storage

import (
	"github.com/manav03panchal/dailyclocks/internal/logging"
	"github.com/manav03panchal/dailyclocks/internal/model"
)

// Store groups the repositories for every persisted key.
type Store struct {
	Timers  *TimerRepo
	Active  *ActiveSlotRepo
	History *HistoryRepo
	State   *StateRepo
}

// NewStore creates the repositories on top of kv.
func NewStore(kv KV) *Store {
	return &Store{
		Timers:  NewTimerRepo(kv),
		Active:  NewActiveSlotRepo(kv),
		History: NewHistoryRepo(kv),
		State:   NewStateRepo(kv),
	}
}

// LoadAppState reads every singleton into one AppState, falling back to
// defaults per field.
func (s *Store) LoadAppState() (*model.AppState, error) {
	state := model.DefaultAppState()

	activeID, err := s.Active.Get()
	if err != nil {
		return nil, err
	}
	state.ActiveTimerID = activeID

	date, err := s.State.LastResetDate()
	if err != nil {
		return nil, err
	}
	state.LastResetDate = date

	tab, err := s.State.ActiveTab()
	if err != nil {
		return nil, err
	}
	state.ActiveTab = tab

	return state, nil
}

// load reads key into v. Missing and unreadable values both report
// found=false; unreadable ones are logged. Only I/O failures are returned.
func load(kv KV, key string, v model.Model) (bool, error) {
	err := Get(kv, key, v)
	switch {
	case err == nil:
		return true, nil
	case IsErrKeyNotFound(err):
		return false, nil
	case IsUnreadable(err):
		logging.Warn("ignoring unreadable record", logging.KeyStoreKey, key, logging.KeyError, err)
		return false, nil
	default:
		return false, err
	}
}

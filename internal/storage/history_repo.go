package storage

import (
	"github.com/manav03panchal/dailyclocks/internal/model"
)

// HistoryRepo provides operations for the history ledger.
type HistoryRepo struct {
	kv KV
}

// NewHistoryRepo creates a new history repository.
func NewHistoryRepo(kv KV) *HistoryRepo {
	return &HistoryRepo{kv: kv}
}

// List returns every history entry in insertion order.
func (r *HistoryRepo) List() ([]model.HistoryEntry, error) {
	ledger := model.NewHistoryLedger(nil)
	found, err := load(r.kv, model.KeyHistory, ledger)
	if err != nil || !found {
		return []model.HistoryEntry{}, err
	}
	return ledger.Entries, nil
}

// SaveAll replaces the history ledger.
func (r *HistoryRepo) SaveAll(entries []model.HistoryEntry) error {
	return Set(r.kv, model.NewHistoryLedger(entries))
}

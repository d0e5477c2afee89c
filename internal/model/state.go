package model

// Dashboard tabs.
const (
	TabTimers  = "timers"
	TabHistory = "history"
)

// AppState is the process-wide state that outlives any single timer.
// It is loaded once by the registry and written back through its flush step.
type AppState struct {
	ActiveTimerID string
	LastResetDate string
	ActiveTab     string
}

// DefaultAppState returns the state used when nothing has been persisted.
func DefaultAppState() *AppState {
	return &AppState{ActiveTab: TabTimers}
}

// ActiveSlotRecord is the singleton holding the id of the running timer.
type ActiveSlotRecord struct {
	Key     string `json:"key"`
	Version int    `json:"version"`
	TimerID string `json:"timer_id,omitempty"`
}

// SetKey sets the database key for this record.
func (a *ActiveSlotRecord) SetKey(key string) {
	a.Key = key
}

// GetKey returns the database key for this record.
func (a *ActiveSlotRecord) GetKey() string {
	return a.Key
}

// IsTracking returns true if a timer currently holds the slot.
func (a *ActiveSlotRecord) IsTracking() bool {
	return a.TimerID != ""
}

// NewActiveSlotRecord creates the singleton record for the given holder.
func NewActiveSlotRecord(timerID string) *ActiveSlotRecord {
	return &ActiveSlotRecord{
		Key:     KeyActiveTimerID,
		Version: SchemaVersion,
		TimerID: timerID,
	}
}

// ResetRecord stores the local date of the last midnight rollover.
type ResetRecord struct {
	Key     string `json:"key"`
	Version int    `json:"version"`
	Date    string `json:"date"`
}

// SetKey sets the database key for this record.
func (r *ResetRecord) SetKey(key string) {
	r.Key = key
}

// GetKey returns the database key for this record.
func (r *ResetRecord) GetKey() string {
	return r.Key
}

// NewResetRecord creates the singleton record for the given date.
func NewResetRecord(date string) *ResetRecord {
	return &ResetRecord{
		Key:     KeyLastResetDate,
		Version: SchemaVersion,
		Date:    date,
	}
}

// TabRecord stores the dashboard tab that was selected last.
type TabRecord struct {
	Key     string `json:"key"`
	Version int    `json:"version"`
	Tab     string `json:"tab"`
}

// SetKey sets the database key for this record.
func (r *TabRecord) SetKey(key string) {
	r.Key = key
}

// GetKey returns the database key for this record.
func (r *TabRecord) GetKey() string {
	return r.Key
}

// NewTabRecord creates the singleton record for the given tab.
func NewTabRecord(tab string) *TabRecord {
	return &TabRecord{
		Key:     KeyActiveTab,
		Version: SchemaVersion,
		Tab:     tab,
	}
}

// IsValidTab reports whether tab names a dashboard tab.
func IsValidTab(tab string) bool {
	return tab == TabTimers || tab == TabHistory
}

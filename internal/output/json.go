package output

import (
	"time"

	"github.com/manav03panchal/dailyclocks/internal/history"
	"github.com/manav03panchal/dailyclocks/internal/model"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// TimerOutput represents a timer in JSON output.
type TimerOutput struct {
	ID               string  `json:"id"`
	Label            string  `json:"label"`
	TotalSeconds     int     `json:"total_seconds"`
	RemainingSeconds int     `json:"remaining_seconds"`
	State            string  `json:"state"`
	Started          bool    `json:"started"`
	Active           bool    `json:"active"`
	Progress         float64 `json:"progress"`
	StartTimestamp   string  `json:"start_timestamp,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

// NewTimerOutput creates a TimerOutput from a Timer.
func NewTimerOutput(t model.Timer, activeID string) *TimerOutput {
	out := &TimerOutput{
		ID:               t.ID,
		Label:            t.Label,
		TotalSeconds:     t.TotalDuration,
		RemainingSeconds: t.Remaining,
		State:            string(t.State),
		Started:          t.Started,
		Active:           t.ID != "" && t.ID == activeID,
		Progress:         history.Round2(t.Progress()),
		CreatedAt:        t.CreatedAt.Format(time.RFC3339),
	}
	if t.StartTimestamp != nil {
		out.StartTimestamp = t.StartTimestamp.Format(time.RFC3339)
	}
	return out
}

// TimersResponse represents the timer list output in JSON.
type TimersResponse struct {
	Timers        []*TimerOutput `json:"timers"`
	ActiveTimerID string         `json:"active_timer_id,omitempty"`
	Count         int            `json:"count"`
}

// TimerActionResponse represents the output of a single-timer command.
type TimerActionResponse struct {
	Status string       `json:"status"`
	Timer  *TimerOutput `json:"timer,omitempty"`
	Ref    string       `json:"ref,omitempty"`
}

// HistoryEntryOutput represents a history entry in JSON output.
type HistoryEntryOutput struct {
	Label               string  `json:"label"`
	TimeSetSeconds      int     `json:"time_set_seconds"`
	TimeSpentSeconds    int     `json:"time_spent_seconds"`
	PercentageCompleted string  `json:"percentage_completed"`
	Percentage          float64 `json:"percentage"`
	RecordedAt          string  `json:"recorded_at"`
}

// DayOutput represents one date of the history in JSON output.
type DayOutput struct {
	Date             string                `json:"date"`
	TimeSetSeconds   int                   `json:"time_set_seconds"`
	TimeSpentSeconds int                   `json:"time_spent_seconds"`
	Entries          []*HistoryEntryOutput `json:"entries"`
}

// HistoryResponse represents the history output in JSON.
type HistoryResponse struct {
	Days  []*DayOutput `json:"days"`
	Count int          `json:"count"`
}

// NewHistoryResponse creates a HistoryResponse from grouped entries.
func NewHistoryResponse(groups []history.DayGroup) *HistoryResponse {
	resp := &HistoryResponse{Days: make([]*DayOutput, 0, len(groups))}
	for _, g := range groups {
		day := &DayOutput{
			Date:             g.Date,
			TimeSetSeconds:   g.TimeSet(),
			TimeSpentSeconds: g.TimeSpent(),
			Entries:          make([]*HistoryEntryOutput, 0, len(g.Entries)),
		}
		for _, e := range g.Entries {
			day.Entries = append(day.Entries, &HistoryEntryOutput{
				Label:               e.Label,
				TimeSetSeconds:      e.TimeSet,
				TimeSpentSeconds:    e.TimeSpent,
				PercentageCompleted: e.Percent(),
				Percentage:          e.PercentageCompleted,
				RecordedAt:          e.RecordedAt.Format(time.RFC3339),
			})
			resp.Count++
		}
		resp.Days = append(resp.Days, day)
	}
	return resp
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PrintTimers outputs the timer list in JSON format.
func (j *JSONFormatter) PrintTimers(timers []model.Timer, activeID string) error {
	resp := TimersResponse{
		Timers:        make([]*TimerOutput, 0, len(timers)),
		ActiveTimerID: activeID,
		Count:         len(timers),
	}
	for _, t := range timers {
		resp.Timers = append(resp.Timers, NewTimerOutput(t, activeID))
	}
	return j.JSON(resp)
}

// PrintTimerAction outputs a single-timer result in JSON format.
func (j *JSONFormatter) PrintTimerAction(status string, t model.Timer, activeID string) error {
	return j.JSON(TimerActionResponse{Status: status, Timer: NewTimerOutput(t, activeID)})
}

// PrintNoSuchTimer outputs an unmatched reference in JSON format.
func (j *JSONFormatter) PrintNoSuchTimer(ref string) error {
	return j.JSON(TimerActionResponse{Status: "not_found", Ref: ref})
}

// PrintHistory outputs the grouped history in JSON format.
func (j *JSONFormatter) PrintHistory(groups []history.DayGroup) error {
	return j.JSON(NewHistoryResponse(groups))
}

// PrintError outputs an error in JSON format.
func (j *JSONFormatter) PrintError(status, errMsg, message string) error {
	resp := ErrorResponse{
		Status:  status,
		Error:   errMsg,
		Message: message,
	}
	return j.JSON(resp)
}

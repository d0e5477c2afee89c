package errors

import "errors"

// Suggestions maps common errors to helpful suggestions.
var Suggestions = map[error]string{
	ErrEmptyLabel:       "Give the timer a name, e.g. 'dailyclocks add Focus 25m'.",
	ErrInvalidDuration:  "Try formats like '25m', '1h30m', '90s' or '01:30:00'. The total must be above zero.",
	ErrDuplicateTimerID: "Timer ids are generated automatically. Omit --id or choose another.",
	ErrAmbiguousTimer:   "Use more characters of the id, or run 'dailyclocks list' to see ids.",
	ErrInvalidTimestamp: "Try formats like 'today', 'yesterday', '3 days ago' or '2026-01-31'.",
	ErrInvalidTab:       "Valid tabs are 'timers' and 'history'.",

	ErrDiskFull:           "Free up disk space and try again. Timers keep running in memory.",
	ErrDatabaseCorrupted:  "Move the data directory (~/.local/share/dailyclocks/) aside to start fresh.",
	ErrNetworkUnavailable: "Check your internet connection.",
	ErrLockHeld:           "Another dailyclocks process has the database open. Stop it with 'dailyclocks run --stop' or close the dashboard.",
	ErrAlreadyRunning:     "Stop it with 'dailyclocks run --stop' first.",
	ErrTimeout:            "The operation took too long. Try again.",
	ErrPermissionDenied:   "Check file permissions in your data directory (~/.local/share/dailyclocks/).",
}

// GetSuggestion returns a suggestion for an error, if available.
// It walks the error chain to find matching suggestions.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	if ue, ok := AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	return ""
}

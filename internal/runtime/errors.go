package runtime

import (
	apperrors "github.com/manav03panchal/dailyclocks/internal/errors"
)

// GetSuggestion returns a suggestion for an error, if available.
func GetSuggestion(err error) string {
	return apperrors.GetSuggestion(err)
}

// FormatError formats an error for the terminal according to its category.
func FormatError(err error) string {
	return apperrors.FormatByCategory(err)
}

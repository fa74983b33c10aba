package domain

import "errors"

var (
	// ErrInvalidFoundingYear signals a founding-year filter that is not a whole number.
	ErrInvalidFoundingYear = errors.New("invalid founding year")
	// ErrInvalidPage signals a 1-based page number below 1.
	ErrInvalidPage = errors.New("invalid page")
	// ErrInvalidPageSize signals a non-positive page size.
	ErrInvalidPageSize = errors.New("invalid page size")
	// ErrUnknownFilter signals a filter-change event for a field that does not exist.
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrSuggestionOutOfRange signals a suggestion index outside the current list.
	ErrSuggestionOutOfRange = errors.New("suggestion index out of range")
)

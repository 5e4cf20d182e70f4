package query

import "errors"

// Error variables for parsing user-supplied query values.
var (
	ErrInvalidSortKey   = errors.New("invalid sort key")
	ErrInvalidDirection = errors.New("invalid sort direction")
	ErrInvalidOwner     = errors.New("invalid owner filter")
)

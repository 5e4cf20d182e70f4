package catalog

import "errors"

// Error variables for record validation.
var (
	ErrDuplicateID = errors.New("duplicate id")
	ErrInvalidSex  = errors.New("invalid sex")
)

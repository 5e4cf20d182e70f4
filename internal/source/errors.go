package source

import "errors"

// Error variables for loading record sets.
var (
	ErrUnsupportedSource = errors.New("unsupported data file")
	ErrSourceNotFound    = errors.New("data file not found")
	ErrSourceInvalid     = errors.New("invalid data file")
)

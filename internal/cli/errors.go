package cli

import "errors"

var (
	ErrUnknownFlag       = errors.New("unknown flag")
	ErrFlagRequiresArg   = errors.New("flag requires an argument")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrUnknownPerson     = errors.New("unknown person")
	ErrUnknownGrouping   = errors.New("unknown grouping")
	ErrInvalidGroupingID = errors.New("invalid grouping id")
	ErrDescWithoutSort   = errors.New("--desc requires --sort")
	ErrOutputRequired    = errors.New("output file is required (-o)")
	ErrMissingArgument   = errors.New("missing argument")
	ErrUnexpectedArgs    = errors.New("unexpected arguments")
)

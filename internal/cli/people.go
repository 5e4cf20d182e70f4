package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/catalog/internal/query"
	"github.com/calvinalkan/catalog/internal/render"
)

// PeopleCmd returns the people command.
func PeopleCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("people", flag.ContinueOnError),
		Usage: "people",
		Short: "List owners usable with --owner",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: %v", ErrUnexpectedArgs, args)
			}

			store, err := a.loadStore(ctx)
			if err != nil {
				return err
			}

			return render.People(io, store.People(), query.AllOwners)
		},
	}
}

// GroupingsCmd returns the groupings command.
func GroupingsCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("groupings", flag.ContinueOnError),
		Usage: "groupings",
		Short: "List groupings usable with --grouping",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: %v", ErrUnexpectedArgs, args)
			}

			store, err := a.loadStore(ctx)
			if err != nil {
				return err
			}

			return render.Groupings(io, store.Groupings(), query.GroupingSet{})
		},
	}
}

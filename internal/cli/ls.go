package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/catalog/internal/export"
	"github.com/calvinalkan/catalog/internal/render"
)

// LsCmd returns the ls command.
func LsCmd(a *app) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	addQueryFlags(fs)
	fs.Bool("json", false, "Print items as JSON instead of a table")

	return &Command{
		Flags: fs,
		Usage: "ls [flags]",
		Short: "List items matching filters",
		Long: `List items matching the given filters, in load order unless --sort is set.

An item is shown when it passes every filter: its grouping's owner is the
selected person, its name contains the search text (ignoring case) and its
grouping is one of the toggled groupings. Repeating --grouping with the same
id toggles it off again.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execLs(ctx, io, a, fs, args)
		},
	}
}

func execLs(ctx context.Context, io *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %v", ErrUnexpectedArgs, args)
	}

	engine, store, err := a.engine(ctx)
	if err != nil {
		return err
	}

	f, s, err := querySpecs(fs, store)
	if err != nil {
		return err
	}

	visible := engine.ComputeVisible(f, s)

	if asJSON, _ := fs.GetBool("json"); asJSON {
		data, err := export.Marshal(visible)
		if err != nil {
			return err
		}

		io.Printf("%s", data)

		return nil
	}

	return render.Table(io, visible, s, a.renderOptions())
}

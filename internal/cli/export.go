package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/catalog/internal/export"
)

// ExportCmd returns the export command.
func ExportCmd(a *app) *Command {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.StringP("output", "o", "", "Write JSON to `file` (replaced atomically)")
	addQueryFlags(fs)

	return &Command{
		Flags: fs,
		Usage: "export -o <file> [flags]",
		Short: "Write matching items to a JSON file",
		Long:  "Write the items ls would show to a JSON file. The file is replaced atomically.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execExport(ctx, io, a, fs, args)
		},
	}
}

func execExport(ctx context.Context, io *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %v", ErrUnexpectedArgs, args)
	}

	output, _ := fs.GetString("output")
	if output == "" {
		return ErrOutputRequired
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
	path := a.resolvePath(output)

	err = export.WriteJSON(path, visible)
	if err != nil {
		return err
	}

	io.Printf("exported %d items to %s\n", len(visible), path)

	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one catalog subcommand. Its help text is derived from Usage,
// Short, Long and the flag set.
type Command struct {
	Flags *flag.FlagSet // the set's own name is ignored

	// Usage follows "catalog" in help output and starts with the command
	// name, e.g. "export -o <file> [flags]".
	Usage string

	Short string // listed by "catalog --help"
	Long  string // shown by "catalog <cmd> --help"; falls back to Short

	// Exec receives the positional args left after flag parsing.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name is the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// HelpLine formats the command for the top-level command list.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-26s %s", c.Usage, c.Short)
}

// PrintHelp writes the usage line, description and flag defaults to w.
func (c *Command) PrintHelp(w io.Writer) {
	fprintln(w, "Usage: catalog", c.Usage)
	fprintln(w)

	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	fprintln(w, desc)

	if c.Flags != nil && c.Flags.HasFlags() {
		fprintln(w)
		fprintln(w, "Flags:")

		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		_, _ = io.WriteString(w, buf.String())
	}
}

// Run parses args into the flag set and calls Exec. Errors go to stderr
// prefixed with "error:"; a flag error is followed by the command help.
// The result is the process exit code.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{}) // discard pflag output

	err := c.Flags.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o)

			return 0
		}

		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(o.errOut)

		return 1
	}

	err = c.Exec(ctx, o, c.Flags.Args())
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	return o.Finish()
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/calvinalkan/catalog/internal/config"
	"github.com/calvinalkan/catalog/internal/logging"
)

const (
	consumedNone = 0
	consumedOne  = 1
	consumedTwo  = 2
	helpFlag     = "--help"
)

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. When it delivers a signal the command context is
// cancelled.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	if len(args) > 0 {
		args = args[1:] // program name
	}

	flags, err := parseGlobalFlags(args)
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printGlobalFlags(errOut)

		return 1
	}

	if flags.help || len(flags.remaining) == 0 {
		printUsage(out, commands(&app{}))

		return 0
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride:  flags.workDir,
		ConfigPath:       flags.configPath,
		DataOverride:     flags.data,
		LocaleOverride:   flags.locale,
		LogLevelOverride: flags.logLevel,
		Env:              env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	log, err := logging.New(cfg.LogLevel, errOut)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	defer func() { _ = log.Sync() }()

	a := &app{cfg: &cfg, log: log, stdin: stdin, out: out, env: env}

	name := flags.remaining[0]

	cmd, ok := commands(a)[name]
	if !ok {
		fprintln(errOut, "error:", fmt.Errorf("%w: %s", ErrUnknownCommand, name))
		printUsage(errOut, commands(a))

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	return cmd.Run(ctx, NewIO(out, errOut), flags.remaining[1:])
}

// commands returns all commands keyed by name.
func commands(a *app) map[string]*Command {
	list := []*Command{
		LsCmd(a),
		PeopleCmd(a),
		GroupingsCmd(a),
		ExportCmd(a),
		ReplCmd(a),
		PrintConfigCmd(a),
	}

	m := make(map[string]*Command, len(list))
	for _, c := range list {
		m[c.Name()] = c
	}

	return m
}

var commandOrder = []string{"ls", "people", "groupings", "export", "repl", "print-config"}

type globalFlags struct {
	workDir    string
	configPath string
	data       string
	locale     string
	logLevel   string
	help       bool
	remaining  []string
}

// globalFlagSpecs lists the value-taking global flags. An empty short name
// means the flag has no short form.
var globalFlagSpecs = []struct {
	short, long string
	set         func(f *globalFlags, v string)
}{
	{"-C", "--cwd", func(f *globalFlags, v string) { f.workDir = v }},
	{"-c", "--config", func(f *globalFlags, v string) { f.configPath = v }},
	{"-d", "--data", func(f *globalFlags, v string) { f.data = v }},
	{"", "--locale", func(f *globalFlags, v string) { f.locale = v }},
	{"", "--log-level", func(f *globalFlags, v string) { f.logLevel = v }},
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == consumedNone {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	if arg == "-h" || arg == helpFlag {
		flags.help = true

		return len(args) - idx, nil
	}

	for _, spec := range globalFlagSpecs {
		if arg == spec.long || (spec.short != "" && arg == spec.short) {
			if idx+1 >= len(args) {
				return consumedNone, fmt.Errorf("%w: %s", ErrFlagRequiresArg, arg)
			}

			spec.set(flags, args[idx+1])

			return consumedTwo, nil
		}

		if after, ok := strings.CutPrefix(arg, spec.long+"="); ok {
			spec.set(flags, after)

			return consumedOne, nil
		}

		if spec.short != "" && len(arg) > len(spec.short) {
			if after, ok := strings.CutPrefix(arg, spec.short); ok {
				spec.set(flags, after)

				return consumedOne, nil
			}
		}
	}

	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", ErrUnknownFlag, arg)
	}

	return consumedNone, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printGlobalFlags(w io.Writer) {
	fprintln(w, `Global flags:
  -h, --help             Show help
  -C, --cwd <dir>        Run as if started in <dir>
  -c, --config <file>    Use specified config file
  -d, --data <file>      Read catalog data from <file> (.json, .yaml, .db)
      --locale <tag>     Collation locale for sorting (default "en")
      --log-level <lvl>  Log to stderr at debug|info|warn|error`)
}

func printUsage(w io.Writer, cmds map[string]*Command) {
	fprintln(w, "catalog - browse a catalog of items, groupings and owners")
	fprintln(w)
	fprintln(w, "Usage: catalog [flags] <command> [args]")
	fprintln(w)
	printGlobalFlags(w)
	fprintln(w)
	fprintln(w, "Commands:")

	for _, name := range commandOrder {
		fprintln(w, cmds[name].HelpLine())
	}
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/catalog/internal/catalog"
	"github.com/calvinalkan/catalog/internal/export"
	"github.com/calvinalkan/catalog/internal/history"
	"github.com/calvinalkan/catalog/internal/query"
	"github.com/calvinalkan/catalog/internal/render"
	"github.com/calvinalkan/catalog/internal/view"
)

const replPrompt = "catalog> "

var replCommands = []string{
	"owner", "search", "clear", "toggle", "all-groupings", "sort",
	"reset", "show", "people", "groupings", "export", "help", "quit",
}

// ReplCmd returns the repl command.
func ReplCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("repl", flag.ContinueOnError),
		Usage: "repl",
		Short: "Browse items interactively",
		Long: `Start an interactive session. Filters and sort accumulate across commands
and the table is redrawn after every change. Type 'help' for commands.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: %v", ErrUnexpectedArgs, args)
			}

			return execRepl(ctx, io, a)
		},
	}
}

// lineReader is the input side of the session: liner on a terminal,
// a plain scanner otherwise.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

type scanReader struct {
	sc *bufio.Scanner
}

func (r *scanReader) Prompt(string) (string, error) {
	if !r.sc.Scan() {
		err := r.sc.Err()
		if err == nil {
			err = io.EOF
		}

		return "", err
	}

	return r.sc.Text(), nil
}

func (*scanReader) AppendHistory(string) {}

func (*scanReader) Close() error { return nil }

type linerReader struct {
	*liner.State

	historyPath string
	io          *IO
	added       []string // lines entered this session
}

func newLinerReader(o *IO, historyPath string) *linerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetCompleter(complete)

	if historyPath != "" {
		err := history.Load(historyPath, state.ReadHistory)
		if err != nil {
			o.Warn("cannot load history", err.Error())
		}
	}

	return &linerReader{State: state, historyPath: historyPath, io: o}
}

func (r *linerReader) AppendHistory(line string) {
	r.State.AppendHistory(line)
	r.added = append(r.added, line)
}

func (r *linerReader) Close() error {
	if r.historyPath != "" {
		err := history.Append(r.historyPath, history.LockTimeout, r.added)
		if err != nil {
			r.io.Warn("cannot save history", err.Error())
		}
	}

	return r.State.Close()
}

// complete provides tab completion for commands and sort keys.
func complete(line string) []string {
	if rest, ok := strings.CutPrefix(line, "sort "); ok {
		var out []string

		for _, key := range query.SortKeys {
			if strings.HasPrefix(key.String(), rest) {
				out = append(out, "sort "+key.String())
			}
		}

		return out
	}

	var out []string

	for _, c := range replCommands {
		if strings.HasPrefix(c, strings.ToLower(line)) {
			out = append(out, c)
		}
	}

	return out
}

type session struct {
	app   *app
	io    *IO
	store *catalog.Store
	state *view.State
	opts  render.Options
}

func execRepl(ctx context.Context, o *IO, a *app) error {
	engine, store, err := a.engine(ctx)
	if err != nil {
		return err
	}

	s := &session{
		app:   a,
		io:    o,
		store: store,
		state: view.NewState(engine, a.log),
		opts:  a.renderOptions(),
	}

	var in lineReader

	prompt := ""

	if a.interactive() {
		in = newLinerReader(o, a.cfg.HistoryAbs)
		prompt = replPrompt

		o.Println("catalog - type 'help' for commands, 'quit' to exit")
	} else {
		stdin := a.stdin
		if stdin == nil {
			stdin = strings.NewReader("")
		}

		in = &scanReader{sc: bufio.NewScanner(stdin)}
	}

	defer func() { _ = in.Close() }()

	s.show()

	for ctx.Err() == nil {
		line, err := in.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		in.AppendHistory(line)

		quit, err := s.exec(line)
		if err != nil {
			o.ErrPrintln("error:", err)
		}

		if quit {
			return nil
		}
	}

	return nil
}

// exec runs one session command. quit reports whether the session should end.
// Everything after the single space following the command word is the raw
// argument, so search keeps leading and trailing spaces.
func (s *session) exec(line string) (quit bool, err error) {
	word, raw, _ := strings.Cut(strings.TrimLeft(line, " \t"), " ")
	word = strings.TrimSpace(word)
	rest := strings.TrimSpace(raw)

	switch strings.ToLower(word) {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		s.printHelp()

		return false, nil
	case "show", "ls":
		s.show()

		return false, nil
	case "people":
		return false, render.People(s.io, s.store.People(), s.state.Filter().Owner)
	case "groupings":
		return false, render.Groupings(s.io, s.store.Groupings(), s.state.Filter().Groupings)
	case "export":
		return false, s.export(rest)
	case "owner":
		err = s.owner(rest)
	case "search":
		s.state.SetNameSubstring(raw)
	case "clear":
		s.state.ClearName()
	case "toggle":
		err = s.toggle(rest)
	case "all-groupings":
		s.state.ClearGroupings()
	case "sort":
		err = s.sort(rest)
	case "reset":
		s.state.ResetAll()
	default:
		return false, fmt.Errorf("%w: %s (type 'help' for commands)", ErrUnknownCommand, word)
	}

	if err != nil {
		return false, err
	}

	s.show()

	return false, nil
}

func (s *session) owner(arg string) error {
	if arg == "" {
		return fmt.Errorf("%w: owner <id|all>", ErrMissingArgument)
	}

	owner, err := query.ParseOwnerFilter(arg)
	if err != nil {
		return err
	}

	id, ok := owner.ID()
	if !ok {
		s.state.ShowAllOwners()

		return nil
	}

	err = checkOwner(s.store, owner)
	if err != nil {
		return err
	}

	return s.state.SetOwner(id)
}

func (s *session) toggle(arg string) error {
	if arg == "" {
		return fmt.Errorf("%w: toggle <id>", ErrMissingArgument)
	}

	id, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidGroupingID, arg)
	}

	err = checkGrouping(s.store, id)
	if err != nil {
		return err
	}

	s.state.ToggleGrouping(id)

	return nil
}

func (s *session) sort(arg string) error {
	if arg == "" {
		return fmt.Errorf("%w: sort <%s>", ErrMissingArgument, sortKeyList())
	}

	key, err := query.ParseSortKey(arg)
	if err != nil {
		return err
	}

	return s.state.ClickSortColumn(key)
}

func (s *session) export(arg string) error {
	if arg == "" {
		return fmt.Errorf("%w: export <file>", ErrMissingArgument)
	}

	visible := s.state.Visible()
	path := s.app.resolvePath(arg)

	err := export.WriteJSON(path, visible)
	if err != nil {
		return err
	}

	s.io.Printf("exported %d items to %s\n", len(visible), path)

	return nil
}

func (s *session) show() {
	visible := s.state.Visible()
	_, _, total := s.store.Len()

	err := render.Table(s.io, visible, s.state.Sort(), s.opts)
	if err != nil {
		s.io.ErrPrintln("error:", err)

		return
	}

	_ = render.Summary(s.io, s.state.Filter(), s.state.Sort(), len(visible), total)
}

func sortKeyList() string {
	names := make([]string, 0, len(query.SortKeys))
	for _, k := range query.SortKeys {
		names = append(names, k.String())
	}

	return strings.Join(names, "|")
}

func (s *session) printHelp() {
	s.io.Printf(`Commands:
  owner <id|all>     Show items of one owner, or of everyone
  search <text>      Filter by name substring (empty clears)
  clear              Clear the name filter
  toggle <id>        Add or remove a grouping from the filter
  all-groupings      Show all groupings again
  sort <%s>
                     Sort by column; repeat to flip direction, a third time to unsort
  reset              Clear all filters and sorting
  show               Redraw the table
  people             List owners (* marks the active one)
  groupings          List groupings (* marks selected ones)
  export <file>      Write the visible items to a JSON file
  help               Show this help
  quit               Leave the session
`, sortKeyList())
}

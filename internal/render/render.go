// Package render draws the visible item list and the filter panels as plain
// terminal text.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/sys/unix"

	"github.com/calvinalkan/catalog/internal/catalog"
	"github.com/calvinalkan/catalog/internal/query"
)

// NoMatches is printed instead of a table when the visible list is empty.
const NoMatches = "No items matching selected criteria"

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 100

const (
	colGap      = "  "
	minColWidth = 6
	ellipsis    = "…"
)

// Owner name colours by sex.
var (
	MaleColor   = lipgloss.Color("4") // blue
	FemaleColor = lipgloss.Color("1") // red
)

// Options control table layout.
type Options struct {
	Width int // maximum line width; <= 0 means unlimited

	// Renderer styles owner names by sex. Its colour profile decides
	// whether escape codes are written at all; nil renders plain text.
	Renderer *lipgloss.Renderer
}

// NewRenderer returns a renderer for w whose colour profile is detected
// from w and env (NO_COLOR, CLICOLOR_FORCE, TERM) rather than the process
// environment.
func NewRenderer(w io.Writer, env map[string]string) *lipgloss.Renderer {
	return lipgloss.NewRenderer(w, termenv.WithEnvironment(environ(env)))
}

// environ adapts an env map to termenv.Environ.
type environ map[string]string

func (e environ) Environ() []string {
	out := make([]string, 0, len(e))
	for k, v := range e {
		out = append(out, k+"="+v)
	}

	return out
}

func (e environ) Getenv(key string) string {
	return e[key]
}

// TerminalWidth returns the column count of the terminal on fd. ok is false
// when fd is not a terminal.
func TerminalWidth(fd int) (width int, ok bool) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 0, false
	}

	return int(ws.Col), true
}

// IsTerminal reports whether fd refers to a terminal.
func IsTerminal(fd int) bool {
	_, ok := TerminalWidth(fd)

	return ok
}

var columns = []struct {
	title string
	key   query.SortKey
}{
	{"ID", query.SortID},
	{"Name", query.SortName},
	{"Grouping", query.SortGroupingTitle},
	{"Owner", query.SortOwnerName},
}

// Indicator returns the header marker for a column sort state.
func Indicator(ind query.Indicator) string {
	switch ind {
	case query.SortedAscending:
		return "▲"
	case query.SortedDescending:
		return "▼"
	default:
		return "↕"
	}
}

// GroupingCell formats a grouping as "<icon> - <title>". Absent groupings
// render empty.
func GroupingCell(it catalog.ResolvedItem) string {
	if it.Grouping == nil {
		return ""
	}

	return it.Grouping.Icon + " - " + it.Grouping.Title
}

// Table writes items as an aligned table with per-column sort markers.
func Table(w io.Writer, items []catalog.ResolvedItem, sort query.SortSpec, opts Options) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, NoMatches)

		return err
	}

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.title + " " + Indicator(sort.Indicator(col.key))
	}

	rows := make([][]string, len(items))
	styles := make([]*lipgloss.Style, len(items))

	for i, it := range items {
		owner, _ := it.Owner()
		styles[i] = ownerStyle(opts.Renderer, owner.Sex)
		rows[i] = []string{strconv.Itoa(it.ID), it.Name, GroupingCell(it), owner.Name}
	}

	widths := columnWidths(header, rows)
	fit(widths, opts.Width)

	var b strings.Builder

	writeRow(&b, header, widths, nil)
	b.WriteString(strings.Repeat("-", totalWidth(widths)))
	b.WriteByte('\n')

	for i, row := range rows {
		writeRow(&b, row, widths, styles[i])
	}

	_, err := io.WriteString(w, b.String())

	return err
}

func columnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))

	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	return widths
}

func totalWidth(widths []int) int {
	total := len(colGap) * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}

	return total
}

// fit narrows the name and grouping columns, widest first, until the table
// fits limit or both reach minColWidth.
func fit(widths []int, limit int) {
	if limit <= 0 {
		return
	}

	const nameCol, groupingCol = 1, 2

	for totalWidth(widths) > limit {
		col := nameCol
		if widths[groupingCol] > widths[nameCol] {
			col = groupingCol
		}

		if widths[col] <= minColWidth {
			return
		}

		widths[col]--
	}
}

func writeRow(b *strings.Builder, cells []string, widths []int, owner *lipgloss.Style) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(colGap)
		}

		cell = runewidth.Truncate(cell, widths[i], ellipsis)

		switch {
		case i == 0:
			b.WriteString(runewidth.FillLeft(cell, widths[i]))
		case i == len(cells)-1:
			// Last column is not padded so lines carry no trailing spaces.
			if owner != nil && cell != "" {
				cell = owner.Render(cell)
			}

			b.WriteString(cell)
		default:
			b.WriteString(runewidth.FillRight(cell, widths[i]))
		}
	}

	b.WriteByte('\n')
}

// ownerStyle returns the owner cell style for sex, or nil when there is
// nothing to style.
func ownerStyle(r *lipgloss.Renderer, sex catalog.Sex) *lipgloss.Style {
	if r == nil {
		return nil
	}

	var style lipgloss.Style

	switch sex {
	case catalog.SexMale:
		style = r.NewStyle().Foreground(MaleColor)
	case catalog.SexFemale:
		style = r.NewStyle().Foreground(FemaleColor)
	default:
		return nil
	}

	return &style
}

// Summary writes one line describing the active filter and sort.
func Summary(w io.Writer, f query.FilterSpec, s query.SortSpec, visible, total int) error {
	groupings := "all"
	if f.Groupings.Len() > 0 {
		ids := make([]string, 0, f.Groupings.Len())
		for _, id := range f.Groupings.IDs() {
			ids = append(ids, strconv.Itoa(id))
		}

		groupings = strings.Join(ids, ",")
	}

	_, err := fmt.Fprintf(w, "owner=%s name=%q groupings=%s sort=%s (%d of %d items)\n",
		f.Owner, f.Name, groupings, s, visible, total)

	return err
}

// People lists the owner filter choices, marking the active one with "*".
func People(w io.Writer, people []catalog.Person, active query.OwnerFilter) error {
	var b strings.Builder

	writeChoice(&b, active.IsAll(), "all", "All")

	for _, p := range people {
		id, ok := active.ID()
		writeChoice(&b, ok && id == p.ID, strconv.Itoa(p.ID), fmt.Sprintf("%s (%s)", p.Name, p.Sex))
	}

	_, err := io.WriteString(w, b.String())

	return err
}

// Groupings lists the grouping filter choices, marking selected ones
// with "*". With an empty selection the "all" row is marked.
func Groupings(w io.Writer, groupings []catalog.ResolvedGrouping, selected query.GroupingSet) error {
	var b strings.Builder

	writeChoice(&b, selected.Len() == 0, "all", "All")

	for _, g := range groupings {
		label := g.Icon + " " + g.Title
		if g.Owner != nil {
			label += " (" + g.Owner.Name + ")"
		}

		writeChoice(&b, selected.Contains(g.ID), strconv.Itoa(g.ID), label)
	}

	_, err := io.WriteString(w, b.String())

	return err
}

func writeChoice(b *strings.Builder, active bool, id, label string) {
	mark := " "
	if active {
		mark = "*"
	}

	fmt.Fprintf(b, "%s %-4s %s\n", mark, id, label)
}

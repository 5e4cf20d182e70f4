package cli

import (
	"fmt"
	"io"
)

// IO wraps a command's stdout and stderr and collects warnings that must
// not get lost in long output.
type IO struct {
	out      io.Writer
	errOut   io.Writer
	warnings []string
	started  bool
}

func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Warn records "issue: action". Recorded warnings appear on stderr before
// the first stdout write and again from Finish, and make the exit code 1.
func (o *IO) Warn(issue string, action string) {
	o.warnings = append(o.warnings, fmt.Sprintf("%s: %s", issue, action))
}

// Write makes IO usable as the stdout writer for renderers. Collected
// warnings are flushed to stderr first.
func (o *IO) Write(p []byte) (int, error) {
	o.flushWarningsStart()

	return o.out.Write(p)
}

// Println writes a line to stdout.
func (o *IO) Println(a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintln(o.out, a...)
}

func (o *IO) Printf(format string, a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Finish repeats the warnings after all output and returns 1 if there
// were any, 0 otherwise.
func (o *IO) Finish() int {
	o.flushWarningsStart()

	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}

	if len(o.warnings) > 0 {
		return 1
	}

	return 0
}

func (o *IO) flushWarningsStart() {
	if !o.started && len(o.warnings) > 0 {
		for _, w := range o.warnings {
			_, _ = fmt.Fprintln(o.errOut, "warning:", w)
		}
	}

	o.started = true
}

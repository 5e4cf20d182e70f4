// Command catalog browses items, their groupings and the people who own
// them, with filters and sorting from flags or an interactive session.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/calvinalkan/catalog/internal/cli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, env, sigCh))
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/calvinalkan/catalog/internal/catalog"
	"github.com/calvinalkan/catalog/internal/config"
	"github.com/calvinalkan/catalog/internal/query"
	"github.com/calvinalkan/catalog/internal/render"
	"github.com/calvinalkan/catalog/internal/source"
	"github.com/calvinalkan/catalog/internal/view"
)

// app carries what every command needs. The data source is loaded on first
// use so print-config works without a readable data file.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	stdin io.Reader
	out   io.Writer
	env   map[string]string

	store *catalog.Store
}

func (a *app) loadStore(ctx context.Context) (*catalog.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	store, err := source.Load(ctx, a.cfg.DataAbs)
	if err != nil {
		return nil, err
	}

	people, groupings, items := store.Len()

	origin := a.cfg.DataAbs
	if origin == "" {
		origin = "builtin"
	}

	a.log.Info("data source loaded",
		zap.String("source", origin),
		zap.Int("people", people),
		zap.Int("groupings", groupings),
		zap.Int("items", items),
	)

	if gaps := store.Gaps(); gaps != (catalog.Gaps{}) {
		a.log.Debug("referential gaps",
			zap.Int("missing_owners", gaps.MissingOwners),
			zap.Int("missing_groupings", gaps.MissingGroupings),
		)
	}

	a.store = store

	return store, nil
}

func (a *app) engine(ctx context.Context) (*view.Engine, *catalog.Store, error) {
	store, err := a.loadStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	return view.NewEngine(store.Items(), query.NewSorter(a.cfg.Tag)), store, nil
}

// renderOptions sizes the table to the terminal. Colour is left to the
// renderer, which checks stdout and the injected env.
func (a *app) renderOptions() render.Options {
	opts := render.Options{
		Width:    render.DefaultWidth,
		Renderer: render.NewRenderer(a.out, a.env),
	}

	f, ok := a.out.(*os.File)
	if !ok {
		return opts
	}

	if width, isTerm := render.TerminalWidth(int(f.Fd())); isTerm {
		opts.Width = width
	}

	return opts
}

func (a *app) interactive() bool {
	f, ok := a.stdin.(*os.File)

	return ok && render.IsTerminal(int(f.Fd()))
}

func (a *app) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(a.cfg.EffectiveCwd, path)
}

// checkOwner rejects owner ids that name no person in the store.
func checkOwner(store *catalog.Store, owner query.OwnerFilter) error {
	id, ok := owner.ID()
	if !ok {
		return nil
	}

	if _, found := store.Person(id); !found {
		return fmt.Errorf("%w: %d", ErrUnknownPerson, id)
	}

	return nil
}

func checkGrouping(store *catalog.Store, id int) error {
	for _, g := range store.Groupings() {
		if g.ID == id {
			return nil
		}
	}

	return fmt.Errorf("%w: %d", ErrUnknownGrouping, id)
}

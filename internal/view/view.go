// Package view keeps one session's filter and sort state and recomputes the
// visible item list whenever that state changes.
package view

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/calvinalkan/catalog/internal/catalog"
	"github.com/calvinalkan/catalog/internal/query"
)

// Error variables for rejected state changes.
var (
	ErrInvalidOwnerID = errors.New("owner id must be positive")
	ErrInvalidSortKey = errors.New("invalid sort column")
)

// Engine runs the filter then sort pipeline over a fixed item list.
type Engine struct {
	items  []catalog.ResolvedItem
	sorter *query.Sorter
}

// NewEngine wraps the denormalized items of a store. The items are computed
// once by the store; the engine never re-resolves them.
func NewEngine(items []catalog.ResolvedItem, sorter *query.Sorter) *Engine {
	return &Engine{items: slices.Clone(items), sorter: sorter}
}

// ComputeVisible returns sort(filter(items, f), s).
func (e *Engine) ComputeVisible(f query.FilterSpec, s query.SortSpec) []catalog.ResolvedItem {
	return e.sorter.Sort(query.Filter(e.items, f), s)
}

// Len returns the size of the unfiltered list.
func (e *Engine) Len() int {
	return len(e.items)
}

// State is the mutable filter/sort state of one session. It is not safe for
// concurrent use; each session owns its own State.
type State struct {
	engine *Engine
	log    *zap.Logger

	filter  query.FilterSpec
	sort    query.SortSpec
	visible []catalog.ResolvedItem

	recomputes int
}

// NewState starts a session with default specs. A nil logger disables
// logging.
func NewState(engine *Engine, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}

	s := &State{engine: engine, log: log}
	s.recompute()

	return s
}

// Filter returns the current filter spec.
func (s *State) Filter() query.FilterSpec {
	return s.filter
}

// Sort returns the current sort spec.
func (s *State) Sort() query.SortSpec {
	return s.sort
}

// Visible returns the list computed after the last state change.
func (s *State) Visible() []catalog.ResolvedItem {
	return slices.Clone(s.visible)
}

// Recomputes reports how many times the pipeline ran. Changes that leave
// both specs equal do not trigger a run.
func (s *State) Recomputes() int {
	return s.recomputes
}

// SetOwner restricts the list to groupings owned by person id.
func (s *State) SetOwner(id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidOwnerID, id)
	}

	f := s.filter
	f.Owner = query.Owner(id)
	s.apply(f, s.sort)

	return nil
}

// SetOwnerFilter replaces the owner predicate.
func (s *State) SetOwnerFilter(owner query.OwnerFilter) {
	f := s.filter
	f.Owner = owner
	s.apply(f, s.sort)
}

// ShowAllOwners clears the owner predicate.
func (s *State) ShowAllOwners() {
	s.SetOwnerFilter(query.AllOwners)
}

// SetNameSubstring sets the case-insensitive name filter.
func (s *State) SetNameSubstring(name string) {
	f := s.filter
	f.Name = name
	s.apply(f, s.sort)
}

// ClearName empties the name filter.
func (s *State) ClearName() {
	s.SetNameSubstring("")
}

// ToggleGrouping adds id to the grouping set, or removes it if present.
func (s *State) ToggleGrouping(id int) {
	f := s.filter
	f.Groupings = f.Groupings.Toggle(id)
	s.apply(f, s.sort)
}

// ClearGroupings empties the grouping set, leaving the other filters as is.
func (s *State) ClearGroupings() {
	f := s.filter
	f.Groupings = query.GroupingSet{}
	s.apply(f, s.sort)
}

// ClickSortColumn advances the three-click cycle for key.
// [query.SortNone] and unknown keys are rejected.
func (s *State) ClickSortColumn(key query.SortKey) error {
	if key == query.SortNone || !key.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSortKey, key)
	}

	s.apply(s.filter, s.sort.Next(key))

	return nil
}

// SetSort replaces the sort spec directly.
func (s *State) SetSort(spec query.SortSpec) error {
	if !spec.Key.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSortKey, spec.Key)
	}

	if spec.Key == query.SortNone {
		spec.Direction = query.Ascending
	}

	s.apply(s.filter, spec)

	return nil
}

// ResetAll restores every filter and the sort to their defaults.
func (s *State) ResetAll() {
	s.apply(query.FilterSpec{}, query.SortSpec{})
}

func (s *State) apply(f query.FilterSpec, sort query.SortSpec) {
	if s.filter.Equal(f) && s.sort == sort {
		return
	}

	s.filter = f
	s.sort = sort
	s.recompute()
}

func (s *State) recompute() {
	s.visible = s.engine.ComputeVisible(s.filter, s.sort)
	s.recomputes++

	s.log.Debug("view recomputed",
		zap.Stringer("owner", s.filter.Owner),
		zap.String("name", s.filter.Name),
		zap.Ints("groupings", s.filter.Groupings.IDs()),
		zap.Stringer("sort", s.sort),
		zap.Int("visible", len(s.visible)),
		zap.Int("total", s.engine.Len()),
	)
}

// Package query implements the filter and sort stages applied to the
// denormalized item list.
package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/calvinalkan/catalog/internal/catalog"
)

// OwnerFilter selects items by the owner of their grouping.
// The zero value is [AllOwners].
type OwnerFilter struct {
	id int
}

// AllOwners disables the owner predicate.
var AllOwners = OwnerFilter{}

// Owner restricts to one person. Ids <= 0 collapse to [AllOwners].
func Owner(id int) OwnerFilter {
	if id <= 0 {
		return AllOwners
	}

	return OwnerFilter{id: id}
}

// ParseOwnerFilter parses "all" or a positive person id.
func ParseOwnerFilter(s string) (OwnerFilter, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") || s == "" {
		return AllOwners, nil
	}

	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return OwnerFilter{}, fmt.Errorf("%w: %q (want \"all\" or a positive id)", ErrInvalidOwner, s)
	}

	return Owner(id), nil
}

// IsAll reports whether the filter passes every owner.
func (f OwnerFilter) IsAll() bool {
	return f.id <= 0
}

// ID returns the selected person id; ok is false for [AllOwners].
func (f OwnerFilter) ID() (id int, ok bool) {
	if f.IsAll() {
		return 0, false
	}

	return f.id, true
}

func (f OwnerFilter) String() string {
	if f.IsAll() {
		return "all"
	}

	return strconv.Itoa(f.id)
}

// GroupingSet is an immutable set of grouping ids kept in ascending order.
// The empty set means no grouping restriction.
type GroupingSet struct {
	ids []int
}

// NewGroupingSet builds a set from ids, dropping duplicates.
func NewGroupingSet(ids ...int) GroupingSet {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	return GroupingSet{ids: slices.Compact(sorted)}
}

// Toggle returns a copy with id added when absent or removed when present.
func (s GroupingSet) Toggle(id int) GroupingSet {
	idx, found := slices.BinarySearch(s.ids, id)
	if found {
		return GroupingSet{ids: slices.Delete(slices.Clone(s.ids), idx, idx+1)}
	}

	return GroupingSet{ids: slices.Insert(slices.Clone(s.ids), idx, id)}
}

// Contains reports membership.
func (s GroupingSet) Contains(id int) bool {
	_, found := slices.BinarySearch(s.ids, id)

	return found
}

// Len returns the number of ids.
func (s GroupingSet) Len() int {
	return len(s.ids)
}

// IDs returns the members in ascending order.
func (s GroupingSet) IDs() []int {
	return slices.Clone(s.ids)
}

// Equal reports whether both sets hold the same ids.
func (s GroupingSet) Equal(other GroupingSet) bool {
	return slices.Equal(s.ids, other.ids)
}

// FilterSpec holds the three filter predicates. The zero value passes
// everything.
type FilterSpec struct {
	Owner     OwnerFilter
	Name      string // case-insensitive substring; empty matches all
	Groupings GroupingSet
}

// IsZero reports whether every predicate is at its neutral value.
func (f FilterSpec) IsZero() bool {
	return f.Owner.IsAll() && f.Name == "" && f.Groupings.Len() == 0
}

// Equal compares two specs field by field.
func (f FilterSpec) Equal(other FilterSpec) bool {
	return f.Owner == other.Owner && f.Name == other.Name && f.Groupings.Equal(other.Groupings)
}

// Filter returns the items matching every active predicate of spec, in
// input order. The input is not modified.
func Filter(items []catalog.ResolvedItem, spec FilterSpec) []catalog.ResolvedItem {
	m := newMatcher(spec)

	out := make([]catalog.ResolvedItem, 0, len(items))

	for _, it := range items {
		if m.match(it) {
			out = append(out, it)
		}
	}

	return out
}

// Match reports whether a single item passes spec.
func (f FilterSpec) Match(it catalog.ResolvedItem) bool {
	return newMatcher(f).match(it)
}

type matcher struct {
	spec   FilterSpec
	caser  cases.Caser
	needle string
}

func newMatcher(spec FilterSpec) *matcher {
	caser := cases.Lower(language.Und)

	return &matcher{
		spec:   spec,
		caser:  caser,
		needle: caser.String(spec.Name),
	}
}

func (m *matcher) match(it catalog.ResolvedItem) bool {
	return m.matchOwner(it) && m.matchName(it) && m.matchGrouping(it)
}

func (m *matcher) matchOwner(it catalog.ResolvedItem) bool {
	want, ok := m.spec.Owner.ID()
	if !ok {
		return true
	}

	owner, ok := it.Owner()

	return ok && owner.ID == want
}

func (m *matcher) matchName(it catalog.ResolvedItem) bool {
	if m.needle == "" {
		return true
	}

	return strings.Contains(m.caser.String(it.Name), m.needle)
}

func (m *matcher) matchGrouping(it catalog.ResolvedItem) bool {
	if m.spec.Groupings.Len() == 0 {
		return true
	}

	return m.spec.Groupings.Contains(it.GroupingID)
}

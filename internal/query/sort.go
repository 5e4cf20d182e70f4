package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/calvinalkan/catalog/internal/catalog"
)

// SortKey names the column the visible list is ordered by.
type SortKey int

// Sort keys. [SortNone] keeps the filtered order.
const (
	SortNone SortKey = iota
	SortID
	SortName
	SortGroupingTitle
	SortOwnerName
)

// SortKeys lists the sortable columns in display order.
var SortKeys = []SortKey{SortID, SortName, SortGroupingTitle, SortOwnerName}

var sortKeyNames = map[SortKey]string{
	SortNone:          "none",
	SortID:            "id",
	SortName:          "name",
	SortGroupingTitle: "grouping",
	SortOwnerName:     "owner",
}

var sortKeyAliases = map[string]SortKey{
	"none":     SortNone,
	"id":       SortID,
	"name":     SortName,
	"item":     SortName,
	"product":  SortName,
	"grouping": SortGroupingTitle,
	"category": SortGroupingTitle,
	"title":    SortGroupingTitle,
	"owner":    SortOwnerName,
	"user":     SortOwnerName,
}

func (k SortKey) String() string {
	if name, ok := sortKeyNames[k]; ok {
		return name
	}

	return fmt.Sprintf("SortKey(%d)", int(k))
}

// Valid reports whether k is one of the declared keys.
func (k SortKey) Valid() bool {
	_, ok := sortKeyNames[k]

	return ok
}

// ParseSortKey parses a column name. Besides the canonical names it accepts
// "product"/"item" for name, "category"/"title" for grouping and "user" for
// owner.
func ParseSortKey(s string) (SortKey, error) {
	key, ok := sortKeyAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return SortNone, fmt.Errorf("%w: %q", ErrInvalidSortKey, s)
	}

	return key, nil
}

// Direction of a sort.
type Direction int

// Directions.
const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}

	return "asc"
}

// ParseDirection parses "asc"/"ascending" or "desc"/"descending".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// SortSpec is the active ordering. The zero value is {SortNone, Ascending}.
type SortSpec struct {
	Key       SortKey
	Direction Direction
}

// Next returns the spec after one click on the column key:
// a different column starts ascending, a second click on the same column
// turns it descending, a third click clears the sort.
func (s SortSpec) Next(key SortKey) SortSpec {
	switch {
	case key == SortNone:
		return SortSpec{}
	case s.Key != key:
		return SortSpec{Key: key, Direction: Ascending}
	case s.Direction == Ascending:
		return SortSpec{Key: key, Direction: Descending}
	default:
		return SortSpec{}
	}
}

func (s SortSpec) String() string {
	if s.Key == SortNone {
		return "none"
	}

	return s.Key.String() + " " + s.Direction.String()
}

// Indicator describes how a column header should mark its sort state.
type Indicator int

// Column indicators.
const (
	Unsorted Indicator = iota
	SortedAscending
	SortedDescending
)

// Indicator returns the marker for column key under s.
func (s SortSpec) Indicator(key SortKey) Indicator {
	if s.Key == SortNone || s.Key != key {
		return Unsorted
	}

	if s.Direction == Descending {
		return SortedDescending
	}

	return SortedAscending
}

// Sorter orders items with locale-aware string comparison.
// A Sorter is not safe for concurrent use; give each session its own.
type Sorter struct {
	collator *collate.Collator
}

// NewSorter returns a sorter collating strings for tag.
func NewSorter(tag language.Tag) *Sorter {
	return &Sorter{collator: collate.New(tag)}
}

// Sort returns a new slice ordered by spec using an English collator.
// See [Sorter.Sort].
func Sort(items []catalog.ResolvedItem, spec SortSpec) []catalog.ResolvedItem {
	return NewSorter(language.English).Sort(items, spec)
}

// Sort returns a new slice ordered by spec. The input is not modified.
//
// The sort is stable for every key and direction: descending negates the
// comparator rather than reversing the result, so equal keys keep their
// input order. Items whose grouping (or owner) is absent have no key to
// order by on the grouping and owner keys: they stay at their input index
// and the items with a key are sorted into the remaining slots.
func (s *Sorter) Sort(items []catalog.ResolvedItem, spec SortSpec) []catalog.ResolvedItem {
	out := slices.Clone(items)

	compare, hasKey := s.comparator(spec.Key)
	if compare == nil {
		return out
	}

	if spec.Direction == Descending {
		asc := compare
		compare = func(a, b catalog.ResolvedItem) int { return -asc(a, b) }
	}

	slots := make([]int, 0, len(out))
	keyed := make([]catalog.ResolvedItem, 0, len(out))

	for i, it := range out {
		if hasKey(it) {
			slots = append(slots, i)
			keyed = append(keyed, it)
		}
	}

	slices.SortStableFunc(keyed, compare)

	for j, i := range slots {
		out[i] = keyed[j]
	}

	return out
}

// comparator returns the ascending comparison for key and a predicate
// reporting whether an item has a value for it. compare is only called on
// items for which hasKey is true.
func (s *Sorter) comparator(key SortKey) (compare func(a, b catalog.ResolvedItem) int, hasKey func(catalog.ResolvedItem) bool) {
	switch key {
	case SortID:
		compare = func(a, b catalog.ResolvedItem) int {
			return cmp.Compare(a.ID, b.ID)
		}

		return compare, always
	case SortName:
		compare = func(a, b catalog.ResolvedItem) int {
			return s.collator.CompareString(a.Name, b.Name)
		}

		return compare, always
	case SortGroupingTitle:
		compare = func(a, b catalog.ResolvedItem) int {
			at, _ := a.GroupingTitle()
			bt, _ := b.GroupingTitle()

			return s.collator.CompareString(at, bt)
		}

		return compare, hasGrouping
	case SortOwnerName:
		compare = func(a, b catalog.ResolvedItem) int {
			ao, _ := a.Owner()
			bo, _ := b.Owner()

			return s.collator.CompareString(ao.Name, bo.Name)
		}

		return compare, hasOwner
	default:
		return nil, nil
	}
}

func always(catalog.ResolvedItem) bool { return true }

func hasGrouping(it catalog.ResolvedItem) bool {
	_, ok := it.GroupingTitle()

	return ok
}

func hasOwner(it catalog.ResolvedItem) bool {
	_, ok := it.Owner()

	return ok
}

package catalog

import (
	"fmt"
	"slices"
)

// Gaps counts dangling references found while resolving a [Store].
type Gaps struct {
	MissingOwners    int // groupings whose owner id matches no person
	MissingGroupings int // items whose grouping id matches no grouping
}

// Store is an immutable snapshot of the three record sets together with
// their denormalized join, computed once in [NewStore].
//
// Accessors return copies; callers cannot change the snapshot.
type Store struct {
	people    []Person
	groupings []Grouping
	items     []Item

	resolvedGroupings []ResolvedGrouping
	resolvedItems     []ResolvedItem
	gaps              Gaps
}

// NewStore validates the record sets and resolves the join.
//
// Ids must be unique within each collection and every person must have a
// valid sex. Dangling foreign keys are accepted and surface as absent
// relations (see [Store.Gaps]).
func NewStore(people []Person, groupings []Grouping, items []Item) (*Store, error) {
	err := checkUnique("person", people, func(p Person) int { return p.ID })
	if err != nil {
		return nil, err
	}

	err = checkUnique("grouping", groupings, func(g Grouping) int { return g.ID })
	if err != nil {
		return nil, err
	}

	err = checkUnique("item", items, func(it Item) int { return it.ID })
	if err != nil {
		return nil, err
	}

	for _, p := range people {
		if p.Sex != SexMale && p.Sex != SexFemale {
			return nil, fmt.Errorf("person %d: %w: %q", p.ID, ErrInvalidSex, p.Sex)
		}
	}

	s := &Store{
		people:    slices.Clone(people),
		groupings: slices.Clone(groupings),
		items:     slices.Clone(items),
	}

	s.resolvedGroupings = ResolveGroupings(s.groupings, s.people)
	s.resolvedItems = ResolveItems(s.items, s.resolvedGroupings)

	for _, g := range s.resolvedGroupings {
		if g.Owner == nil {
			s.gaps.MissingOwners++
		}
	}

	for _, it := range s.resolvedItems {
		if it.Grouping == nil {
			s.gaps.MissingGroupings++
		}
	}

	return s, nil
}

func checkUnique[T any](kind string, records []T, id func(T) int) error {
	seen := make(map[int]struct{}, len(records))

	for _, r := range records {
		key := id(r)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%s %d: %w", kind, key, ErrDuplicateID)
		}

		seen[key] = struct{}{}
	}

	return nil
}

// People returns all people in load order.
func (s *Store) People() []Person {
	return slices.Clone(s.people)
}

// Person looks up a person by id.
func (s *Store) Person(id int) (Person, bool) {
	for _, p := range s.people {
		if p.ID == id {
			return p, true
		}
	}

	return Person{}, false
}

// Groupings returns the denormalized groupings in load order.
func (s *Store) Groupings() []ResolvedGrouping {
	return slices.Clone(s.resolvedGroupings)
}

// Items returns the denormalized items in load order.
//
// The slice is fresh but elements share their *ResolvedGrouping pointers
// with the store; treat them as read-only.
func (s *Store) Items() []ResolvedItem {
	return slices.Clone(s.resolvedItems)
}

// Len reports the number of people, groupings and items.
func (s *Store) Len() (people, groupings, items int) {
	return len(s.people), len(s.groupings), len(s.items)
}

// Gaps reports dangling references found during the join.
func (s *Store) Gaps() Gaps {
	return s.gaps
}

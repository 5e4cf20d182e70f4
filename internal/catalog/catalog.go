// Package catalog holds the immutable record sets (people, groupings, items)
// and the join that denormalizes them into a view-ready item list.
package catalog

import (
	"fmt"
	"strings"
)

// Sex of a person. Only [SexMale] and [SexFemale] are valid.
type Sex string

// Sex values.
const (
	SexMale   Sex = "m"
	SexFemale Sex = "f"
)

// ParseSex accepts "m"/"f" in any case.
func ParseSex(s string) (Sex, error) {
	switch Sex(strings.ToLower(strings.TrimSpace(s))) {
	case SexMale:
		return SexMale, nil
	case SexFemale:
		return SexFemale, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSex, s)
	}
}

// Person owns groupings.
type Person struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Sex  Sex    `json:"sex"`
}

// Grouping is a raw grouping record. OwnerID references [Person.ID].
type Grouping struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Icon    string `json:"icon"`
	OwnerID int    `json:"owner_id"`
}

// Item is a raw item record. GroupingID references [Grouping.ID].
type Item struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	GroupingID int    `json:"grouping_id"`
}

// ResolvedGrouping is a [Grouping] with its owner inlined.
// Owner is nil when no person has the referenced id.
type ResolvedGrouping struct {
	Grouping

	Owner *Person `json:"owner,omitempty"`
}

// ResolvedItem is an [Item] with its grouping (and transitively the owner)
// inlined. Grouping is nil when no grouping has the referenced id.
type ResolvedItem struct {
	Item

	Grouping *ResolvedGrouping `json:"grouping,omitempty"`
}

// GroupingTitle returns the title of the resolved grouping.
func (it ResolvedItem) GroupingTitle() (string, bool) {
	if it.Grouping == nil {
		return "", false
	}

	return it.Grouping.Title, true
}

// Owner returns the person owning the item's grouping. ok is false when
// either the grouping or its owner is absent.
func (it ResolvedItem) Owner() (Person, bool) {
	if it.Grouping == nil || it.Grouping.Owner == nil {
		return Person{}, false
	}

	return *it.Grouping.Owner, true
}

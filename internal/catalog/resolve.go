package catalog

// ResolveGroupings attaches the owning person to every grouping.
//
// Output order and length equal the input. When several people share an id
// the first one wins. Inputs are not modified; each resolved grouping holds
// its own copy of the owner.
func ResolveGroupings(groupings []Grouping, people []Person) []ResolvedGrouping {
	byID := make(map[int]int, len(people))

	for i, p := range people {
		if _, seen := byID[p.ID]; !seen {
			byID[p.ID] = i
		}
	}

	resolved := make([]ResolvedGrouping, len(groupings))

	for i, g := range groupings {
		resolved[i] = ResolvedGrouping{Grouping: g}

		if idx, ok := byID[g.OwnerID]; ok {
			owner := people[idx]
			resolved[i].Owner = &owner
		}
	}

	return resolved
}

// ResolveItems attaches the resolved grouping to every item.
//
// Output order and length equal the input; first match wins on duplicate
// grouping ids. Items with the same grouping share one copy of it, detached
// from the groupings slice passed in.
func ResolveItems(items []Item, groupings []ResolvedGrouping) []ResolvedItem {
	shared := make(map[int]*ResolvedGrouping, len(groupings))

	for _, g := range groupings {
		if _, seen := shared[g.ID]; seen {
			continue
		}

		shared[g.ID] = &g
	}

	resolved := make([]ResolvedItem, len(items))

	for i, it := range items {
		resolved[i] = ResolvedItem{Item: it, Grouping: shared[it.GroupingID]}
	}

	return resolved
}

package cli

import (
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/catalog/internal/catalog"
	"github.com/calvinalkan/catalog/internal/query"
)

// addQueryFlags registers the filter and sort flags shared by ls and export.
func addQueryFlags(fs *flag.FlagSet) {
	fs.String("owner", "all", "Show only items owned by person `id` (or all)")
	fs.String("name", "", "Case-insensitive item name `substring`")
	fs.IntSlice("grouping", nil, "Toggle grouping `id` into the filter (repeatable)")
	fs.String("sort", "", "Sort by `key` (id|name|grouping|owner)")
	fs.Bool("desc", false, "Sort descending (requires --sort)")
}

// querySpecs builds the filter and sort spec from flags parsed by
// addQueryFlags, rejecting ids unknown to store.
func querySpecs(fs *flag.FlagSet, store *catalog.Store) (query.FilterSpec, query.SortSpec, error) {
	var f query.FilterSpec

	ownerStr, _ := fs.GetString("owner")

	owner, err := query.ParseOwnerFilter(ownerStr)
	if err != nil {
		return query.FilterSpec{}, query.SortSpec{}, err
	}

	err = checkOwner(store, owner)
	if err != nil {
		return query.FilterSpec{}, query.SortSpec{}, err
	}

	f.Owner = owner
	f.Name, _ = fs.GetString("name")

	groupings, _ := fs.GetIntSlice("grouping")
	for _, id := range groupings {
		err = checkGrouping(store, id)
		if err != nil {
			return query.FilterSpec{}, query.SortSpec{}, err
		}

		f.Groupings = f.Groupings.Toggle(id)
	}

	var s query.SortSpec

	sortStr, _ := fs.GetString("sort")
	desc, _ := fs.GetBool("desc")

	if sortStr != "" {
		s.Key, err = query.ParseSortKey(sortStr)
		if err != nil {
			return query.FilterSpec{}, query.SortSpec{}, err
		}
	}

	if desc {
		if s.Key == query.SortNone {
			return query.FilterSpec{}, query.SortSpec{}, ErrDescWithoutSort
		}

		s.Direction = query.Descending
	}

	return f, s, nil
}

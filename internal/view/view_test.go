package view_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/language"

	"github.com/calvinalkan/catalog/internal/catalog"
	"github.com/calvinalkan/catalog/internal/query"
	"github.com/calvinalkan/catalog/internal/view"
)

func newStore(t *testing.T) *catalog.Store {
	t.Helper()

	store, err := catalog.NewStore(
		[]catalog.Person{
			{ID: 1, Name: "Max", Sex: catalog.SexMale},
			{ID: 2, Name: "Anna", Sex: catalog.SexFemale},
		},
		[]catalog.Grouping{
			{ID: 10, Title: "Fruits", Icon: "🍎", OwnerID: 1},
			{ID: 20, Title: "Drinks", Icon: "🍺", OwnerID: 2},
		},
		[]catalog.Item{
			{ID: 100, Name: "banana", GroupingID: 10},
			{ID: 101, Name: "apple", GroupingID: 10},
			{ID: 200, Name: "water", GroupingID: 20},
			{ID: 201, Name: "cola", GroupingID: 20},
		},
	)
	require.NoError(t, err)

	return store
}

func newState(t *testing.T) (*view.State, *catalog.Store) {
	t.Helper()

	store := newStore(t)
	engine := view.NewEngine(store.Items(), query.NewSorter(language.English))

	return view.NewState(engine, nil), store
}

func visibleIDs(s *view.State) []int {
	var out []int
	for _, it := range s.Visible() {
		out = append(out, it.ID)
	}

	return out
}

func Test_State_Shows_All_Items_In_Load_Order_When_Created(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)

	assert.Equal(t, []int{100, 101, 200, 201}, visibleIDs(s))
	assert.True(t, s.Filter().IsZero())
	assert.Equal(t, query.SortSpec{}, s.Sort())
}

func Test_State_Cycles_Sort_When_Same_Column_Clicked_Three_Times(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)

	require.NoError(t, s.ClickSortColumn(query.SortName))
	assert.Equal(t, query.SortSpec{Key: query.SortName, Direction: query.Ascending}, s.Sort())
	assert.Equal(t, []int{101, 100, 201, 200}, visibleIDs(s))

	require.NoError(t, s.ClickSortColumn(query.SortName))
	assert.Equal(t, query.SortSpec{Key: query.SortName, Direction: query.Descending}, s.Sort())
	assert.Equal(t, []int{200, 201, 100, 101}, visibleIDs(s))

	require.NoError(t, s.ClickSortColumn(query.SortName))
	assert.Equal(t, query.SortSpec{Key: query.SortNone, Direction: query.Ascending}, s.Sort())
	assert.Equal(t, []int{100, 101, 200, 201}, visibleIDs(s))
}

func Test_State_Restarts_Cycle_When_Other_Column_Clicked(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)

	require.NoError(t, s.ClickSortColumn(query.SortName))
	require.NoError(t, s.ClickSortColumn(query.SortName))
	require.NoError(t, s.ClickSortColumn(query.SortOwnerName))

	assert.Equal(t, query.SortSpec{Key: query.SortOwnerName, Direction: query.Ascending}, s.Sort())
	assert.Equal(t, []int{200, 201, 100, 101}, visibleIDs(s), "Anna before Max, ties keep load order")
}

func Test_State_Rejects_Sort_Column_When_Key_None_Or_Unknown(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)
	require.NoError(t, s.ClickSortColumn(query.SortID))

	for _, key := range []query.SortKey{query.SortNone, query.SortKey(99)} {
		err := s.ClickSortColumn(key)
		require.ErrorIs(t, err, view.ErrInvalidSortKey)
	}

	assert.Equal(t, query.SortSpec{Key: query.SortID}, s.Sort(), "rejected click must not change state")
}

func Test_State_Rejects_Owner_When_Id_Not_Positive(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)
	require.NoError(t, s.SetOwner(2))

	for _, id := range []int{0, -1} {
		require.ErrorIs(t, s.SetOwner(id), view.ErrInvalidOwnerID)
	}

	assert.Equal(t, query.Owner(2), s.Filter().Owner)
	assert.Equal(t, []int{200, 201}, visibleIDs(s))
}

func Test_State_Combines_Filters_When_Several_Set(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)

	require.NoError(t, s.SetOwner(1))
	assert.Equal(t, []int{100, 101}, visibleIDs(s))

	s.SetNameSubstring("AN")
	assert.Equal(t, []int{100}, visibleIDs(s))

	s.ClearName()
	s.ToggleGrouping(20)
	assert.Empty(t, visibleIDs(s), "owner Max has no items in Drinks")

	s.ShowAllOwners()
	assert.Equal(t, []int{200, 201}, visibleIDs(s))

	s.ClearGroupings()
	assert.Equal(t, []int{100, 101, 200, 201}, visibleIDs(s))
}

func Test_State_Toggle_Is_Symmetric_When_Same_Grouping_Toggled_Twice(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)

	s.ToggleGrouping(10)
	assert.Equal(t, []int{10}, s.Filter().Groupings.IDs())
	assert.Equal(t, []int{100, 101}, visibleIDs(s))

	s.ToggleGrouping(10)
	assert.Equal(t, 0, s.Filter().Groupings.Len())
	assert.Equal(t, []int{100, 101, 200, 201}, visibleIDs(s))

	s.ToggleGrouping(999)
	assert.Empty(t, visibleIDs(s))
}

func Test_State_Matches_Full_List_When_Reset(t *testing.T) {
	t.Parallel()

	s, store := newState(t)

	require.NoError(t, s.SetOwner(2))
	s.SetNameSubstring("o")
	s.ToggleGrouping(20)
	require.NoError(t, s.ClickSortColumn(query.SortID))
	require.NoError(t, s.ClickSortColumn(query.SortID))

	s.ResetAll()

	assert.True(t, s.Filter().IsZero())
	assert.Equal(t, query.SortSpec{}, s.Sort())
	assert.Empty(t, cmp.Diff(store.Items(), s.Visible()))
}

func Test_State_Skips_Recompute_When_Spec_Unchanged(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)
	assert.Equal(t, 1, s.Recomputes())

	s.SetNameSubstring("a")
	s.SetNameSubstring("a")
	require.NoError(t, s.SetOwner(1))
	require.NoError(t, s.SetOwner(1))

	assert.Equal(t, 3, s.Recomputes())

	s.ToggleGrouping(10)
	s.ToggleGrouping(10)
	assert.Equal(t, 5, s.Recomputes(), "toggle back is still a change")
}

func Test_State_SetSort_Validates_Key_When_Called(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)

	require.NoError(t, s.SetSort(query.SortSpec{Key: query.SortID, Direction: query.Descending}))
	assert.Equal(t, []int{201, 200, 101, 100}, visibleIDs(s))

	require.NoError(t, s.SetSort(query.SortSpec{Key: query.SortNone, Direction: query.Descending}))
	assert.Equal(t, query.SortSpec{}, s.Sort())

	require.ErrorIs(t, s.SetSort(query.SortSpec{Key: query.SortKey(-1)}), view.ErrInvalidSortKey)
}

func Test_State_Visible_Returns_Copy_When_Caller_Mutates(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)

	got := s.Visible()
	got[0] = catalog.ResolvedItem{}

	assert.Equal(t, 100, s.Visible()[0].ID)
}

func Test_Engine_Computes_Scenario_When_Called_Directly(t *testing.T) {
	t.Parallel()

	store, err := catalog.NewStore(
		[]catalog.Person{{ID: 1, Name: "Max", Sex: catalog.SexMale}},
		[]catalog.Grouping{{ID: 10, Title: "Fruits", Icon: "🍎", OwnerID: 1}},
		[]catalog.Item{{ID: 100, Name: "banana", GroupingID: 10}, {ID: 101, Name: "apple", GroupingID: 10}},
	)
	require.NoError(t, err)

	engine := view.NewEngine(store.Items(), query.NewSorter(language.English))

	got := engine.ComputeVisible(query.FilterSpec{}, query.SortSpec{Key: query.SortName})
	require.Len(t, got, 2)
	assert.Equal(t, 101, got[0].ID)
	assert.Equal(t, 100, got[1].ID)

	got = engine.ComputeVisible(query.FilterSpec{Name: "an"}, query.SortSpec{})
	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].ID)
	assert.Equal(t, 2, engine.Len())
}

func Test_State_Logs_Recompute_When_Debug_Enabled(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)

	store := newStore(t)
	engine := view.NewEngine(store.Items(), query.NewSorter(language.English))
	s := view.NewState(engine, zap.New(core))

	s.SetNameSubstring("an")

	entries := logs.FilterMessage("view recomputed").All()
	require.Len(t, entries, 2)

	last := entries[1].ContextMap()
	assert.Equal(t, "an", last["name"])
	assert.EqualValues(t, 1, last["visible"])
	assert.EqualValues(t, 4, last["total"])
}

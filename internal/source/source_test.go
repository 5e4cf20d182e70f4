package source_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/catalog/internal/catalog"
	"github.com/calvinalkan/catalog/internal/source"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)
}

func itemNames(store *catalog.Store) []string {
	var names []string
	for _, it := range store.Items() {
		names = append(names, it.Name)
	}

	return names
}

func Test_Builtin_Loads_Seed_When_Called(t *testing.T) {
	t.Parallel()

	store, err := source.Builtin()
	require.NoError(t, err)

	people, groupings, items := store.Len()
	assert.Equal(t, 4, people)
	assert.Equal(t, 5, groupings)
	assert.Equal(t, 12, items)
	assert.Equal(t, catalog.Gaps{}, store.Gaps(), "seed must be referentially complete")
}

func Test_Load_Uses_Builtin_When_Path_Empty(t *testing.T) {
	t.Parallel()

	store, err := source.Load(context.Background(), "")
	require.NoError(t, err)

	_, _, items := store.Len()
	assert.Equal(t, 12, items)
}

func Test_Load_Reads_JSONC_When_File_Has_Comments(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.jsonc")
	writeFile(t, path, `{
		// one owner, one grouping
		"people": [{"id": 1, "name": "Max", "sex": "M"}],
		"groupings": [{"id": 10, "title": "Fruits", "icon": "🍎", "owner_id": 1}],
		"items": [
			{"id": 100, "name": "banana", "grouping_id": 10},
			{"id": 101, "name": "apple", "grouping_id": 10}, // trailing comma
		],
	}`)

	store, err := source.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"banana", "apple"}, itemNames(store))

	owner, ok := store.Items()[0].Owner()
	require.True(t, ok)
	assert.Equal(t, catalog.Person{ID: 1, Name: "Max", Sex: catalog.SexMale}, owner)
}

func Test_Load_Reads_YAML_When_Extension_Is_Yml(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.yml")
	writeFile(t, path, `
people:
  - {id: 1, name: Anna, sex: f}
groupings:
  - {id: 3, title: Fruits, icon: "🍏", owner_id: 1}
items:
  - {id: 6, name: Apples, grouping_id: 3}
  - {id: 7, name: Ghost, grouping_id: 42}
`)

	store, err := source.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Apples", "Ghost"}, itemNames(store))
	assert.Equal(t, catalog.Gaps{MissingGroupings: 1}, store.Gaps())
}

func Test_Load_Reads_SQLite_When_Extension_Is_Db(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)

	_, err = db.Exec(source.Schema)
	require.NoError(t, err)

	for _, stmt := range []string{
		`INSERT INTO people (id, name, sex) VALUES (2, 'Anna', 'f'), (1, 'Roma', 'm')`,
		`INSERT INTO groupings (id, title, icon, owner_id) VALUES (2, 'Drinks', '🍺', 1)`,
		`INSERT INTO items (id, name, grouping_id) VALUES (9, 'Coffee', 2), (1, 'Milk', 2)`,
	} {
		_, err = db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	require.NoError(t, db.Close())

	store, err := source.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Coffee", "Milk"}, itemNames(store), "rows keep insertion order")

	people := store.People()
	require.Len(t, people, 2)
	assert.Equal(t, "Anna", people[0].Name)

	owner, ok := store.Items()[1].Owner()
	require.True(t, ok)
	assert.Equal(t, "Roma", owner.Name)
}

func Test_Load_Fails_When_SQLite_Tables_Missing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.sqlite")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)

	_, err = db.Exec(`CREATE TABLE unrelated (x INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = source.Load(context.Background(), path)
	require.ErrorIs(t, err, source.ErrSourceInvalid)
	assert.Contains(t, err.Error(), "people")
}

func Test_Load_Returns_Error_When_Input_Invalid(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name    string
		file    string
		content string
		wantErr error
		wantMsg string
	}{
		{
			name:    "unsupported extension",
			file:    "catalog.csv",
			content: "id,name",
			wantErr: source.ErrUnsupportedSource,
		},
		{
			name:    "broken jsonc",
			file:    "catalog.json",
			content: `{"people": [}`,
			wantErr: source.ErrSourceInvalid,
			wantMsg: "invalid JSONC",
		},
		{
			name:    "unknown json field",
			file:    "catalog.json",
			content: `{"people": [], "prices": []}`,
			wantErr: source.ErrSourceInvalid,
			wantMsg: "prices",
		},
		{
			name:    "unknown yaml field",
			file:    "catalog.yaml",
			content: "people: []\nowners: []\n",
			wantErr: source.ErrSourceInvalid,
			wantMsg: "owners",
		},
		{
			name:    "invalid sex",
			file:    "catalog.json",
			content: `{"people": [{"id": 1, "name": "X", "sex": "q"}]}`,
			wantErr: catalog.ErrInvalidSex,
		},
		{
			name:    "duplicate item",
			file:    "catalog.yaml",
			content: "items:\n  - {id: 1, name: a, grouping_id: 1}\n  - {id: 1, name: b, grouping_id: 1}\n",
			wantErr: catalog.ErrDuplicateID,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tt.file)
			writeFile(t, path, tt.content)

			_, err := source.Load(context.Background(), path)
			require.ErrorIs(t, err, tt.wantErr)

			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func Test_Load_Returns_Not_Found_When_File_Missing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, name := range []string{"missing.json", "missing.db"} {
		_, err := source.Load(context.Background(), filepath.Join(dir, name))
		require.ErrorIs(t, err, source.ErrSourceNotFound, name)
	}
}

func Test_Decode_Accepts_Empty_YAML_When_Document_Blank(t *testing.T) {
	t.Parallel()

	records, err := source.Decode(source.FormatYAML, []byte(""))
	require.NoError(t, err)
	assert.Equal(t, source.Records{}, records)
}

func Test_DetectFormat_Maps_Extensions_When_Known(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]source.Format{
		"a.json":       source.FormatJSON,
		"a.JSONC":      source.FormatJSON,
		"a.hujson":     source.FormatJSON,
		"a.yaml":       source.FormatYAML,
		"a.yml":        source.FormatYAML,
		"a.db":         source.FormatSQLite,
		"a.sqlite3":    source.FormatSQLite,
		"dir/a.sqlite": source.FormatSQLite,
	} {
		got, err := source.DetectFormat(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := source.DetectFormat("noext")
	require.ErrorIs(t, err, source.ErrUnsupportedSource)
}

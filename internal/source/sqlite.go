package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLite layout read by [Load]. Rows are returned in rowid order so the
// file's insertion order is the catalog's load order.
const (
	selectPeople    = `SELECT id, name, sex FROM people ORDER BY rowid`
	selectGroupings = `SELECT id, title, icon, owner_id FROM groupings ORDER BY rowid`
	selectItems     = `SELECT id, name, grouping_id FROM items ORDER BY rowid`
)

// Schema creates the tables [Load] expects. Exposed for tools and tests
// that build data files.
const Schema = `
CREATE TABLE IF NOT EXISTS people (
	id   INTEGER NOT NULL,
	name TEXT    NOT NULL,
	sex  TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS groupings (
	id       INTEGER NOT NULL,
	title    TEXT    NOT NULL,
	icon     TEXT    NOT NULL DEFAULT '',
	owner_id INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS items (
	id          INTEGER NOT NULL,
	name        TEXT    NOT NULL,
	grouping_id INTEGER NOT NULL
);`

func readSQLite(ctx context.Context, path string) (Records, error) {
	_, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Records{}, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}

		return Records{}, fmt.Errorf("reading data file: %w", err)
	}

	dsn := (&url.URL{Scheme: "file", Path: path, RawQuery: "mode=ro"}).String()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return Records{}, fmt.Errorf("open sqlite: %w", err)
	}

	defer func() { _ = db.Close() }()

	var records Records

	records.People, err = queryRows(ctx, db, selectPeople, func(rows *sql.Rows) (PersonRecord, error) {
		var p PersonRecord
		err := rows.Scan(&p.ID, &p.Name, &p.Sex)

		return p, err
	})
	if err != nil {
		return Records{}, fmt.Errorf("%w %s: people: %w", ErrSourceInvalid, path, err)
	}

	records.Groupings, err = queryRows(ctx, db, selectGroupings, func(rows *sql.Rows) (GroupingRecord, error) {
		var g GroupingRecord
		err := rows.Scan(&g.ID, &g.Title, &g.Icon, &g.OwnerID)

		return g, err
	})
	if err != nil {
		return Records{}, fmt.Errorf("%w %s: groupings: %w", ErrSourceInvalid, path, err)
	}

	records.Items, err = queryRows(ctx, db, selectItems, func(rows *sql.Rows) (ItemRecord, error) {
		var it ItemRecord
		err := rows.Scan(&it.ID, &it.Name, &it.GroupingID)

		return it, err
	})
	if err != nil {
		return Records{}, fmt.Errorf("%w %s: items: %w", ErrSourceInvalid, path, err)
	}

	return records, nil
}

func queryRows[T any](ctx context.Context, db *sql.DB, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	defer func() { _ = rows.Close() }()

	var out []T

	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		out = append(out, v)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return out, nil
}

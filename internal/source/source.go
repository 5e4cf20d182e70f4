// Package source loads the people, groupings and items record sets from a
// data file (JSONC, YAML or SQLite) or from the builtin seed.
package source

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/catalog/internal/catalog"
)

//go:embed seed.jsonc
var seed []byte

// Format of a data file.
type Format string

// Supported formats.
const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// DetectFormat maps a file extension to its [Format].
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc", ".hujson":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s (want .json, .jsonc, .yaml, .yml, .db, .sqlite)", ErrUnsupportedSource, path)
	}
}

// PersonRecord is a person as written in a data file.
type PersonRecord struct {
	ID   int    `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Sex  string `json:"sex"  yaml:"sex"`
}

// GroupingRecord is a grouping as written in a data file.
type GroupingRecord struct {
	ID      int    `json:"id"       yaml:"id"`
	Title   string `json:"title"    yaml:"title"`
	Icon    string `json:"icon"     yaml:"icon"`
	OwnerID int    `json:"owner_id" yaml:"owner_id"`
}

// ItemRecord is an item as written in a data file.
type ItemRecord struct {
	ID         int    `json:"id"          yaml:"id"`
	Name       string `json:"name"        yaml:"name"`
	GroupingID int    `json:"grouping_id" yaml:"grouping_id"`
}

// Records is the on-disk shape of a catalog.
type Records struct {
	People    []PersonRecord   `json:"people"    yaml:"people"`
	Groupings []GroupingRecord `json:"groupings" yaml:"groupings"`
	Items     []ItemRecord     `json:"items"     yaml:"items"`
}

// Store converts the records into a validated [catalog.Store].
func (r Records) Store() (*catalog.Store, error) {
	people := make([]catalog.Person, 0, len(r.People))

	for _, p := range r.People {
		sex, err := catalog.ParseSex(p.Sex)
		if err != nil {
			return nil, fmt.Errorf("person %d: %w", p.ID, err)
		}

		people = append(people, catalog.Person{ID: p.ID, Name: p.Name, Sex: sex})
	}

	groupings := make([]catalog.Grouping, 0, len(r.Groupings))
	for _, g := range r.Groupings {
		groupings = append(groupings, catalog.Grouping(g))
	}

	items := make([]catalog.Item, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, catalog.Item(it))
	}

	return catalog.NewStore(people, groupings, items)
}

// Builtin returns the store for the embedded seed catalog.
func Builtin() (*catalog.Store, error) {
	records, err := Decode(FormatJSON, seed)
	if err != nil {
		return nil, fmt.Errorf("builtin seed: %w", err)
	}

	return records.Store()
}

// Load reads path and builds a store. An empty path loads [Builtin].
func Load(ctx context.Context, path string) (*catalog.Store, error) {
	if path == "" {
		return Builtin()
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var records Records

	if format == FormatSQLite {
		records, err = readSQLite(ctx, path)
	} else {
		records, err = readFile(path, format)
	}

	if err != nil {
		return nil, err
	}

	store, err := records.Store()
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrSourceInvalid, path, err)
	}

	return store, nil
}

func readFile(path string, format Format) (Records, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Records{}, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}

		return Records{}, fmt.Errorf("reading data file: %w", err)
	}

	records, err := Decode(format, data)
	if err != nil {
		return Records{}, fmt.Errorf("%w %s: %w", ErrSourceInvalid, path, err)
	}

	return records, nil
}

// Decode parses a JSONC or YAML document. Unknown fields are rejected.
func Decode(format Format, data []byte) (Records, error) {
	var records Records

	switch format {
	case FormatJSON:
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return Records{}, fmt.Errorf("invalid JSONC: %w", err)
		}

		dec := json.NewDecoder(bytes.NewReader(standardized))
		dec.DisallowUnknownFields()

		err = dec.Decode(&records)
		if err != nil {
			return Records{}, fmt.Errorf("invalid JSON: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)

		err := dec.Decode(&records)
		if err != nil && !errors.Is(err, io.EOF) {
			return Records{}, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		return Records{}, fmt.Errorf("%w: cannot decode %s", ErrUnsupportedSource, format)
	}

	return records, nil
}

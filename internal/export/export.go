// Package export writes the visible item list to disk.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/natefinch/atomic"

	"github.com/calvinalkan/catalog/internal/catalog"
)

// ErrEmptyPath is returned when no output path is given.
var ErrEmptyPath = errors.New("export path cannot be empty")

// GroupingRecord is the exported form of a resolved grouping.
type GroupingRecord struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

// OwnerRecord is the exported form of a grouping owner.
type OwnerRecord struct {
	ID   int         `json:"id"`
	Name string      `json:"name"`
	Sex  catalog.Sex `json:"sex"`
}

// ItemRecord is one exported row. Absent relations are null.
type ItemRecord struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Grouping *GroupingRecord `json:"grouping"`
	Owner    *OwnerRecord    `json:"owner"`
}

// Records converts items to their exported form, preserving order.
func Records(items []catalog.ResolvedItem) []ItemRecord {
	out := make([]ItemRecord, len(items))

	for i, it := range items {
		rec := ItemRecord{ID: it.ID, Name: it.Name}

		if it.Grouping != nil {
			rec.Grouping = &GroupingRecord{ID: it.Grouping.ID, Title: it.Grouping.Title, Icon: it.Grouping.Icon}
		}

		if owner, ok := it.Owner(); ok {
			rec.Owner = &OwnerRecord{ID: owner.ID, Name: owner.Name, Sex: owner.Sex}
		}

		out[i] = rec
	}

	return out
}

// Marshal encodes items as an indented JSON array.
func Marshal(items []catalog.ResolvedItem) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	err := enc.Encode(Records(items))
	if err != nil {
		return nil, fmt.Errorf("encoding items: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteJSON atomically replaces path with the JSON encoding of items.
// Readers never observe a partially written file.
func WriteJSON(path string, items []catalog.ResolvedItem) error {
	if path == "" {
		return ErrEmptyPath
	}

	data, err := Marshal(items)
	if err != nil {
		return err
	}

	err = atomic.WriteFile(path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

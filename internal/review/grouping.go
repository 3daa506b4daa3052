package review

import (
	"bytes"
	"encoding/json"
)

// Grouped maps park names to their reviews, preserving the first-seen order
// of the park names. Insertion order is a stated contract here, not an
// accident of map iteration: the JSON encoding emits keys in that order.
type Grouped struct {
	names   []string
	entries map[string][]Entry
}

// NewGrouped creates an empty grouped structure.
func NewGrouped() *Grouped {
	return &Grouped{entries: make(map[string][]Entry)}
}

// Append adds an entry under the park name, registering the name on first use.
func (g *Grouped) Append(name string, e Entry) {
	if _, seen := g.entries[name]; !seen {
		g.names = append(g.names, name)
	}
	g.entries[name] = append(g.entries[name], e)
}

// Names returns the park names in first-seen order.
func (g *Grouped) Names() []string {
	names := make([]string, len(g.names))
	copy(names, g.names)
	return names
}

// Get returns the reviews for a park name in input order.
func (g *Grouped) Get(name string) ([]Entry, bool) {
	entries, ok := g.entries[name]
	return entries, ok
}

// Len returns the number of distinct park names.
func (g *Grouped) Len() int {
	return len(g.names)
}

// MarshalJSON encodes the grouping as a JSON object whose keys appear in
// first-seen order, with each value an array of review entries.
func (g *Grouped) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range g.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(g.entries[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// GroupByPark reshapes flat review rows into per-park ordered lists.
// Single left-to-right pass: relative order of a park's reviews matches the
// input order, and park keys appear in first-seen order. O(n) time and
// O(n) space for the output.
func GroupByPark(rows []Row) *Grouped {
	grouped := NewGrouped()
	for _, row := range rows {
		grouped.Append(row.Name, Entry{
			PlaceID: row.PlaceID,
			Author:  row.Author,
			Rating:  row.Rating,
			Text:    row.Text,
		})
	}
	return grouped
}

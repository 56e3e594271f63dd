// Package bib finds and merges duplicate bibliography records.
//
// Records are identified across citation keys by their arXiv eprint and DOI.
// Nothing in this package reads or writes files; callers hand in collections
// that were already loaded and receive new collections back.
package bib

import (
	"maps"
	"slices"
)

// Recognized field names.
const (
	FieldEprint = "eprint"
	FieldDOI    = "doi"
)

// Record is a single bibliography entry.
type Record struct {
	Key    string            `json:"key"`            // Citation key, unique within a collection
	Type   string            `json:"type,omitempty"` // Entry type (article, inproceedings, ...)
	Fields map[string]string `json:"fields"`         // All other fields, passed through verbatim
}

// Field returns the value of a field and whether it is present.
func (r Record) Field(name string) (string, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Clone returns a copy of r that shares no state with it.
func (r Record) Clone() Record {
	out := Record{Key: r.Key, Type: r.Type, Fields: make(map[string]string, len(r.Fields))}
	maps.Copy(out.Fields, r.Fields)
	return out
}

// Collection maps citation keys to records.
type Collection map[string]Record

// FromRecords builds a collection from records in order.
// A record whose key was already seen replaces the earlier one; the replaced
// keys are returned so callers can warn about them.
func FromRecords(records []Record) (Collection, []string) {
	c := make(Collection, len(records))
	var shadowed []string
	for _, r := range records {
		if _, ok := c[r.Key]; ok {
			shadowed = append(shadowed, r.Key)
		}
		c[r.Key] = r
	}
	return c, shadowed
}

// Keys returns the collection's keys in sorted order.
func (c Collection) Keys() []string {
	return slices.Sorted(maps.Keys(c))
}

// Records returns the records sorted by key.
func (c Collection) Records() []Record {
	keys := c.Keys()
	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, c[k])
	}
	return out
}

// Clone returns a deep copy of the collection.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for k, r := range c {
		out[k] = r.Clone()
	}
	return out
}

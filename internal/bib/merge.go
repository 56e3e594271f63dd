package bib

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// MergeRecords merges r2 into r1. Fields of r2 overwrite those of r1 when
// both are set. The merged record keeps r1's key unless only r2's key is
// canonical (see IsCanonicalKey).
//
// The records must agree on their arXiv ID or on their DOI. When both
// differ, an *AmbiguousMergeError is returned and nothing is merged.
func MergeRecords(r1, r2 Record) (Record, error) {
	a1, _ := ExtractArxivID(r1)
	a2, _ := ExtractArxivID(r2)
	d1, _ := ExtractDOI(r1)
	d2, _ := ExtractDOI(r2)

	if a1 != a2 && d1 != d2 {
		return Record{}, &AmbiguousMergeError{
			Key1: r1.Key, Key2: r2.Key,
			ArxivID1: a1, ArxivID2: a2,
			DOI1: d1, DOI2: d2,
		}
	}

	merged := r1.Clone()
	maps.Copy(merged.Fields, r2.Fields)
	if r2.Type != "" {
		merged.Type = r2.Type
	}
	merged.Key = chooseKey(r1.Key, r2.Key)
	return merged, nil
}

// Merger merges duplicate records within and across collections, reporting
// progress to its logger.
type Merger struct {
	logger *slog.Logger
}

// NewMerger returns a Merger that logs to logger. A nil logger discards.
func NewMerger(logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Merger{logger: logger}
}

// MergeDuplicatesWithin merges every set of records in c that share a DOI or
// arXiv ID, directly or through a chain of shared identifiers. Records with
// no duplicates are carried over unchanged. c itself is not modified.
func MergeDuplicatesWithin(c Collection) (Collection, error) {
	return NewMerger(nil).MergeDuplicatesWithin(c)
}

// MergeTwoCollections merges b into a. See Merger.MergeTwoCollections.
func MergeTwoCollections(a, b Collection) (Collection, error) {
	return NewMerger(nil).MergeTwoCollections(a, b)
}

// MergeDuplicatesWithin is the logging form of the package-level function.
func (m *Merger) MergeDuplicatesWithin(c Collection) (Collection, error) {
	dups := FindDuplicatesWithin(c)
	if dups.Empty() {
		m.logger.Debug("no duplicates found", "records", len(c))
		return c.Clone(), nil
	}

	sets := affectedSets(dups)
	m.logger.Info("merging duplicate records",
		"doi_groups", len(dups.ByDOI),
		"arxiv_groups", len(dups.ByArxiv),
		"sets", len(sets))

	out := make(Collection, len(c))
	affected := make(map[string]bool)
	for _, set := range sets {
		acc := c[set[0]]
		for _, key := range set[1:] {
			merged, err := MergeRecords(acc, c[key])
			if err != nil {
				return nil, fmt.Errorf("merging duplicate set %v: %w", set, err)
			}
			acc = merged
		}
		for _, key := range set {
			affected[key] = true
		}
		m.logger.Debug("merged duplicate set", "keys", set, "key", acc.Key)
		out[acc.Key] = acc
	}

	for key, r := range c {
		if !affected[key] {
			out[key] = r.Clone()
		}
	}
	return out, nil
}

// MergeTwoCollections deduplicates a and b independently, then adds every
// record of b to a copy of a. A record of b that shares a DOI or arXiv ID
// with a record of a is merged into it (b's fields win); other records are
// added as they are. Records of b are visited in key order, so the result is
// deterministic.
func (m *Merger) MergeTwoCollections(a, b Collection) (Collection, error) {
	m.logger.Info("checking for duplicates", "collection", "first", "records", len(a))
	first, err := m.MergeDuplicatesWithin(a)
	if err != nil {
		return nil, fmt.Errorf("first collection: %w", err)
	}
	m.logger.Info("checking for duplicates", "collection", "second", "records", len(b))
	second, err := m.MergeDuplicatesWithin(b)
	if err != nil {
		return nil, fmt.Errorf("second collection: %w", err)
	}

	m.logger.Info("checking for repeats between collections")
	cross, err := FindDuplicatesAcross(first, second)
	if err != nil {
		return nil, err
	}
	if len(cross.ByDOI) == 0 {
		m.logger.Info("no duplicate DOIs found")
	}
	if len(cross.ByArxiv) == 0 {
		m.logger.Info("no duplicate arXiv IDs found")
	}

	// partner maps keys of second to keys of first. A DOI match takes
	// precedence over an arXiv match.
	partner := make(map[string]string)
	for _, p := range cross.ByArxiv {
		partner[p.B] = p.A
	}
	for _, p := range cross.ByDOI {
		partner[p.B] = p.A
	}

	result := first.Clone()
	// moved tracks where an entry of first lives after earlier merges
	// changed its key.
	moved := make(map[string]string)

	for _, keyB := range second.Keys() {
		rec := second[keyB]
		keyA, paired := partner[keyB]
		if !paired {
			if _, exists := result[keyB]; exists {
				m.logger.Warn("key already present, replacing entry", "key", keyB)
			}
			result[keyB] = rec.Clone()
			continue
		}

		target := keyA
		if k, ok := moved[keyA]; ok {
			target = k
		}
		merged, err := MergeRecords(result[target], rec)
		if err != nil {
			return nil, err
		}
		if _, taken := result[merged.Key]; taken && merged.Key != target {
			// Another work already holds the preferred key.
			m.logger.Warn("key already present, keeping existing key",
				"key", merged.Key, "kept", target)
			merged.Key = target
		}
		delete(result, target)
		result[merged.Key] = merged
		moved[keyA] = merged.Key
		m.logger.Debug("merged entry", "first", keyA, "second", keyB, "key", merged.Key)
	}

	m.logger.Info("merge complete", "records", len(result))
	return result, nil
}

// affectedSets joins duplicate groups that share a key into sets, each sorted.
// The sets are returned ordered by their first key.
func affectedSets(d Duplicates) [][]string {
	parent := make(map[string]string)
	var find func(string) string
	find = func(k string) string {
		p, ok := parent[k]
		if !ok {
			parent[k] = k
			return k
		}
		if p == k {
			return k
		}
		root := find(p)
		parent[k] = root
		return root
	}
	union := func(keys []string) {
		root := find(keys[0])
		for _, k := range keys[1:] {
			if r := find(k); r != root {
				parent[r] = root
			}
		}
	}

	for _, keys := range d.ByDOI {
		union(keys)
	}
	for _, keys := range d.ByArxiv {
		union(keys)
	}

	members := make(map[string][]string)
	for k := range parent {
		root := find(k)
		members[root] = append(members[root], k)
	}

	sets := make([][]string, 0, len(members))
	for _, keys := range members {
		slices.Sort(keys)
		sets = append(sets, keys)
	}
	slices.SortFunc(sets, func(x, y []string) int {
		return strings.Compare(x[0], y[0])
	})
	return sets
}

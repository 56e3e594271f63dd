package bib

import (
	"fmt"
	"slices"
)

// Groups maps an identifier value to the keys that share it.
type Groups map[string][]string

// Duplicates holds the repeated identifiers found within one collection.
// A key may appear in both groupings, with different partners in each.
type Duplicates struct {
	ByDOI   Groups `json:"by_doi"`
	ByArxiv Groups `json:"by_arxiv"`
}

// Empty reports whether no duplicates were found.
func (d Duplicates) Empty() bool {
	return len(d.ByDOI) == 0 && len(d.ByArxiv) == 0
}

// Pair links a key in the first collection to a key in the second.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// CrossDuplicates holds identifiers shared between two collections.
type CrossDuplicates struct {
	ByDOI   map[string]Pair `json:"by_doi"`
	ByArxiv map[string]Pair `json:"by_arxiv"`
}

// Empty reports whether no shared identifiers were found.
func (d CrossDuplicates) Empty() bool {
	return len(d.ByDOI) == 0 && len(d.ByArxiv) == 0
}

// FindDuplicatesWithin groups the keys of c that share a DOI or an arXiv ID.
// Keys in each group are sorted.
func FindDuplicatesWithin(c Collection) Duplicates {
	return Duplicates{
		ByDOI:   repeatedValues(DOIs(c)),
		ByArxiv: repeatedValues(ArxivIDs(c)),
	}
}

// HasDuplicatesWithin reports whether any two records of c share an identifier.
func HasDuplicatesWithin(c Collection) bool {
	return !FindDuplicatesWithin(c).Empty()
}

// FindDuplicatesAcross reports records of b whose DOI or arXiv ID already
// belongs to a record of a. Both collections must be free of internal
// duplicates; otherwise ErrInternalDuplicates is returned and nothing is
// searched.
func FindDuplicatesAcross(a, b Collection) (CrossDuplicates, error) {
	if HasDuplicatesWithin(a) {
		return CrossDuplicates{}, fmt.Errorf("first collection: %w", ErrInternalDuplicates)
	}
	if HasDuplicatesWithin(b) {
		return CrossDuplicates{}, fmt.Errorf("second collection: %w", ErrInternalDuplicates)
	}

	return CrossDuplicates{
		ByDOI:   matchValues(DOIs(a), DOIs(b)),
		ByArxiv: matchValues(ArxivIDs(a), ArxivIDs(b)),
	}, nil
}

// HasDuplicatesAcross reports whether a and b share any identifier.
func HasDuplicatesAcross(a, b Collection) (bool, error) {
	d, err := FindDuplicatesAcross(a, b)
	if err != nil {
		return false, err
	}
	return !d.Empty(), nil
}

// repeatedValues inverts key->value and keeps values held by two or more keys.
func repeatedValues(ids map[string]string) Groups {
	byValue := make(map[string][]string)
	for key, v := range ids {
		byValue[v] = append(byValue[v], key)
	}

	groups := make(Groups)
	for v, keys := range byValue {
		if len(keys) < 2 {
			continue
		}
		slices.Sort(keys)
		groups[v] = keys
	}
	return groups
}

// matchValues pairs keys of b with the key of a holding the same value.
// Values in a are assumed unique.
func matchValues(idsA, idsB map[string]string) map[string]Pair {
	keyByValue := make(map[string]string, len(idsA))
	for key, v := range idsA {
		keyByValue[v] = key
	}

	out := make(map[string]Pair)
	for keyB, v := range idsB {
		if keyA, ok := keyByValue[v]; ok {
			out[v] = Pair{A: keyA, B: keyB}
		}
	}
	return out
}

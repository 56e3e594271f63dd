package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matsen/quickbib/internal/bib"
	"github.com/matsen/quickbib/internal/storage"
)

func rec(key string, fields map[string]string) bib.Record {
	return bib.Record{Key: key, Type: "article", Fields: fields}
}

func TestDuplicateRows(t *testing.T) {
	d := bib.Duplicates{
		ByDOI: bib.Groups{
			"10.2/b": {"C", "D"},
			"10.1/a": {"A", "B"},
		},
		ByArxiv: bib.Groups{
			"1401.0001": {"A", "E", "F"},
		},
	}

	got := duplicateRows(d)
	want := [][]string{
		{"doi", "10.1/a", "A, B"},
		{"doi", "10.2/b", "C, D"},
		{"arxiv", "1401.0001", "A, E, F"},
	}
	if !slices.EqualFunc(got, want, slices.Equal) {
		t.Errorf("duplicateRows() = %v, want %v", got, want)
	}
}

func TestCrossRows(t *testing.T) {
	d := bib.CrossDuplicates{
		ByDOI:   map[string]bib.Pair{"10.1/a": {A: "A", B: "X"}},
		ByArxiv: map[string]bib.Pair{"1401.0001": {A: "B", B: "Y"}},
	}

	got := crossRows(d)
	want := [][]string{
		{"doi", "10.1/a", "A", "X"},
		{"arxiv", "1401.0001", "B", "Y"},
	}
	if !slices.EqualFunc(got, want, slices.Equal) {
		t.Errorf("crossRows() = %v, want %v", got, want)
	}

	if rows := crossRows(bib.CrossDuplicates{}); len(rows) != 0 {
		t.Errorf("crossRows(empty) = %v, want none", rows)
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Kind", "Identifier", "Keys"},
		[][]string{{"doi", "10.1/a", "A, B"}, {"arxiv"}},
		[]columnAlignment{alignLeft, alignLeft, alignRight})

	for _, want := range []string{"Kind", "Identifier", "10.1/a", "A, B", "arxiv"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderTable() output missing %q:\n%s", want, out)
		}
	}

	if out := renderTable(nil, [][]string{{"x"}}, nil); out != "" {
		t.Errorf("renderTable() with no headers = %q, want empty", out)
	}
}

func TestFilterKeys(t *testing.T) {
	c := bib.Collection{
		"Mishra:2014xyz":     rec("Mishra:2014xyz", map[string]string{}),
		"Smith-Jones:2020ab": rec("Smith-Jones:2020ab", map[string]string{}),
		"smith20":            rec("smith20", map[string]string{}),
		"abc:12:34":          rec("abc:12:34", map[string]string{}),
	}

	all := filterKeys(c, false)
	if want := []string{"Mishra:2014xyz", "Smith-Jones:2020ab", "abc:12:34", "smith20"}; !slices.Equal(all, want) {
		t.Errorf("filterKeys(all) = %v, want %v", all, want)
	}

	nonCanonical := filterKeys(c, true)
	if want := []string{"abc:12:34", "smith20"}; !slices.Equal(nonCanonical, want) {
		t.Errorf("filterKeys(non-canonical) = %v, want %v", nonCanonical, want)
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ambiguous", &bib.AmbiguousMergeError{Key1: "A", Key2: "B"}, ExitAmbiguous},
		{"wrapped ambiguous", fmt.Errorf("first collection: %w", &bib.AmbiguousMergeError{}), ExitAmbiguous},
		{"internal duplicates", fmt.Errorf("second collection: %w", bib.ErrInternalDuplicates), ExitDuplicates},
		{"other", fmt.Errorf("boom"), ExitDataError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFindInIndex(t *testing.T) {
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	c := bib.Collection{
		"A": rec("A", map[string]string{"doi": "10.1/a", "eprint": "1401.0001"}),
		"B": rec("B", map[string]string{"eprint": "1401.0002"}),
		"C": rec("C", map[string]string{"doi": "10.1/c"}),
	}
	if _, err := db.RebuildFromCollection(c); err != nil {
		t.Fatalf("RebuildFromCollection() error = %v", err)
	}

	tests := []struct {
		name string
		ids  map[string]string
		want []string
	}{
		{"doi and arxiv of one entry", map[string]string{"doi": "https://doi.org/10.1/a", "eprint": "1401.0001"}, []string{"A"}},
		{"identifiers of two entries", map[string]string{"doi": "10.1/c", "eprint": "arXiv:1401.0002"}, []string{"C", "B"}},
		{"no match", map[string]string{"doi": "10.9/z"}, nil},
		{"no identifiers", map[string]string{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := findInIndex(db, bib.Record{Fields: tt.ids})
			if err != nil {
				t.Fatalf("findInIndex() error = %v", err)
			}
			var keys []string
			for _, r := range records {
				keys = append(keys, r.Key)
			}
			if !slices.Equal(keys, tt.want) {
				t.Errorf("findInIndex() keys = %v, want %v", keys, tt.want)
			}
		})
	}
}

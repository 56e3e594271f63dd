package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/quickbib/internal/bib"
)

func TestToBibTeX_FieldOrder(t *testing.T) {
	r := bib.Record{
		Key:  "Mishra:2014xyz",
		Type: "article",
		Fields: map[string]string{
			"year":    "2014",
			"title":   "Test Paper Title",
			"eprint":  "1401.0001",
			"author":  "Mishra, A. and Doe, J.",
			"journal": "Phys. Rev. D",
		},
	}

	got := ToBibTeX(r)
	want := `@article{Mishra:2014xyz,
  author = {Mishra, A. and Doe, J.},
  title = {Test Paper Title},
  eprint = {1401.0001},
  journal = {Phys. Rev. D},
  year = {2014},
}
`
	if got != want {
		t.Errorf("ToBibTeX() =\n%s\nwant\n%s", got, want)
	}
}

func TestToBibTeX_VerbatimValues(t *testing.T) {
	r := bib.Record{Key: "k", Fields: map[string]string{"title": `{LHC} results \& more`}}

	got := ToBibTeX(r)
	if !strings.HasPrefix(got, "@article{k,") {
		t.Errorf("ToBibTeX() should default to @article, got:\n%s", got)
	}
	if !strings.Contains(got, `title = {{LHC} results \& more}`) {
		t.Errorf("ToBibTeX() should write values verbatim, got:\n%s", got)
	}
}

func TestToBibTeXList_SortedByKey(t *testing.T) {
	c := bib.Collection{
		"b": {Key: "b", Type: "misc", Fields: map[string]string{}},
		"a": {Key: "a", Type: "book", Fields: map[string]string{}},
	}

	got := ToBibTeXList(c)
	if strings.Index(got, "@book{a,") > strings.Index(got, "@misc{b,") {
		t.Errorf("entries not sorted by key:\n%s", got)
	}
}

func TestParseBibTeXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.bib")
	content := `@article{Mishra:2014xyz,
  title = {Gravitational Waves},
  eprint = "arXiv:1401.0001",
  doi = {https://doi.org/10.1234/Mishra},
}

@book{ knuth84 ,
  title = {The TeXbook},
}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	idx, err := ParseBibTeXFile(path)
	if err != nil {
		t.Fatalf("ParseBibTeXFile() error = %v", err)
	}

	if !idx.Keys["Mishra:2014xyz"] || !idx.Keys["knuth84"] {
		t.Errorf("Keys = %v", idx.Keys)
	}
	if idx.DOIs["10.1234/Mishra"] != "Mishra:2014xyz" {
		t.Errorf("DOIs = %v", idx.DOIs)
	}
	if idx.ArxivIDs["1401.0001"] != "Mishra:2014xyz" {
		t.Errorf("ArxivIDs = %v", idx.ArxivIDs)
	}
}

func TestParseBibTeXFile_Missing(t *testing.T) {
	idx, err := ParseBibTeXFile(filepath.Join(t.TempDir(), "none.bib"))
	if err != nil {
		t.Fatalf("ParseBibTeXFile() error = %v", err)
	}
	if len(idx.Keys) != 0 {
		t.Errorf("Keys = %v, want empty", idx.Keys)
	}
}

func TestBibTeXIndex_HasEntry(t *testing.T) {
	idx := NewBibTeXIndex()
	idx.Add(bib.Record{Key: "A", Fields: map[string]string{"doi": "10.1/a"}})
	idx.Add(bib.Record{Key: "B", Fields: map[string]string{"eprint": "arXiv:2"}})

	tests := []struct {
		name string
		r    bib.Record
		want bool
	}{
		{"doi match under new key", bib.Record{Key: "X", Fields: map[string]string{"doi": "https://doi.org/10.1/a"}}, true},
		{"arxiv match under new key", bib.Record{Key: "Y", Fields: map[string]string{"eprint": "2"}}, true},
		{"key match without ids", bib.Record{Key: "A", Fields: map[string]string{}}, true},
		{"new entry", bib.Record{Key: "Z", Fields: map[string]string{"doi": "10.1/z"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := idx.HasEntry(tt.r); got != tt.want {
				t.Errorf("HasEntry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMissingFrom(t *testing.T) {
	idx := NewBibTeXIndex()
	idx.Add(bib.Record{Key: "old", Fields: map[string]string{"doi": "10.1/a"}})

	c := bib.Collection{
		"renamed": {Key: "renamed", Fields: map[string]string{"doi": "10.1/a"}},
		"fresh":   {Key: "fresh", Fields: map[string]string{"doi": "10.1/b"}},
	}

	got := MissingFrom(c, idx)
	if len(got) != 1 {
		t.Fatalf("MissingFrom() = %v, want only fresh", got.Keys())
	}
	if _, ok := got["fresh"]; !ok {
		t.Errorf("MissingFrom() = %v, want fresh", got.Keys())
	}
}

func TestAppendToBibFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.bib")
	if err := os.WriteFile(path, []byte("@misc{a,\n}\n"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if err := AppendToBibFile(path, "@misc{b,\n}\n"); err != nil {
		t.Fatalf("AppendToBibFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "@misc{a,\n}\n\n@misc{b,\n}\n" {
		t.Errorf("file content = %q", data)
	}
}

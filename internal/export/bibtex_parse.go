package export

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/matsen/quickbib/internal/bib"
)

// BibTeXIndex indexes existing BibTeX entries for deduplication.
type BibTeXIndex struct {
	// Keys maps citation keys to true for existence check
	Keys map[string]bool
	// DOIs maps normalized DOI values to citation keys
	DOIs map[string]string
	// ArxivIDs maps arXiv identifiers to citation keys
	ArxivIDs map[string]string
}

// NewBibTeXIndex creates an empty BibTeX index.
func NewBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{
		Keys:     make(map[string]bool),
		DOIs:     make(map[string]string),
		ArxivIDs: make(map[string]string),
	}
}

// HasEntry returns true if the record already exists in the index.
// DOI is the primary match, then arXiv ID; the citation key is the fallback.
func (idx *BibTeXIndex) HasEntry(r bib.Record) bool {
	if doi, ok := bib.ExtractDOI(r); ok {
		if _, exists := idx.DOIs[doi]; exists {
			return true
		}
	}
	if id, ok := bib.ExtractArxivID(r); ok {
		if _, exists := idx.ArxivIDs[id]; exists {
			return true
		}
	}
	return idx.Keys[r.Key]
}

// Add records an entry in the index.
func (idx *BibTeXIndex) Add(r bib.Record) {
	idx.Keys[r.Key] = true
	if doi, ok := bib.ExtractDOI(r); ok {
		idx.DOIs[doi] = r.Key
	}
	if id, ok := bib.ExtractArxivID(r); ok {
		idx.ArxivIDs[id] = r.Key
	}
}

var (
	// Match entry start: @type{key,
	entryStartRegex = regexp.MustCompile(`@\w+\s*\{\s*([^,\s]+)\s*,`)
	// Match identifier fields: doi = {value} or eprint = "value"
	identFieldRegex = regexp.MustCompile(`(?i)^\s*(doi|eprint)\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// ParseBibTeXFile builds an index from an existing .bib file.
// Only entry keys and the doi and eprint fields are read, line by line; the
// file is not otherwise parsed. Returns an empty index if the file doesn't
// exist or is empty.
func ParseBibTeXFile(path string) (*BibTeXIndex, error) {
	idx := NewBibTeXIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var currentKey string

	for scanner.Scan() {
		line := scanner.Text()

		if matches := entryStartRegex.FindStringSubmatch(line); len(matches) > 1 {
			currentKey = strings.TrimSpace(matches[1])
			idx.Keys[currentKey] = true
		}

		if matches := identFieldRegex.FindStringSubmatch(line); len(matches) > 2 && currentKey != "" {
			field := strings.ToLower(matches[1])
			idx.Add(bib.Record{Key: currentKey, Fields: map[string]string{field: matches[2]}})
		}
	}

	return idx, scanner.Err()
}

// AppendToBibFile appends BibTeX content to a file.
func AppendToBibFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	// Ensure we start on a new line
	_, err = file.WriteString("\n" + content)
	return err
}

// MissingFrom returns the records of c that idx does not already hold.
func MissingFrom(c bib.Collection, idx *BibTeXIndex) bib.Collection {
	out := make(bib.Collection)
	for key, r := range c {
		if !idx.HasEntry(r) {
			out[key] = r
		}
	}
	return out
}

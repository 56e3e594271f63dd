// Package pdf extracts bibliographic identifiers from PDF files.
package pdf

import (
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/matsen/quickbib/internal/bib"
)

// ScanPages is how many leading pages are searched for identifiers.
const ScanPages = 3

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// arXiv stamp: new-style 1401.0001 (optionally versioned) or old-style hep-th/9901001.
var arxivPattern = regexp.MustCompile(`(?i)arXiv:\s*(\d{4}\.\d{4,5}|[a-z\-]+(?:\.[A-Z]{2})?/\d{7})(?:v\d+)?`)

// Identifiers holds the identifiers found in a PDF. Empty means not found.
type Identifiers struct {
	DOI     string `json:"doi,omitempty"`
	ArxivID string `json:"arxiv_id,omitempty"`
}

// Empty reports whether no identifier was found.
func (ids Identifiers) Empty() bool {
	return ids.DOI == "" && ids.ArxivID == ""
}

// Record returns a keyless record carrying the identifiers, suitable for
// matching against a collection.
func (ids Identifiers) Record() bib.Record {
	r := bib.Record{Fields: map[string]string{}}
	if ids.DOI != "" {
		r.Fields[bib.FieldDOI] = ids.DOI
	}
	if ids.ArxivID != "" {
		r.Fields[bib.FieldEprint] = ids.ArxivID
	}
	return r
}

// ExtractIdentifiers searches the first pages of a PDF for a DOI and an
// arXiv identifier. Finding neither is not an error.
func ExtractIdentifiers(filePath string) (Identifiers, error) {
	text, err := ExtractText(filePath, ScanPages)
	if err != nil {
		return Identifiers{}, err
	}
	return FindIdentifiers(text), nil
}

// FindIdentifiers finds the first DOI and arXiv identifier in text.
func FindIdentifiers(text string) Identifiers {
	return Identifiers{DOI: findDOI(text), ArxivID: findArxivID(text)}
}

// ExtractText extracts all text from the first N pages of a PDF.
func ExtractText(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

// findDOI finds a DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		// Remove trailing punctuation
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// findArxivID finds an arXiv identifier in text, without its version suffix.
func findArxivID(text string) string {
	m := arxivPattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 {
		return false
	}
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	if slashIdx == -1 || slashIdx >= len(doi)-1 {
		return false
	}
	return true
}

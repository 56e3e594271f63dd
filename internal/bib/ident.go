package bib

import "strings"

// doiHosts are resolver hosts that may precede a DOI once the scheme is gone.
var doiHosts = []string{"dx.doi.org/", "doi.org/"}

// ExtractArxivID returns the arXiv identifier of a record: the text of its
// eprint field after the last colon. The second result is false when the
// record carries no usable eprint.
func ExtractArxivID(r Record) (string, bool) {
	eprint, ok := r.Field(FieldEprint)
	if !ok {
		return "", false
	}
	id := strings.TrimSpace(eprint[strings.LastIndex(eprint, ":")+1:])
	return id, id != ""
}

// ExtractDOI returns the DOI of a record with any URL scheme and resolver
// host removed. The second result is false when the record has no DOI.
func ExtractDOI(r Record) (string, bool) {
	raw, ok := r.Field(FieldDOI)
	if !ok {
		return "", false
	}
	doi := NormalizeDOI(raw)
	return doi, doi != ""
}

// NormalizeDOI strips a leading URL scheme and resolver host from a DOI.
// "https://doi.org/10.1/x" and "10.1/x" both become "10.1/x".
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	// A scheme only counts when it comes before the first slash.
	if i := strings.Index(doi, "://"); i >= 0 && i < strings.Index(doi, "/") {
		doi = doi[i+3:]
		// Whatever host remains precedes the first slash.
		if j := strings.Index(doi, "/"); j >= 0 && !strings.HasPrefix(doi, "10.") {
			doi = doi[j+1:]
		}
	}
	for _, host := range doiHosts {
		if strings.HasPrefix(strings.ToLower(doi), host) {
			doi = doi[len(host):]
			break
		}
	}
	return doi
}

// ArxivIDs maps each key in c to its arXiv identifier, skipping records
// without one.
func ArxivIDs(c Collection) map[string]string {
	return extractAll(c, ExtractArxivID)
}

// DOIs maps each key in c to its DOI, skipping records without one.
func DOIs(c Collection) map[string]string {
	return extractAll(c, ExtractDOI)
}

func extractAll(c Collection, extract func(Record) (string, bool)) map[string]string {
	out := make(map[string]string, len(c))
	for key, r := range c {
		if id, ok := extract(r); ok {
			out[key] = id
		}
	}
	return out
}

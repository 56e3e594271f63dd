package conflict

import (
	"fmt"

	"github.com/matsen/quickbib/internal/bib"
)

// Sides splits a parse result into the two versions of the file: clean
// records plus every "ours" side, and every "theirs" side alone. Repeated
// keys within a side keep the last record and are reported as shadowed.
func (r *ParseResult) Sides() (ours, theirs bib.Collection, shadowed []string) {
	oursRecs := append([]bib.Record(nil), r.Clean...)
	var theirsRecs []bib.Record
	for _, c := range r.Conflicts {
		oursRecs = append(oursRecs, c.Ours...)
		theirsRecs = append(theirsRecs, c.Theirs...)
	}

	ours, s1 := bib.FromRecords(oursRecs)
	theirs, s2 := bib.FromRecords(theirsRecs)
	return ours, theirs, append(s1, s2...)
}

// Resolve merges both sides of every conflict into one collection. Records
// that exist on both sides (same DOI or arXiv ID) are merged with "theirs"
// winning on conflicting fields; the rest are kept from whichever side has
// them.
func Resolve(m *bib.Merger, r *ParseResult) (bib.Collection, error) {
	ours, theirs, _ := r.Sides()
	if !r.HasConflicts() {
		return ours, nil
	}

	merged, err := m.MergeTwoCollections(ours, theirs)
	if err != nil {
		return nil, fmt.Errorf("resolving conflicts: %w", err)
	}
	return merged, nil
}

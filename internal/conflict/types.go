// Package conflict resolves git merge conflicts in JSONL bibliographies.
package conflict

import (
	"fmt"

	"github.com/matsen/quickbib/internal/bib"
)

// ConflictRegion represents a single git conflict region in a JSONL file.
type ConflictRegion struct {
	// Line numbers in original file (1-indexed)
	StartLine int // Line of <<<<<<< marker
	EndLine   int // Line of >>>>>>> marker

	Ours   []bib.Record // Records from the "ours" (HEAD) side
	Theirs []bib.Record // Records from the "theirs" side
}

// ParseError represents an error while parsing conflict markers or JSONL.
type ParseError struct {
	Line    int    // Line number where error occurred (1-indexed)
	Message string // Description of the error
	Context string // Surrounding content for debugging
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ParseResult contains the result of parsing a conflicted file.
type ParseResult struct {
	// Records outside conflict regions
	Clean []bib.Record

	// Conflict regions found
	Conflicts []ConflictRegion
}

// HasConflicts returns true if the parse result contains any conflict regions.
func (r *ParseResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

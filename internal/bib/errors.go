package bib

import (
	"errors"
	"fmt"
)

var (
	// ErrAmbiguousMerge is returned when two records share neither their
	// arXiv ID nor their DOI, so they cannot be confirmed to be one work.
	ErrAmbiguousMerge = errors.New("cannot confirm records are the same work")

	// ErrInternalDuplicates is returned by cross-collection searches when an
	// input still has duplicates of its own.
	ErrInternalDuplicates = errors.New("collection has repeated entries; merge them first")
)

// AmbiguousMergeError describes a refused merge.
type AmbiguousMergeError struct {
	Key1, Key2         string
	ArxivID1, ArxivID2 string
	DOI1, DOI2         string
}

func (e *AmbiguousMergeError) Error() string {
	return fmt.Sprintf("merging %s and %s: arXiv IDs (%s, %s) and DOIs (%s, %s) both differ: %v",
		e.Key1, e.Key2,
		orNone(e.ArxivID1), orNone(e.ArxivID2),
		orNone(e.DOI1), orNone(e.DOI2),
		ErrAmbiguousMerge)
}

func (e *AmbiguousMergeError) Unwrap() error {
	return ErrAmbiguousMerge
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
